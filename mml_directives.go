// mml_directives.go - `#`-prefixed global directive handling.
//
// Grounded on _examples/original_source/src/compiler/mod.rs's directive
// dispatch table (SPEC_FULL.md §4.8).
package main

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// parseHashDirective handles one `#...` line, body being the text after the
// leading `#`.
func (c *Compiler) parseHashDirective(body []byte, lineNo int, basePath string) error {
	s := string(body)
	word, rest := splitFirstField(s)
	upper := strings.ToUpper(word)

	switch {
	case upper == "EOF":
		c.sawEOF = true
		return nil
	case upper == "TITLE" || upper == "TITLE-E":
		c.gd3.TitleEN = rest
	case upper == "TITLE-J":
		c.gd3.TitleJP = rest
	case upper == "GAME" || upper == "GAME-E":
		c.gd3.GameEN = rest
	case upper == "GAME-J":
		c.gd3.GameJP = rest
	case upper == "SYSTEM" || upper == "SYSTEM-E":
		c.gd3.SystemEN = rest
	case upper == "SYSTEM-J":
		c.gd3.SystemJP = rest
	case upper == "COMPOSER" || upper == "COMPOSER-E":
		c.gd3.ComposerEN = rest
	case upper == "COMPOSER-J":
		c.gd3.ComposerJP = rest
	case upper == "PROGRAMMER":
		c.gd3.Converter = rest
	case upper == "DATE":
		c.gd3.Date = rest
	case upper == "NOTES":
		appendLine(&c.gd3.Notes, rest)
	case strings.HasPrefix(upper, "TEXT"):
		appendLine(&c.gd3.Notes, rest)
	case upper == "RATE":
		n, _, ok := scanNumber([]byte(rest), 0)
		if !ok {
			return parseErrorf(lineNo, "malformed #RATE value %q", rest)
		}
		if n > 0 {
			c.framerate = int32(44100 / n)
			c.rate = int32(n)
		} else if n < 0 {
			c.framerate = int32(44100 / -n)
			c.rate = 0
		}
	case upper == "VOLUME":
		n, _, _ := scanNumber([]byte(rest), 0)
		c.volume = int8(n)
	case upper == "LOOP-BASE":
		n, _, _ := scanNumber([]byte(rest), 0)
		c.loopBase = int8(n)
	case upper == "LOOP-MODIFIER":
		n, _, _ := scanNumber([]byte(rest), 0)
		c.loopMod = uint8(n)
	case upper == "SCALE":
		c.parseScale(rest)
	case upper == "EQUAL-TEMPERAMENT":
		c.makeEqualTemperament()
	case upper == "JUST-INTONATION":
		c.parseJustIntonation(rest)
	case upper == "PITCH-CHANGE":
		n, _, ok := scanNumber([]byte(rest), 0)
		if ok {
			c.baseFreq = 10 * float64(n)
		}
	case upper == "INCLUDE":
		return c.parseInclude(strings.TrimSpace(rest), basePath, lineNo)
	case strings.HasPrefix(upper, "EX-"):
		return c.parseChipEnable(word[3:], rest, lineNo)
	default:
		c.logger.Debug("unknown directive", "name", word, "line", lineNo)
	}
	return nil
}

func splitFirstField(s string) (first, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " \t")
}

func appendLine(dst *string, s string) {
	if *dst != "" {
		*dst += "\n"
	}
	*dst += s
}

// parseInclude recursively parses path (resolved relative to basePath) as
// more MML source, for its own nested directory of #INCLUDEs. A missing
// file is downgraded to a warning (§7).
func (c *Compiler) parseInclude(path, basePath string, lineNo int) error {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(basePath, path)
	}
	f, err := os.Open(full)
	if err != nil {
		c.logger.Warn("missing #INCLUDE file", "path", full, "line", lineNo)
		return nil
	}
	defer f.Close()
	return c.parseSource(f, filepath.Dir(full))
}

// parseScale fills note_freq from semitone offsets given as
// whitespace-separated numbers, and sets octave_count to the count
// consumed. The pitch letters keep their fixed offsets (noteLetterSemitone);
// #SCALE does not reassign them.
func (c *Compiler) parseScale(rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}
	// noteFreq[i] for i in 0..len(fields) is set to 2^(offset/12); the
	// octave repeats every octave_count entries across the 32-slot table.
	offsets := make([]float64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err == nil {
			offsets[i] = n
		}
	}
	c.octaveCount = int32(len(offsets))
	c.fillNoteFreqFromOctave(offsets)
}

// makeEqualTemperament rebuilds note_freq as 12-tone-style equal divisions
// of the octave, using the current octave_count as the division count.
func (c *Compiler) makeEqualTemperament() {
	n := int(c.octaveCount)
	if n <= 0 {
		n = 12
	}
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = float64(i) * 12.0 / float64(n)
	}
	c.fillNoteFreqFromOctave(offsets)
}

// parseJustIntonation fills note_freq from whitespace-separated `n/d` ratio
// pairs.
func (c *Compiler) parseJustIntonation(rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}
	ratios := make([]float64, 0, len(fields))
	for _, f := range fields {
		parts := strings.SplitN(f, "/", 2)
		if len(parts) != 2 {
			continue
		}
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || den == 0 {
			continue
		}
		ratios = append(ratios, num/den)
	}
	if len(ratios) == 0 {
		return
	}
	c.octaveCount = int32(len(ratios))
	for i := range c.noteFreq {
		octave := i / len(ratios)
		pos := i % len(ratios)
		c.noteFreq[i] = ratios[pos] * math.Pow(2, float64(octave))
	}
}

// fillNoteFreqFromOctave tiles a per-octave semitone-offset table across
// the full 32-entry note_freq table, compounding by full octaves past the
// first cycle.
func (c *Compiler) fillNoteFreqFromOctave(offsetsInSemitones []float64) {
	n := len(offsetsInSemitones)
	if n == 0 {
		return
	}
	for i := range c.noteFreq {
		octave := i / n
		pos := i % n
		c.noteFreq[i] = math.Pow(2, (offsetsInSemitones[pos]+float64(octave*12))/12.0)
	}
}

// parseChipEnable handles `#EX-<chipname> <letters> <opts...>`: creates (or
// reuses) the named chip instance, binds the listed channel letters to it,
// and applies parsed options.
func (c *Compiler) parseChipEnable(chipName, rest string, lineNo int) error {
	lettersTok, optsRest := splitFirstField(rest)

	chip, ok := c.chips[chipName]
	if !ok {
		newChip, err := NewChip(chipName)
		if err != nil {
			return err
		}
		chip = newChip
		c.chips[chipName] = chip
	}

	chipSub, chanSub := 0, 0
	for i := 0; i < len(lettersTok); i++ {
		ch := lettersTok[i]
		switch {
		case ch == ',':
			chipSub++
			chanSub = 0
		case ch == '_':
			chanSub++
		case isASCIILetter(ch):
			c.channels[ch] = &Channel{ChipName: chipName, ChipSub: chipSub, ChanSub: chanSub}
			chip.StartChannelWithInfo(chipSub, chanSub)
			chanSub++
		}
	}

	opts := newChipOptions()
	for _, tok := range strings.Fields(optsRest) {
		if len(tok) == 0 {
			continue
		}
		switch tok[0] {
		case '+':
			if len(tok) > 1 {
				opts.set(tok[1], 1)
			}
		case '-':
			if len(tok) > 1 {
				opts.set(tok[1], 0)
			}
		default:
			if i := strings.IndexAny(tok, "=:"); i > 0 {
				key := tok[0]
				n, err := strconv.ParseInt(tok[i+1:], 0, 32)
				if err == nil {
					opts.set(key, int32(n))
				}
			}
		}
	}
	chip.Enable(opts)
	return nil
}
