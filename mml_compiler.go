// mml_compiler.go - top-level compiler state and orchestration.
//
// Grounded on _examples/original_source/src/compiler/mod.rs: the overall
// Compile/CompileFile entry points, global parser state (text macros, scale
// table, sticky envelope-parser fields), and the final event-queue replay
// that drives the VGM writer.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

const defaultFramerate = 735 // 44100 / 60

// Compiler holds every piece of global state accumulated while parsing an
// MML source and its #INCLUDEs, then used to drive the per-channel compile
// pass and the final VGM write-out.
type Compiler struct {
	logger *log.Logger

	chips        map[string]SoundChip
	channelOrder []byte
	channels     map[byte]*Channel

	envelopes  *MacroEnvStorage
	textMacros map[byte]string

	gd3       Gd3Metadata
	rate      int32
	framerate int32
	volume    int8
	loopBase  int8
	loopMod   uint8

	noteFreq    [noteTableSize]float64
	octaveCount int32
	baseFreq    float64

	// noteValue is rebuilt per channel from the owning chip's clock_div/
	// note_bits before that channel compiles (SPEC_FULL.md §4.3), mirroring
	// the reference source's figure_out_note_values call.
	noteValue NoteTable

	loopTimeSamples int64 // -1 until an `L` marker is compiled
	sawEOF          bool  // set by #EOF to halt source scanning

	// sticky envelope-parser state, carried across continuation lines.
	curEnv     *MacroEnvelope
	curEnvKind MacroType
	haveCurEnv bool

	queue *EventQueue
}

// NewCompiler builds a Compiler with its ambient defaults: 12-tone equal
// temperament, framerate 735 (1/60s), and no project-config overrides yet
// applied.
func NewCompiler(logger *log.Logger) *Compiler {
	c := &Compiler{
		logger:          logger,
		chips:           make(map[string]SoundChip),
		channels:        make(map[byte]*Channel),
		envelopes:       newMacroEnvStorage(),
		textMacros:      make(map[byte]string),
		rate:            0,
		framerate:       defaultFramerate,
		octaveCount:     12,
		baseFreq:        defaultBaseFreq,
		loopTimeSamples: -1,
		queue:           newEventQueue(),
	}
	for i := range c.noteFreq {
		c.noteFreq[i] = defaultNoteFreq()[i]
	}
	return c
}

// ApplyConfig seeds GD3/rate fallbacks from a loaded ProjectConfig, before
// any MML is parsed.
func (c *Compiler) ApplyConfig(cfg *ProjectConfig) {
	cfg.ApplyTo(&c.gd3, &c.rate)
}

// CompileFile reads path as the MML source, with #INCLUDE resolved
// relative to its directory, and writes the compiled VGM to outPath.
func (c *Compiler) CompileFile(path, outPath string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()
	if err := c.parseSource(f, filepath.Dir(path)); err != nil {
		return err
	}
	return c.finish(outPath)
}

// Compile reads MML from r (no #INCLUDE base directory available; includes
// resolve relative to the process's working directory) and writes the
// compiled VGM to outPath.
func (c *Compiler) Compile(r io.Reader, outPath string) error {
	if err := c.parseSource(r, "."); err != nil {
		return err
	}
	return c.finish(outPath)
}

// parseSource scans r line by line, dispatching each to the global
// directive/envelope/channel-data parser. basePath anchors #INCLUDE.
func (c *Compiler) parseSource(r io.Reader, basePath string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		line = bytes.TrimRight(line, "\r")
		if len(line) > 0 && lineNo == 1 {
			line = bytes.TrimPrefix(line, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM
		}
		if err := c.parseLine(line, lineNo, basePath); err != nil {
			return err
		}
		if c.sawEOF {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return nil
}

// parseLine dispatches a single source line per the prefix grammar in
// SPEC_FULL.md §4.8.
func (c *Compiler) parseLine(line []byte, lineNo int, basePath string) error {
	if len(line) == 0 {
		return nil
	}
	switch {
	case line[0] == '#':
		return c.parseHashDirective(line[1:], lineNo, basePath)
	case line[0] == '"':
		if c.gd3.Notes != "" {
			c.gd3.Notes += "\n"
		}
		c.gd3.Notes += string(line[1:])
		return nil
	case line[0] == '*':
		if len(line) >= 2 {
			c.textMacros[line[1]] = string(line[2:])
		}
		return nil
	case isEnvelopeLineStart(line[0]):
		return c.parseEnvelopeLine(line, lineNo)
	case isASCIILetter(line[0]):
		return c.parseChannelDataLine(line, lineNo)
	default:
		return nil // decorative/unrecognized lines are silently skipped
	}
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isEnvelopeLineStart(b byte) bool {
	switch b {
	case '@', '-', '+', '$', '[', ']', '(', ')', '{', '}', ',', '|':
		return true
	}
	return b >= '0' && b <= '9'
}

// parseChannelDataLine appends MML text (after text-macro splicing) to
// every channel letter named in the line's leading letter run.
func (c *Compiler) parseChannelDataLine(line []byte, lineNo int) error {
	i := 0
	for i < len(line) && isASCIILetter(line[i]) {
		i++
	}
	letters := line[:i]
	rest := line[i:]
	if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
		rest = rest[1:]
	}
	expanded := c.expandTextMacros(rest)
	for _, ch := range letters {
		ch := byte(ch)
		chn, ok := c.channels[ch]
		if !ok {
			return &UndeclaredChannelError{Ch: ch}
		}
		chn.MmlText = append(chn.MmlText, expanded...)
		chn.MmlText = append(chn.MmlText, '\n')
	}
	return nil
}

// expandTextMacros splices `*x` references to their stored body text.
func (c *Compiler) expandTextMacros(s []byte) []byte {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '*' && i+1 < len(s) {
			if body, ok := c.textMacros[s[i+1]]; ok {
				out = append(out, body...)
				i++
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}

// finish compiles every declared channel into the event queue in channel
// order, then replays the queue through the VGM writer.
func (c *Compiler) finish(outPath string) error {
	letters := make([]byte, 0, len(c.channels))
	for ch := range c.channels {
		letters = append(letters, ch)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })

	for _, ch := range letters {
		chn := c.channels[ch]
		chip, ok := c.chips[chn.ChipName]
		if !ok {
			return &UnknownChipError{Name: chn.ChipName}
		}
		c.logger.Debug("compiling channel", "channel", string(ch), "chip", chn.ChipName)
		if err := c.compileChannel(ch, chn, chip); err != nil {
			return err
		}
	}

	return c.writeOutput(outPath)
}

// writeOutput replays the merged event queue in ascending time order,
// emitting a delay before each distinct time and routing each queued event
// to its owning chip driver.
func (c *Compiler) writeOutput(outPath string) error {
	w := newVgmWriter()
	w.SetRate(uint32(0))
	if c.rate != 0 {
		w.SetRate(uint32(c.rate))
	}
	w.SetVolumeModifier(c.volume)
	w.SetLoopBase(c.loopBase)
	w.SetLoopModifier(c.loopMod)

	for _, chip := range c.chips {
		chip.FileBegin(w)
	}

	var lastTime int64
	loopMarked := false
	for _, t := range c.queue.Times() {
		if !loopMarked && c.loopTimeSamples >= 0 && t >= c.loopTimeSamples {
			w.WriteDelay(t - lastTime)
			lastTime = t
			for _, chip := range c.chips {
				chip.LoopStart(w)
			}
			w.MarkLoopStart()
			loopMarked = true
		}
		if t > lastTime {
			w.WriteDelay(t - lastTime)
			lastTime = t
		}
		for _, ev := range c.queue.AtTime(t) {
			c.dispatchEvent(ev, w)
		}
	}

	for _, chip := range c.chips {
		chip.FileEnd(w)
	}

	w.SetTotalSamples(uint32(lastTime))
	if c.loopTimeSamples >= 0 && c.loopTimeSamples <= lastTime {
		w.SetLoopSamples(uint32(lastTime - c.loopTimeSamples))
	}

	return w.Finalize(outPath, &c.gd3)
}

func (c *Compiler) dispatchEvent(ev Event, w *VgmWriter) {
	if ev.Data.Raw != nil {
		w.WriteByte(*ev.Data.Raw)
		return
	}
	chn := c.channelByIndex(ev.Channel)
	if chn == nil {
		return
	}
	chip, ok := c.chips[chn.ChipName]
	if !ok {
		return
	}
	chip.SendWithMacroEnv(ev.Data.Chip, int(ev.Channel), chn.ChipSub, chn.ChanSub, w, c.envelopes)
}

func (c *Compiler) channelByIndex(idx int8) *Channel {
	ch := c.indexToChannel(idx)
	if ch == 0 {
		return nil
	}
	return c.channels[ch]
}

// channelIndex/indexToChannel map the 52 letter slots (A-Z, a-z) to/from
// the int8 the event queue and ChipEvent routing use.
func channelIndex(ch byte) int8 {
	if ch >= 'A' && ch <= 'Z' {
		return int8(ch - 'A')
	}
	return int8(26 + (ch - 'a'))
}

func (c *Compiler) indexToChannel(idx int8) byte {
	if idx < 0 {
		return 0
	}
	if idx < 26 {
		return 'A' + byte(idx)
	}
	if idx < 52 {
		return 'a' + byte(idx-26)
	}
	return 0
}
