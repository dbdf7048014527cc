// mml_envparse.go - macro envelope definition line parser.
//
// Grounded on _examples/original_source/src/compiler/envelope.rs and
// SPEC_FULL.md §4.2. Sticky parser state (which envelope is currently open)
// lives on *Compiler per §9's "global parser state" design note, not as
// package globals.
package main

// parseEnvelopeLine handles one envelope-definition or continuation line.
func (c *Compiler) parseEnvelopeLine(line []byte, lineNo int) error {
	if line[0] == '@' {
		kind, id, next, ok := c.parseEnvelopeHeader(line)
		if !ok {
			return parseErrorf(lineNo, "malformed envelope header %q", string(line))
		}
		env := c.envelopes[kind][id]
		env.Reset()
		c.curEnv = env
		c.curEnvKind = kind
		c.haveCurEnv = true
		return c.parseEnvelopeBody(line[next:], lineNo)
	}
	if !c.haveCurEnv {
		return parseErrorf(lineNo, "envelope continuation line with no open envelope")
	}
	return c.parseEnvelopeBody(line, lineNo)
}

// parseEnvelopeHeader reads `@<name><id>` and returns the macro kind, id,
// and the index just past the id.
func (c *Compiler) parseEnvelopeHeader(line []byte) (kind MacroType, id uint8, next int, ok bool) {
	// Try the longest names first so `@SL` isn't mistaken for `@S`.
	names := []string{"@MIDI", "@SL", "@EN", "@v", "@P", "@@", "@x", "@M", "@W", "@S"}
	for _, name := range names {
		if len(line) >= len(name) && string(line[:len(name)]) == name {
			k, found := macroTypeFromDynName(name)
			if !found {
				continue
			}
			n, nextIdx, numOK := scanNumber(line, len(name))
			if !numOK {
				continue
			}
			return k, uint8(n) & 0xFF, nextIdx, true
		}
	}
	return 0, 0, 0, false
}

// parseEnvelopeBody scans the grammar in SPEC_FULL.md §4.2: numeric
// literals (appended `repeat` times), `|` loop markers, `'k` repeat-count
// sets, `[`/`]k` block repeats, `,x` scale-position padding, `::N` ramps,
// and `"text"` labels.
func (c *Compiler) parseEnvelopeBody(s []byte, lineNo int) error {
	env := c.curEnv
	repeat := 1
	var blockStack []int
	i := 0
	for i < len(s) {
		switch {
		case s[i] == ' ' || s[i] == '\t':
			i++
		case s[i] == ';':
			i = len(s) // comment to end of line
		case s[i] == '|':
			env.SetLoopPoint()
			i++
		case s[i] == '\'':
			n, next, ok := scanNumber(s, i+1)
			if !ok {
				return parseErrorf(lineNo, "malformed repeat count")
			}
			repeat = int(n)
			i = next
		case s[i] == '[':
			blockStack = append(blockStack, env.Len())
			i++
		case s[i] == ']':
			n, next, ok := scanNumber(s, i+1)
			k := int64(1)
			if ok {
				k = n
				i = next
			} else {
				i++
			}
			if len(blockStack) > 0 {
				start := blockStack[len(blockStack)-1]
				blockStack = blockStack[:len(blockStack)-1]
				chunk := append([]int16(nil), env.Data[start:env.Len()]...)
				for rep := int64(1); rep < k; rep++ {
					for _, v := range chunk {
						env.Push(v)
					}
				}
			}
		case s[i] == ',':
			idx, next, ok := c.parseScalePad(s, i+1)
			if ok {
				last, has := env.Last()
				if has {
					for env.Len()%int(c.octaveCount) != idx && env.Len() < MaxEnvelopeData {
						env.Push(last)
					}
				}
				i = next
			} else {
				i++
			}
		case s[i] == ':' && i+1 < len(s) && s[i+1] == ':':
			j := i
			colons := 0
			for j < len(s) && s[j] == ':' {
				colons++
				j++
			}
			target, next, ok := scanNumber(s, j)
			if !ok {
				return parseErrorf(lineNo, "malformed ramp target")
			}
			cur := int64(0)
			if last, has := env.Last(); has {
				cur = int64(last)
			}
			step := int64(colons)
			for cur != target && env.Len() < MaxEnvelopeData {
				if cur < target {
					cur += step
					if cur > target {
						cur = target
					}
				} else {
					cur -= step
					if cur < target {
						cur = target
					}
				}
				env.Push(int16(cur))
			}
			i = next
		case s[i] == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			env.Text = string(s[i+1 : j])
			if j < len(s) {
				j++
			}
			i = j
		case s[i] == '+' || s[i] == '-' || s[i] == '$' || (s[i] >= '0' && s[i] <= '9'):
			n, next, ok := scanNumber(s, i)
			if !ok {
				i++
				continue
			}
			for r := 0; r < repeat; r++ {
				env.Push(int16(n))
			}
			i = next
		default:
			i++
		}
	}
	return nil
}

// parseScalePad reads a `,x` pad target: a scale letter a-j, optionally
// followed by `+`/`-` and an octave digit shifting the target position by
// whole octave_count multiples.
func (c *Compiler) parseScalePad(s []byte, pos int) (target int, next int, ok bool) {
	if pos >= len(s) {
		return 0, pos, false
	}
	letterIdx, letterOK := scaleLetterIndex(s[pos])
	if !letterOK {
		return 0, pos, false
	}
	next = pos + 1
	octave := 0
	if next < len(s) && (s[next] == '+' || s[next] == '-') {
		sign := 1
		if s[next] == '-' {
			sign = -1
		}
		next++
		n, after, numOK := scanNumber(s, next)
		if numOK {
			octave = sign * int(n)
			next = after
		}
	}
	target = letterIdx + octave*int(c.octaveCount)
	if target < 0 {
		target = 0
	}
	return target, next, true
}
