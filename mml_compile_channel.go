// mml_compile_channel.go - per-channel MML compiler (SPEC_FULL.md §4.3).
//
// Grounded on _examples/original_source/src/compiler/channel.rs: a single
// pass over a channel's accumulated MML text, walking ChannelCompileState
// and pushing resolved ChipEvents into the shared EventQueue at absolute
// sample times. Loops (`[...]n`, `\`), tuplets (`{...}n`) and conditional
// spans (`?x...?`) are handled by slicing out the bracketed span and
// recursing, rather than an explicit interpreter stack.
package main

// compileChannel walks one declared channel's MML text to completion,
// flushing any note still sustaining at the end.
func (c *Compiler) compileChannel(ch byte, chn *Channel, chip SoundChip) error {
	st := newChannelCompileState()
	idx := channelIndex(ch)
	// chipSub/chanSub were already assigned by the #EX- directive
	// (StartChannelWithInfo); calling StartChannel here too would double
	// allocate against the chip's sub-allocator.
	c.noteValue.Calculate(chip.ClockDiv(), chip.NoteBits(), c.noteFreq, c.baseFreq)
	if err := c.compileSpan(ch, chn, chip, st, idx, chn.MmlText, 1); err != nil {
		return err
	}
	c.flushPendingOff(chip, idx, st)
	chn.DurationSamples = st.Time
	return nil
}

// compileSpan processes one slice of MML text against st, in place.
// scaleDenom divides every resolved note/rest duration in this span (tuplet
// scaling); 1 means no scaling.
func (c *Compiler) compileSpan(ch byte, chn *Channel, chip SoundChip, st *ChannelCompileState, idx int8, mml []byte, scaleDenom int32) error {
	i := 0
	for i < len(mml) {
		b := mml[i]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++

		case b == ';':
			j := i
			for j < len(mml) && mml[j] != '\n' {
				j++
			}
			i = j

		case isNoteLetter(b):
			letter := b
			i++
			accidental := int32(0)
			for i < len(mml) && (mml[i] == '+' || mml[i] == '#') {
				accidental++
				i++
			}
			for i < len(mml) && mml[i] == '-' {
				accidental--
				i++
			}
			length, dots, dotsGiven, next := scanLengthDots(mml, i)
			i = next
			oc := c.octaveCount
			if oc == 0 {
				oc = 12
			}
			base := st.Octave*oc + noteLetterSemitone[letter] + accidental + st.Transpose
			c.emitNoteCore(chip, st, idx, base, int32(length), dots, dotsGiven, scaleDenom)

		case b == 'r':
			i++
			length, dots, dotsGiven, next := scanLengthDots(mml, i)
			i = next
			c.flushPendingOff(chip, idx, st)
			d := st.noteLength(int32(length), dots, dotsGiven)
			if scaleDenom > 1 {
				d /= int64(scaleDenom)
			}
			if ev := chip.Rest(int(idx), int32(d)); ev != nil {
				c.queueEvent(st.Time, idx, ev)
			}
			st.Time += d

		case b == 'n':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				i = next
			}
			length, dots, dotsGiven, next2 := scanLengthDots(mml, i)
			i = next2
			c.emitNoteCore(chip, st, idx, int32(n)+st.Transpose, int32(length), dots, dotsGiven, scaleDenom)

		case b == '^':
			i++
			length, dots, dotsGiven, next := scanLengthDots(mml, i)
			i = next
			d := st.noteLength(int32(length), dots, dotsGiven)
			if scaleDenom > 1 {
				d /= int64(scaleDenom)
			}
			if st.HasPendingOff {
				st.PendingOffTime += d
			}
			st.Time += d

		case b == '&':
			st.Kind |= kindSlur
			i++

		case b == '/':
			st.Kind |= kindLegato
			i++

		case b == '>':
			st.Octave++
			i++

		case b == '<':
			st.Octave--
			i++

		case b == 'o':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				st.Octave = int32(n)
				i = next
			}

		case b == 't':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				st.Tempo = int32(n)
				i = next
			}

		case b == 'l':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				st.DefaultLen = int32(n)
				i = next
			}
			dots := 0
			for i < len(mml) && mml[i] == '.' {
				dots++
				i++
			}
			st.DefaultDots = dots

		case b == 'D':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				st.Detune = int32(n)
				i = next
			}

		case b == 'K':
			i++
			n, next, ok := scanNumber(mml, i)
			if ok {
				st.Transpose = int32(n)
				i = next
			}

		case b == 'Q':
			i++
			a, next, ok := scanNumber(mml, i)
			if ok {
				st.QuantizeA = int32(a)
				i = next
				if i < len(mml) && mml[i] == ',' {
					bb, next2, ok2 := scanNumber(mml, i+1)
					if ok2 {
						st.QuantizeB = int32(bb)
						i = next2
					}
				}
			}

		case b == 'v':
			if hasPrefixAt(mml, i, "ve") {
				n, next, ok := scanNumber(mml, i+2)
				if ok {
					if ev := chip.SetMacro(int(idx), false, MacroVolume, int16(n)); ev != nil {
						c.queueEvent(st.Time, idx, ev)
					}
					i = next
				} else {
					i++
				}
				continue
			}
			n, next, ok := scanNumber(mml, i+1)
			if ok {
				if ev := chip.SetMacro(int(idx), false, MacroVolume, int16(n)); ev != nil {
					c.queueEvent(st.Time, idx, ev)
				}
				i = next
			} else {
				i++
			}

		case b == 'P':
			n, next, ok := scanNumber(mml, i+1)
			if ok {
				if ev := chip.SetMacro(int(idx), false, MacroPanning, int16(n)); ev != nil {
					c.queueEvent(st.Time, idx, ev)
				}
				i = next
			} else {
				i++
			}

		case b == 'M':
			n, next, ok := scanNumber(mml, i+1)
			if ok {
				if ev := chip.SetMacro(int(idx), false, MacroMultiply, int16(n)); ev != nil {
					c.queueEvent(st.Time, idx, ev)
				}
				i = next
			} else {
				i++
			}

		case b == 'E':
			if hasPrefixAt(mml, i, "ENOF") {
				st.MacroActive[MTArpeggio] = false
				i += 4
			} else if hasPrefixAt(mml, i, "EN") {
				n, next, ok := scanNumber(mml, i+2)
				if ok {
					st.ActiveMacro[MTArpeggio] = int32(n)
					st.MacroActive[MTArpeggio] = true
					i = next
				} else {
					i++
				}
			} else {
				i++
			}

		case b == 'L':
			c.flushPendingOff(chip, idx, st)
			if c.loopTimeSamples < 0 {
				c.loopTimeSamples = st.Time
			}
			chn.LoopPointSamples = st.Time
			i++

		case b == 'x':
			i++
			addr, next, ok := scanNumber(mml, i)
			if ok {
				i = next
			}
			i = skipSpaces(mml, i)
			val, next2, ok2 := scanNumber(mml, i)
			if ok2 {
				i = next2
			}
			if ev := chip.Direct(int(idx), uint16(addr), uint8(val)); ev != nil {
				c.queueEvent(st.Time, idx, ev)
			}

		case b == 'y':
			i++
			val, next, ok := scanNumber(mml, i)
			if ok {
				i = next
			}
			raw := byte(val)
			c.queue.Insert(Event{Time: st.Time, Channel: idx, Data: EventData{Raw: &raw}})

		case b == '{':
			end := findMatching(mml, i, '{', '}')
			if end < 0 {
				return parseErrorf(0, "unterminated tuplet in channel %c", ch)
			}
			inner := mml[i+1 : end]
			j := end + 1
			n, next, ok := scanNumber(mml, j)
			denom := scaleDenom
			if ok {
				denom *= int32(n)
				j = next
			}
			if err := c.compileSpan(ch, chn, chip, st, idx, inner, denom); err != nil {
				return err
			}
			i = j

		case b == '[':
			end := findMatching(mml, i, '[', ']')
			if end < 0 {
				return parseErrorf(0, "unterminated loop in channel %c", ch)
			}
			inner := mml[i+1 : end]
			j := end + 1
			count := 2
			n, next, ok := scanNumber(mml, j)
			if ok {
				count = int(n)
				j = next
			}
			breakIdx := findTopLevelBreak(inner)
			full := inner
			if breakIdx >= 0 {
				full = append(append([]byte(nil), inner[:breakIdx]...), inner[breakIdx+1:]...)
			}
			for rep := 0; rep < count; rep++ {
				body := full
				if rep == count-1 && breakIdx >= 0 {
					body = inner[:breakIdx]
				}
				if err := c.compileSpan(ch, chn, chip, st, idx, body, scaleDenom); err != nil {
					return err
				}
			}
			i = j

		case b == '\\':
			i++

		case b == '?':
			i++
			if i < len(mml) {
				i++ // condition letter, always taken (no external condition model)
			}
			j := i
			for j < len(mml) && mml[j] != '?' {
				j++
			}
			inner := mml[i:j]
			i = j
			if i < len(mml) {
				i++
			}
			if err := c.compileSpan(ch, chn, chip, st, idx, inner, scaleDenom); err != nil {
				return err
			}

		case b == '@':
			i = c.compileAtDirective(chip, st, idx, mml, i)

		default:
			i++
		}
	}
	return nil
}

// compileAtDirective handles one `@...` token at mml[i] (mml[i] == '@') and
// returns the index just past it.
func (c *Compiler) compileAtDirective(chip SoundChip, st *ChannelCompileState, idx int8, mml []byte, i int) int {
	switch {
	case hasPrefixAt(mml, i, "@!"):
		n, next, ok := scanNumber(mml, i+2)
		if ok {
			st.Time += n
			return next
		}
		return i + 2

	case hasPrefixAt(mml, i, "@w"):
		n, next, ok := scanNumber(mml, i+2)
		if ok {
			st.Time += n * int64(c.framerate)
			return next
		}
		return i + 2

	case hasPrefixAt(mml, i, "@/"):
		_, next, ok := scanNumber(mml, i+2)
		if ok {
			return next
		}
		return i + 2

	case hasPrefixAt(mml, i, "@["):
		j := i + 2
		for j < len(mml) && mml[j] != ']' {
			j++
		}
		st.PhaseGroup = string(mml[i+2 : j])
		st.PhaseCursor = 0
		if j < len(mml) {
			j++
		}
		return j

	case hasPrefixAt(mml, i, "@@"):
		n, next, ok := scanNumber(mml, i+2)
		if ok {
			st.ActiveMacro[MTTone] = int32(n)
			st.MacroActive[MTTone] = true
			return next
		}
		return i + 2

	case hasPrefixAt(mml, i, "@WM"):
		n, next, ok := scanNumber(mml, i+3)
		if ok {
			if ev := chip.SetMacro(int(idx), false, MacroModWaveform, int16(n)); ev != nil {
				c.queueEvent(st.Time, idx, ev)
			}
			return next
		}
		return i + 3

	case hasPrefixAt(mml, i, "@G"):
		n, next, ok := scanNumber(mml, i+2)
		if ok {
			if ev := chip.SetMacro(int(idx), false, MacroGlobal, int16(n)); ev != nil {
				c.queueEvent(st.Time, idx, ev)
			}
			return next
		}
		return i + 2
	}

	// Dynamic macro-envelope activations: @MIDI, @SL, @EN (channel form is
	// the bare EN/ENOF above, this is the envelope-definition prefix used
	// only inside envelope header lines, so it is deliberately excluded
	// here), @v, @P, @x, @M, @W, @S.
	names := []string{"@MIDI", "@SL", "@v", "@P", "@x", "@M", "@W", "@S"}
	for _, name := range names {
		if !hasPrefixAt(mml, i, name) {
			continue
		}
		kind, found := macroTypeFromDynName(name)
		if !found {
			continue
		}
		n, next, ok := scanNumber(mml, i+len(name))
		if !ok {
			continue
		}
		st.ActiveMacro[kind] = int32(n)
		st.MacroActive[kind] = true
		if kind == MTSampleList {
			st.SampleListActive = true
			st.SampleListID = int32(n)
		}
		return next
	}

	// Bare `@<num>`: static Tone set.
	n, next, ok := scanNumber(mml, i+1)
	if ok {
		if ev := chip.SetMacro(int(idx), false, MacroTone, int16(n)); ev != nil {
			c.queueEvent(st.Time, idx, ev)
		}
		return next
	}
	return i + 1
}

// emitNoteCore resolves and queues one sounding note: the sample-list
// lookup, note-off/on or note-change pair, per-tick macro stepping, and the
// deferred note-off, per the event sequence in SPEC_FULL.md §4.3. totalPitch
// is resolved to the chip's hardware value (v) and raw octave index (o1) via
// resolveNote before any driver call, matching send_note_if_pending.
func (c *Compiler) emitNoteCore(chip SoundChip, st *ChannelCompileState, idx int8, totalPitch int32, length int32, dots int, dotsGiven bool, scaleDenom int32) {
	c.flushPendingOff(chip, idx, st)

	v, o1 := c.resolveNote(totalPitch, st.Detune, chip)
	d := st.noteLength(length, dots, dotsGiven)
	if scaleDenom > 1 {
		d /= int64(scaleDenom)
	}
	gate := d - int64(st.QuantizeA)
	if gate < 0 {
		gate = 0
	}
	t := st.Time
	kindBits := st.Kind
	st.Kind = 0
	sustained := kindBits&(kindSlur|kindLegato) != 0

	if st.SampleListActive {
		env := c.envelopes[MTSampleList][clampToByte(st.SampleListID)]
		if sv, ok := env.At(clampIndex(int(totalPitch), 0, 255)); ok {
			if ev := chip.SetMacro(int(idx), true, MacroSample, sv); ev != nil {
				c.queueEvent(t, idx, ev)
			}
		}
	}

	if st.NoteOffMode == 1 && !sustained {
		if ev := chip.NoteOff(int(idx), v, o1); ev != nil {
			c.queueEvent(t, idx, ev)
		}
	}

	if sustained {
		if ev := chip.NoteChange(int(idx), v, o1); ev != nil {
			c.queueEvent(t, idx, ev)
		}
	} else {
		if ev := chip.NoteOn(int(idx), v, o1, int32(gate)); ev != nil {
			c.queueEvent(t, idx, ev)
		}
	}

	c.stepActiveMacros(chip, st, idx, totalPitch, t, gate)

	if st.NoteOffMode == 0 && !sustained {
		st.HasPendingOff = true
		st.PendingOffTime = t + gate
		st.PendingOffNote = v
		st.PendingOffOctave = o1
	}

	st.Time += d
	st.LastNoteLen = length
}

// stepActiveMacros materializes every active macro envelope across
// [t, t+d) at the channel's framerate cadence, queuing one driver event per
// tick. Arpeggio is handled specially: it re-resolves the held totalPitch
// plus the envelope's semitone offset through resolveNote rather than
// calling set_macro.
func (c *Compiler) stepActiveMacros(chip SoundChip, st *ChannelCompileState, idx int8, totalPitch int32, t, d int64) {
	if c.framerate <= 0 {
		return
	}
	for k := 0; k < MaxMacroTypes; k++ {
		if !st.MacroActive[k] {
			continue
		}
		kind := MacroType(k)
		if kind == MTVolumeEnv {
			continue // no per-tick driver command; "ve" is a static one-shot set
		}
		id := clampToByte(st.ActiveMacro[k])
		if kind == MTArpeggio {
			env := c.envelopes[MTArpeggio][id]
			step := 0
			for tt := t; tt < t+d; tt += int64(c.framerate) {
				if av, ok := env.Step(step); ok {
					if av != 0 {
						v2, o2 := c.resolveNote(totalPitch+int32(av), st.Detune, chip)
						if ev := chip.NoteChange(int(idx), v2, o2); ev != nil {
							c.queueEvent(tt, idx, ev)
						}
					}
				}
				step++
			}
			continue
		}
		cmd, ok := macroCommandFor(kind)
		if !ok {
			continue
		}
		env := c.envelopes[k][id]
		step := 0
		for tt := t; tt < t+d; tt += int64(c.framerate) {
			if v, ok := env.Step(step); ok {
				if ev := chip.SetMacro(int(idx), true, cmd, v); ev != nil {
					c.queueEvent(tt, idx, ev)
				}
			}
			step++
		}
	}
}

func macroCommandFor(kind MacroType) (MacroCommand, bool) {
	switch kind {
	case MTVolume:
		return MacroVolume, true
	case MTPanning:
		return MacroPanning, true
	case MTTone:
		return MacroTone, true
	case MTOption:
		return MacroOption, true
	case MTGlobal:
		return MacroGlobal, true
	case MTMultiply:
		return MacroMultiply, true
	case MTWaveform:
		return MacroWaveform, true
	case MTModWaveform:
		return MacroModWaveform, true
	case MTSample:
		return MacroSample, true
	case MTSampleList:
		return MacroSampleList, true
	case MTMidi:
		return MacroMidi, true
	default:
		return 0, false
	}
}

func (c *Compiler) flushPendingOff(chip SoundChip, idx int8, st *ChannelCompileState) {
	if !st.HasPendingOff {
		return
	}
	if ev := chip.NoteOff(int(idx), st.PendingOffNote, st.PendingOffOctave); ev != nil {
		c.queueEvent(st.PendingOffTime, idx, ev)
	}
	st.HasPendingOff = false
}

func (c *Compiler) queueEvent(t int64, idx int8, ev *ChipEvent) {
	c.queue.Insert(Event{Time: t, Channel: idx, Data: EventData{Chip: ev}})
}

// resolveNote turns a total semitone index (relative to octave 0, note 0 =
// C, scaled by octaveCount rather than a hardcoded 12 so #SCALE retunings
// apply) into the chip's hardware pitch value v and raw octave index o1,
// grounded on send_note_if_pending's o/n/v derivation: o1 = totalPitch /
// octaveCount, n = totalPitch % octaveCount, the octave shift direction
// depends on whether the chip is period- or frequency-based (clockDiv's
// sign) unless noteBits is negative (driver does not octave-shift at all),
// and detune is subtracted from the shifted table entry.
func (c *Compiler) resolveNote(totalPitch, detune int32, chip SoundChip) (v, o1 int32) {
	oc := c.octaveCount
	if oc == 0 {
		oc = 12
	}
	o1 = totalPitch / oc
	n := totalPitch % oc

	noteBits := chip.NoteBits()
	clockDiv := chip.ClockDiv()

	var shift int32
	switch {
	case noteBits < 0:
		shift = 0
	case clockDiv < 0:
		shift = o1 - chip.BasicOctave()
	default:
		shift = chip.BasicOctave() - o1
	}

	if clockDiv != 0 {
		v = int32(shiftRight(c.noteValue.Get(int(n)), shift)) - detune
	} else {
		v = n
	}
	return v, o1
}

// shiftRight applies a right shift whose count may be negative or exceed 63
// (an out-of-range octave relative to a chip's basic octave), masking to the
// low 6 bits rather than panicking the way Go's native >> would on a
// negative count.
func shiftRight(v int64, shift int32) int64 {
	return v >> (uint32(shift) & 63)
}

func isNoteLetter(b byte) bool {
	return b >= 'a' && b <= 'g'
}

// scanLengthDots reads an optional length number followed by `.` dots,
// starting at pos. dotsGiven is true when a dot or an explicit length
// number was read; callers need it to fall back to the channel default dot
// count when the note carried neither.
func scanLengthDots(s []byte, pos int) (length int64, dots int, dotsGiven bool, next int) {
	n, after, ok := scanNumber(s, pos)
	i := pos
	if ok {
		length = n
		i = after
	}
	for i < len(s) && s[i] == '.' {
		dots++
		i++
	}
	dotsGiven = dots > 0 || ok
	return length, dots, dotsGiven, i
}

func hasPrefixAt(s []byte, i int, prefix string) bool {
	return i+len(prefix) <= len(s) && string(s[i:i+len(prefix)]) == prefix
}

// findMatching returns the index of the close byte matching the open byte
// at s[start], accounting for nesting of that same bracket pair, or -1.
func findMatching(s []byte, start int, open, close byte) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// findTopLevelBreak returns the index of a `\` loop-break marker not
// nested inside a `[...]` or `{...}` span, or -1.
func findTopLevelBreak(s []byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case '\\':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func clampToByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampIndex(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
