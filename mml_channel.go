// mml_channel.go - channel declarations and per-channel compile state.
//
// Grounded on _examples/original_source/src/compiler/channel.rs and the
// ChannelCompileState struct inlined in compiler/mod.rs.
package main

// Channel is a declared MML channel letter bound to a chip instance.
type Channel struct {
	ChipName         string
	ChipSub          int
	ChanSub          int
	MmlText          []byte
	LoopPointSamples int64
	DurationSamples  int64
}

// noteLengthBase is 44100 * 60 * 4: the sample count of one whole note at
// 1 BPM, so that calcNoteLen(tempo, length, dots) gives samples directly.
const noteLengthBase = 44100 * 60 * 4

// calcNoteLen returns the sample duration of a note of the given
// denominator (4 = quarter note, 8 = eighth, ...) at the given tempo (BPM),
// with `dots` additional dotted-duration halvings applied
// (1 + 1/2 + 1/4 + ... for `dots` terms beyond the base).
func calcNoteLen(tempoBPM, length int32, dots int) int64 {
	if length == 0 || tempoBPM == 0 {
		return 0
	}
	base := noteLengthBase / int64(length) / int64(tempoBPM)
	total := base
	half := base
	for i := 0; i < dots; i++ {
		half /= 2
		total += half
	}
	return total
}

// kind-bit flags set by `&` and `/` before a note. emitNoteCore treats
// either bit as sustaining (note-change, no own note-off) and clears both
// after every note; the bits are not shifted down to later notes.
const (
	kindSlur   = 1 << 0 // suppress the next implicit note-off
	kindLegato = 1 << 1 // emit note-change instead of note-on
)

// loopFrame is one entry of a channel's nestable loop stack ([ ... ]n, \).
type loopFrame struct {
	startOffset int // byte offset in MmlText to resume from
	count       int // remaining iterations, -1 for infinite until \break
	breakOffset int // offset of the \ break point, -1 if none seen yet
}

// ChannelCompileState is the local state machine the compiler walks a
// channel's MML with. Octave starts at 0 (not 4 - the reference source's
// surprising but deliberate default, inherited here verbatim), tempo
// defaults to 120 BPM, and default length to a quarter note at that tempo.
type ChannelCompileState struct {
	Octave      int32
	Tempo       int32
	DefaultLen  int32
	DefaultDots int
	Transpose   int32
	Detune      int32
	QuantizeA   int32
	QuantizeB   int32
	Time        int64
	Kind        uint8
	NoteOffMode int // 0: off-at-end, 1: off-before-on
	ActiveMacro [MaxMacroTypes]int32
	MacroActive [MaxMacroTypes]bool

	LoopStack []loopFrame

	PhaseGroup  string
	PhaseCursor int

	SampleListActive bool
	SampleListID     int32

	LastNoteLen int32 // length number of the last note; `^` does not read it

	// HasPendingOff defers the implicit note-off emitted after a note's
	// gate time so a following `^` tie can extend it instead of cutting
	// the note and re-triggering.
	HasPendingOff    bool
	PendingOffTime   int64
	PendingOffNote   int32
	PendingOffOctave int32
}

func newChannelCompileState() *ChannelCompileState {
	s := &ChannelCompileState{
		Octave:     0,
		Tempo:      120,
		DefaultLen: 4,
	}
	for i := range s.ActiveMacro {
		s.ActiveMacro[i] = -1
	}
	return s
}

// noteLength returns the duration, in samples, of a note with the given
// override length/dots, falling back to the channel's current default.
func (s *ChannelCompileState) noteLength(length int32, dots int, dotsGiven bool) int64 {
	l := length
	if l == 0 {
		l = s.DefaultLen
	}
	d := dots
	if !dotsGiven {
		d = s.DefaultDots
	}
	return calcNoteLen(s.Tempo, l, d)
}
