// mml_envelope.go - macro envelope storage.
//
// Grounded on _examples/original_source/src/compiler/envelope.rs.
package main

// MaxEnvelopeData bounds the number of entries a single envelope may hold;
// writes past this length are silently truncated (§4.2).
const MaxEnvelopeData = 2048

// MaxMacroTypes is the number of distinct macro-kind storage banks.
const MaxMacroTypes = 13

// MacroType enumerates the macro-envelope kinds, matching the reference
// source's MC_* constants.
type MacroType int

const (
	MTVolume MacroType = iota
	MTPanning
	MTTone
	MTOption
	MTArpeggio
	MTGlobal
	MTMultiply
	MTWaveform
	MTModWaveform
	MTVolumeEnv
	MTSample
	MTSampleList
	MTMidi
)

// StatName returns the static (immediate-set) command name, or "" if the
// kind has none.
func (m MacroType) StatName() string {
	switch m {
	case MTVolume:
		return "v"
	case MTPanning:
		return "P"
	case MTTone:
		return "@"
	case MTGlobal:
		return "@G"
	case MTMultiply:
		return "M"
	case MTWaveform:
		return "@W"
	case MTModWaveform:
		return "@WM"
	case MTVolumeEnv:
		return "ve"
	case MTSample:
		return "@S"
	case MTSampleList:
		return "@SL"
	default:
		return ""
	}
}

// DynName returns the dynamic (envelope-definition) command name, or "" if
// the kind has none.
func (m MacroType) DynName() string {
	switch m {
	case MTVolume:
		return "@v"
	case MTPanning:
		return "@P"
	case MTTone:
		return "@@"
	case MTOption:
		return "@x"
	case MTArpeggio:
		return "@EN"
	case MTMultiply:
		return "@M"
	case MTWaveform:
		return "@W"
	case MTSample:
		return "@S"
	case MTSampleList:
		return "@SL"
	case MTMidi:
		return "@MIDI"
	default:
		return ""
	}
}

// macroTypeFromDynName parses a dynamic envelope-definition command name.
func macroTypeFromDynName(name string) (MacroType, bool) {
	switch name {
	case "@v":
		return MTVolume, true
	case "@P":
		return MTPanning, true
	case "@@":
		return MTTone, true
	case "@x":
		return MTOption, true
	case "@EN":
		return MTArpeggio, true
	case "@M":
		return MTMultiply, true
	case "@W":
		return MTWaveform, true
	case "@S":
		return MTSample, true
	case "@SL":
		return MTSampleList, true
	case "@MIDI":
		return MTMidi, true
	default:
		return 0, false
	}
}

// macroTypeFromStatName parses a static/immediate command name.
func macroTypeFromStatName(name string) (MacroType, bool) {
	switch name {
	case "v":
		return MTVolume, true
	case "P":
		return MTPanning, true
	case "@":
		return MTTone, true
	case "@G":
		return MTGlobal, true
	case "M":
		return MTMultiply, true
	case "@W":
		return MTWaveform, true
	case "@WM":
		return MTModWaveform, true
	case "ve":
		return MTVolumeEnv, true
	case "@S":
		return MTSample, true
	case "@SL":
		return MTSampleList, true
	default:
		return 0, false
	}
}

// MacroEnvelope is one envelope definition: a sequence of signed 16-bit
// values, an optional loop start, and an optional text label (used by
// Sample envelopes to name a source file).
type MacroEnvelope struct {
	LoopStart int32 // -1: no loop
	LoopEnd   int32 // also the data length
	Data      []int16
	Text      string
}

func newMacroEnvelope() *MacroEnvelope {
	return &MacroEnvelope{LoopStart: -1, Data: make([]int16, 0, 64)}
}

// Reset clears the envelope back to empty, for redefinition.
func (e *MacroEnvelope) Reset() {
	e.LoopStart = -1
	e.LoopEnd = 0
	e.Data = e.Data[:0]
	e.Text = ""
}

// Len returns the number of entries in the envelope.
func (e *MacroEnvelope) Len() int { return int(e.LoopEnd) }

// IsEmpty reports whether the envelope has no entries.
func (e *MacroEnvelope) IsEmpty() bool { return e.LoopEnd == 0 }

// Push appends value, silently truncating once MaxEnvelopeData is reached.
func (e *MacroEnvelope) Push(value int16) {
	if int(e.LoopEnd) >= MaxEnvelopeData {
		return
	}
	if len(e.Data) <= int(e.LoopEnd) {
		e.Data = append(e.Data, value)
	} else {
		e.Data[e.LoopEnd] = value
	}
	e.LoopEnd++
}

// SetLoopPoint marks the current tail as the loop-back target.
func (e *MacroEnvelope) SetLoopPoint() {
	e.LoopStart = e.LoopEnd
}

// At returns the value at index, and whether index was in range.
func (e *MacroEnvelope) At(index int) (int16, bool) {
	if index < 0 || index >= len(e.Data) {
		return 0, false
	}
	return e.Data[index], true
}

// Last returns the final entry, and whether the envelope is non-empty.
func (e *MacroEnvelope) Last() (int16, bool) {
	if e.LoopEnd <= 0 {
		return 0, false
	}
	return e.At(int(e.LoopEnd) - 1)
}

// Step returns the value at the given step count, wrapping into the loop
// region once the step runs past LoopEnd. Non-looping envelopes hold their
// last value once exhausted. Used by the compiler's per-tick envelope
// materialization (§4.3 step d).
func (e *MacroEnvelope) Step(step int) (int16, bool) {
	if e.IsEmpty() {
		return 0, false
	}
	idx := step
	if idx >= int(e.LoopEnd) {
		if e.LoopStart < 0 {
			idx = int(e.LoopEnd) - 1
		} else {
			span := int(e.LoopEnd) - int(e.LoopStart)
			if span <= 0 {
				idx = int(e.LoopEnd) - 1
			} else {
				idx = int(e.LoopStart) + (idx-int(e.LoopEnd))%span
			}
		}
	}
	return e.At(idx)
}

// MacroEnvStorage indexes every envelope by [kind][id 0..255].
type MacroEnvStorage [MaxMacroTypes][256]*MacroEnvelope

func newMacroEnvStorage() *MacroEnvStorage {
	var s MacroEnvStorage
	for k := range s {
		for id := range s[k] {
			s[k][id] = newMacroEnvelope()
		}
	}
	return &s
}
