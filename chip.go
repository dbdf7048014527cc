// chip.go - chip driver contract and registry.
//
// Grounded on _examples/original_source/src/chips/mod.rs.
package main

// ChipOptions is a mapping from a single-character option key to a signed
// integer, consulted at chip enablement time. Boolean toggles are stored as
// 0/1; unset keys read back as 0.
type ChipOptions struct {
	values map[byte]int32
}

func newChipOptions() *ChipOptions {
	return &ChipOptions{values: make(map[byte]int32)}
}

// Get returns the value bound to key, or 0 if unset.
func (o *ChipOptions) Get(key byte) int32 {
	if o == nil {
		return 0
	}
	return o.values[key]
}

func (o *ChipOptions) set(key byte, value int32) {
	o.values[key] = value
}

// MacroCommand names the macro kinds a channel can activate against a chip
// driver via set_macro. These mirror MacroType (mml_envelope.go) but are
// kept as a separate type because not every MacroType maps to a driver
// command (Arpeggio and VolumeEnv are handled entirely by the compiler).
type MacroCommand int

const (
	MacroVolume MacroCommand = iota
	MacroPanning
	MacroTone
	MacroOption
	MacroGlobal
	MacroMultiply
	MacroWaveform
	MacroModWaveform
	MacroSample
	MacroSampleList
	MacroMidi
)

// Chip id bytes, matching the VGM format's per-chip command/clock-field
// assignment (SPEC_FULL.md §6).
const (
	chipIDSN76489 = 0x00
	chipIDYM2413  = 0x01
	chipIDYM2612  = 0x02
	chipIDYM3812  = 0x05
	chipIDYMF262  = 0x08
	chipIDAY8910  = 0x12
	chipIDGBDMG   = 0x13
	chipIDNESAPU  = 0x14
	chipIDHuC6280 = 0x17
	chipIDPokey   = 0x19
	chipIDQSound  = 0x1A
)

// SoundChip is the uniform contract every chip driver implements
// (SPEC_FULL.md §4.5).
type SoundChip interface {
	Name() string
	ChipID() uint8
	ClockDiv() int32
	NoteBits() int32
	BasicOctave() int32

	Enable(options *ChipOptions)

	FileBegin(w *VgmWriter)
	FileEnd(w *VgmWriter)
	LoopStart(w *VgmWriter)

	StartChannel(channel int)
	StartChannelWithInfo(chipSub, chanSub int)

	SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent
	NoteOn(channel int, note, octave, duration int32) *ChipEvent
	NoteChange(channel int, note, octave int32) *ChipEvent
	NoteOff(channel int, note, octave int32) *ChipEvent
	Rest(channel int, duration int32) *ChipEvent
	Direct(channel int, address uint16, value uint8) *ChipEvent

	Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter)
	SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage)
}

// baseSend is an empty type that no driver embeds. Drivers whose
// send_with_macro_env is identical to send call defaultSendWithMacroEnv
// instead (SPEC_FULL.md §4.5: "the default implementation forwards to send").
type baseSend struct{}

// chipFactories is the closed driver registry, matching the reference
// source's create_chip match-by-name factory.
var chipFactories = map[string]func() SoundChip{
	"PSG":     func() SoundChip { return newSn76489() },
	"SN76489": func() SoundChip { return newSn76489() },
	"T6W28":   func() SoundChip { return newT6w28() },
	"AY8910":  func() SoundChip { return newAy8910(false) },
	"AY8930":  func() SoundChip { return newAy8910(true) },
	"APU":     func() SoundChip { return newNesApu() },
	"FAMICOM": func() SoundChip { return newNesApu() },
	"DMG":     func() SoundChip { return newDmg() },
	"GAMEBOY": func() SoundChip { return newDmg() },
	"HUC6280": func() SoundChip { return newHuC6280() },
	"POKEY":   func() SoundChip { return newPokey() },
	"OPLL":    func() SoundChip { return newOpll() },
	"YM2413":  func() SoundChip { return newOpll() },
	"OPL2":    func() SoundChip { return newOpl2() },
	"YM3812":  func() SoundChip { return newOpl2() },
	"OPL3":    func() SoundChip { return newOpl3() },
	"YMF262":  func() SoundChip { return newOpl3() },
	"OPN2":    func() SoundChip { return newOpn2() },
	"YM2612":  func() SoundChip { return newOpn2() },
	"QSOUND":  func() SoundChip { return newQSound() },
}

// NewChip constructs a driver by #EX- chip name, case-sensitive to match the
// directive grammar (§4.8).
func NewChip(name string) (SoundChip, error) {
	factory, ok := chipFactories[name]
	if !ok {
		return nil, &UnknownChipError{Name: name}
	}
	return factory(), nil
}

// ListChips returns the canonical (non-alias) chip names, in a stable order,
// for the -L CLI flag.
func ListChips() []string {
	return []string{
		"PSG", "T6W28", "AY8910", "AY8930", "APU", "DMG", "HUC6280",
		"POKEY", "OPLL", "OPL2", "OPL3", "OPN2", "QSOUND",
	}
}
