// chip_nesapu.go - Ricoh 2A03/NES APU driver: 2 pulse channels, 1 triangle,
// 1 noise channel.
//
// Grounded on _examples/original_source/src/chips/nes_apu.rs, which encodes
// its event kinds as the top of the uint16 range (0xFFFC note-off, 0xFFFD
// duty/volume, 0xFFFE note-change, 0xFFFF note-on) rather than small
// ascending codes; this driver keeps that encoding rather than renumbering
// it, since the reference source's shadow-register logic branches directly
// on those constants.
package main

const (
	nesApuEvNoteOff    = 0xFFFC
	nesApuEvDutyVolume = 0xFFFD
	nesApuEvNoteChange = 0xFFFE
	nesApuEvNoteOn     = 0xFFFF
	nesApuEvRest       = 0x0000
	nesApuEvDirect     = 0x0001
)

// nesApuChanBase maps chan_sub (0=pulse1,1=pulse2,2=triangle,3=noise) to its
// register base offset within the $4000-$400F block the 0xB4 VGM command
// addresses.
var nesApuChanBase = [4]uint8{0x00, 0x04, 0x08, 0x0C}

type nesApuChanState struct {
	period     uint16
	dutyVolume uint8
	primed     bool
}

// NesApu drives the Famicom/NES 2A03 APU's 4 audio-generating channels
// (the DMC sample channel is out of scope).
type NesApu struct {
	state [4]nesApuChanState
}

func newNesApu() *NesApu {
	return &NesApu{}
}

func (c *NesApu) Name() string       { return "APU" }
func (c *NesApu) ChipID() uint8      { return chipIDNESAPU }
func (c *NesApu) ClockDiv() int32    { return 1789772 }
func (c *NesApu) NoteBits() int32    { return 11 }
func (c *NesApu) BasicOctave() int32 { return 2 }

func (c *NesApu) Enable(options *ChipOptions) {}

func (c *NesApu) FileBegin(w *VgmWriter) {
	w.HeaderMut().WriteU32(offset.NESAPUClock, 1789772)
	for i := range c.state {
		c.state[i] = nesApuChanState{}
	}
}

func (c *NesApu) FileEnd(w *VgmWriter) {}

func (c *NesApu) LoopStart(w *VgmWriter) {
	for i := range c.state {
		c.state[i].primed = false
	}
}

func (c *NesApu) StartChannel(channel int) {}
func (c *NesApu) StartChannelWithInfo(chipSub, chanSub int) {}

func (c *NesApu) SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent {
	switch command {
	case MacroVolume:
		return newChipEvent(nesApuEvDutyVolume, int32(value)&0x0F, 0)
	default:
		return nil
	}
}

func (c *NesApu) NoteOn(channel int, note, octave, duration int32) *ChipEvent {
	return newChipEvent(nesApuEvNoteOn, note, 0)
}

func (c *NesApu) NoteChange(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(nesApuEvNoteChange, note, 0)
}

func (c *NesApu) NoteOff(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(nesApuEvNoteOff, 0, 0)
}

func (c *NesApu) Rest(channel int, duration int32) *ChipEvent {
	return newChipEvent(nesApuEvRest, 0, 0)
}

func (c *NesApu) Direct(channel int, address uint16, value uint8) *ChipEvent {
	return newChipEvent(nesApuEvDirect, int32(address), int32(value))
}

func (c *NesApu) writeReg(base, regOffset, val uint8, w *VgmWriter) {
	w.WriteByte(0xB4)
	w.WriteByte(base + regOffset)
	w.WriteByte(val)
}

func (c *NesApu) Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter) {
	st := &c.state[chanSub]
	base := nesApuChanBase[chanSub]
	switch event.EventType {
	case nesApuEvRest:
	case nesApuEvNoteOn, nesApuEvNoteChange:
		period := uint16(event.Value1) & 0x07FF
		if !st.primed || period != st.period {
			st.period = period
			st.primed = true
			c.writeReg(base, 2, uint8(period&0xFF), w)
			c.writeReg(base, 3, uint8((period>>8)&0x07)|0x08, w) // bit3 set: length-counter load + restart
		}
	case nesApuEvNoteOff:
		c.writeReg(base, 0, 0x30, w) // volume 0, constant-volume mode
	case nesApuEvDutyVolume:
		dv := uint8(event.Value1)&0x0F | 0x30
		if dv != st.dutyVolume {
			st.dutyVolume = dv
			c.writeReg(base, 0, dv, w)
		}
	case nesApuEvDirect:
		w.WriteByte(0xB4)
		w.WriteByte(byte(event.Value1))
		w.WriteByte(byte(event.Value2))
	}
}

func (c *NesApu) SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	defaultSendWithMacroEnv(c, event, channel, chipSub, chanSub, w, env)
}
