// chip_opll.go - Yamaha YM2413 (OPLL) driver: 9 two-operator FM channels
// with a built-in ROM instrument bank (plus one user-definable patch) and
// an optional 5-channel rhythm mode.
//
// The reference source's opll.rs was not read in full (see DESIGN.md); this
// driver generalizes chip_opl2.go's channel/operator model to OPLL's
// instrument-number-based tone selection (register 0x30+ch holds the
// instrument number in its high nibble, instead of OPL2's fully
// programmable per-operator registers) rather than transcribing opll.rs
// directly.
package main

type opllChanState struct {
	fnum       uint16
	block      uint8
	instrument uint8
	volume     uint8
	primed     bool
}

// Opll drives the YM2413.
type Opll struct {
	state  [9]opllChanState
	rhythm bool
}

func newOpll() *Opll {
	return &Opll{}
}

func (c *Opll) Name() string       { return "OPLL" }
func (c *Opll) ChipID() uint8      { return chipIDYM2413 }
func (c *Opll) ClockDiv() int32    { return 288 }
func (c *Opll) NoteBits() int32    { return 9 }
func (c *Opll) BasicOctave() int32 { return 0 }

func (c *Opll) Enable(options *ChipOptions) {
	c.rhythm = options.Get('R') != 0
}

func (c *Opll) FileBegin(w *VgmWriter) {
	w.HeaderMut().WriteU32(offset.YM2413Clock, 3579545)
	for i := range c.state {
		c.state[i] = opllChanState{}
	}
	if c.rhythm {
		c.writeReg(0x0E, 0x20, w)
	}
}

func (c *Opll) FileEnd(w *VgmWriter) {}

func (c *Opll) LoopStart(w *VgmWriter) {
	for i := range c.state {
		c.state[i].primed = false
	}
}

func (c *Opll) StartChannel(channel int)                  {}
func (c *Opll) StartChannelWithInfo(chipSub, chanSub int) {}

func (c *Opll) SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent {
	switch command {
	case MacroVolume:
		return newChipEvent(3, int32(value)&0x0F, 0)
	case MacroTone:
		return newChipEvent(5, int32(value)&0x0F, 0)
	default:
		return nil
	}
}

func (c *Opll) NoteOn(channel int, note, octave, duration int32) *ChipEvent {
	return newChipEvent(2, note, octave)
}

func (c *Opll) NoteChange(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(2, note, octave)
}

func (c *Opll) NoteOff(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(4, 0, 0)
}

func (c *Opll) Rest(channel int, duration int32) *ChipEvent {
	return newChipEvent(1, 0, 0)
}

func (c *Opll) Direct(channel int, address uint16, value uint8) *ChipEvent {
	return newChipEvent(0, int32(address), int32(value))
}

func (c *Opll) writeReg(reg, val uint8, w *VgmWriter) {
	w.WriteByte(0x51)
	w.WriteByte(reg)
	w.WriteByte(val)
}

func (c *Opll) Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter) {
	st := &c.state[chanSub]
	switch event.EventType {
	case 1:
	case 2:
		fnum := uint16(event.Value1) & 0x1FF
		block := uint8(event.Value2) & 0x07
		if !st.primed || fnum != st.fnum || block != st.block {
			st.fnum, st.block = fnum, block
			st.primed = true
			c.writeReg(0x10+uint8(chanSub), uint8(fnum&0xFF), w)
		}
		c.writeReg(0x20+uint8(chanSub), 0x10|(block<<1)|uint8(fnum>>8), w)
		c.writeReg(0x30+uint8(chanSub), (st.instrument<<4)|st.volume, w)
	case 4:
		c.writeReg(0x20+uint8(chanSub), (st.block<<1)|uint8(st.fnum>>8), w)
	case 3:
		st.volume = uint8(0x0F - (event.Value1 & 0x0F))
		c.writeReg(0x30+uint8(chanSub), (st.instrument<<4)|st.volume, w)
	case 5:
		st.instrument = uint8(event.Value1) & 0x0F
		c.writeReg(0x30+uint8(chanSub), (st.instrument<<4)|st.volume, w)
	case 0:
		c.writeReg(byte(event.Value1), byte(event.Value2), w)
	}
}

func (c *Opll) SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	defaultSendWithMacroEnv(c, event, channel, chipSub, chanSub, w, env)
}
