// chip_opl2.go - Yamaha YM3812 (OPL2) driver: 9 two-operator FM channels,
// with an optional 5-channel rhythm mode borrowing the top 3 channels'
// operators for hi-hat/cymbal/tom-tom/snare/bass-drum percussion.
//
// Grounded on _examples/original_source/src/chips/opl2.rs. Note/octave
// resolution happens once, centrally, in the compiler (mml_compile_channel.go
// resolveNote); this driver only forwards the resolved fnum and block it is
// handed.
package main

// operOffset maps an FM channel (0-8) to its modulator operator's register
// offset; the carrier operator is always 3 higher.
var operOffset = [9]uint8{0, 1, 2, 8, 9, 10, 16, 17, 18}

type opl2ChanState struct {
	fnum    uint16
	block   uint8
	keyOn   bool
	feedCon uint8
	primed  bool
}

// Opl2 drives the AdLib/Sound Blaster YM3812.
type Opl2 struct {
	state  [9]opl2ChanState
	rhythm bool
}

func newOpl2() *Opl2 {
	return &Opl2{}
}

func (c *Opl2) Name() string       { return "OPL2" }
func (c *Opl2) ChipID() uint8      { return chipIDYM3812 }
func (c *Opl2) ClockDiv() int32    { return 288 }
func (c *Opl2) NoteBits() int32    { return 10 }
func (c *Opl2) BasicOctave() int32 { return 0 }

func (c *Opl2) Enable(options *ChipOptions) {
	c.rhythm = options.Get('R') != 0
}

func (c *Opl2) FileBegin(w *VgmWriter) {
	w.HeaderMut().WriteU32(offset.YM3812Clock, 3579545)
	for i := range c.state {
		c.state[i] = opl2ChanState{}
	}
	c.writeReg(0x01, 0x20, w) // enable waveform select
	if c.rhythm {
		c.writeReg(0xBD, 0x20, w) // rhythm mode on
	}
}

func (c *Opl2) FileEnd(w *VgmWriter) {}

func (c *Opl2) LoopStart(w *VgmWriter) {
	for i := range c.state {
		c.state[i].primed = false
	}
}

func (c *Opl2) StartChannel(channel int)                  {}
func (c *Opl2) StartChannelWithInfo(chipSub, chanSub int) {}

func (c *Opl2) SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent {
	switch command {
	case MacroVolume:
		return newChipEvent(3, int32(value)&0x3F, 0)
	case MacroTone:
		return newChipEvent(5, int32(value)&0xFF, 0)
	default:
		return nil
	}
}

func (c *Opl2) NoteOn(channel int, note, octave, duration int32) *ChipEvent {
	return newChipEvent(2, note, octave)
}

func (c *Opl2) NoteChange(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(2, note, octave)
}

func (c *Opl2) NoteOff(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(4, 0, 0)
}

func (c *Opl2) Rest(channel int, duration int32) *ChipEvent {
	return newChipEvent(1, 0, 0)
}

func (c *Opl2) Direct(channel int, address uint16, value uint8) *ChipEvent {
	return newChipEvent(0, int32(address), int32(value))
}

func (c *Opl2) writeReg(reg, val uint8, w *VgmWriter) {
	w.WriteByte(0x5A)
	w.WriteByte(reg)
	w.WriteByte(val)
}

func (c *Opl2) Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter) {
	st := &c.state[chanSub]
	switch event.EventType {
	case 1: // rest
	case 2: // note on/change
		fnum := uint16(event.Value1) & 0x3FF
		block := uint8(event.Value2) & 0x07
		if !st.primed || fnum != st.fnum || block != st.block {
			st.fnum, st.block = fnum, block
			st.primed = true
			c.writeReg(0xA0+uint8(chanSub), uint8(fnum&0xFF), w)
		}
		st.keyOn = true
		c.writeReg(0xB0+uint8(chanSub), 0x20|(block<<2)|uint8(fnum>>8), w)
	case 4: // note off
		st.keyOn = false
		c.writeReg(0xB0+uint8(chanSub), (st.block<<2)|uint8(st.fnum>>8), w)
	case 3: // volume: set both operators' total level (attenuated, so invert)
		tl := uint8(0x3F - (event.Value1 & 0x3F))
		base := operOffset[chanSub]
		c.writeReg(0x40+base, tl, w)
		c.writeReg(0x40+base+3, tl, w)
	case 0: // direct
		w.WriteByte(0x5A)
		w.WriteByte(byte(event.Value1))
		w.WriteByte(byte(event.Value2))
	}
}

// SendWithMacroEnv applies a Tone macro as a one-shot instrument load: the
// envelope's data is interpreted as the classic 11-byte OPL instrument
// layout (op1 AM/VIB/EGT/KSR/Mult, op2 same, op1 KSL/TL, op2 KSL/TL, op1
// AR/DR, op2 AR/DR, op1 SR/RR, op2 SR/RR, op1 waveform, op2 waveform,
// feedback/connection), written across the channel's modulator and carrier
// operator registers.
func (c *Opl2) SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	if event.EventType != 5 {
		defaultSendWithMacroEnv(c, event, channel, chipSub, chanSub, w, env)
		return
	}
	e := env[MTTone][uint8(event.Value1)]
	base := operOffset[chanSub]
	regs := [2]uint8{base, base + 3}
	for op, reg := range regs {
		if v, ok := e.At(op); ok {
			c.writeReg(0x20+reg, uint8(v), w)
		}
		if v, ok := e.At(2 + op); ok {
			c.writeReg(0x40+reg, uint8(v), w)
		}
		if v, ok := e.At(4 + op); ok {
			c.writeReg(0x60+reg, uint8(v), w)
		}
		if v, ok := e.At(6 + op); ok {
			c.writeReg(0x80+reg, uint8(v), w)
		}
		if v, ok := e.At(8 + op); ok {
			c.writeReg(0xE0+reg, uint8(v), w)
		}
	}
	if v, ok := e.At(10); ok {
		st := &c.state[chanSub]
		st.feedCon = uint8(v)
		c.writeReg(0xC0+uint8(chanSub), st.feedCon, w)
	}
}
