// chip_huc6280.go - Hudson Soft HuC6280 (PC Engine) driver: 6 wavetable
// channels, of which channel 1 can frequency-modulate channel 0, and
// channels 4-5 can switch into noise mode.
//
// Grounded on _examples/original_source/src/chips/huc6280.rs. Register
// writes go through a channel-select register (0x00) shared by all 6
// channels, so every other register write first re-selects the channel if
// it differs from the last one written (mem_write's channel-select-first
// caching).
package main

const (
	huc6280EvDirect         = 0
	huc6280EvRest           = 1
	huc6280EvNote           = 2
	huc6280EvVolume         = 3
	huc6280EvPan            = 4
	huc6280EvFMTone         = 5
	huc6280EvFMMultiplier   = 6
	huc6280EvModWaveform    = 7
	huc6280EvCarrierWaveform = 8
	huc6280EvGlobalStereo   = 9
)

type huc6280ChanState struct {
	freq    uint16
	volume  uint8
	pan     uint8
	control uint8
	noise   bool
	primed  bool
}

// HuC6280 drives the PC Engine's 6-channel wavetable PSG.
type HuC6280 struct {
	lastChan int
	haveLast bool
	state    [6]huc6280ChanState
}

func newHuC6280() *HuC6280 {
	return &HuC6280{}
}

func (c *HuC6280) Name() string       { return "HUC6280" }
func (c *HuC6280) ChipID() uint8      { return chipIDHuC6280 }
func (c *HuC6280) ClockDiv() int32    { return 3072 }
func (c *HuC6280) NoteBits() int32    { return 12 }
func (c *HuC6280) BasicOctave() int32 { return 4 }

func (c *HuC6280) Enable(options *ChipOptions) {}

func (c *HuC6280) FileBegin(w *VgmWriter) {
	w.HeaderMut().WriteU32(offset.HuC6280Clock, 3579545)
	c.haveLast = false
	for i := range c.state {
		c.state[i] = huc6280ChanState{}
	}
}

func (c *HuC6280) FileEnd(w *VgmWriter) {}

func (c *HuC6280) LoopStart(w *VgmWriter) {
	c.haveLast = false
	for i := range c.state {
		c.state[i].primed = false
	}
}

func (c *HuC6280) StartChannel(channel int)                 {}
func (c *HuC6280) StartChannelWithInfo(chipSub, chanSub int) {}

func (c *HuC6280) SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent {
	switch command {
	case MacroVolume:
		return newChipEvent(huc6280EvVolume, int32(value)&0x1F, 0)
	case MacroPanning:
		return newChipEvent(huc6280EvPan, int32(value), 0)
	case MacroTone:
		return newChipEvent(huc6280EvFMTone, int32(value), 0)
	case MacroMultiply:
		return newChipEvent(huc6280EvFMMultiplier, int32(value), 0)
	case MacroModWaveform:
		return newChipEvent(huc6280EvModWaveform, int32(value), 0)
	case MacroWaveform:
		return newChipEvent(huc6280EvCarrierWaveform, int32(value), 0)
	case MacroGlobal:
		return newChipEvent(huc6280EvGlobalStereo, int32(value), 0)
	default:
		return nil
	}
}

func (c *HuC6280) NoteOn(channel int, note, octave, duration int32) *ChipEvent {
	return newChipEvent(huc6280EvNote, note, 1)
}

func (c *HuC6280) NoteChange(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(huc6280EvNote, note, 0)
}

func (c *HuC6280) NoteOff(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(huc6280EvNote, -1, 0)
}

func (c *HuC6280) Rest(channel int, duration int32) *ChipEvent {
	return newChipEvent(huc6280EvRest, 0, 0)
}

func (c *HuC6280) Direct(channel int, address uint16, value uint8) *ChipEvent {
	return newChipEvent(huc6280EvDirect, int32(address), int32(value))
}

// selectChannel writes the channel-select register only if chanSub differs
// from the last channel addressed.
func (c *HuC6280) selectChannel(chanSub int, w *VgmWriter) {
	if c.haveLast && c.lastChan == chanSub {
		return
	}
	w.WriteByte(0xB9)
	w.WriteByte(0x00)
	w.WriteByte(uint8(chanSub))
	c.lastChan = chanSub
	c.haveLast = true
}

func (c *HuC6280) writeReg(chanSub int, reg, val uint8, w *VgmWriter) {
	c.selectChannel(chanSub, w)
	w.WriteByte(0xB9)
	w.WriteByte(reg)
	w.WriteByte(val)
}

func (c *HuC6280) Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter) {
	st := &c.state[chanSub]
	switch event.EventType {
	case huc6280EvRest:
	case huc6280EvNote:
		if event.Value1 < 0 {
			st.control &^= 0x80
			c.writeReg(chanSub, 0x04, st.control, w)
			return
		}
		freq := uint16(event.Value1) & 0x0FFF
		if !st.primed || freq != st.freq {
			st.freq = freq
			st.primed = true
			c.writeReg(chanSub, 0x02, uint8(freq&0xFF), w)
			c.writeReg(chanSub, 0x03, uint8((freq>>8)&0x0F), w)
		}
		st.control |= 0x80 | 0x40 // channel enable + DDA
		c.writeReg(chanSub, 0x04, st.control, w)
	case huc6280EvVolume:
		vol := uint8(event.Value1) & 0x1F
		if vol != st.volume {
			st.volume = vol
			c.writeReg(chanSub, 0x01, vol, w)
		}
	case huc6280EvPan:
		pan := uint8(event.Value1)
		if pan != st.pan {
			st.pan = pan
			c.writeReg(chanSub, 0x05, pan, w)
		}
	case huc6280EvFMTone:
		// channel 1 FM-modulates channel 0; the tone value is its frequency.
		if chanSub == 1 {
			c.writeReg(1, 0x02, uint8(event.Value1&0xFF), w)
			c.writeReg(1, 0x03, uint8((event.Value1>>8)&0x0F), w)
		}
	case huc6280EvFMMultiplier:
		if chanSub == 0 {
			c.writeReg(0, 0x09, uint8(event.Value1), w)
		}
	case huc6280EvModWaveform, huc6280EvCarrierWaveform:
		// handled in SendWithMacroEnv, which has access to the envelope
		// table this waveform id names.
	case huc6280EvGlobalStereo:
		w.WriteByte(0xB9)
		w.WriteByte(0x08)
		w.WriteByte(uint8(event.Value1))
	case huc6280EvDirect:
		w.WriteByte(0xB9)
		w.WriteByte(byte(event.Value1))
		w.WriteByte(byte(event.Value2))
	}
}

// SendWithMacroEnv handles waveform-table writes: the wave shape named by
// the envelope id is copied into the channel's waveform RAM by writing 0 to
// register 0x04 and then the envelope's entries (its LoopEnd length, capped
// at 32, low 5 bits each) to the data register 0x06.
func (c *HuC6280) SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	switch event.EventType {
	case huc6280EvModWaveform, huc6280EvCarrierWaveform:
		target := chanSub
		if event.EventType == huc6280EvModWaveform {
			target = 1
		}
		kind := MTWaveform
		e := env[kind][uint8(event.Value1)]
		c.writeReg(target, 0x04, 0x00, w) // disable channel while loading waveform
		n := e.Len()
		if n > 32 {
			n = 32
		}
		for i := 0; i < n; i++ {
			v, _ := e.At(i)
			c.writeReg(target, 0x06, uint8(v)&0x1F, w)
		}
	default:
		defaultSendWithMacroEnv(c, event, channel, chipSub, chanSub, w, env)
	}
}
