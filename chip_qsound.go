// chip_qsound.go - Capcom QSound driver: 16-voice PCM sample playback.
//
// Grounded on _examples/original_source/src/chips/qsound.rs, whose event
// kinds are encoded at the top of the uint16 range: 0xFFFC sample-select,
// 0xFFFD volume, 0xFFFB panning, 0xFFFA key-off, 0xFFF9 key-on, 0xFFF8
// pitch-change. The sample itself is selected separately via the active
// @S/@SL macro (SetMacro); NoteOn/NoteChange only forward the compiler's
// already-resolved pitch value.
package main

const (
	qsoundEvSampleSelect = 0xFFFC
	qsoundEvVolume       = 0xFFFD
	qsoundEvPanning      = 0xFFFB
	qsoundEvKeyOff       = 0xFFFA
	qsoundEvKeyOn        = 0xFFF9
	qsoundEvPitchChange  = 0xFFF8
	qsoundEvRest         = 0x0000
	qsoundEvDirect       = 0x0001
)

type qsoundChanState struct {
	sampleID uint8
	pitch    uint16
	volume   uint8
	pan      uint8
	primed   bool
}

// QSound drives the chip's 16 independent sample-playback channels.
type QSound struct {
	state [16]qsoundChanState
}

func newQSound() *QSound {
	return &QSound{}
}

func (c *QSound) Name() string       { return "QSOUND" }
func (c *QSound) ChipID() uint8      { return chipIDQSound }
func (c *QSound) ClockDiv() int32    { return 1 }
func (c *QSound) NoteBits() int32    { return 16 }
func (c *QSound) BasicOctave() int32 { return 4 }

func (c *QSound) Enable(options *ChipOptions) {}

func (c *QSound) FileBegin(w *VgmWriter) {
	w.HeaderMut().WriteU32(offset.QSoundClock, 4000000)
	for i := range c.state {
		c.state[i] = qsoundChanState{}
	}
}

func (c *QSound) FileEnd(w *VgmWriter) {}

func (c *QSound) LoopStart(w *VgmWriter) {
	for i := range c.state {
		c.state[i].primed = false
	}
}

func (c *QSound) StartChannel(channel int)                  {}
func (c *QSound) StartChannelWithInfo(chipSub, chanSub int) {}

func (c *QSound) SetMacro(channel int, dynamic bool, command MacroCommand, value int16) *ChipEvent {
	switch command {
	case MacroVolume:
		return newChipEvent(qsoundEvVolume, int32(value)&0xFF, 0)
	case MacroPanning:
		return newChipEvent(qsoundEvPanning, int32(value)&0xFF, 0)
	case MacroSample, MacroSampleList:
		return newChipEvent(qsoundEvSampleSelect, int32(value)&0xFF, 0)
	default:
		return nil
	}
}

// NoteOn resolves to a pitch-change plus key-on; the sample itself is
// selected separately via the active @S/@SL macro (SetMacro).
func (c *QSound) NoteOn(channel int, note, octave, duration int32) *ChipEvent {
	return newChipEvent(qsoundEvKeyOn, note, 0)
}

func (c *QSound) NoteChange(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(qsoundEvPitchChange, note, 0)
}

func (c *QSound) NoteOff(channel int, note, octave int32) *ChipEvent {
	return newChipEvent(qsoundEvKeyOff, 0, 0)
}

func (c *QSound) Rest(channel int, duration int32) *ChipEvent {
	return newChipEvent(qsoundEvRest, 0, 0)
}

func (c *QSound) Direct(channel int, address uint16, value uint8) *ChipEvent {
	return newChipEvent(qsoundEvDirect, int32(address), int32(value))
}

func (c *QSound) writeReg(reg uint16, val uint8, w *VgmWriter) {
	w.WriteByte(0xC4)
	w.WriteByte(byte(reg >> 8))
	w.WriteByte(byte(reg))
	w.WriteByte(val)
}

func (c *QSound) Send(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter) {
	st := &c.state[chanSub]
	regBase := uint16(chanSub) * 8
	switch event.EventType {
	case qsoundEvRest:
	case qsoundEvSampleSelect:
		id := uint8(event.Value1)
		if id != st.sampleID {
			st.sampleID = id
			c.writeReg(regBase+0, id, w)
		}
	case qsoundEvKeyOn, qsoundEvPitchChange:
		pitch := uint16(event.Value1)
		if !st.primed || pitch != st.pitch {
			st.pitch = pitch
			st.primed = true
			c.writeReg(regBase+1, uint8(pitch&0xFF), w)
			c.writeReg(regBase+2, uint8(pitch>>8), w)
		}
		if event.EventType == qsoundEvKeyOn {
			c.writeReg(regBase+3, 1, w) // key-on trigger
		}
	case qsoundEvKeyOff:
		c.writeReg(regBase+3, 0, w)
	case qsoundEvVolume:
		vol := uint8(event.Value1)
		if vol != st.volume {
			st.volume = vol
			c.writeReg(regBase+4, vol, w)
		}
	case qsoundEvPanning:
		pan := uint8(event.Value1)
		if pan != st.pan {
			st.pan = pan
			c.writeReg(regBase+5, pan, w)
		}
	case qsoundEvDirect:
		c.writeReg(uint16(event.Value1), uint8(event.Value2), w)
	}
}

func (c *QSound) SendWithMacroEnv(event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	defaultSendWithMacroEnv(c, event, channel, chipSub, chanSub, w, env)
}
