package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpn2NoteOnUsesPort0ForLowChannels(t *testing.T) {
	c := newOpn2()
	w := newVgmWriter()

	ev := c.NoteOn(0, 0, 4, 0)
	require.NotNil(t, ev)
	c.Send(ev, 0, 0, 0, w)

	require.NotEmpty(t, w.data)
	assert.Equal(t, byte(0x52), w.data[0], "channels 0-2 address FM port 0 (opcode 0x52)")
}

func TestOpn2NoteOnUsesPort1ForHighChannels(t *testing.T) {
	c := newOpn2()
	w := newVgmWriter()

	ev := c.NoteOn(0, 0, 4, 0)
	c.Send(ev, 0, 0, 3, w) // chanSub 3 -> local channel 0 of port 1

	require.NotEmpty(t, w.data)
	assert.Equal(t, byte(0x53), w.data[0], "channels 3-5 address FM port 1 (opcode 0x53)")
}

func TestOpn2NoteOnDedupsIdenticalPitch(t *testing.T) {
	c := newOpn2()
	w := newVgmWriter()

	ev := c.NoteOn(0, 0, 4, 0)
	c.Send(ev, 0, 0, 0, w)
	afterFirst := len(w.data)

	c.Send(c.NoteChange(0, 0, 4), 0, 0, 0, w)
	// Same pitch must skip the fnum/block rewrite but still re-key-on.
	assert.Less(t, len(w.data)-afterFirst, afterFirst)
}

func TestOpn2ToneEnvelopeAppliesOperatorRegisters(t *testing.T) {
	c := newOpn2()
	w := newVgmWriter()

	env := newMacroEnvStorage()
	e := env[MTTone][7]
	for _, v := range []int16{1, 2, 3, 4} { // op0: detune/multiply, TL, AR/DR, SR/RR
		e.Push(v)
	}

	toneEv := c.SetMacro(0, false, MacroTone, 7)
	require.NotNil(t, toneEv)
	c.SendWithMacroEnv(toneEv, 0, 0, 0, w, env)

	assert.NotEmpty(t, w.data, "activating a tone envelope must write operator registers")
}

func TestOpn2KeyOnOffOpcodes(t *testing.T) {
	c := newOpn2()
	w := newVgmWriter()

	c.Send(c.NoteOn(0, 0, 4, 0), 0, 0, 2, w)
	require.GreaterOrEqual(t, len(w.data), 3)
	last3 := w.data[len(w.data)-3:]
	assert.Equal(t, byte(0x52), last3[0])
	assert.Equal(t, byte(0x28), last3[1])
	assert.Equal(t, byte(0xF0|2), last3[2], "key-on for chanSub 2 sets all 4 operator bits")

	w2 := newVgmWriter()
	c.Send(c.NoteOff(0, 0, 4), 0, 0, 2, w2)
	require.Len(t, w2.data, 3)
	assert.Equal(t, byte(0x52), w2.data[0])
	assert.Equal(t, byte(0x28), w2.data[1])
	assert.Equal(t, byte(2), w2.data[2], "key-off on channel local index 2 clears all operator bits")
}
