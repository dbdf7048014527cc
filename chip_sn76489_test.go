package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSn76489NoteOnWritesToneOnce(t *testing.T) {
	c := newSn76489()
	w := newVgmWriter()

	ev := c.NoteOn(0, 0, 4, 0)
	require.NotNil(t, ev)
	c.Send(ev, 0, 0, 0, w)
	first := len(w.data)
	assert.Greater(t, first, 0)

	// Repeating the identical note must not re-emit the tone write
	// (shadow-register dedup).
	c.Send(ev, 0, 0, 0, w)
	assert.Equal(t, first, len(w.data))
}

func TestSn76489NoteChangeRewritesToneOnChange(t *testing.T) {
	c := newSn76489()
	w := newVgmWriter()

	c.Send(c.NoteOn(0, 0, 4, 0), 0, 0, 0, w)
	before := len(w.data)

	c.Send(c.NoteChange(0, 2, 4), 0, 0, 0, w)
	assert.Greater(t, len(w.data), before, "tone change must emit new register writes")
}

func TestSn76489VolumeDedup(t *testing.T) {
	c := newSn76489()
	w := newVgmWriter()

	ev := c.SetMacro(0, false, MacroVolume, 4)
	require.NotNil(t, ev)
	c.Send(ev, 0, 0, 0, w)
	first := len(w.data)
	assert.Greater(t, first, 0)

	c.Send(ev, 0, 0, 0, w)
	assert.Equal(t, first, len(w.data), "repeated identical volume must not re-emit")
}

func TestSn76489SecondChipActivatesDualBit(t *testing.T) {
	c := newSn76489()
	w := newVgmWriter()
	c.FileBegin(w)

	// Exhaust the 4 channels of the first logical chip so the 5th
	// allocation spills into the dual-chip instance.
	for i := 0; i < 4; i++ {
		c.StartChannel(i)
	}
	c.StartChannel(4)
	c.FileEnd(w)

	clock := w.header.ReadU32(offset.SN76489Clock)
	assert.NotEqual(t, uint32(0), clock&0x40000000, "dual-chip bit must be set once a second instance is used")
}
