package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroEnvelopePushAndStep(t *testing.T) {
	e := newMacroEnvelope()
	for _, v := range []int16{1, 2, 3, 4} {
		e.Push(v)
	}
	assert.Equal(t, 4, e.Len())

	v, ok := e.Step(0)
	require.True(t, ok)
	assert.Equal(t, int16(1), v)

	v, ok = e.Step(5) // past the end, no loop point set -> holds last value
	require.True(t, ok)
	assert.Equal(t, int16(4), v)
}

func TestMacroEnvelopeLoopsAtLoopPoint(t *testing.T) {
	e := newMacroEnvelope()
	e.Push(10)
	e.Push(20)
	e.SetLoopPoint()
	e.Push(30)
	e.Push(40)

	// Steps 0,1 are the lead-in; steps 2,3,4,5... cycle 30,40,30,40.
	seq := []int16{10, 20, 30, 40, 30, 40}
	for i, want := range seq {
		v, ok := e.Step(i)
		require.True(t, ok)
		assert.Equal(t, want, v, "step %d", i)
	}
}

func TestMacroEnvelopeEmptyStepFails(t *testing.T) {
	e := newMacroEnvelope()
	_, ok := e.Step(0)
	assert.False(t, ok)
}

func TestMacroEnvelopeResetClears(t *testing.T) {
	e := newMacroEnvelope()
	e.Push(1)
	e.SetLoopPoint()
	e.Push(2)
	e.Reset()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, int32(-1), e.LoopStart)
}

func TestMacroTypeNameRoundTrip(t *testing.T) {
	for _, kind := range []MacroType{MTVolume, MTPanning, MTTone, MTMultiply, MTSample, MTSampleList, MTMidi} {
		name := kind.DynName()
		if name == "" {
			continue
		}
		got, ok := macroTypeFromDynName(name)
		require.True(t, ok, "dyn name %q", name)
		assert.Equal(t, kind, got)
	}
}
