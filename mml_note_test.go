package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteTablePeriodBasedDecreasesWithPitch(t *testing.T) {
	var nt NoteTable
	nt.Calculate(-16, 10, defaultNoteFreq(), defaultBaseFreq)
	// Period-based hardware: higher pitch -> smaller period value.
	for i := 1; i < noteTableSize; i++ {
		assert.LessOrEqual(t, nt.Get(i), nt.Get(i-1), "index %d", i)
	}
}

func TestNoteTableFrequencyBasedIncreasesWithPitch(t *testing.T) {
	var nt NoteTable
	nt.Calculate(64, 20, defaultNoteFreq(), defaultBaseFreq)
	for i := 1; i < noteTableSize; i++ {
		assert.GreaterOrEqual(t, nt.Get(i), nt.Get(i-1), "index %d", i)
	}
}

func TestNoteTableFitsBitWidth(t *testing.T) {
	var nt NoteTable
	nt.Calculate(-16, 10, defaultNoteFreq(), defaultBaseFreq)
	limit := int64(1) << 10
	for i := 0; i < noteTableSize; i++ {
		assert.Less(t, nt.Get(i), limit)
		assert.GreaterOrEqual(t, nt.Get(i), int64(0))
	}
}

func TestNoteTableGetWraps(t *testing.T) {
	var nt NoteTable
	nt.Calculate(-16, 10, defaultNoteFreq(), defaultBaseFreq)
	assert.Equal(t, nt.Get(0), nt.Get(noteTableSize))
}
