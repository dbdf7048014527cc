package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGd3RoundTrip(t *testing.T) {
	g := &Gd3Metadata{
		TitleEN:    "Test Song",
		TitleJP:    "テストソング",
		GameEN:     "Test Game",
		ComposerEN: "Someone",
		Date:       "2026-07-31",
		Converter:  "mmlvgm",
		Notes:      "line one\nline two",
	}
	block := buildGd3Block(g)

	require.True(t, len(block) > 12)
	got, end, err := parseGd3Block(block, 0)
	require.NoError(t, err)
	assert.Equal(t, len(block), end)
	assert.Equal(t, g.TitleEN, got.TitleEN)
	assert.Equal(t, g.TitleJP, got.TitleJP)
	assert.Equal(t, g.GameEN, got.GameEN)
	assert.Equal(t, g.ComposerEN, got.ComposerEN)
	assert.Equal(t, g.Date, got.Date)
	assert.Equal(t, g.Converter, got.Converter)
	assert.Equal(t, g.Notes, got.Notes)
}

func TestGd3SurrogatePairRoundTrip(t *testing.T) {
	g := &Gd3Metadata{TitleEN: "\U0001F3B5 song"} // musical note emoji, needs a surrogate pair
	block := buildGd3Block(g)
	got, _, err := parseGd3Block(block, 0)
	require.NoError(t, err)
	assert.Equal(t, g.TitleEN, got.TitleEN)
}

func TestGd3EmptyFieldsRoundTrip(t *testing.T) {
	g := &Gd3Metadata{}
	block := buildGd3Block(g)
	got, _, err := parseGd3Block(block, 0)
	require.NoError(t, err)
	assert.Equal(t, *g, *got)
}
