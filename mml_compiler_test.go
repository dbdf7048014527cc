package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	l := log.New(discardWriter{})
	l.SetLevel(log.FatalLevel)
	return l
}

// discardWriter throws away everything written to it, keeping test output
// free of diagnostic noise.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func compileString(t *testing.T, mml string) *VgmDump {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.vgm")

	c := NewCompiler(testLogger())
	err := c.Compile(strings.NewReader(mml), out)
	require.NoError(t, err)

	dump, err := ReadVgmFile(out)
	require.NoError(t, err)
	return dump
}

func TestCompileSingleChannelNoteStream(t *testing.T) {
	dump := compileString(t, "#EX-PSG A\nA cdefgab\n")
	assert.NotEmpty(t, dump.Commands)
	assert.Greater(t, dump.TotalSamples, uint32(0))
}

func TestCompileRestAdvancesTimeWithoutCommands(t *testing.T) {
	withRest := compileString(t, "#EX-PSG A\nA r1c\n")
	withoutRest := compileString(t, "#EX-PSG A\nA c1c\n")
	assert.Equal(t, withoutRest.TotalSamples, withRest.TotalSamples)
}

func TestCompileLoopMarkerSetsLoopOffset(t *testing.T) {
	dump := compileString(t, "#EX-PSG A\nA cL def\n")
	assert.Greater(t, dump.LoopOffset, uint32(0))
	assert.Greater(t, dump.LoopSamples, uint32(0))
}

func TestCompileGd3MetadataRoundTrips(t *testing.T) {
	dump := compileString(t, "#TITLE My Song\n#GAME My Game\n#EX-PSG A\nA c\n")
	require.NotNil(t, dump.GD3)
	assert.Equal(t, "My Song", dump.GD3.TitleEN)
	assert.Equal(t, "My Game", dump.GD3.GameEN)
}

func TestCompileTwoChannelsOnDistinctChips(t *testing.T) {
	dump := compileString(t, "#EX-PSG A\n#EX-OPN2 B\nA cde\nB cde\n")
	assert.NotEmpty(t, dump.Commands)

	sawPSG, sawOPN2 := false, false
	for _, cmd := range dump.Commands {
		switch cmd.Opcode {
		case 0x50:
			sawPSG = true
		case 0x52, 0x53:
			sawOPN2 = true
		}
	}
	assert.True(t, sawPSG, "expected an SN76489 (0x50) command")
	assert.True(t, sawOPN2, "expected an OPN2 (0x52/0x53) command")
}

func TestCompileTextMacroExpansion(t *testing.T) {
	withMacro := compileString(t, "*x cdefg\n#EX-PSG A\nA *x\n")
	direct := compileString(t, "#EX-PSG A\nA cdefg\n")
	assert.Equal(t, direct.TotalSamples, withMacro.TotalSamples)
}

func TestCompileUndeclaredChannelFails(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.vgm")
	c := NewCompiler(testLogger())
	err := c.Compile(strings.NewReader("A cde\n"), out)
	assert.Error(t, err)
}
