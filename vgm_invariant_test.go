package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawHeader compiles mml and returns the raw 192-byte header plus the total
// file length, for checks ReadVgmFile's decoded VgmDump does not expose.
func rawHeader(t *testing.T, mml string) (*VgmHeader, int) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.vgm")

	c := NewCompiler(testLogger())
	require.NoError(t, c.Compile(strings.NewReader(mml), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), VgmHeaderSize)

	hdr := VgmHeader{}
	copy(hdr.bytes[:], data[:VgmHeaderSize])
	return &hdr, len(data)
}

func TestTotalSamplesBoundsHighestEventTime(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.vgm")
	c := NewCompiler(testLogger())
	require.NoError(t, c.Compile(strings.NewReader("#EX-PSG A\nA cdefg\n"), out))

	dump, err := ReadVgmFile(out)
	require.NoError(t, err)

	var maxTime int64
	for _, cmd := range dump.Commands {
		if cmd.Time > maxTime {
			maxTime = cmd.Time
		}
	}
	assert.LessOrEqual(t, maxTime, int64(dump.TotalSamples))
}

func TestEofOffsetPointsPastFileEnd(t *testing.T) {
	hdr, fileLen := rawHeader(t, "#EX-PSG A\nA cdefg\n")
	eof := hdr.ReadU32(offset.EOFOffset)
	assert.Equal(t, uint32(fileLen), eof+uint32(offset.EOFOffset), "eof_offset is relative to its own field address (0x04)")
}

func TestGd3OffsetPointsAtMagic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.vgm")
	c := NewCompiler(testLogger())
	require.NoError(t, c.Compile(strings.NewReader("#TITLE x\n#EX-PSG A\nA c\n"), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	hdr := VgmHeader{}
	copy(hdr.bytes[:], data[:VgmHeaderSize])

	gd3Rel := hdr.ReadU32(offset.GD3Offset)
	require.NotZero(t, gd3Rel)
	abs := int(gd3Rel) + offset.GD3Offset
	require.LessOrEqual(t, abs+4, len(data))
	assert.Equal(t, "Gd3 ", string(data[abs:abs+4]))
}

func TestLoopOffsetLiesWithinDataSection(t *testing.T) {
	hdr, fileLen := rawHeader(t, "#EX-PSG A\nA cL def\n")
	loopRel := hdr.ReadU32(offset.LoopOffset)
	require.NotZero(t, loopRel)
	abs := int(loopRel) + offset.LoopOffset
	assert.GreaterOrEqual(t, abs, VgmHeaderSize)
	assert.Less(t, abs, fileLen)
}

func TestDualChipFlagUnsetForSingleInstancePerChip(t *testing.T) {
	hdr, _ := rawHeader(t, "#EX-PSG A\n#EX-OPN2 B\nA cde\nB cde\n")
	clock := hdr.ReadU32(offset.SN76489Clock)
	assert.Zero(t, clock&0x40000000, "a single SN76489 instance must not set the dual-chip bit")
}
