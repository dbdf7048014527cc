// vgm_writer.go - VGM header authoring, delay encoding, GD3 emission, and
// atomic output.
//
// Grounded on _examples/original_source/src/vgm/writer.rs. The
// write-to-temp-file-then-rename pattern is new (SPEC_FULL.md §7): a failed
// compile must never leave a partial VGM file at the requested output path.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// VgmWriter accumulates header fields and a data-section byte buffer, then
// renders both to a file on Finalize.
type VgmWriter struct {
	header      *VgmHeader
	data        []byte
	loopMarked  bool
	loopDataPos int
}

func newVgmWriter() *VgmWriter {
	return &VgmWriter{header: newVgmHeader()}
}

// HeaderMut exposes the header for drivers to set their own clock/flag
// fields during FileBegin and FileEnd.
func (w *VgmWriter) HeaderMut() *VgmHeader {
	return w.header
}

// WriteData appends raw bytes verbatim to the data section.
func (w *VgmWriter) WriteData(b []byte) error {
	w.data = append(w.data, b...)
	return nil
}

// WriteByte appends a single raw byte.
func (w *VgmWriter) WriteByte(b byte) error {
	w.data = append(w.data, b)
	return nil
}

// WriteDelay appends the wait-opcode encoding of samples (§4.6).
func (w *VgmWriter) WriteDelay(samples int64) error {
	if samples <= 0 {
		return nil
	}
	w.data = append(w.data, encodeDelay(samples)...)
	return nil
}

// MarkLoopStart records the current data-section position as the loop
// re-entry point.
func (w *VgmWriter) MarkLoopStart() {
	w.loopMarked = true
	w.loopDataPos = len(w.data)
}

func (w *VgmWriter) SetTotalSamples(n uint32)    { w.header.WriteU32(offset.TotalSamples, n) }
func (w *VgmWriter) SetLoopSamples(n uint32)     { w.header.WriteU32(offset.LoopSamples, n) }
func (w *VgmWriter) SetRate(hz uint32)           { w.header.WriteU32(offset.Rate, hz) }
func (w *VgmWriter) SetVolumeModifier(v int8)    { w.header.WriteI8(offset.VolumeModifier, v) }
func (w *VgmWriter) SetLoopBase(v int8)          { w.header.WriteI8(offset.LoopBase, v) }
func (w *VgmWriter) SetLoopModifier(v uint8)     { w.header.WriteU8(offset.LoopModifier, v) }

// Finalize appends the 0x66 end marker and a GD3 metadata block, fixes up
// the header's EOF/GD3/loop offsets, then writes the whole file atomically
// (temp file in the destination directory, renamed into place on success).
func (w *VgmWriter) Finalize(outPath string, gd3 *Gd3Metadata) error {
	if err := w.WriteByte(0x66); err != nil {
		return err
	}

	gd3Offset := VgmHeaderSize + len(w.data)
	w.data = append(w.data, buildGd3Block(gd3)...)

	eofOffset := VgmHeaderSize + len(w.data)
	w.header.WriteU32(offset.EOFOffset, uint32(eofOffset-offset.EOFOffset))
	w.header.WriteU32(offset.GD3Offset, uint32(gd3Offset-offset.GD3Offset))

	if w.loopMarked {
		loopAbs := VgmHeaderSize + w.loopDataPos
		w.header.WriteU32(offset.LoopOffset, uint32(loopAbs-offset.LoopOffset))
	} else {
		w.header.WriteU32(offset.LoopOffset, 0)
	}

	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".vgmck-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(w.header.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := tmp.Write(w.data); err != nil {
		tmp.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		return fmt.Errorf("rename output into place: %w", err)
	}
	return nil
}
