// vgm_reader.go - VGM file reader, for round-trip testing of the writer.
//
// Grounded on vgm_parser.go's gzip-or-raw file loading and linear
// opcode-stream walk, generalized from that file's AY/YM-only command set to
// every opcode this project's chip drivers emit (SPEC_FULL.md §6).
package main

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
)

// VgmCommand is one decoded data-section command, with the absolute sample
// time it occurs at.
type VgmCommand struct {
	Time   int64
	Opcode byte
	Args   []byte
}

// VgmDump is a fully decoded VGM file: header fields a test cares about,
// the flat command stream, and the parsed-back GD3 block.
type VgmDump struct {
	Version      uint32
	TotalSamples uint32
	LoopSamples  uint32
	LoopOffset   uint32
	Rate         uint32
	Commands     []VgmCommand
	GD3          *Gd3Metadata
}

// fixedArgLen is the payload byte count (excluding the opcode itself) for
// every two/three-byte register-write command this project's drivers emit.
var fixedArgLen = map[byte]int{
	0x4F: 1, 0x50: 1,
	0x51: 2, 0x52: 2, 0x53: 2, 0x5A: 2, 0x5E: 2, 0x5F: 2,
	0xA0: 2, 0xB3: 2, 0xB4: 2, 0xB9: 2, 0xBB: 2,
	0xC4: 3,
}

// ReadVgmFile loads and fully decodes a VGM (or gzip-compressed VGZ) file
// produced by this project's writer.
func ReadVgmFile(path string) (*VgmDump, error) {
	data, err := readVgmBytes(path)
	if err != nil {
		return nil, err
	}
	if len(data) < VgmHeaderSize {
		return nil, &VgmFormatError{Msg: "file shorter than header"}
	}
	if !bytes.Equal(data[0:4], []byte("Vgm ")) {
		return nil, &VgmFormatError{Msg: "missing 'Vgm ' magic"}
	}

	hdr := VgmHeader{}
	copy(hdr.bytes[:], data[:VgmHeaderSize])
	h := &hdr

	dump := &VgmDump{
		Version:      h.ReadU32(offset.Version),
		TotalSamples: h.ReadU32(offset.TotalSamples),
		Rate:         h.ReadU32(offset.Rate),
	}

	loopOff := h.ReadU32(offset.LoopOffset)
	if loopOff != 0 {
		dump.LoopOffset = loopOff + uint32(offset.LoopOffset) - VgmHeaderSize
		dump.LoopSamples = h.ReadU32(offset.LoopSamples)
	}

	gd3Off := h.ReadU32(offset.GD3Offset)
	var gd3End int
	if gd3Off != 0 {
		abs := int(gd3Off) + offset.GD3Offset
		gd3, end, err := parseGd3Block(data, abs)
		if err != nil {
			return nil, err
		}
		dump.GD3 = gd3
		gd3End = end
	} else {
		gd3End = len(data)
	}

	cmds, err := decodeCommands(data[VgmHeaderSize:gd3End])
	if err != nil {
		return nil, err
	}
	dump.Commands = cmds
	return dump, nil
}

func readVgmBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	magic := make([]byte, 2)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if magic[0] == 0x1F && magic[1] == 0x8B {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(f)
}

// decodeCommands walks a VGM data section (header and any trailing GD3
// block already stripped), producing the timed command stream and halting
// at the 0x66 end marker.
func decodeCommands(data []byte) ([]VgmCommand, error) {
	var out []VgmCommand
	var t int64
	i := 0
	for i < len(data) {
		op := data[i]
		switch {
		case op == 0x66:
			return out, nil
		case op == 0x61:
			if i+2 >= len(data) {
				return nil, &VgmFormatError{Msg: "truncated long wait"}
			}
			t += int64(binary.LittleEndian.Uint16(data[i+1 : i+3]))
			i += 3
		case op == 0x62:
			t += 735
			i++
		case op == 0x63:
			t += 882
			i++
		case op >= 0x70 && op <= 0x7F:
			t += int64(op&0x0F) + 1
			i++
		case op == 0x67:
			if i+6 >= len(data) {
				return nil, &VgmFormatError{Msg: "truncated data block"}
			}
			blockLen := binary.LittleEndian.Uint32(data[i+3 : i+7])
			i += 7 + int(blockLen)
		default:
			n, ok := fixedArgLen[op]
			if !ok {
				return nil, &VgmFormatError{Msg: fmt.Sprintf("unsupported opcode 0x%02X at offset 0x%X", op, i)}
			}
			if i+1+n > len(data) {
				return nil, &VgmFormatError{Msg: fmt.Sprintf("truncated command 0x%02X", op)}
			}
			args := append([]byte(nil), data[i+1:i+1+n]...)
			out = append(out, VgmCommand{Time: t, Opcode: op, Args: args})
			i += 1 + n
		}
	}
	return out, nil
}

// parseGd3Block decodes the GD3 metadata chunk starting at abs in data,
// returning the metadata and the absolute offset the chunk ends at.
func parseGd3Block(data []byte, abs int) (*Gd3Metadata, int, error) {
	if abs+12 > len(data) || !bytes.Equal(data[abs:abs+4], []byte("Gd3 ")) {
		return nil, 0, &VgmFormatError{Msg: "missing 'Gd3 ' magic"}
	}
	length := binary.LittleEndian.Uint32(data[abs+8 : abs+12])
	body := data[abs+12 : abs+12+int(length)]

	fields := make([]string, 0, 11)
	for len(body) > 0 && len(fields) < 11 {
		s, rest := decodeUTF16NullTerminated(body)
		fields = append(fields, s)
		body = rest
	}
	for len(fields) < 11 {
		fields = append(fields, "")
	}

	g := &Gd3Metadata{
		TitleEN: fields[0], TitleJP: fields[1],
		GameEN: fields[2], GameJP: fields[3],
		SystemEN: fields[4], SystemJP: fields[5],
		ComposerEN: fields[6], ComposerJP: fields[7],
		Date:      fields[8],
		Converter: fields[9],
		Notes:     fields[10],
	}
	return g, abs + 12 + int(length), nil
}

// decodeUTF16NullTerminated reads one null-terminated UTF-16LE string from
// the front of b, returning it and the remaining bytes after the
// terminator.
func decodeUTF16NullTerminated(b []byte) (string, []byte) {
	var units []uint16
	i := 0
	for i+1 < len(b) {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), b[i:]
}
