// vgm_gd3.go - GD3 metadata block generation.
//
// Grounded on _examples/original_source/src/vgm/gd3.rs.
package main

import (
	"encoding/binary"
	"unicode/utf16"
)

// Gd3Metadata holds the eleven GD3 text fields in their fixed emission
// order.
type Gd3Metadata struct {
	TitleEN, TitleJP   string
	GameEN, GameJP     string
	SystemEN, SystemJP string
	ComposerEN, ComposerJP string
	Date               string
	Converter          string
	Notes              string
}

func (g *Gd3Metadata) fields() []string {
	return []string{
		g.TitleEN, g.TitleJP,
		g.GameEN, g.GameJP,
		g.SystemEN, g.SystemJP,
		g.ComposerEN, g.ComposerJP,
		g.Date,
		g.Converter,
		g.Notes,
	}
}

// encodeUTF16NullTerminated encodes s as UTF-16LE, emitting surrogate pairs
// for code points >= 0x10000, followed by a null terminator.
func encodeUTF16NullTerminated(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2+2)
	buf := make([]byte, 2)
	for _, u := range units {
		binary.LittleEndian.PutUint16(buf, u)
		out = append(out, buf...)
	}
	out = append(out, 0, 0)
	return out
}

// buildGd3Block renders the full GD3 chunk: "Gd3 " magic, u32 version
// 0x00000100, u32 string-region byte length, then the eleven fields.
func buildGd3Block(g *Gd3Metadata) []byte {
	var body []byte
	for _, f := range g.fields() {
		body = append(body, encodeUTF16NullTerminated(f)...)
	}

	out := make([]byte, 0, 12+len(body))
	out = append(out, []byte("Gd3 ")...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, 0x00000100)
	out = append(out, lenBuf...)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(body)))
	out = append(out, lenBuf...)
	out = append(out, body...)
	return out
}
