// vgm_header.go - fixed 192-byte VGM header layout.
//
// Grounded on _examples/original_source/src/vgm/header.rs.
package main

import "encoding/binary"

// VgmHeaderSize is the fixed header length this writer targets (v1.61
// layout with data starting at 0xC0).
const VgmHeaderSize = 0xC0

// offset holds the byte offsets of every header field this project's chip
// drivers and writer touch, matching SPEC_FULL.md §6.
var offset = struct {
	EOFOffset        int
	Version          int
	SN76489Clock     int
	GD3Offset        int
	TotalSamples     int
	LoopOffset       int
	LoopSamples      int
	Rate             int
	SN76489Feedback  int
	SN76489ShiftW    int
	SN76489Flags     int
	YM2413Clock      int
	DataOffset       int
	YM2612Clock      int
	YM2151Clock      int
	SegaPCMClock     int
	SPCMInterface    int
	RF5C68Clock      int
	YM2203Clock      int
	YM2608Clock      int
	YM2610Clock      int
	YM3812Clock      int
	YM3526Clock      int
	Y8950Clock       int
	YMF262Clock      int
	YMF278BClock     int
	YMF271Clock      int
	YMZ280BClock     int
	RF5C164Clock     int
	PWMClock         int
	AY8910Clock      int
	AY8910Type       int
	AY8910Flags      int
	YM2203Flags      int
	YM2608Flags      int
	VolumeModifier   int
	LoopBase         int
	LoopModifier     int
	GBDMGClock       int
	NESAPUClock      int
	MultiPCMClock    int
	UPD7759Clock     int
	OKIM6258Clock    int
	K051649Clock     int
	K054539Clock     int
	HuC6280Clock     int
	C140Clock        int
	K053260Clock     int
	PokeyClock       int
	QSoundClock      int
}{
	EOFOffset:       0x04,
	Version:         0x08,
	SN76489Clock:    0x0C,
	GD3Offset:       0x14,
	TotalSamples:    0x18,
	LoopOffset:      0x1C,
	LoopSamples:     0x20,
	Rate:            0x24,
	SN76489Feedback: 0x28,
	SN76489ShiftW:   0x2A,
	SN76489Flags:    0x2B,
	YM2413Clock:     0x10,
	DataOffset:      0x34,
	YM2612Clock:     0x2C,
	YM2151Clock:     0x30,
	SegaPCMClock:    0x38,
	SPCMInterface:   0x3C,
	RF5C68Clock:     0x40,
	YM2203Clock:     0x44,
	YM2608Clock:     0x48,
	YM2610Clock:     0x4C,
	YM3812Clock:     0x50,
	YM3526Clock:     0x54,
	Y8950Clock:      0x58,
	YMF262Clock:     0x5C,
	YMF278BClock:    0x60,
	YMF271Clock:     0x64,
	YMZ280BClock:    0x68,
	RF5C164Clock:    0x6C,
	PWMClock:        0x70,
	AY8910Clock:     0x74,
	AY8910Type:      0x78,
	AY8910Flags:     0x79,
	YM2203Flags:     0x7A,
	YM2608Flags:     0x7B,
	VolumeModifier:  0x7C,
	LoopBase:        0x7E,
	LoopModifier:    0x7F,
	GBDMGClock:      0x80,
	NESAPUClock:     0x84,
	MultiPCMClock:   0x88,
	UPD7759Clock:    0x8C,
	OKIM6258Clock:   0x90,
	K051649Clock:    0x98,
	K054539Clock:    0x9C,
	HuC6280Clock:    0xA0,
	C140Clock:       0xA4,
	K053260Clock:    0xA8,
	PokeyClock:      0xAC,
	QSoundClock:     0xB0,
}

// VgmHeader is the raw header byte buffer plus typed accessors.
type VgmHeader struct {
	bytes [VgmHeaderSize]byte
}

func newVgmHeader() *VgmHeader {
	h := &VgmHeader{}
	copy(h.bytes[0:4], []byte("Vgm "))
	h.WriteU32(offset.Version, 0x00000161)
	h.WriteU32(offset.DataOffset, uint32(VgmHeaderSize-offset.DataOffset))
	return h
}

func (h *VgmHeader) WriteU8(off int, v uint8) {
	h.bytes[off] = v
}

func (h *VgmHeader) WriteI8(off int, v int8) {
	h.bytes[off] = byte(v)
}

func (h *VgmHeader) WriteU16(off int, v uint16) {
	binary.LittleEndian.PutUint16(h.bytes[off:], v)
}

func (h *VgmHeader) WriteU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(h.bytes[off:], v)
}

func (h *VgmHeader) ReadU32(off int) uint32 {
	return binary.LittleEndian.Uint32(h.bytes[off:])
}

// Bytes returns the raw header buffer.
func (h *VgmHeader) Bytes() []byte {
	return h.bytes[:]
}
