package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func sumDelay(out []byte) int64 {
	var total int64
	i := 0
	for i < len(out) {
		switch {
		case out[i] == 0x62:
			total += 735
			i++
		case out[i] == 0x63:
			total += 882
			i++
		case out[i] >= 0x70 && out[i] <= 0x7F:
			total += int64(out[i]&0x0F) + 1
			i++
		case out[i] == 0x61:
			total += int64(out[i+1]) | int64(out[i+2])<<8
			i += 3
		}
	}
	return total
}

func TestEncodeDelayExactTotals(t *testing.T) {
	cases := []int64{0, 1, 16, 17, 32, 735, 882, 1470, 1617, 65535, 65536, 131072, 200000}
	for _, d := range cases {
		out := encodeDelay(d)
		assert.Equal(t, d, sumDelay(out), "delay %d", d)
	}
}

func TestEncodeDelayProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Int64Range(0, 500000).Draw(t, "d")
		out := encodeDelay(d)
		assert.Equal(t, d, sumDelay(out))
	})
}

func TestEncodeDelayZeroIsEmpty(t *testing.T) {
	assert.Empty(t, encodeDelay(0))
}
