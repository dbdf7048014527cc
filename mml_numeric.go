// mml_numeric.go - shared numeric-literal scanning (SPEC_FULL.md §4.1).
//
// Grounded on _examples/original_source/src/compiler/mod.rs's value-parsing
// helper: optional sign, optional `$` hex prefix, digits, with a leading
// `,` accepted and skipped as a separator before the number proper.
package main

import "strconv"

// scanNumber reads a numeric literal starting at s[pos] and returns its
// value and the index just past it. ok is false if no digits were found.
func scanNumber(s []byte, pos int) (value int64, next int, ok bool) {
	i := pos
	if i < len(s) && s[i] == ',' {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	hex := false
	if i < len(s) && s[i] == '$' {
		hex = true
		i++
	}
	start := i
	base := 10
	if hex {
		base = 16
	}
	for i < len(s) && isDigitInBase(s[i], base) {
		i++
	}
	if i == start {
		return 0, pos, false
	}
	v, err := strconv.ParseInt(string(s[start:i]), base, 64)
	if err != nil {
		return 0, pos, false
	}
	if neg {
		v = -v
	}
	return v, i, true
}

func isDigitInBase(c byte, base int) bool {
	switch {
	case base == 16:
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return c >= '0' && c <= '9'
	}
}

// skipSpaces advances pos past ASCII whitespace.
func skipSpaces(s []byte, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

// noteLetterSemitone is the fixed semitone offset of the MML pitch letters
// c-b, c being the scale origin; #SCALE does not change it.
var noteLetterSemitone = map[byte]int32{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// scaleLetterIndex maps the scale letters a-j to a 0-based
// scale position index.
func scaleLetterIndex(c byte) (int, bool) {
	if c >= 'a' && c <= 'j' {
		return int(c - 'a'), true
	}
	return 0, false
}
