package repair

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is the result of coercing a text field: either a parsed value or the
// unparsable marker (the zero value).
type Number struct {
	value float64
	valid bool
}

// NumberOf wraps a known value
func NumberOf(v float64) Number {
	return Number{value: v, valid: true}
}

// ParseNumber coerces trimmed text to a Number. Empty text, NaN and infinities are
// unparsable.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return NumberOf(v)
}

// Valid reports whether the text parsed
func (n Number) Valid() bool {
	return n.valid
}

// Float64 returns the value and whether it is valid
func (n Number) Float64() (float64, bool) {
	return n.value, n.valid
}

// String renders the value in its shortest form; unparsable renders empty
func (n Number) String() string {
	if !n.valid {
		return ""
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

// MarshalJSON renders unparsable numbers as null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// halfGlyph is the fraction the standings use in games-behind values ("3½")
const halfGlyph = "½"

// ParseGamesBehind coerces a games-behind value, reading "½" as ".5"
func ParseGamesBehind(s string) Number {
	return ParseNumber(strings.ReplaceAll(s, halfGlyph, ".5"))
}

// ParseStatValue coerces a leaderboard value after removing thousands separators and
// quote characters
func ParseStatValue(s string) Number {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, `"`, "")
	return ParseNumber(s)
}
