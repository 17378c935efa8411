package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MarshalCompact encodes v without whitespace and without HTML escaping.
func MarshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendCompact(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode always terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// PyFloat is a float64 that encodes the way Python's repr prints floats:
// integral values keep a trailing ".0" and very small or very large
// magnitudes switch to exponent notation.
type PyFloat float64

// MarshalJSON implements json.Marshaler.
// NaN and infinities have no JSON form and encode as null.
func (f PyFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(FormatPyFloat(v)), nil
}

// FormatPyFloat formats v like Python's float repr.
func FormatPyFloat(v float64) string {
	abs := math.Abs(v)
	if v != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
