package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field is a loosely typed request value. It accepts a JSON string, number,
// boolean or null and keeps the textual form; interpretation happens in
// Normalize. Objects and arrays are absorbed as absent.
type Field struct {
	text string
	set  bool
}

// Text returns a Field holding s.
func Text(s string) Field {
	return Field{text: s, set: true}
}

// Number returns a Field holding f.
func Number(f float64) Field {
	return Field{text: strconv.FormatFloat(f, 'f', -1, 64), set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = Field{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 'n', '{', '[':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Text(s)
	default:
		*f = Text(string(b))
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Absent fields encode as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.text)
}

// String returns the trimmed text, or "" when absent.
func (f Field) String() string {
	return strings.TrimSpace(f.text)
}

// Present reports whether the field carries a non-blank value.
func (f Field) Present() bool {
	return f.set && f.String() != ""
}

// Float parses the field as a base-10 number. Non-finite values fail.
func (f Field) Float() (float64, bool) {
	s := f.String()
	if s == "" || strings.HasPrefix(strings.ToLower(strings.TrimLeft(s, "+-")), "0x") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
