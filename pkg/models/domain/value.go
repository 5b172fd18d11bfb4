package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind tags the contents of a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

// Value is a single cell. The zero value is Absent.
type Value struct {
	kind Kind
	num  float64
	text string
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Absent() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// String renders the cell the way it is shown in a table. Absent renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Float reports the numeric reading of the cell and whether it is a valid number.
// Absent cells are never valid numbers.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num)
	case KindText:
		f, ok := ParseNumber(v.text)
		return f, ok
	default:
		return 0, false
	}
}

// Coerce returns the numeric reading of the cell, or 0 for anything that is not a number.
func (v Value) Coerce() float64 {
	f, ok := v.Float()
	if !ok {
		return 0
	}
	return f
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Absent()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	default:
		return errors.New("cell value must be a string, number or null")
	}
	return nil
}

// ParseNumber reads s the way a spreadsheet-minded user expects a numeric-looking cell
// to be read: surrounding whitespace is ignored, a blank string is zero, decimal and
// exponent forms are accepted, as are 0x/0o/0b integer literals and signed Infinity.
// Thousands separators, currency symbols and units make the text non-numeric.
func ParseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, true
	}

	switch t {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(t) > 2 && t[0] == '0' {
		base := 0
		switch t[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(t[2:], base, 64)
			if err != nil {
				return math.NaN(), false
			}
			return float64(n), true
		}
	}

	lower := strings.ToLower(t)
	if strings.ContainsAny(lower, "_xpn") || strings.Contains(lower, "inf") {
		return math.NaN(), false
	}

	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return math.NaN(), false
	}
	return f, true
}

// FormatNumber renders f in its shortest round-trip decimal form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
