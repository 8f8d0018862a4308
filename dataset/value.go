// Package dataset defines the in-memory representation shared by every
// pipeline stage: a Dataset is an ordered slice of Rows, a Row is an ordered
// mapping from column name to Value, and a Value is one of a small closed set
// of scalar kinds.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a cell value. The zero Value is null.
type Value struct {
	kind Kind
	// str holds the string payload, or for a number the literal it was read
	// from when num cannot represent it exactly.
	str  string
	num  float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// NumberLiteral returns a numeric value that renders as lit. It carries
// integers such as 64-bit ids that a float64 would round.
func NumberLiteral(f float64, lit string) Value {
	return Value{kind: KindNumber, num: f, str: lit}
}

// ParseNumber parses a decimal literal. Integer literals that a float64
// cannot hold exactly keep their text.
func ParseNumber(text string) (Value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Null(), err
	}
	if isIntegerText(text) && FormatNumber(f) != text {
		return NumberLiteral(f, text), nil
	}
	return Number(f), nil
}

func isIntegerText(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromAny converts a native Go scalar, as produced by format libraries, into a
// Value. Types outside the closed set are rendered as text.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case string:
		return String(val)
	case []byte:
		return String(string(val))
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		if f := float64(val); int64(f) != val {
			return NumberLiteral(f, strconv.FormatInt(val, 10))
		}
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		if f := float64(val); f >= 1<<64 || uint64(f) != val {
			return NumberLiteral(f, strconv.FormatUint(val, 10))
		}
		return Number(float64(val))
	case interface{ Float64() (float64, error) }:
		// json.Number and friends
		if _, err := val.Float64(); err != nil {
			return String(fmt.Sprint(val))
		}
		if n, err := ParseNumber(fmt.Sprint(val)); err == nil {
			return n
		}
		f, _ := val.Float64()
		return Number(f)
	case time.Time:
		return String(val.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return String(val.String())
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the payload of a string value and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the payload of a numeric value and whether v is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Literal returns the exact text of a number read from a literal that a
// float64 cannot represent.
func (v Value) Literal() (string, bool) {
	return v.str, v.kind == KindNumber && v.str != ""
}

// Boolean returns the payload of a boolean value and whether v is a bool.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Any returns the value as a native Go scalar: nil, string, float64 or bool.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Text renders v for text formats. Null renders as the empty string and
// numbers use the shortest decimal form that round-trips.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.str != "" {
			return v.str
		}
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// String implements fmt.Stringer; strings are quoted so that debug output
// distinguishes "1" from 1.
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// Float interprets v as a float64. Strings are parsed after trimming
// surrounding spaces; null and booleans are rejected.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", v.str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to number", v.kind)
	}
}

// Truthy reports the truth value of v: null is false, numbers are true when
// non-zero and strings when non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str != ""
	default:
		return false
	}
}

// Equal reports structural equality: same kind and same payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num && v.str == o.str
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// FormatNumber renders f without exponent and without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
