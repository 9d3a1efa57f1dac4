package hyperparams

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the literal type of a Value as decided at parse time.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single scalar setting. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the explicit absent marker used for keys declared without a value.
func Null() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool reports the boolean payload; ok is false for any other kind.
func (v Value) Bool() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

// Int reports the integer payload; ok is false for any other kind.
func (v Value) Int() (i int64, ok bool) {
	return v.i, v.kind == KindInt
}

// Float reports the numeric payload as float64. Integers are widened, so
// `std_x_coef: 1` can be read as a float without the caller caring how it was written.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Str reports the string payload; ok is false for any other kind.
func (v Value) Str() (s string, ok bool) {
	return v.s, v.kind == KindString
}

// Equal compares kind and payload. Floats compare by bit pattern so NaN equals NaN.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	default:
		return v.s == other.s
	}
}

// String renders the value in document literal form. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Interface returns the payload as a plain Go value (nil, bool, int64, float64, string).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes the payload natively. JSON has no NaN or Inf, so non-finite
// floats are emitted as their document literals.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		return json.Marshal(formatFloat(v.f))
	}
	return json.Marshal(v.Interface())
}

// formatFloat produces the shortest literal that parses back to the same float64
// and is never mistaken for an integer.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
