package hyperparams

import (
	"math"
	"testing"
)

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "Null", value: Null(), want: ""},
		{name: "True", value: BoolValue(true), want: "True"},
		{name: "False", value: BoolValue(false), want: "False"},
		{name: "Int", value: IntValue(-25), want: "-25"},
		{name: "Scientific", value: FloatValue(1e-8), want: "1e-08"},
		{name: "Decimal", value: FloatValue(0.99), want: "0.99"},
		{name: "WholeFloat", value: FloatValue(10), want: "10.0"},
		{name: "LargeFloat", value: FloatValue(1e8), want: "1e+08"},
		{name: "Inf", value: FloatValue(math.Inf(1)), want: ".inf"},
		{name: "NaN", value: FloatValue(math.NaN()), want: ".nan"},
		{name: "String", value: StringValue("./runs"), want: "./runs"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	if f, ok := IntValue(3).Float(); !ok || f != 3 {
		t.Fatalf("expected integer to widen to float, got %v (ok=%v)", f, ok)
	}
	if _, ok := FloatValue(3).Int(); ok {
		t.Fatalf("float must not narrow to integer")
	}
	if _, ok := Null().Float(); ok {
		t.Fatalf("null must not read as a number")
	}
	if _, ok := StringValue("True").Bool(); ok {
		t.Fatalf("string must not read as a boolean")
	}
	if IntValue(1).Equal(FloatValue(1)) {
		t.Fatalf("values of different kinds must not be equal")
	}
	if !FloatValue(math.NaN()).Equal(FloatValue(math.NaN())) {
		t.Fatalf("NaN should equal itself for config comparison")
	}
	if zero := (Value{}); !zero.IsNull() {
		t.Fatalf("zero Value should be null")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	want := map[Kind]string{
		KindNull:   "null",
		KindBool:   "bool",
		KindInt:    "int",
		KindFloat:  "float",
		KindString: "string",
		Kind(42):   "kind(42)",
	}
	for kind, name := range want {
		if kind.String() != name {
			t.Fatalf("expected %s, got %s", name, kind.String())
		}
	}
}
