package lang

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Kind indicates the dynamic type of a [Value].
type Kind int

const (
	// KindNull is the kind of the zero Value.
	KindNull Kind = iota

	// KindBoolean represents true or false.
	KindBoolean

	// KindNumber represents a double-precision number.
	KindNumber

	// KindString represents text.
	KindString

	// KindArray represents an ordered sequence of values.
	KindArray
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"

	case KindBoolean:
		return "Boolean"

	case KindNumber:
		return "Number"

	case KindString:
		return "String"

	case KindArray:
		return "Array"

	default:
		return "Unknown"
	}
}

// Value is a runtime value. The zero Value is null.
//
// Values are immutable: an array Value never exposes its backing slice.
type Value struct {
	str  string
	arr  []Value
	num  float64
	kind Kind
	b    bool
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// NumberValue returns a number Value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ArrayValue returns an array Value holding a copy of elems.
func ArrayValue(elems ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(elems)}
}

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v, or false for any other kind.
func (v Value) Bool() bool { return v.kind == KindBoolean && v.b }

// Float returns the number held by v, or 0 for any other kind.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}

	return v.num
}

// Text returns the string held by v, or "" for any other kind.
func (v Value) Text() string {
	if v.kind != KindString {
		return ""
	}

	return v.str
}

// Len returns the number of elements of an array Value, or 0.
func (v Value) Len() int { return len(v.arr) }

// Elems returns a copy of the elements of an array Value.
func (v Value) Elems() []Value { return slices.Clone(v.arr) }

// Truthy applies truthiness coercion: null is false, a boolean is itself,
// everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false

	case KindBoolean:
		return v.b

	default:
		return true
	}
}

// Equal reports value equality over the full value domain. Values of
// different kinds are never equal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true

	case KindBoolean:
		return v.b == w.b

	case KindNumber:
		return v.num == w.num

	case KindString:
		return v.str == w.str

	case KindArray:
		return slices.EqualFunc(v.arr, w.arr, Value.Equal)

	default:
		return false
	}
}

// String returns the external representation printed by print statements.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "nil"

	case KindBoolean:
		return strconv.FormatBool(v.b)

	case KindNumber:
		return formatNumber(v.num)

	case KindString:
		return v.str

	case KindArray:
		var sb strings.Builder

		sb.WriteByte('[')

		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}

			if e.kind == KindString {
				sb.WriteString(strconv.Quote(e.str))
			} else {
				sb.WriteString(e.String())
			}
		}

		sb.WriteByte(']')

		return sb.String()

	default:
		return ""
	}
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindBoolean:
		return slog.BoolValue(v.b)

	case KindNumber:
		return slog.Float64Value(v.num)

	case KindString:
		return slog.StringValue(v.str)

	default:
		return slog.StringValue(v.String())
	}
}

// formatNumber prints integral values without a fractional part and all
// others in their shortest round-trip form.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"

	case math.IsInf(f, -1):
		return "-Infinity"

	case math.IsNaN(f):
		return "NaN"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Native converts v to a plain Go value: nil, bool, float64, string or
// []any.
func (v Value) Native() any {
	switch v.kind {
	case KindBoolean:
		return v.b

	case KindNumber:
		return v.num

	case KindString:
		return v.str

	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}

		return out

	default:
		return nil
	}
}

// FromNative converts a plain Go value to a Value. Integer and float types
// become numbers; slices and arrays become arrays. Named types are converted
// by their underlying kind.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil

	case Value:
		return t, nil

	case bool:
		return BoolValue(t), nil

	case string:
		return StringValue(t), nil

	case float64:
		return NumberValue(t), nil

	case float32:
		return NumberValue(float64(t)), nil

	case int:
		return NumberValue(float64(t)), nil

	case int64:
		return NumberValue(float64(t)), nil
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil

	case reflect.String:
		return StringValue(rv.String()), nil

	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return NumberValue(float64(rv.Uint())), nil

	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())

		for i := range rv.Len() {
			e, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return NullValue(), err
			}

			elems[i] = e
		}

		return Value{kind: KindArray, arr: elems}, nil

	default:
		return NullValue(), ErrInvalidValueType.
			With(slog.String("type", fmt.Sprintf("%T", x)))
	}
}
