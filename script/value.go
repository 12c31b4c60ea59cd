package script

import (
	"log/slog"
	"math"
	"strconv"
)

// Kind identifies the runtime type of a [Value].
type Kind uint8

const (
	KindInt Kind = iota // int
	KindFloat           // float
	KindBool            // bool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a tagged union holding one scripting language value.
// The zero value is the integer 0.
type Value struct {
	f float64
	i int64
	b bool
	k Kind
}

// Uninitialized is the sentinel value produced when reading a symbol that
// has never been assigned.
var Uninitialized = Value{k: KindInt, i: math.MinInt64}

// Int returns an integer Value.
func Int(v int64) Value { return Value{k: KindInt, i: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{k: KindFloat, f: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{k: KindBool, b: v} }

// Kind returns the runtime type tag of v.
func (v Value) Kind() Kind { return v.k }

// IsUninitialized reports whether v is the [Uninitialized] sentinel.
func (v Value) IsUninitialized() bool {
	return v.k == KindInt && v.i == math.MinInt64
}

// AsInt returns v converted to an integer.
// Floats truncate toward zero; booleans map to 1 and 0.
func (v Value) AsInt() int64 {
	switch v.k {
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}

		return 0
	default:
		return v.i
	}
}

// AsFloat returns v converted to a float.
func (v Value) AsFloat() float64 {
	switch v.k {
	case KindFloat:
		return v.f
	case KindBool:
		if v.b {
			return 1
		}

		return 0
	default:
		return float64(v.i)
	}
}

// Truthy reports whether v is considered true in a boolean context.
// Booleans are themselves; numbers are true iff nonzero.
func (v Value) Truthy() bool {
	switch v.k {
	case KindBool:
		return v.b
	case KindFloat:
		return v.f != 0
	default:
		return v.i != 0
	}
}

// Normalize converts boolean values to the integers 1 and 0.
// Symbol stores and folded comparison results hold normalized values, so
// scripts observe comparison results as plain numbers.
func (v Value) Normalize() Value {
	if v.k == KindBool {
		return Int(v.AsInt())
	}

	return v
}

// Equal reports whether two values are equal after numeric promotion.
func (v Value) Equal(o Value) bool {
	a, b := v.Normalize(), o.Normalize()
	if a.k == KindInt && b.k == KindInt {
		return a.i == b.i
	}

	return a.AsFloat() == b.AsFloat()
}

// String formats v for display.
func (v Value) String() string {
	switch v.k {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		if v.IsUninitialized() {
			return "<uninitialized>"
		}

		return strconv.FormatInt(v.i, 10)
	}
}

// ValueOf converts a native Go value into a [Value].
// Supported inputs are Go integers, floats, booleans, and [Value] itself.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, ErrValueRange.With(slog.Any("value", v))
		}

		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	default:
		return Value{}, ErrValueType.With(slog.Any("value", v))
	}
}

// ParseValue converts decimal text into an integer or float [Value].
// The literals "true" and "false" parse as booleans.
func ParseValue(s string) (Value, error) {
	switch s {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, ErrValueType.Wrap(err)
	}

	return Float(f), nil
}
