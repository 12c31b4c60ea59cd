package script

import (
	"math"
	"math/rand/v2"
	"time"
)

// Builtins returns the standard function set available to every
// compilation. Each call yields a fresh map so callers may extend it
// without affecting other compilations.
//
// The set comprises:
//
//	distance(a, b)  absolute difference of two numbers
//	randint(max)    uniform integer in [0, max]; a negative max yields
//	                a value in [max, 0]
//	time()          current Unix time in seconds
func Builtins() map[string]*Function {
	return map[string]*Function{
		"distance": {
			Name:    "distance",
			Params:  []string{"start", "end"},
			Builtin: builtinDistance,
		},
		"randint": {
			Name:    "randint",
			Params:  []string{"max"},
			Builtin: builtinRandint,
		},
		"time": {
			Name:    "time",
			Builtin: builtinTime,
		},
	}
}

func builtinDistance(args []Value) (Value, error) {
	a, b := args[0], args[1]

	if a.Kind() == KindFloat || b.Kind() == KindFloat {
		return Float(math.Abs(a.AsFloat() - b.AsFloat())), nil
	}

	d := a.AsInt() - b.AsInt()
	if d < 0 {
		d = -d
	}

	return Int(d), nil
}

func builtinRandint(args []Value) (Value, error) {
	limit := args[0].AsInt()

	negative := limit < 0
	if negative {
		limit = -limit
	}

	v := rand.Int64N(limit + 1)
	if negative {
		v = -v
	}

	return Int(v), nil
}

func builtinTime(_ []Value) (Value, error) {
	return Int(time.Now().Unix()), nil
}
