package script

import (
	"testing"
	"time"
)

func TestBuiltinDistance(t *testing.T) {
	tests := []struct {
		name string
		args []Value
		want Value
	}{
		{"ascending", []Value{Int(12), Int(19)}, Int(7)},
		{"descending", []Value{Int(19), Int(12)}, Int(7)},
		{"equal", []Value{Int(5), Int(5)}, Int(0)},
		{"negative span", []Value{Int(-3), Int(4)}, Int(7)},
		{"float promotes", []Value{Float(1.5), Int(3)}, Float(1.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := builtinDistance(tt.args)
			if err != nil {
				t.Fatalf("distance: %v", err)
			}

			if got.Kind() != tt.want.Kind() || !got.Equal(tt.want) {
				t.Errorf("distance(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestBuiltinRandint(t *testing.T) {
	for range 100 {
		got, err := builtinRandint([]Value{Int(10)})
		if err != nil {
			t.Fatalf("randint: %v", err)
		}

		if v := got.AsInt(); v < 0 || v > 10 {
			t.Fatalf("randint(10) = %d, out of range", v)
		}
	}

	// A negative bound mirrors the range below zero.
	for range 100 {
		got, err := builtinRandint([]Value{Int(-5)})
		if err != nil {
			t.Fatalf("randint: %v", err)
		}

		if v := got.AsInt(); v < -5 || v > 0 {
			t.Fatalf("randint(-5) = %d, out of range", v)
		}
	}

	got, err := builtinRandint([]Value{Int(0)})
	if err != nil {
		t.Fatalf("randint: %v", err)
	}

	if got.AsInt() != 0 {
		t.Errorf("randint(0) = %d, want 0", got.AsInt())
	}
}

func TestBuiltinTime(t *testing.T) {
	before := time.Now().Unix()

	got, err := builtinTime(nil)
	if err != nil {
		t.Fatalf("time: %v", err)
	}

	after := time.Now().Unix()

	if v := got.AsInt(); v < before || v > after {
		t.Errorf("time() = %d, outside [%d, %d]", v, before, after)
	}
}

func TestBuiltins_FreshMapPerCall(t *testing.T) {
	a := Builtins()
	b := Builtins()

	delete(a, "distance")

	if _, ok := b["distance"]; !ok {
		t.Error("Builtins() shares state between calls")
	}
}

func TestBuiltins_Arity(t *testing.T) {
	fns := Builtins()

	arity := map[string]int{"distance": 2, "randint": 1, "time": 0}

	for name, want := range arity {
		fn, ok := fns[name]
		if !ok {
			t.Fatalf("missing builtin %q", name)
		}

		if fn.Arity() != want {
			t.Errorf("%s arity = %d, want %d", name, fn.Arity(), want)
		}
	}
}
