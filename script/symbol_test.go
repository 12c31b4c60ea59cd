package script

import (
	"slices"
	"testing"
)

func TestSymbolTable_GetUnbound(t *testing.T) {
	table := NewSymbolTable(nil)

	if got := table.Get("nope"); !got.IsUninitialized() {
		t.Errorf("Get(unbound) = %v, want Uninitialized", got)
	}
}

func TestSymbolTable_SetNormalizes(t *testing.T) {
	table := NewSymbolTable(nil)
	table.Set("flag", Bool(true))

	got := table.Get("flag")
	if got.Kind() != KindInt || got.AsInt() != 1 {
		t.Errorf("stored bool = %v, want int 1", got)
	}
}

func TestSymbolTable_ConstantShadowsVariable(t *testing.T) {
	table := NewSymbolTable(map[string]Value{"x": Int(1)})
	table.SetConstant("x", Int(99))

	if got := table.Get("x").AsInt(); got != 99 {
		t.Errorf("Get(x) = %d, want constant 99", got)
	}

	// Writes to a constant name are dropped.
	table.Set("x", Int(5))

	if got := table.Get("x").AsInt(); got != 99 {
		t.Errorf("Get(x) after write = %d, want constant 99", got)
	}
}

func TestSymbolTable_ChangeCallback(t *testing.T) {
	type change struct {
		name  string
		value Value
	}

	var seen []change

	table := NewSymbolTable(nil)
	table.OnChange(func(name string, value Value) {
		seen = append(seen, change{name, value})
	})

	table.SetConstant("sym2", Int(64))

	table.Set("sym1", Int(24))
	table.Set("sym3", Int(25))
	table.Set("sym2", Int(36)) // constant, dropped
	table.Set("sym4", Int(42))

	want := []change{
		{"sym1", Int(24)},
		{"sym3", Int(25)},
		{"sym4", Int(42)},
	}

	if len(seen) != len(want) {
		t.Fatalf("callback fired %d times, want %d", len(seen), len(want))
	}

	for i, w := range want {
		if seen[i].name != w.name || !seen[i].value.Equal(w.value) {
			t.Errorf("change[%d] = %v, want %v", i, seen[i], w)
		}
	}
}

func TestSymbolTable_NamesSorted(t *testing.T) {
	table := NewSymbolTable(map[string]Value{
		"zeta": Int(1), "alpha": Int(2), "mid": Int(3),
	})

	got := slices.Collect(table.Names())
	want := []string{"alpha", "mid", "zeta"}

	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestScope_ReadLocalsOverrideGlobals(t *testing.T) {
	scope := Scope{
		Globals: NewSymbolTable(map[string]Value{"x": Int(1), "g": Int(7)}),
		Locals:  NewSymbolTable(map[string]Value{"x": Int(2)}),
	}

	if got := scope.Get("x").AsInt(); got != 2 {
		t.Errorf("Get(x) = %d, want local 2", got)
	}

	if got := scope.Get("g").AsInt(); got != 7 {
		t.Errorf("Get(g) = %d, want global 7", got)
	}
}

func TestScope_WriteResolution(t *testing.T) {
	t.Run("global flag forces globals", func(t *testing.T) {
		scope := Scope{
			Globals: NewSymbolTable(nil),
			Locals:  NewSymbolTable(nil),
		}

		scope.Set("y", Int(49), true)

		if !scope.Globals.Has("y") || scope.Locals.Has("y") {
			t.Error("global write landed in the wrong table")
		}
	})

	t.Run("existing global updated without flag", func(t *testing.T) {
		scope := Scope{
			Globals: NewSymbolTable(map[string]Value{"answer": Int(42)}),
			Locals:  NewSymbolTable(nil),
		}

		scope.Set("answer", Int(54), false)

		if got := scope.Globals.Get("answer").AsInt(); got != 54 {
			t.Errorf("global answer = %d, want 54", got)
		}

		if scope.Locals.Has("answer") {
			t.Error("write shadowed an existing global")
		}
	})

	t.Run("local shadows global once bound locally", func(t *testing.T) {
		scope := Scope{
			Globals: NewSymbolTable(map[string]Value{"x": Int(1)}),
			Locals:  NewSymbolTable(map[string]Value{"x": Int(2)}),
		}

		scope.Set("x", Int(3), false)

		if got := scope.Locals.Get("x").AsInt(); got != 3 {
			t.Errorf("local x = %d, want 3", got)
		}

		if got := scope.Globals.Get("x").AsInt(); got != 1 {
			t.Errorf("global x = %d, want untouched 1", got)
		}
	})

	t.Run("unbound name lands in locals", func(t *testing.T) {
		scope := Scope{
			Globals: NewSymbolTable(nil),
			Locals:  NewSymbolTable(nil),
		}

		scope.Set("fresh", Int(1), false)

		if !scope.Locals.Has("fresh") || scope.Globals.Has("fresh") {
			t.Error("unbound write landed in the wrong table")
		}
	})
}

func TestDefaultConstants(t *testing.T) {
	table := NewSymbolTable(nil)
	defaultConstants(table)

	pi := table.Get("pi")
	if pi.Kind() != KindFloat || pi.AsFloat() < 3.14 || pi.AsFloat() > 3.15 {
		t.Errorf("pi = %v", pi)
	}

	table.Set("pi", Int(3))

	if table.Get("pi").Kind() != KindFloat {
		t.Error("pi constant was overwritten")
	}
}
