package script

import (
	"iter"
	"maps"
	"math"
	"slices"
)

// ChangeFunc observes symbol table mutations.
// It is invoked with the symbol name and its new value after every variable
// write. Constant definitions do not trigger it.
type ChangeFunc func(name string, value Value)

// SymbolTable maps names to values, split into mutable variables and
// immutable constants. Constants shadow variables of the same name on read,
// and writing through [SymbolTable.Set] to a constant's name is a silent
// no-op.
//
// SymbolTable is not safe for concurrent use; [Engine] serializes access to
// the tables it owns.
type SymbolTable struct {
	vars     map[string]Value
	consts   map[string]Value
	onChange ChangeFunc
}

// NewSymbolTable creates an empty symbol table, optionally seeded with
// initial variable bindings.
func NewSymbolTable(initial map[string]Value) *SymbolTable {
	t := &SymbolTable{
		vars:   make(map[string]Value),
		consts: make(map[string]Value),
	}

	for name, value := range initial {
		t.vars[name] = value.Normalize()
	}

	return t
}

// OnChange installs the change callback. A nil fn removes it.
func (t *SymbolTable) OnChange(fn ChangeFunc) { t.onChange = fn }

// Get returns the value bound to name.
// Constants shadow variables; an unbound name yields [Uninitialized].
func (t *SymbolTable) Get(name string) Value {
	if v, ok := t.consts[name]; ok {
		return v
	}

	if v, ok := t.vars[name]; ok {
		return v
	}

	return Uninitialized
}

// Has reports whether name is bound as a variable or constant.
func (t *SymbolTable) Has(name string) bool {
	if _, ok := t.consts[name]; ok {
		return true
	}

	_, ok := t.vars[name]

	return ok
}

// Set binds name to value as a variable and fires the change callback.
// If name is bound as a constant the write is silently discarded.
func (t *SymbolTable) Set(name string, value Value) {
	if _, ok := t.consts[name]; ok {
		return
	}

	value = value.Normalize()
	t.vars[name] = value

	if t.onChange != nil {
		t.onChange(name, value)
	}
}

// SetConstant binds name to value as a constant, shadowing any variable of
// the same name. The change callback is not fired.
func (t *SymbolTable) SetConstant(name string, value Value) {
	t.consts[name] = value.Normalize()
}

// Delete removes any variable binding for name. Constants are permanent.
func (t *SymbolTable) Delete(name string) { delete(t.vars, name) }

// Len returns the number of distinct bound names.
func (t *SymbolTable) Len() int {
	n := len(t.consts)

	for name := range t.vars {
		if _, ok := t.consts[name]; !ok {
			n++
		}
	}

	return n
}

// Names returns an iterator over all bound names in sorted order.
func (t *SymbolTable) Names() iter.Seq[string] {
	names := make(map[string]struct{}, len(t.vars)+len(t.consts))
	for name := range t.vars {
		names[name] = struct{}{}
	}

	for name := range t.consts {
		names[name] = struct{}{}
	}

	return slices.Values(slices.Sorted(maps.Keys(names)))
}

// All returns an iterator over all bindings in sorted name order.
// Constants shadow variables, matching [SymbolTable.Get].
func (t *SymbolTable) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for name := range t.Names() {
			if !yield(name, t.Get(name)) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all visible bindings.
func (t *SymbolTable) Snapshot() map[string]Value {
	out := make(map[string]Value, len(t.vars)+len(t.consts))
	for name, value := range t.All() {
		out[name] = value
	}

	return out
}

// Scope pairs the global symbol table shared by every code block with the
// local table private to one block.
type Scope struct {
	Globals *SymbolTable
	Locals  *SymbolTable
}

// Get resolves a read: local bindings override globals, and within each
// table constants shadow variables. An unbound name yields [Uninitialized].
func (s Scope) Get(name string) Value {
	if s.Locals != nil && s.Locals.Has(name) {
		return s.Locals.Get(name)
	}

	if s.Globals != nil {
		return s.Globals.Get(name)
	}

	return Uninitialized
}

// Set resolves a write. An explicitly-global assignment targets the global
// table. Otherwise the write goes to the local table if the name already
// exists there or is absent from the global table; an established global
// name is updated in place.
func (s Scope) Set(name string, value Value, global bool) {
	switch {
	case global || s.Locals == nil:
		s.Globals.Set(name, value)
	case s.Locals.Has(name) || s.Globals == nil || !s.Globals.Has(name):
		s.Locals.Set(name, value)
	default:
		s.Globals.Set(name, value)
	}
}

// defaultConstants installs the predefined constants every engine exposes.
func defaultConstants(t *SymbolTable) {
	t.SetConstant("pi", Float(math.Pi))
	t.SetConstant("e", Float(math.E))
}
