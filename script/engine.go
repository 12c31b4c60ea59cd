package script

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/gamescript/log"
)

// Engine is a registry of named code blocks sharing one global symbol
// table. Each block owns a persistent local table that accumulates state
// across executions, the way a game object carries its instance variables
// between event handlers.
//
// All methods are safe for concurrent use. Executions are serialized, so
// blocks sharing the global table never run concurrently; tables obtained
// from [Engine.Globals] or [Engine.Locals] must not be mutated while an
// execution is in flight.
type Engine struct {
	mu      sync.Mutex
	globals *SymbolTable
	funcs   map[string]*Function
	blocks  map[string]*registered
	logger  log.Logger
}

// registered pairs a compiled block with its persistent local table.
type registered struct {
	block  *CodeBlock
	locals *SymbolTable
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger used by the engine and every block it
// compiles.
func WithEngineLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineFunctions makes host functions callable from every block the
// engine compiles.
func WithEngineFunctions(fns ...*Function) EngineOption {
	return func(e *Engine) {
		for _, fn := range fns {
			e.funcs[fn.Name] = fn
		}
	}
}

// NewEngine creates an engine with the builtin function set and the
// predefined constants installed in its global table.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		globals: NewSymbolTable(nil),
		funcs:   Builtins(),
		blocks:  make(map[string]*registered),
	}

	defaultConstants(e.globals)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Register compiles source and stores it under name.
// Registering an already-registered name fails with [ErrDuplicateBlock];
// the error notes when the rejected source is byte-identical to the
// registered block.
func (e *Engine) Register(ctx context.Context, name, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.blocks[name]; ok {
		err := ErrDuplicateBlock.With(slog.String("block", name))
		if existing.block.Hash() == xxh3.HashString(source) {
			err = err.With(slog.Bool("identical_source", true))
		}

		return err
	}

	fns := make([]*Function, 0, len(e.funcs))
	for _, fn := range e.funcs {
		fns = append(fns, fn)
	}

	block, err := Compile(ctx, name, source,
		WithFunctions(fns...),
		WithLogger(e.logger),
	)
	if err != nil {
		return err
	}

	e.blocks[name] = &registered{
		block:  block,
		locals: NewSymbolTable(nil),
	}

	e.logger.InfoContext(ctx, "block registered",
		slog.String("block", name),
		slog.Uint64("hash", block.Hash()),
	)

	return nil
}

// Execute runs the named block. The supplied bindings are merged into the
// block's persistent local table first, then the block executes against
// the engine's globals and that table. The engine's mutex is held for the
// duration of the run, so concurrent executions of blocks that write the
// shared global table remain well defined.
func (e *Engine) Execute(
	ctx context.Context,
	name string,
	locals map[string]Value,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, ok := e.blocks[name]
	if !ok {
		return ErrUnknownBlock.With(slog.String("block", name))
	}

	for sym, value := range locals {
		reg.locals.Set(sym, value)
	}

	e.logger.DebugContext(ctx, "block executing",
		slog.String("block", name),
	)

	return reg.block.Run(ctx, Scope{Globals: e.globals, Locals: reg.locals})
}

// Unregister removes the named block and discards its local table.
// Unregistering an unknown name is a no-op.
func (e *Engine) Unregister(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.blocks, name)
}

// Globals returns the engine's global symbol table.
func (e *Engine) Globals() *SymbolTable { return e.globals }

// Locals returns the persistent local table of the named block.
func (e *Engine) Locals(name string) (*SymbolTable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, ok := e.blocks[name]
	if !ok {
		return nil, false
	}

	return reg.locals, true
}

// Block returns the named compiled block.
func (e *Engine) Block(name string) (*CodeBlock, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, ok := e.blocks[name]
	if !ok {
		return nil, false
	}

	return reg.block, true
}

// Blocks returns an iterator over registered block names in sorted order.
func (e *Engine) Blocks() iter.Seq[string] {
	e.mu.Lock()
	names := slices.Sorted(maps.Keys(e.blocks))
	e.mu.Unlock()

	return slices.Values(names)
}

// Functions returns an iterator over callable function names in sorted
// order, builtins included.
func (e *Engine) Functions() iter.Seq[string] {
	e.mu.Lock()
	names := slices.Sorted(maps.Keys(e.funcs))
	e.mu.Unlock()

	return slices.Values(names)
}

// SetConstant binds a constant in the engine's global table.
func (e *Engine) SetConstant(name string, value Value) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.globals.SetConstant(name, value)
}

// SetChangeCallback installs a change callback on the global table.
func (e *Engine) SetChangeCallback(fn ChangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.globals.OnChange(fn)
}
