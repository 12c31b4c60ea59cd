package script

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/gamescript/log"
)

// maxCallDepth bounds user function call nesting at runtime.
const maxCallDepth = 100

// Option configures a compilation.
type Option func(*settings)

type settings struct {
	funcs  []*Function
	logger log.Logger
}

// WithFunctions makes additional host functions callable from the compiled
// source, alongside the builtins.
func WithFunctions(fns ...*Function) Option {
	return func(s *settings) {
		s.funcs = append(s.funcs, fns...)
	}
}

// WithLogger sets the logger used during compilation and execution.
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// CodeBlock is a compiled unit of script source, ready to run against a
// symbol table scope. Blocks are immutable once compiled and safe to run
// from multiple goroutines provided their scope tables are not shared.
type CodeBlock struct {
	Name string

	source string
	hash   uint64
	funcs  map[string]*Function
	code   []stmtFunc
	logger log.Logger
}

// Compile recognizes, folds, and lowers source into an executable
// [CodeBlock]. A fresh recognizer and builder serve each call, so
// compilations are independent and safe to run concurrently.
func Compile(
	ctx context.Context,
	name, source string,
	opts ...Option,
) (*CodeBlock, error) {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	funcs := Builtins()
	for _, fn := range cfg.funcs {
		funcs[fn.Name] = fn
	}

	b := newBuilder(funcs, cfg.logger)

	if err := newParser(source, b, cfg.logger).parseProgram(); err != nil {
		return nil, err
	}

	foldBlock(b.program)

	env := &genEnv{funcs: b.funcs}

	code, err := compileBlock(b.program, env)
	if err != nil {
		return nil, err
	}

	cb := &CodeBlock{
		Name:   name,
		source: source,
		hash:   xxh3.HashString(source),
		funcs:  b.funcs,
		code:   code,
		logger: cfg.logger,
	}

	cfg.logger.DebugContext(ctx, "block compiled",
		slog.String("block", name),
		slog.Uint64("hash", cb.hash),
		slog.Int("statements", len(code)),
		slog.Int("functions", len(b.order)),
	)

	return cb, nil
}

// Source returns the original source text.
func (cb *CodeBlock) Source() string { return cb.source }

// Hash returns the xxh3 fingerprint of the source text.
func (cb *CodeBlock) Hash() uint64 { return cb.hash }

// Functions returns an iterator over all functions callable within the
// block, including builtins, in sorted name order.
func (cb *CodeBlock) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, name := range slices.Sorted(maps.Keys(cb.funcs)) {
			if !yield(cb.funcs[name]) {
				return
			}
		}
	}
}

// Run executes the block's top-level statements against scope.
func (cb *CodeBlock) Run(ctx context.Context, scope Scope) error {
	fr := &frame{scope: scope}

	for _, st := range cb.code {
		if _, err := st(fr); err != nil {
			cb.logger.ErrorContext(ctx, "block failed",
				slog.String("block", cb.Name),
				slog.Any("error", err),
			)

			return err
		}
	}

	return nil
}

// frame is the mutable state of one executing block or function body.
type frame struct {
	scope Scope
	args  []Value
	depth int
}

// exprFunc evaluates one expression in a frame.
type exprFunc func(fr *frame) (Value, error)

// stmtFunc executes one statement. A non-nil result is a return value that
// unwinds the enclosing function body.
type stmtFunc func(fr *frame) (*Value, error)

// genEnv carries the static context of one lowering pass.
type genEnv struct {
	funcs      map[string]*Function
	params     map[string]int
	inFunction bool
}

// typed pairs a generated closure with its statically inferred kind.
// Kinds propagate bottom-up during generation: comparisons and boolean
// operators are KindBool, arithmetic is KindFloat when any operand is,
// and symbol reads are nominally KindInt. Boolean results are normalized
// to integers wherever they escape into symbol stores, call arguments,
// or return values.
type typed struct {
	fn   exprFunc
	kind Kind
}

// compileBlock lowers a block into statement closures.
func compileBlock(b *block, env *genEnv) ([]stmtFunc, error) {
	out := make([]stmtFunc, 0, len(b.nodes))

	for _, n := range b.nodes {
		switch t := n.(type) {
		case statement:
			st, err := compileStatement(t, env)
			if err != nil {
				return nil, err
			}

			out = append(out, st)

		case *conditional:
			st, err := compileConditional(t, env)
			if err != nil {
				return nil, err
			}

			out = append(out, st)
		}
	}

	return out, nil
}

// compileConditional lowers an if/elseif/else chain into a single closure
// that runs the body of the first branch whose condition is true.
func compileConditional(c *conditional, env *genEnv) (stmtFunc, error) {
	type arm struct {
		cond exprFunc // nil for else
		body []stmtFunc
	}

	arms := make([]arm, 0, len(c.branches))

	for _, br := range c.branches {
		var cond exprFunc

		if br.cond != nil {
			t, err := compileExpr(br.cond, env)
			if err != nil {
				return nil, err
			}

			cond = t.fn
		}

		body, err := compileBlock(br.body, env)
		if err != nil {
			return nil, err
		}

		arms = append(arms, arm{cond: cond, body: body})
	}

	return func(fr *frame) (*Value, error) {
		for _, a := range arms {
			if a.cond != nil {
				v, err := a.cond(fr)
				if err != nil {
					return nil, err
				}

				if !v.Truthy() {
					continue
				}
			}

			for _, st := range a.body {
				ret, err := st(fr)
				if ret != nil || err != nil {
					return ret, err
				}
			}

			return nil, nil
		}

		return nil, nil
	}, nil
}

// compileStatement lowers an assignment or return statement.
func compileStatement(s statement, env *genEnv) (stmtFunc, error) {
	if len(s) == 0 {
		return nil, ErrStackUnderflow
	}

	last := s[len(s)-1]

	switch {
	case s[0].kind == tokenTarget && last.kind == tokenAssign:
		target, global := s[0].name, s[0].global

		t, err := compileExpr(s[1:len(s)-1], env)
		if err != nil {
			return nil, err
		}

		return func(fr *frame) (*Value, error) {
			v, err := t.fn(fr)
			if err != nil {
				return nil, err
			}

			fr.scope.Set(target, v.Normalize(), global)

			return nil, nil
		}, nil

	case last.kind == tokenReturn:
		t, err := compileExpr(s[:len(s)-1], env)
		if err != nil {
			return nil, err
		}

		return func(fr *frame) (*Value, error) {
			v, err := t.fn(fr)
			if err != nil {
				return nil, err
			}

			v = v.Normalize()

			return &v, nil
		}, nil

	default:
		return nil, ErrStackOverflow.With(
			slog.String("statement", s.String()),
		)
	}
}

// compileExpr lowers a postfix operand sequence into a single closure,
// validating stack discipline and propagating static kind tags.
func compileExpr(s statement, env *genEnv) (typed, error) {
	stack := make([]typed, 0, len(s))

	pop := func(n int) ([]typed, error) {
		if len(stack) < n {
			return nil, ErrStackUnderflow.With(
				slog.String("statement", s.String()),
			)
		}

		popped := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]

		return popped, nil
	}

	for _, t := range s {
		switch t.kind {
		case tokenLiteral:
			lit := t.lit
			stack = append(stack, typed{
				kind: lit.Kind(),
				fn:   func(*frame) (Value, error) { return lit, nil },
			})

		case tokenSymbol:
			stack = append(stack, compileSymbol(t.name, env))

		case tokenOperator:
			op := t.op

			args, err := pop(op.Arity())
			if err != nil {
				return typed{}, err
			}

			stack = append(stack, compileOperator(op, args))

		case tokenNegate:
			args, err := pop(1)
			if err != nil {
				return typed{}, err
			}

			operand := args[0]
			stack = append(stack, typed{
				kind: operand.kind,
				fn: func(fr *frame) (Value, error) {
					v, err := operand.fn(fr)
					if err != nil {
						return Value{}, err
					}

					return negate(v), nil
				},
			})

		case tokenCall:
			args, err := pop(t.argc)
			if err != nil {
				return typed{}, err
			}

			call, err := compileCall(t.name, args, env)
			if err != nil {
				return typed{}, err
			}

			stack = append(stack, call)

		default:
			return typed{}, ErrStackOverflow.With(
				slog.String("statement", s.String()),
			)
		}
	}

	switch {
	case len(stack) == 0:
		return typed{}, ErrStackUnderflow.With(
			slog.String("statement", s.String()),
		)
	case len(stack) > 1:
		return typed{}, ErrStackOverflow.With(
			slog.String("statement", s.String()),
		)
	}

	return stack[0], nil
}

// compileSymbol lowers a symbol read: function parameters resolve to the
// frame's argument slots, everything else reads through the scope.
func compileSymbol(name string, env *genEnv) typed {
	if idx, ok := env.params[name]; ok {
		return typed{
			kind: KindInt,
			fn: func(fr *frame) (Value, error) {
				return fr.args[idx], nil
			},
		}
	}

	return typed{
		kind: KindInt,
		fn: func(fr *frame) (Value, error) {
			return fr.scope.Get(name), nil
		},
	}
}

// compileOperator lowers an operator application over generated operands.
func compileOperator(op Op, operands []typed) typed {
	kind := KindInt
	if op.comparison() || op == OpAnd || op == OpOr || op == OpNot {
		kind = KindBool
	} else {
		for _, o := range operands {
			if o.kind == KindFloat {
				kind = KindFloat
			}
		}
	}

	fns := make([]exprFunc, len(operands))
	for i, o := range operands {
		fns[i] = o.fn
	}

	return typed{
		kind: kind,
		fn: func(fr *frame) (Value, error) {
			args := make([]Value, len(fns))

			for i, fn := range fns {
				v, err := fn(fr)
				if err != nil {
					return Value{}, err
				}

				args[i] = v
			}

			return op.eval(args...)
		},
	}
}

// compileCall lowers a function invocation. User functions carry an
// implicit depth counter: zero at call sites in outer code, incremented at
// call sites inside another function body.
func compileCall(name string, args []typed, env *genEnv) (typed, error) {
	fn, ok := env.funcs[name]
	if !ok {
		// The recognizer validates call sites; reaching here means the
		// builder and generator disagree on the function set.
		return typed{}, ErrUnknownFunction.With(slog.String("function", name))
	}

	argFns := make([]exprFunc, len(args))
	for i, a := range args {
		argFns[i] = a.fn
	}

	nested := env.inFunction

	return typed{
		kind: KindInt,
		fn: func(fr *frame) (Value, error) {
			argv := make([]Value, len(argFns))

			for i, afn := range argFns {
				v, err := afn(fr)
				if err != nil {
					return Value{}, err
				}

				argv[i] = v.Normalize()
			}

			if fn.Builtin != nil {
				return fn.Builtin(argv)
			}

			depth := 0
			if nested {
				depth = fr.depth + 1
			}

			return fn.call(fr.scope, argv, depth)
		},
	}, nil
}

// compileFunctionBody lowers a script-defined function's folded body.
func compileFunctionBody(
	fn *Function,
	funcs map[string]*Function,
) ([]stmtFunc, error) {
	params := make(map[string]int, len(fn.Params))
	for i, name := range fn.Params {
		params[name] = i
	}

	env := &genEnv{
		funcs:      funcs,
		params:     params,
		inFunction: true,
	}

	return compileBlock(fn.body, env)
}

// call invokes a script-defined function body within the caller's scope.
// A body without a trailing return yields [Uninitialized].
func (f *Function) call(scope Scope, args []Value, depth int) (Value, error) {
	if depth > maxCallDepth {
		return Value{}, ErrCallDepth.With(
			slog.String("function", f.Name),
			slog.Int("depth", depth),
		)
	}

	fr := &frame{scope: scope, args: args, depth: depth}

	for _, st := range f.code {
		ret, err := st(fr)
		if err != nil {
			return Value{}, err
		}

		if ret != nil {
			return *ret, nil
		}
	}

	return Uninitialized, nil
}
