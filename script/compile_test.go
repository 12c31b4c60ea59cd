package script

import (
	"context"
	"errors"
	"testing"

	"github.com/expr-lang/expr"
)

// runProgram compiles and executes source against fresh tables, returning
// the resulting scope.
func runProgram(t *testing.T, source string) Scope {
	t.Helper()

	globals := NewSymbolTable(nil)
	defaultConstants(globals)

	scope := Scope{Globals: globals, Locals: NewSymbolTable(nil)}

	cb := mustCompile(t, source)

	if err := cb.Run(context.Background(), scope); err != nil {
		t.Fatalf("Run: %v", err)
	}

	return scope
}

func assertLocal(t *testing.T, scope Scope, name string, want Value) {
	t.Helper()

	got := scope.Locals.Get(name)
	if got.Kind() != want.Kind() || !got.Equal(want) {
		t.Errorf("local %s = %v (%v), want %v (%v)",
			name, got, got.Kind(), want, want.Kind())
	}
}

func TestRun_SimpleAssignment(t *testing.T) {
	scope := runProgram(t, "x = 49")

	assertLocal(t, scope, "x", Int(49))

	if scope.Globals.Has("x") {
		t.Error("plain assignment leaked into globals")
	}
}

func TestRun_GlobalAssignment(t *testing.T) {
	scope := runProgram(t, "global y = 49")

	if got := scope.Globals.Get("y").AsInt(); got != 49 {
		t.Errorf("global y = %d, want 49", got)
	}

	if scope.Locals.Has("y") {
		t.Error("global assignment leaked into locals")
	}
}

func TestRun_GlobalVersusLocalSymbols(t *testing.T) {
	scope := runProgram(t, `
global answer = 42
wrong_answer = 54
x = wrong_answer - answer
answer = wrong_answer
`)

	if got := scope.Globals.Get("answer").AsInt(); got != 54 {
		t.Errorf("global answer = %d, want 54", got)
	}

	assertLocal(t, scope, "wrong_answer", Int(54))
	assertLocal(t, scope, "x", Int(12))
}

func TestRun_ConditionalChain(t *testing.T) {
	scope := runProgram(t, `
if (4 > 5) { x = 1 }
elseif (4 > 4) { x = 2 }
elseif (4 < 4) { x = 3 }
else { x = 4 }
`)

	assertLocal(t, scope, "x", Int(4))
}

func TestRun_Operations(t *testing.T) {
	scope := runProgram(t, `
va = 1 > 0
vb = 1 < 0
vc = 2 >= 2
vd = 2 <= 2
ve = 1 >= 2
vf = 1 <= 2
vg = 1 != 2
vh = 1 == 2
vi = ((va == 0) and vb)
vj = ve or vf
vv = 7 / 3
vw = 6.0 / 1.5
vx = 4 + 5
vy = 6 ^ 3
vz = -2 * 4
`)

	answers := map[string]Value{
		"va": Int(1), "vb": Int(0), "vc": Int(1), "vd": Int(1),
		"ve": Int(0), "vf": Int(1), "vg": Int(1), "vh": Int(0),
		"vi": Int(0), "vj": Int(1),
		"vv": Int(2), "vw": Float(4.0), "vx": Int(9),
		"vy": Int(216), "vz": Int(-8),
	}

	for name, want := range answers {
		assertLocal(t, scope, name, want)
	}

	if scope.Locals.Len() != len(answers) {
		t.Errorf("locals hold %d names, want %d",
			scope.Locals.Len(), len(answers))
	}
}

func TestRun_OperatorPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{
			"multiplication before addition",
			"x = 64 + 3^2 * 2 - 16 / -4 * -(3 - 1)",
			Int(74),
		},
		{"power is right associative", "x = 2^3^2", Int(512)},
		{"folded arithmetic", "x = 2 + 3 * 4", Int(14)},
		{"unary minus on power base", "x = -2^2", Int(4)},
		{"parenthesized grouping", "x = (4 + 5) * 2", Int(18)},
		{"modulo", "x = 7 % 3", Int(1)},
		{"comparison before boolean", "x = 3 > 2 and 1 < 2", Int(1)},
		{"not binds loosest", "x = not 1 > 2", Int(1)},
		{"truncating division", "x = -7 / 2", Int(-3)},
		{"float promotion", "x = 1 + 0.5", Float(1.5)},
		{"comparison stores as int", "x = 3 > 2", Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLocal(t, runProgram(t, tt.source), "x", tt.want)
		})
	}
}

// TestRun_ArithmeticOracle cross-checks integer arithmetic against the
// expr-lang evaluator, which shares Go's int semantics for these
// operators.
func TestRun_ArithmeticOracle(t *testing.T) {
	sources := []string{
		"3 + 4 * 2",
		"(1 + 2) * (3 + 4)",
		"10 - 2 - 3",
		"7 % 3",
		"2 * 3 + 4 * 5",
		"1 + 2 * 3 - 4",
		"(8 - 3) * (2 + 2) % 7",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			oracle, err := expr.Eval(src, nil)
			if err != nil {
				t.Fatalf("oracle: %v", err)
			}

			want, err := ValueOf(oracle)
			if err != nil {
				t.Fatalf("oracle value: %v", err)
			}

			assertLocal(t, runProgram(t, "x = "+src), "x", want.Normalize())
		})
	}
}

func TestRun_Constants(t *testing.T) {
	scope := runProgram(t, `
radius = 2
circumference = 2.0 * pi * radius
`)

	assertLocal(t, scope, "radius", Int(2))

	got := scope.Locals.Get("circumference")
	if got.Kind() != KindFloat || got.AsFloat() < 12.56 || got.AsFloat() > 12.57 {
		t.Errorf("circumference = %v", got)
	}
}

func TestRun_UnboundSymbolReadsUninitialized(t *testing.T) {
	scope := runProgram(t, "x = mystery")

	if !scope.Locals.Get("x").IsUninitialized() {
		t.Errorf("x = %v, want Uninitialized", scope.Locals.Get("x"))
	}
}

func TestRun_FunctionDefinitionAndCall(t *testing.T) {
	scope := runProgram(t, `
function add(number a, number b) { return a + b }
x = add(40, 2)
`)

	assertLocal(t, scope, "x", Int(42))
}

func TestRun_FunctionWritesCallerScope(t *testing.T) {
	scope := runProgram(t, `
function set_x(number n) { x = n }
ignored = set_x(20)
`)

	assertLocal(t, scope, "x", Int(20))
}

func TestRun_FunctionWithoutReturnYieldsUninitialized(t *testing.T) {
	scope := runProgram(t, `
function noop(void) { a = 1 }
x = noop()
`)

	if !scope.Locals.Get("x").IsUninitialized() {
		t.Errorf("x = %v, want Uninitialized", scope.Locals.Get("x"))
	}
}

func TestRun_RecursionDepthLimit(t *testing.T) {
	cb := mustCompile(t, `
function infinite_recursion(void) {
    x = infinite_recursion()
    return 1
}
a = infinite_recursion()
`)

	scope := Scope{
		Globals: NewSymbolTable(nil),
		Locals:  NewSymbolTable(nil),
	}

	err := cb.Run(context.Background(), scope)
	if !errors.Is(err, ErrCallDepth) {
		t.Errorf("Run = %v, want ErrCallDepth", err)
	}
}

func TestRun_BoundedRecursionSucceeds(t *testing.T) {
	scope := runProgram(t, `
function countdown(number n) {
    if (n <= 0) { return 0 }
    return countdown(n - 1) + 1
}
x = countdown(50)
`)

	assertLocal(t, scope, "x", Int(50))
}

func TestRun_BuiltinDistance(t *testing.T) {
	assertLocal(t, runProgram(t, "x = distance(12, 19)"), "x", Int(7))
}

func TestRun_DivisionByZeroAtRuntime(t *testing.T) {
	cb := mustCompile(t, "zero = 0\nx = 1 / zero")

	scope := Scope{
		Globals: NewSymbolTable(nil),
		Locals:  NewSymbolTable(nil),
	}

	err := cb.Run(context.Background(), scope)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Run = %v, want ErrDivisionByZero", err)
	}
}

func TestCompileExpr_StackDiscipline(t *testing.T) {
	env := &genEnv{funcs: Builtins()}

	_, err := compileExpr(statement{}, env)
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("empty statement: %v, want ErrStackUnderflow", err)
	}

	_, err = compileExpr(statement{lit(Int(1)), oper(OpAdd)}, env)
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("missing operand: %v, want ErrStackUnderflow", err)
	}

	_, err = compileExpr(statement{lit(Int(1)), lit(Int(2))}, env)
	if !errors.Is(err, ErrStackOverflow) {
		t.Errorf("residual operands: %v, want ErrStackOverflow", err)
	}
}

func TestRun_CommentsAndBlankLines(t *testing.T) {
	scope := runProgram(t, `
# setup
x = 1    # trailing

# done
`)

	assertLocal(t, scope, "x", Int(1))
}
