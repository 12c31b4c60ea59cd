package script

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustCompile(t *testing.T, source string) *CodeBlock {
	t.Helper()

	cb, err := Compile(context.Background(), t.Name(), source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	return cb
}

func TestCompile_ValidPrograms(t *testing.T) {
	sources := []struct {
		name   string
		source string
	}{
		{"simple assignment", "x = 49"},
		{"global assignment", "global y = 49"},
		{"comment only", "# nothing here\n"},
		{"empty", ""},
		{"conditional chain", `
if (4 > 5) { x = 1 }
elseif (4 > 4) { x = 2 }
elseif (4 < 4) { x = 3 }
else { x = 4 }
`},
		{"function definition", "function set_x(number n) { x = n }"},
		{"void function", "function f(void) { return 1 }"},
		{"builtin call", "x = distance(12, 19)"},
		{"nested parens", "x = ((1 + 2) * (3 + 4))"},
		{"negated condition", "if (not (1 > 2)) { x = 1 }"},
		{"dotted identifier", "self.speed = 6"},
	}

	for _, tt := range sources {
		t.Run(tt.name, func(t *testing.T) {
			mustCompile(t, tt.source)
		})
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"assignment to expression", "x + 1 = 59", ErrSyntax},
		{"leading underscore", "_y = 1", ErrSyntax},
		{"missing condition", "if { a = 2 }", ErrSyntax},
		{"empty parameter list", "function noparams() { a = 2 }", ErrParamType},
		{"untyped parameter", "function oneparam(n) { a = n }", ErrParamType},
		{"unparenthesized condition", "if 2 > 1 { a = 2 }", ErrSyntax},
		{
			"doubled operator",
			"if ((2 > 1) or or (1 > 2)) { a = 2 }",
			ErrSyntax,
		},
		{"unterminated block", "if (1 > 0) { a = 2", ErrSyntax},
		{"unknown function", "x = nosuchfunc(1)", ErrUnknownFunction},
		{
			"call before definition",
			"function a(void) { return b() }\nfunction b(void) { return 1 }",
			ErrUnknownFunction,
		},
		{"missing argument", "x = distance(12)", ErrArgumentCount},
		{"extra argument", "x = distance(1, 2, 3)", ErrArgumentCount},
		{"argument to void function", "x = time(1)", ErrArgumentCount},
		{"missing randint argument", "x = randint()", ErrArgumentCount},
		{"top-level return", "return 1", ErrReturnOutside},
		{
			"nested function definition",
			"function a(void) { function b(void) { return 1 } }",
			ErrSyntax,
		},
		{
			"redefined function",
			"function a(void) { return 1 }\nfunction a(void) { return 2 }",
			ErrRedefinedFunction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(context.Background(), t.Name(), tt.source)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.source)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("Compile(%q) = %v, want %v", tt.source, err, tt.want)
			}
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Compile(context.Background(), t.Name(), "a = 1\nx + 1 = 59")
	if err == nil {
		t.Fatal("Compile succeeded, want error")
	}

	pe := &ParseError{}
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not a ParseError", err)
	}

	if pe.Pos.Line != 2 {
		t.Errorf("error at line %d, want 2", pe.Pos.Line)
	}

	msg := pe.Error()
	if !strings.Contains(msg, "x + 1 = 59") {
		t.Errorf("message %q does not quote the offending line", msg)
	}

	if !strings.Contains(msg, "^") {
		t.Errorf("message %q has no caret marker", msg)
	}
}

func TestCompile_FunctionsExposed(t *testing.T) {
	cb := mustCompile(t, "function twice(number n) { return n * 2 }")

	var names []string
	for fn := range cb.Functions() {
		names = append(names, fn.Name)
	}

	found := false

	for _, name := range names {
		if name == "twice" {
			found = true
		}
	}

	if !found {
		t.Errorf("Functions() = %v, missing %q", names, "twice")
	}
}

func TestCompile_HashDistinguishesSources(t *testing.T) {
	a := mustCompile(t, "x = 1")
	b := mustCompile(t, "x = 2")

	if a.Hash() == b.Hash() {
		t.Error("distinct sources share a hash")
	}

	c := mustCompile(t, "x = 1")
	if a.Hash() != c.Hash() {
		t.Error("identical sources hash differently")
	}
}
