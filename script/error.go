package script

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax            = NewError("syntax error")
	ErrUnknownFunction   = NewError("call to unknown function")
	ErrArgumentCount     = NewError("wrong number of arguments")
	ErrRedefinedFunction = NewError("function redefined")
	ErrNestedFunction    = NewError("function definitions cannot nest")
	ErrParamType         = NewError("missing type name in parameter declaration")
	ErrReturnOutside     = NewError("return outside function body")
	ErrStackUnderflow    = NewError("operand stack underflow")
	ErrStackOverflow     = NewError("operands left on stack")
	ErrDivisionByZero    = NewError("division by zero")
	ErrCallDepth         = NewError("call depth limit exceeded")
	ErrDuplicateBlock    = NewError("code block already registered")
	ErrUnknownBlock      = NewError("code block not registered")
	ErrValueType         = NewError("unsupported value type")
	ErrValueRange        = NewError("value out of range")
	ErrReadSource        = NewError("failed to read source")
)

// Error represents an engine error with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e matches target by message identity.
// Sentinel errors compare equal to any derived Error sharing their message.
func (e *Error) Is(target error) bool {
	te := &Error{}
	if errors.As(target, &te) {
		return te.msg == e.msg
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Position locates a byte offset within source text.
type Position struct {
	Offset int
	Line   int // 1-based
	Column int // 1-based
}

// ParseError reports a recognition failure with source context.
// It unwraps to [ErrSyntax] and, when constructed with source text, renders
// the offending line with a caret marker at the error column.
type ParseError struct {
	Err      error // sentinel cause; defaults to ErrSyntax
	Msg      string
	Source   string
	Expected []string
	Pos      Position
}

// NewParseError creates a ParseError at the given position.
func NewParseError(msg, source string, pos Position) *ParseError {
	return &ParseError{
		Msg:    msg,
		Source: source,
		Pos:    pos,
	}
}

// Expecting records the token(s) the recognizer would have accepted.
func (e *ParseError) Expecting(tokens ...string) *ParseError {
	e.Expected = append(e.Expected, tokens...)

	return e
}

// Unwrap makes errors.Is(err, ErrSyntax) hold for all parse errors, unless
// a more specific sentinel cause was recorded.
func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}

	return ErrSyntax
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteString("\n")
		buf.WriteString(snippet)
	}

	if len(e.Expected) > 0 {
		buf.WriteString("\texpected: ")
		buf.WriteString(strings.Join(e.Expected, ", "))
	}

	return buf.String()
}

// Snippet renders the offending source line with a caret marker pointing at
// the error column. It returns "" if the source or position is unavailable.
func (e *ParseError) Snippet() string {
	if e.Source == "" || e.Pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	line := lines[e.Pos.Line-1]

	var src strings.Builder

	num := strconv.Itoa(e.Pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	return src.String() + padding + "^\n"
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Msg),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.String("expected", strings.Join(e.Expected, ", ")),
	)
}
