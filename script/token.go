package script

import (
	"log/slog"
	"math"
	"strings"
)

// Op identifies a binary or unary operator in the postfix form.
type Op uint8

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpMod           // %
	OpPow           // ^
	OpLT            // <
	OpLE            // <=
	OpGT            // >
	OpGE            // >=
	OpEQ            // ==
	OpNE            // !=
	OpAnd           // and
	OpOr            // or
	OpNot           // not
)

var opNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "^",
	OpLT: "<", OpLE: "<=", OpGT: ">", OpGE: ">=", OpEQ: "==", OpNE: "!=",
	OpAnd: "and", OpOr: "or", OpNot: "not",
}

// String returns the operator's source spelling.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}

	return "?"
}

// Arity returns the number of operands the operator consumes.
func (op Op) Arity() int {
	if op == OpNot {
		return 1
	}

	return 2
}

// comparison reports whether the operator yields a boolean result.
func (op Op) comparison() bool { return op >= OpLT }

// eval applies the operator to its operands.
// Integer operands stay integers under arithmetic (division truncates
// toward zero); any float operand promotes the result to float. Power with
// an integer base and non-negative integer exponent stays integer.
// Comparisons and boolean operators yield booleans.
func (op Op) eval(args ...Value) (Value, error) {
	if len(args) != op.Arity() {
		return Value{}, ErrStackUnderflow.With(
			slog.String("operator", op.String()),
		)
	}

	if op == OpNot {
		return Bool(!args[0].Truthy()), nil
	}

	lhs, rhs := args[0], args[1]

	switch op {
	case OpAnd:
		return Bool(lhs.Truthy() && rhs.Truthy()), nil
	case OpOr:
		return Bool(lhs.Truthy() || rhs.Truthy()), nil
	}

	if op.comparison() {
		return op.compare(lhs, rhs), nil
	}

	return op.arith(lhs, rhs)
}

func (op Op) compare(lhs, rhs Value) Value {
	if lhs.Kind() != KindFloat && rhs.Kind() != KindFloat {
		a, b := lhs.AsInt(), rhs.AsInt()

		switch op {
		case OpLT:
			return Bool(a < b)
		case OpLE:
			return Bool(a <= b)
		case OpGT:
			return Bool(a > b)
		case OpGE:
			return Bool(a >= b)
		case OpEQ:
			return Bool(a == b)
		default:
			return Bool(a != b)
		}
	}

	a, b := lhs.AsFloat(), rhs.AsFloat()

	switch op {
	case OpLT:
		return Bool(a < b)
	case OpLE:
		return Bool(a <= b)
	case OpGT:
		return Bool(a > b)
	case OpGE:
		return Bool(a >= b)
	case OpEQ:
		return Bool(a == b)
	default:
		return Bool(a != b)
	}
}

func (op Op) arith(lhs, rhs Value) (Value, error) {
	if lhs.Kind() != KindFloat && rhs.Kind() != KindFloat {
		a, b := lhs.AsInt(), rhs.AsInt()

		switch op {
		case OpAdd:
			return Int(a + b), nil
		case OpSub:
			return Int(a - b), nil
		case OpMul:
			return Int(a * b), nil
		case OpDiv:
			if b == 0 {
				return Value{}, ErrDivisionByZero
			}

			return Int(a / b), nil
		case OpMod:
			if b == 0 {
				return Value{}, ErrDivisionByZero
			}

			return Int(a % b), nil
		case OpPow:
			if b >= 0 {
				return Int(ipow(a, b)), nil
			}
		}
	}

	a, b := lhs.AsFloat(), rhs.AsFloat()

	switch op {
	case OpAdd:
		return Float(a + b), nil
	case OpSub:
		return Float(a - b), nil
	case OpMul:
		return Float(a * b), nil
	case OpDiv:
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return Float(a / b), nil
	case OpMod:
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return Float(math.Mod(a, b)), nil
	default:
		return Float(math.Pow(a, b)), nil
	}
}

// ipow raises base to a non-negative integer exponent by squaring.
func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}

		base *= base
		exp >>= 1
	}

	return result
}

// tokenKind discriminates the variants of a postfix token.
type tokenKind uint8

const (
	tokenLiteral  tokenKind = iota // numeric or boolean constant
	tokenSymbol                    // symbol value read
	tokenTarget                    // assignment target (statement head)
	tokenOperator                  // binary or unary operator
	tokenCall                      // function invocation marker
	tokenNegate                    // unary minus marker
	tokenAssign                    // assignment terminator
	tokenReturn                    // return terminator
)

// token is one element of a statement's postfix sequence.
// Only the fields relevant to its kind are populated.
type token struct {
	name   string    // tokenSymbol, tokenTarget, tokenCall
	lit    Value     // tokenLiteral
	argc   int       // tokenCall
	op     Op        // tokenOperator
	kind   tokenKind
	global bool // tokenTarget
}

// statement is a postfix token sequence.
// Assignments are [target, operands..., assign]; returns are
// [operands..., return]; conditions are bare operand sequences.
type statement []token

func (s statement) String() string {
	var buf strings.Builder

	for i, t := range s {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch t.kind {
		case tokenLiteral:
			buf.WriteString(t.lit.String())
		case tokenSymbol:
			buf.WriteString(t.name)
		case tokenTarget:
			if t.global {
				buf.WriteString("global ")
			}

			buf.WriteString(t.name)
		case tokenOperator:
			buf.WriteString(t.op.String())
		case tokenCall:
			buf.WriteString(t.name + "()")
		case tokenNegate:
			buf.WriteString("neg")
		case tokenAssign:
			buf.WriteString("=")
		case tokenReturn:
			buf.WriteString("return")
		}
	}

	return buf.String()
}
