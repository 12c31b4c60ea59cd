package script

import (
	"strconv"

	"github.com/ardnew/gamescript/log"
)

// parser recognizes the scripting grammar over a stream of lexemes, feeding
// the intermediate builder as productions complete.
type parser struct {
	scan       *scanner
	b          *builder
	source     string
	cur        lexeme
	inFunction bool
	logger     log.Logger
}

func newParser(source string, b *builder, logger log.Logger) *parser {
	p := &parser{
		scan:   newScanner(source),
		b:      b,
		source: source,
		logger: logger,
	}
	p.cur = p.scan.next()

	return p
}

func (p *parser) advance() { p.cur = p.scan.next() }

// accept consumes the current lexeme if it has the given kind.
func (p *parser) accept(kind lexKind) bool {
	if p.cur.kind == kind {
		p.advance()

		return true
	}

	return false
}

// fail constructs a ParseError at the current lexeme.
func (p *parser) fail(msg string, expected ...string) *ParseError {
	return NewParseError(msg, p.source, p.cur.pos).Expecting(expected...)
}

// failWith constructs a ParseError that unwraps to the given sentinel.
func (p *parser) failWith(err *Error, msg string) *ParseError {
	pe := NewParseError(msg, p.source, p.cur.pos)
	pe.Err = err

	return pe
}

// expect consumes a lexeme of the given kind or fails.
func (p *parser) expect(kind lexKind, symbol string) error {
	if !p.accept(kind) {
		return p.fail("unexpected "+strconv.Quote(p.cur.text), symbol)
	}

	return nil
}

// parseProgram recognizes the whole source: a sequence of assignments,
// conditionals, and top-level function definitions.
func (p *parser) parseProgram() error {
	for p.cur.kind != lexEOF {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
	}

	return nil
}

func (p *parser) parseTopLevel() error {
	switch p.cur.kind {
	case lexFunction:
		return p.parseFunctionDef()
	case lexReturn:
		return p.failWith(ErrReturnOutside, "return outside function body")
	default:
		return p.parseStatement()
	}
}

// parseStatement recognizes the statements legal inside any block:
// assignments and conditionals, plus returns inside function bodies.
func (p *parser) parseStatement() error {
	switch p.cur.kind {
	case lexIf:
		return p.parseConditional()
	case lexReturn:
		if !p.inFunction {
			return p.failWith(ErrReturnOutside, "return outside function body")
		}

		return p.parseReturn()
	case lexGlobal, lexIdent:
		return p.parseAssignment()
	case lexIllegal:
		return p.fail("unexpected character " + strconv.Quote(p.cur.text))
	default:
		return p.fail("unexpected "+strconv.Quote(p.cur.text),
			"assignment", "if")
	}
}

// parseAssignment recognizes: [global] name '=' combinatorial.
func (p *parser) parseAssignment() error {
	global := p.accept(lexGlobal)

	target := p.cur.text
	if err := p.expect(lexIdent, "identifier"); err != nil {
		return err
	}

	if err := p.expect(lexAssign, "="); err != nil {
		return err
	}

	if err := p.parseCombinatorial(); err != nil {
		return err
	}

	p.b.assign(target, global)

	return nil
}

// parseReturn recognizes: 'return' combinatorial.
func (p *parser) parseReturn() error {
	p.advance() // return

	if err := p.parseCombinatorial(); err != nil {
		return err
	}

	p.b.ret()

	return nil
}

// parseConditional recognizes an if/elseif/else chain. Each condition is
// parenthesized and each body is brace-delimited.
func (p *parser) parseConditional() error {
	p.b.openConditional()
	defer p.b.closeConditional()

	keyword := "if"

	for {
		p.advance() // if or elseif

		if err := p.expect(lexLParen, "("); err != nil {
			return err
		}

		if err := p.parseCombinatorial(); err != nil {
			return err
		}

		cond := p.b.take()

		if err := p.expect(lexRParen, ")"); err != nil {
			return err
		}

		p.b.openBranch(keyword, cond)

		err := p.parseBraceBlock()

		p.b.closeBranch()

		if err != nil {
			return err
		}

		switch p.cur.kind {
		case lexElseif:
			keyword = "elseif"

			continue
		case lexElse:
			p.advance()
			p.b.openBranch("else", nil)

			err := p.parseBraceBlock()

			p.b.closeBranch()

			return err
		default:
			return nil
		}
	}
}

// parseBraceBlock recognizes: '{' statement* '}'.
func (p *parser) parseBraceBlock() error {
	if err := p.expect(lexLBrace, "{"); err != nil {
		return err
	}

	for p.cur.kind != lexRBrace {
		if p.cur.kind == lexEOF {
			return p.fail("unterminated block", "}")
		}

		if err := p.parseStatement(); err != nil {
			return err
		}
	}

	p.advance() // }

	return nil
}

// parseFunctionDef recognizes a top-level function definition:
//
//	'function' name '(' param-decls ')' '{' body '}'
//
// Parameter declarations are "number name" pairs separated by commas, or
// the single keyword "void" for a function taking no arguments.
func (p *parser) parseFunctionDef() error {
	p.advance() // function

	name := p.cur.text
	if err := p.expect(lexIdent, "identifier"); err != nil {
		return err
	}

	if err := p.expect(lexLParen, "("); err != nil {
		return err
	}

	params, err := p.parseParamDecls()
	if err != nil {
		return err
	}

	if err := p.expect(lexRParen, ")"); err != nil {
		return err
	}

	if err := p.b.openFunction(name, params); err != nil {
		return err
	}

	p.inFunction = true

	err = p.parseBraceBlock()

	p.inFunction = false

	if err != nil {
		return err
	}

	return p.b.closeFunction()
}

func (p *parser) parseParamDecls() ([]string, error) {
	if p.cur.kind == lexRParen {
		return nil, p.failWith(ErrParamType,
			"missing parameter declarations").Expecting("number", "void")
	}

	if p.cur.kind == lexIdent && p.cur.text == "void" {
		p.advance()

		return nil, nil
	}

	var params []string

	for {
		if p.cur.kind != lexIdent || p.cur.text != "number" {
			return nil, p.failWith(ErrParamType,
				"missing type name in parameter declaration").
				Expecting("number", "void")
		}

		p.advance() // number

		params = append(params, p.cur.text)
		if err := p.expect(lexIdent, "identifier"); err != nil {
			return nil, err
		}

		if !p.accept(lexComma) {
			return params, nil
		}
	}
}

// parseCombinatorial recognizes the lowest-precedence expression level:
//
//	[not] comparison { (or | and) [not] comparison }
//
// Comparisons bind tighter than 'and' and 'or', so a condition like
// `a > b and c < d` groups as `(a > b) and (c < d)`.
func (p *parser) parseCombinatorial() error {
	if err := p.parseNegatable(); err != nil {
		return err
	}

	for {
		var op Op

		switch p.cur.kind {
		case lexAnd:
			op = OpAnd
		case lexOr:
			op = OpOr
		default:
			return nil
		}

		p.advance()

		if err := p.parseNegatable(); err != nil {
			return err
		}

		p.b.pushOperator(op)
	}
}

// parseNegatable recognizes: [not] comparison.
func (p *parser) parseNegatable() error {
	negated := p.accept(lexNot)

	if err := p.parseComparison(); err != nil {
		return err
	}

	if negated {
		p.b.pushOperator(OpNot)
	}

	return nil
}

// parseComparison recognizes: expr { cmp expr }.
func (p *parser) parseComparison() error {
	if err := p.parseExpr(); err != nil {
		return err
	}

	for {
		op, ok := comparisonOp(p.cur.kind)
		if !ok {
			return nil
		}

		p.advance()

		if err := p.parseExpr(); err != nil {
			return err
		}

		p.b.pushOperator(op)
	}
}

func comparisonOp(kind lexKind) (Op, bool) {
	switch kind {
	case lexLess:
		return OpLT, true
	case lexLessEq:
		return OpLE, true
	case lexGreat:
		return OpGT, true
	case lexGreatEq:
		return OpGE, true
	case lexEq:
		return OpEQ, true
	case lexNeq:
		return OpNE, true
	default:
		return 0, false
	}
}

// parseExpr recognizes additive expressions.
func (p *parser) parseExpr() error {
	if err := p.parseTerm(); err != nil {
		return err
	}

	for {
		var op Op

		switch p.cur.kind {
		case lexPlus:
			op = OpAdd
		case lexMinus:
			op = OpSub
		default:
			return nil
		}

		p.advance()

		if err := p.parseTerm(); err != nil {
			return err
		}

		p.b.pushOperator(op)
	}
}

// parseTerm recognizes multiplicative expressions.
func (p *parser) parseTerm() error {
	if err := p.parseFactor(); err != nil {
		return err
	}

	for {
		var op Op

		switch p.cur.kind {
		case lexStar:
			op = OpMul
		case lexSlash:
			op = OpDiv
		case lexPercent:
			op = OpMod
		default:
			return nil
		}

		p.advance()

		if err := p.parseFactor(); err != nil {
			return err
		}

		p.b.pushOperator(op)
	}
}

// parseFactor recognizes exponentiation, which is right-associative:
// 2^3^2 evaluates as 2^(3^2).
func (p *parser) parseFactor() error {
	if err := p.parseUnary(); err != nil {
		return err
	}

	if p.accept(lexCaret) {
		if err := p.parseFactor(); err != nil {
			return err
		}

		p.b.pushOperator(OpPow)
	}

	return nil
}

// parseUnary recognizes leading unary minus signs. Each one appends a
// negate marker after its operand; the folder collapses literal cases.
func (p *parser) parseUnary() error {
	minus := 0
	for p.accept(lexMinus) {
		minus++
	}

	if err := p.parseAtom(); err != nil {
		return err
	}

	for range minus {
		p.b.pushNegate()
	}

	return nil
}

// parseAtom recognizes literals, symbol reads, function calls, and
// parenthesized subexpressions.
func (p *parser) parseAtom() error {
	switch p.cur.kind {
	case lexInt:
		i, err := strconv.ParseInt(p.cur.text, 10, 64)
		if err != nil {
			return p.fail("integer literal out of range")
		}

		p.b.pushLiteral(Int(i))
		p.advance()

		return nil

	case lexFloat:
		f, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return p.fail("malformed numeric literal")
		}

		p.b.pushLiteral(Float(f))
		p.advance()

		return nil

	case lexLParen:
		p.advance()

		if err := p.parseCombinatorial(); err != nil {
			return err
		}

		return p.expect(lexRParen, ")")

	case lexIdent:
		name := p.cur.text
		p.advance()

		if p.cur.kind == lexLParen {
			return p.parseCall(name)
		}

		p.b.pushSymbol(name)

		return nil

	default:
		return p.fail("unexpected "+strconv.Quote(p.cur.text), "operand")
	}
}

// parseCall recognizes a function invocation and validates its argument
// count against the callee's signature. Unknown names and arity mismatches
// are fatal during recognition.
func (p *parser) parseCall(name string) error {
	fn, known := p.b.lookup(name)
	if !known {
		return p.failWith(ErrUnknownFunction,
			"call to unknown function "+strconv.Quote(name))
	}

	p.advance() // (

	argc := 0

	if p.cur.kind != lexRParen {
		for {
			if err := p.parseCombinatorial(); err != nil {
				return err
			}

			argc++

			if !p.accept(lexComma) {
				break
			}
		}
	}

	if argc != fn.Arity() {
		return p.failWith(ErrArgumentCount,
			"function "+strconv.Quote(name)+" takes "+
				strconv.Itoa(fn.Arity())+" argument(s), got "+
				strconv.Itoa(argc))
	}

	if err := p.expect(lexRParen, ")"); err != nil {
		return err
	}

	p.b.pushCall(name, argc)

	return nil
}
