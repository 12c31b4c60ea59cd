package script

// lexKind classifies a lexical token.
type lexKind uint8

const (
	lexEOF lexKind = iota
	lexIllegal

	lexInt
	lexFloat
	lexIdent

	lexIf
	lexElseif
	lexElse
	lexFunction
	lexReturn
	lexGlobal
	lexAnd
	lexOr
	lexNot

	lexAssign  // =
	lexEq      // ==
	lexNeq     // !=
	lexLess    // <
	lexLessEq  // <=
	lexGreat   // >
	lexGreatEq // >=
	lexPlus    // +
	lexMinus   // -
	lexStar    // *
	lexSlash   // /
	lexPercent // %
	lexCaret   // ^
	lexLParen  // (
	lexRParen  // )
	lexLBrace  // {
	lexRBrace  // }
	lexComma   // ,
)

// keywords maps reserved identifiers to their token kinds.
// The type names "number" and "void" are contextual, not reserved.
var keywords = map[string]lexKind{
	"if":       lexIf,
	"elseif":   lexElseif,
	"else":     lexElse,
	"function": lexFunction,
	"return":   lexReturn,
	"global":   lexGlobal,
	"and":      lexAnd,
	"or":       lexOr,
	"not":      lexNot,
}

// lexeme is one scanned token with its source position.
type lexeme struct {
	text string
	pos  Position
	kind lexKind
}

// scanner converts source bytes into lexemes.
// It tracks line and column for error reporting and discards whitespace
// and '#' line comments.
type scanner struct {
	input []byte
	pos   int
	line  int
	col   int
}

func newScanner(src string) *scanner {
	return &scanner{input: []byte(src), line: 1, col: 1}
}

func (s *scanner) position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *scanner) eof() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}

	return s.input[s.pos]
}

func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}

	return s.input[s.pos+n]
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	if s.input[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.pos++
}

// next scans and returns the next lexeme.
func (s *scanner) next() lexeme {
	s.skipBlanks()

	pos := s.position()

	if s.eof() {
		return lexeme{kind: lexEOF, pos: pos}
	}

	ch := s.peek()

	switch {
	case isDigit(ch):
		return s.scanNumber(pos)
	case isAlpha(ch):
		return s.scanIdentifier(pos)
	}

	return s.scanOperator(pos)
}

// skipBlanks discards whitespace and '#' comments.
func (s *scanner) skipBlanks() {
	for !s.eof() {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '#':
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

// scanNumber scans an integer or float literal.
// Floats require a leading digit; a decimal point and/or exponent promotes
// the literal to float.
func (s *scanner) scanNumber(pos Position) lexeme {
	start := s.pos
	kind := lexInt

	for !s.eof() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' {
		kind = lexFloat

		s.advance()

		for !s.eof() && isDigit(s.peek()) {
			s.advance()
		}
	}

	if s.peek() == 'e' || s.peek() == 'E' {
		after := s.peekAt(1)
		signed := after == '+' || after == '-'

		if isDigit(after) || (signed && isDigit(s.peekAt(2))) {
			kind = lexFloat

			s.advance() // e

			if signed {
				s.advance()
			}

			for !s.eof() && isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	return lexeme{kind: kind, text: string(s.input[start:s.pos]), pos: pos}
}

// scanIdentifier scans an identifier or keyword.
// Identifiers start with a letter and continue with letters, digits, and
// the characters '.', '_', '$'.
func (s *scanner) scanIdentifier(pos Position) lexeme {
	start := s.pos

	for !s.eof() && isIdentTail(s.peek()) {
		s.advance()
	}

	text := string(s.input[start:s.pos])
	if kind, ok := keywords[text]; ok {
		return lexeme{kind: kind, text: text, pos: pos}
	}

	return lexeme{kind: lexIdent, text: text, pos: pos}
}

func (s *scanner) scanOperator(pos Position) lexeme {
	ch := s.peek()
	s.advance()

	two := func(kind lexKind, text string) lexeme {
		s.advance()

		return lexeme{kind: kind, text: text, pos: pos}
	}

	switch ch {
	case '=':
		if s.peek() == '=' {
			return two(lexEq, "==")
		}

		return lexeme{kind: lexAssign, text: "=", pos: pos}
	case '!':
		if s.peek() == '=' {
			return two(lexNeq, "!=")
		}
	case '<':
		if s.peek() == '=' {
			return two(lexLessEq, "<=")
		}

		return lexeme{kind: lexLess, text: "<", pos: pos}
	case '>':
		if s.peek() == '=' {
			return two(lexGreatEq, ">=")
		}

		return lexeme{kind: lexGreat, text: ">", pos: pos}
	case '+':
		return lexeme{kind: lexPlus, text: "+", pos: pos}
	case '-':
		return lexeme{kind: lexMinus, text: "-", pos: pos}
	case '*':
		return lexeme{kind: lexStar, text: "*", pos: pos}
	case '/':
		return lexeme{kind: lexSlash, text: "/", pos: pos}
	case '%':
		return lexeme{kind: lexPercent, text: "%", pos: pos}
	case '^':
		return lexeme{kind: lexCaret, text: "^", pos: pos}
	case '(':
		return lexeme{kind: lexLParen, text: "(", pos: pos}
	case ')':
		return lexeme{kind: lexRParen, text: ")", pos: pos}
	case '{':
		return lexeme{kind: lexLBrace, text: "{", pos: pos}
	case '}':
		return lexeme{kind: lexRBrace, text: "}", pos: pos}
	case ',':
		return lexeme{kind: lexComma, text: ",", pos: pos}
	}

	return lexeme{kind: lexIllegal, text: string(ch), pos: pos}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentTail(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '.' || ch == '_' || ch == '$'
}
