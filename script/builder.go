package script

import (
	"log/slog"

	"github.com/ardnew/gamescript/log"
)

// node is one entry in a block: either a statement or a conditional.
type node interface {
	isNode()
}

func (statement) isNode()    {}
func (*conditional) isNode() {}

// block is an ordered sequence of statements and conditionals.
type block struct {
	nodes []node
}

func (b *block) append(n node) { b.nodes = append(b.nodes, n) }

// conditional is an if/elseif/else chain.
// Every branch except a trailing else carries a condition statement.
type conditional struct {
	branches []*branch
}

// branch is one arm of a conditional with its nested block.
type branch struct {
	keyword string    // "if", "elseif", or "else"
	cond    statement // nil for else
	body    *block
}

// Function describes a callable: either a script-defined function with a
// compiled body, or a builtin backed by a native Go function.
type Function struct {
	Name    string
	Params  []string
	Builtin func(args []Value) (Value, error)

	body *block
	code []stmtFunc
}

// Arity returns the number of arguments the function accepts.
func (f *Function) Arity() int { return len(f.Params) }

// builder assembles the postfix intermediate form during recognition.
// One builder serves exactly one compilation; the recognizer feeds it
// through the push and begin/end callbacks as productions complete.
type builder struct {
	program *block
	cursor  []*block       // append targets; top receives new nodes
	conds   []*conditional // open if/elseif/else chains
	scratch statement      // postfix tokens of the statement in progress
	funcs   map[string]*Function
	order   []string  // function definition order
	current *Function // function body under construction
	logger  log.Logger
}

// newBuilder creates a builder seeded with the callable functions known
// before compilation begins (builtins and host-registered functions).
func newBuilder(funcs map[string]*Function, logger log.Logger) *builder {
	program := new(block)

	known := make(map[string]*Function, len(funcs))
	for name, fn := range funcs {
		known[name] = fn
	}

	return &builder{
		program: program,
		cursor:  []*block{program},
		funcs:   known,
		logger:  logger,
	}
}

// top returns the current append target.
func (b *builder) top() *block { return b.cursor[len(b.cursor)-1] }

// lookup returns the named function, builtin or script-defined.
func (b *builder) lookup(name string) (*Function, bool) {
	fn, ok := b.funcs[name]

	return fn, ok
}

// pushLiteral appends a literal operand to the statement in progress.
func (b *builder) pushLiteral(v Value) {
	b.scratch = append(b.scratch, token{kind: tokenLiteral, lit: v})
}

// pushSymbol appends a symbol read to the statement in progress.
func (b *builder) pushSymbol(name string) {
	b.scratch = append(b.scratch, token{kind: tokenSymbol, name: name})
}

// pushOperator appends an operator after its operands.
func (b *builder) pushOperator(op Op) {
	b.scratch = append(b.scratch, token{kind: tokenOperator, op: op})
}

// pushNegate appends a unary minus marker after its operand.
func (b *builder) pushNegate() {
	b.scratch = append(b.scratch, token{kind: tokenNegate})
}

// pushCall appends a call marker after its argument token runs.
func (b *builder) pushCall(name string, argc int) {
	b.scratch = append(b.scratch, token{kind: tokenCall, name: name, argc: argc})
}

// take removes and returns the statement in progress.
func (b *builder) take() statement {
	s := b.scratch
	b.scratch = nil

	return s
}

// assign closes the statement in progress as an assignment to target.
func (b *builder) assign(target string, global bool) {
	s := make(statement, 0, len(b.scratch)+2)
	s = append(s, token{kind: tokenTarget, name: target, global: global})
	s = append(s, b.scratch...)
	s = append(s, token{kind: tokenAssign})

	b.scratch = nil
	b.top().append(s)

	b.logger.Trace("assignment",
		slog.String("target", target),
		slog.Bool("global", global),
		slog.String("postfix", s.String()),
	)
}

// ret closes the statement in progress as a return statement.
func (b *builder) ret() {
	s := append(b.take(), token{kind: tokenReturn})
	b.top().append(s)
}

// openConditional starts a new if/elseif/else chain in the current block.
func (b *builder) openConditional() {
	c := new(conditional)
	b.top().append(c)
	b.conds = append(b.conds, c)
}

// openBranch adds a branch to the innermost open conditional and redirects
// the append cursor into its body. cond is nil for an else branch.
func (b *builder) openBranch(keyword string, cond statement) {
	body := new(block)
	c := b.conds[len(b.conds)-1]
	c.branches = append(c.branches, &branch{
		keyword: keyword,
		cond:    cond,
		body:    body,
	})
	b.cursor = append(b.cursor, body)
}

// closeBranch restores the append cursor to the enclosing block.
func (b *builder) closeBranch() {
	b.cursor = b.cursor[:len(b.cursor)-1]
}

// closeConditional ends the innermost open chain.
func (b *builder) closeConditional() {
	b.conds = b.conds[:len(b.conds)-1]
}

// openFunction starts a function definition and redirects the append cursor
// into its body. Redefinition and nesting are fatal.
func (b *builder) openFunction(name string, params []string) error {
	if b.current != nil {
		return ErrNestedFunction.With(slog.String("function", name))
	}

	if _, exists := b.funcs[name]; exists {
		return ErrRedefinedFunction.With(slog.String("function", name))
	}

	fn := &Function{
		Name:   name,
		Params: params,
		body:   new(block),
	}

	b.funcs[name] = fn
	b.order = append(b.order, name)
	b.current = fn
	b.cursor = append(b.cursor, fn.body)

	return nil
}

// closeFunction ends the function definition, folds its body, and compiles
// it immediately so subsequent code can call it.
func (b *builder) closeFunction() error {
	fn := b.current

	b.cursor = b.cursor[:len(b.cursor)-1]
	b.current = nil

	foldBlock(fn.body)

	code, err := compileFunctionBody(fn, b.funcs)
	if err != nil {
		return err
	}

	fn.code = code

	b.logger.Trace("function compiled",
		slog.String("function", fn.Name),
		slog.Int("params", len(fn.Params)),
	)

	return nil
}
