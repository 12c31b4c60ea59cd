package script

// foldBlock applies constant folding to every statement in a block tree,
// including conditional conditions and branch bodies.
func foldBlock(b *block) {
	for i, n := range b.nodes {
		switch t := n.(type) {
		case statement:
			b.nodes[i] = foldStatement(t)
		case *conditional:
			for _, br := range t.branches {
				if br.cond != nil {
					br.cond = foldStatement(br.cond)
				}

				foldBlock(br.body)
			}
		}
	}
}

// foldStatement repeatedly replaces operators whose operands are all
// literals with the computed literal, until no further reduction applies.
// Folding evaluates with the same operator semantics as the runtime, so a
// folded comparison becomes the integer 1 or 0.
func foldStatement(s statement) statement {
	for {
		reduced, changed := foldOnce(s)
		if !changed {
			return reduced
		}

		s = reduced
	}
}

// foldOnce performs a single left-to-right folding pass.
func foldOnce(s statement) (statement, bool) {
	for i, t := range s {
		switch t.kind {
		case tokenNegate:
			if i >= 1 && s[i-1].kind == tokenLiteral {
				return splice(s, i-1, i, negate(s[i-1].lit)), true
			}

		case tokenOperator:
			n := t.op.Arity()
			if i < n || !allLiterals(s[i-n:i]) {
				continue
			}

			args := make([]Value, n)
			for k, operand := range s[i-n : i] {
				args[k] = operand.lit
			}

			v, err := t.op.eval(args...)
			if err != nil {
				// Faults like division by zero are left for the runtime
				// to report in context.
				continue
			}

			return splice(s, i-n, i, v.Normalize()), true
		}
	}

	return s, false
}

// splice replaces tokens s[lo..hi] (inclusive) with a single literal.
func splice(s statement, lo, hi int, v Value) statement {
	out := make(statement, 0, len(s)-(hi-lo))
	out = append(out, s[:lo]...)
	out = append(out, token{kind: tokenLiteral, lit: v})
	out = append(out, s[hi+1:]...)

	return out
}

func allLiterals(toks []token) bool {
	for _, t := range toks {
		if t.kind != tokenLiteral {
			return false
		}
	}

	return true
}

func negate(v Value) Value {
	if v.Kind() == KindFloat {
		return Float(-v.AsFloat())
	}

	return Int(-v.AsInt())
}
