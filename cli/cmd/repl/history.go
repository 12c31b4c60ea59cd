package repl

// history is an in-memory line history with up/down navigation.
// Position resets to the end whenever a line is pushed.
type history struct {
	lines []string
	pos   int
}

func newHistory() *history { return &history{} }

// push records a line and resets the navigation position.
// Consecutive duplicates are collapsed.
func (h *history) push(line string) {
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
	}

	h.pos = len(h.lines)
}

// prev steps backward and returns the line there, if any.
func (h *history) prev() (string, bool) {
	if h.pos == 0 {
		return "", false
	}

	h.pos--

	return h.lines[h.pos], true
}

// next steps forward. Past the newest line it returns empty input,
// restoring the prompt.
func (h *history) next() (string, bool) {
	if h.pos >= len(h.lines) {
		return "", false
	}

	h.pos++

	if h.pos == len(h.lines) {
		return "", true
	}

	return h.lines[h.pos], true
}
