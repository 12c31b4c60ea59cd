package repl

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// completer cycles through fuzzy matches for the word at the cursor.
// Repeated invocations with the same word walk the candidate list.
type completer struct {
	word    string
	matches []string
	index   int
}

func newCompleter() *completer { return &completer{index: -1} }

// reset discards any in-progress completion cycle.
func (c *completer) reset() {
	c.word = ""
	c.matches = nil
	c.index = -1
}

// next returns the selected candidate and the input line with the word at
// cursor replaced by it. An empty candidate means nothing matched.
func (c *completer) next(input string, cursor int, candidates []string) (string, string) {
	word, start, end := wordBounds(input, cursor)

	if word != c.word || c.matches == nil {
		c.word = word
		c.matches = match(word, candidates)
		c.index = -1
	}

	if len(c.matches) == 0 {
		return "", input
	}

	c.index = (c.index + 1) % len(c.matches)
	pick := c.matches[c.index]

	return pick, input[:start] + pick + input[end:]
}

// hint renders the candidate list with the current selection bracketed.
func (c *completer) hint() string {
	if len(c.matches) < 2 {
		return ""
	}

	part := make([]string, len(c.matches))

	for i, m := range c.matches {
		if i == c.index {
			m = "[" + m + "]"
		}

		part[i] = m
	}

	return strings.Join(part, " ")
}

// match ranks candidates against word. An empty word matches everything.
func match(word string, candidates []string) []string {
	candidates = dedup(candidates)

	if word == "" {
		return candidates
	}

	ranked := fuzzy.Find(word, candidates)

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Str
	}

	return out
}

func dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]

	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}

// isWordBoundary reports whether r cannot appear in an identifier.
func isWordBoundary(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return false
	case r >= '0' && r <= '9':
		return false
	case r == '.', r == '_', r == '$':
		return false
	}

	return true
}

// wordBounds locates the identifier surrounding cursor in input,
// returning the word and its start and end offsets.
func wordBounds(input string, cursor int) (string, int, int) {
	runes := []rune(input)

	if cursor > len(runes) {
		cursor = len(runes)
	}

	start, end := cursor, cursor

	for start > 0 && !isWordBoundary(runes[start-1]) {
		start--
	}

	for end < len(runes) && !isWordBoundary(runes[end]) {
		end++
	}

	return string(runes[start:end]), start, end
}
