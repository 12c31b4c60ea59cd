package repl

import (
	"slices"
	"testing"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   string
		start  int
		end    int
	}{
		{"cursor at end", "x = dist", 8, "dist", 4, 8},
		{"cursor inside word", "x = dist", 6, "dist", 4, 8},
		{"cursor on boundary", "x = ", 4, "", 4, 4},
		{"empty input", "", 0, "", 0, 0},
		{"dotted identifier", "self.speed", 10, "self.speed", 0, 10},
		{"cursor past end clamps", "ab", 5, "ab", 0, 2},
		{"word between operators", "1+abc+2", 4, "abc", 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)

			if word != tt.want || start != tt.start || end != tt.end {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.want, tt.start, tt.end)
			}
		})
	}
}

func TestIsWordBoundary(t *testing.T) {
	for _, r := range "abzAZ09._$" {
		if isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = true, want false", r)
		}
	}

	for _, r := range " +-*/^(){}=<>,#" {
		if !isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = false, want true", r)
		}
	}
}

func TestCompleter_CyclesMatches(t *testing.T) {
	c := newCompleter()
	candidates := []string{"distance", "dist_max", "randint"}

	pick, line := c.next("x = dis", 7, candidates)
	if pick == "" {
		t.Fatal("no completion for matching prefix")
	}

	if line != "x = "+pick {
		t.Errorf("replaced line = %q, want %q", line, "x = "+pick)
	}

	// A second invocation with the same word advances the cycle.
	second, _ := c.next("x = dis", 7, candidates)
	if second == pick {
		t.Errorf("cycle stuck on %q", pick)
	}
}

func TestCompleter_NoMatch(t *testing.T) {
	c := newCompleter()

	pick, line := c.next("x = zzz", 7, []string{"distance"})
	if pick != "" {
		t.Errorf("completion = %q, want none", pick)
	}

	if line != "x = zzz" {
		t.Errorf("input mutated to %q", line)
	}
}

func TestCompleter_ResetRestartsCycle(t *testing.T) {
	c := newCompleter()
	candidates := []string{"aa1", "aa2"}

	first, _ := c.next("aa", 2, candidates)

	c.reset()

	again, _ := c.next("aa", 2, candidates)
	if again != first {
		t.Errorf("after reset, cycle starts at %q, want %q", again, first)
	}
}

func TestMatch_EmptyWordReturnsAll(t *testing.T) {
	got := match("", []string{"b", "a", "b"})

	if !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("match(\"\") = %v, want deduplicated input order", got)
	}
}

func TestHistory_Navigation(t *testing.T) {
	h := newHistory()

	if _, ok := h.prev(); ok {
		t.Error("prev on empty history succeeded")
	}

	h.push("first")
	h.push("second")
	h.push("second") // consecutive duplicate collapsed

	line, ok := h.prev()
	if !ok || line != "second" {
		t.Errorf("prev = %q, want %q", line, "second")
	}

	line, ok = h.prev()
	if !ok || line != "first" {
		t.Errorf("prev = %q, want %q", line, "first")
	}

	if _, ok := h.prev(); ok {
		t.Error("prev ran past the oldest line")
	}

	line, ok = h.next()
	if !ok || line != "second" {
		t.Errorf("next = %q, want %q", line, "second")
	}

	// Stepping past the newest entry restores an empty prompt.
	line, ok = h.next()
	if !ok || line != "" {
		t.Errorf("next past newest = (%q, %v), want empty", line, ok)
	}

	if _, ok := h.next(); ok {
		t.Error("next ran past the prompt position")
	}
}
