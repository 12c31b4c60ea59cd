package cmd

import (
	"context"

	"github.com/ardnew/gamescript/cli/cmd/repl"
)

// Repl starts an interactive read-eval-print loop.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	return repl.Run(ctx)
}
