package cmd

import (
	"context"
	"strings"

	"github.com/ardnew/gamescript/log"
	"github.com/ardnew/gamescript/script"
)

// Eval compiles one or more script sources as a single code block and
// executes it against a fresh engine.
type Eval struct {
	Sources []string `arg:""                                                                    default:"-" help:"Script source file(s) or '-' for stdin" name:"source" optional:""`
	Local   []string `       help:"Initial local symbol bindings (name=value)"                              short:"l"`
	Block   string   `       help:"Name to register the block under"            default:"main"`
	Dump    bool     `       help:"Print the resulting local symbol table"      default:"true"                                                                          negatable:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := readSources(e.Sources)
	if err != nil {
		return err
	}

	if strings.TrimSpace(source) == "" {
		return ErrNoSource
	}

	locals, err := parseBindings(e.Local)
	if err != nil {
		return err
	}

	engine := script.NewEngine(
		script.WithEngineLogger(log.Default()),
	)

	if err := engine.Register(ctx, e.Block, source); err != nil {
		return err
	}

	if err := engine.Execute(ctx, e.Block, locals); err != nil {
		return err
	}

	if e.Dump {
		if table, ok := engine.Locals(e.Block); ok {
			dumpTable(stdout(ctx), e.Block, table)
		}
	}

	return nil
}
