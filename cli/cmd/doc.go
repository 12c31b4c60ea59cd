// Package cmd implements the gamescript CLI subcommands.
//
// Each command is a struct bound to kong flags and arguments with a
// Run(ctx) method. Commands share one [script.Engine] per invocation and
// print symbol tables through the kong context's output writer.
package cmd
