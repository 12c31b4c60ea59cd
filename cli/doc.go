// Package cli contains the command line interface for gamescript.
//
// # Commands
//
//   - run: load a YAML scene manifest, register its code blocks with one
//     engine, and execute them in order
//   - eval: compile one or more script source files (or stdin) as a single
//     code block and execute it
//   - repl: interactive read-eval-print loop with completion and history
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/gamescript/pprof)
//
// # Examples
//
//	# Run a scene manifest with debug logging
//	gamescript --log-level=debug run scene.yaml
//
//	# Evaluate a script from stdin and print its symbol table
//	echo 'x = 3^2 * 2' | gamescript eval -
//
//	# Interactive session
//	gamescript repl
package cli
