// Package script implements a small imperative scripting language for driving
// game object behavior from text resources.
//
// Source code passes through four stages:
//
//  1. A recognizer (hand-written scanner and recursive-descent parser)
//     validates the grammar and reports syntax errors with source context.
//  2. An intermediate builder converts each statement into postfix token
//     sequences, organized into a tree of blocks and conditional branches.
//  3. A constant folder collapses operations on literal operands.
//  4. A code generator lowers the folded form into native closures that
//     execute against a pair of symbol tables (globals and locals).
//
// The [Engine] type ties the stages together as a registry of named code
// blocks sharing one global symbol table:
//
//	e := script.NewEngine()
//	_ = e.Register(ctx, "spawn", "x = radius * 2\ny = distance(x, 0)")
//	_ = e.Execute(ctx, "spawn", map[string]script.Value{
//	    "radius": script.Int(5),
//	})
//
// Individual blocks can also be compiled and run without a registry via
// [Compile] and [CodeBlock.Run].
package script
