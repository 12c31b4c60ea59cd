package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/gamescript/log"
	"github.com/ardnew/gamescript/script"
)

// Run loads a YAML scene manifest, registers its code blocks with one
// engine, and executes them in order.
type Run struct {
	Manifest string `arg:"" help:"Scene manifest (YAML)"                 name:"manifest" type:"existingfile"`
	Dump     bool   `       help:"Print symbol tables after execution"   default:"true"                      negatable:""`
}

// manifest is the YAML document describing a scene: predefined constants,
// named code blocks, and the order to execute them in.
//
//	constants:
//	  screen_width: 640
//	blocks:
//	  - name: setup
//	    source: |
//	      x = screen_width / 2
//	  - name: spawn
//	    file: scripts/spawn.gs
//	execute: [setup, spawn]
type manifest struct {
	Constants map[string]any  `yaml:"constants"`
	Blocks    []manifestBlock `yaml:"blocks"`
	Execute   []string        `yaml:"execute"`
}

// manifestBlock names one code block with inline source or a file path
// relative to the manifest.
type manifestBlock struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	File   string `yaml:"file"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	data, err := os.ReadFile(r.Manifest)
	if err != nil {
		return ErrReadManifest.Wrap(err)
	}

	var scene manifest

	if err := yaml.Unmarshal(data, &scene); err != nil {
		return ErrBadManifest.Wrap(err)
	}

	engine := script.NewEngine(
		script.WithEngineLogger(log.Default()),
	)

	for name, raw := range scene.Constants {
		value, err := script.ValueOf(raw)
		if err != nil {
			return ErrBadManifest.Wrap(err).
				With(slog.String("constant", name))
		}

		engine.SetConstant(name, value)
	}

	for _, blk := range scene.Blocks {
		source, err := r.blockSource(blk)
		if err != nil {
			return err
		}

		if err := engine.Register(ctx, blk.Name, source); err != nil {
			return err
		}
	}

	order := scene.Execute
	if len(order) == 0 {
		for _, blk := range scene.Blocks {
			order = append(order, blk.Name)
		}
	}

	for _, name := range order {
		if err := engine.Execute(ctx, name, nil); err != nil {
			return err
		}
	}

	if r.Dump {
		w := stdout(ctx)

		dumpTable(w, "globals", engine.Globals())

		for _, name := range order {
			if table, ok := engine.Locals(name); ok {
				dumpTable(w, name, table)
			}
		}
	}

	return nil
}

// blockSource resolves a manifest block to its source text.
// Inline source wins; file paths are relative to the manifest.
func (r *Run) blockSource(blk manifestBlock) (string, error) {
	if blk.Source != "" {
		return blk.Source, nil
	}

	if blk.File == "" {
		return "", ErrBadManifest.With(
			slog.String("block", blk.Name),
			slog.String("reason", "block needs source or file"),
		)
	}

	path := blk.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(r.Manifest), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrReadManifest.Wrap(err).
			With(slog.String("block", blk.Name))
	}

	return string(data), nil
}
