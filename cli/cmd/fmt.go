package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/demonstrate/lang"
)

// Fmt reads a suite, parses it, and reprints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native suite syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	Tree   Tree   `cmd:""                    help:"Format as a block tree."`
}

// Native formats input as native suite syntax.
type Native struct {
	Indent int `default:"4" help:"Indent width for formatted output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := parseSource(ctx, f.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "native"))
	}

	return root.Format(ctx, os.Stdout, f.Indent)
}

// JSON reads a suite, parses it, and outputs it as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := parseSource(ctx, j.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "json"))
	}

	return root.FormatJSON(ctx, os.Stdout, j.Indent)
}

// YAML reads a suite, parses it, and outputs it as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := parseSource(ctx, y.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "yaml"))
	}

	return root.FormatYAML(ctx, os.Stdout, y.Indent)
}

// Tree formats input as an indented block tree.
type Tree struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := parseSource(ctx, t.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "tree"))
	}

	root.Print(os.Stdout)

	return nil
}

// parseSource opens and parses a single source argument.
func parseSource(ctx context.Context, source string) (*lang.Root, error) {
	reader, closeInput, err := openInput(ctx, source)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	return lang.ParseReader(ctx, reader)
}
