package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/demonstrate/lang"
	"github.com/ardnew/demonstrate/log"
	"github.com/ardnew/demonstrate/pkg"
)

// Check parses and expands suite sources without emitting code, reporting any
// errors that generation would encounter. All sources are checked even when an
// earlier one fails.
type Check struct {
	Quiet bool `help:"Suppress the per-suite summary line" short:"q"`

	Sources []string `arg:"" optional:"" help:"Source input file(s) or '-' for default stdin." name:"sources"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources := c.Sources
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	var errs pkg.Error

	for _, source := range sources {
		if err := c.checkOne(ctx, source); err != nil {
			errs = errs.Wrap(
				lang.WrapError(err).
					With(slog.String("source", source)),
			)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// checkOne validates a single suite source.
func (c *Check) checkOne(ctx context.Context, source string) error {
	reader, closeInput, err := openInput(ctx, source)
	if err != nil {
		return err
	}
	defer closeInput()

	root, err := lang.ParseReader(ctx, reader)
	if err != nil {
		return err
	}

	suite, err := root.Generate(ctx)
	if err != nil {
		return err
	}

	units := 0
	for range suite.Units() {
		units++
	}

	log.DebugContext(
		ctx,
		"suite validated",
		slog.String("source", source),
		slog.Int("blocks", len(root.Blocks)),
		slog.Int("tests", units),
	)

	if !c.Quiet {
		fmt.Printf("%s: %d tests\n", source, units)
	}

	return nil
}
