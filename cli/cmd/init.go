package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/demonstrate/lang"
	"github.com/ardnew/demonstrate/log"
)

// defaultSuiteIndent is the indent width used when writing the starter suite.
const defaultSuiteIndent = 4

// Init writes a starter suite file demonstrating the block syntax.
type Init struct {
	Force bool `help:"Overwrite an existing suite file" short:"f"`

	Path string `arg:"" default:"suite.demo" help:"Path of the suite file to create." name:"path"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	// Check if file exists and force not set
	_, err = os.Stat(i.Path)
	if err == nil && !i.Force {
		return ErrWriteFile.
			With(slog.String("file", i.Path)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(i.Path)
	if err != nil {
		return ErrWriteFile.
			With(slog.String("file", i.Path)).
			Wrap(err)
	}
	defer file.Close()

	root := starterSuite()

	err = root.Format(ctx, file, defaultSuiteIndent)
	if err != nil {
		return ErrWriteFile.
			With(slog.String("file", i.Path)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized suite file",
		slog.String("path", i.Path),
	)

	return nil
}

// starterSuite builds the template suite written by init.
func starterSuite() *lang.Root {
	b := lang.NewBuilder()

	return b.Suite(
		b.Scope("describe", "example",
			b.Before(
				`// runs before the body of every test in this scope`,
			),
			b.Unit("it", "compiles",
				`// replace with assertions`,
				`if 1+1 != 2 {`,
				`	t.Fail()`,
				`}`,
			),
			b.Unit("it", "reports_failures",
				`t.Log("each test becomes its own function")`,
				`return nil`,
			).WithSignature(b.Sig("error", false)).
				WithAttrs("slow"),
			b.After(
				`// runs after the body of every test in this scope`,
			),
		),
	)
}
