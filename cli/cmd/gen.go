package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/demonstrate/lang"
)

// Gen compiles suite sources into a Go test file.
type Gen struct {
	Package  string `default:"suite_test" help:"Package name for the generated file"          short:"p"`
	Output   string `default:"-"          help:"Output file or '-' for stdout"                short:"o"`
	Filter   string `                     help:"Keep only test units matching an expression"  short:"F"`
	MaxDepth int    `default:"0"          help:"Maximum scope nesting depth (0 uses default)"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reader, closeInput, err := openInput(ctx, g.Source)
	if err != nil {
		return err
	}
	defer closeInput()

	var opts []lang.Option
	if g.MaxDepth > 0 {
		opts = append(opts, lang.WithMaxDepth(g.MaxDepth))
	}

	root, err := lang.ParseReader(ctx, reader, opts...)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "gen"))
	}

	suite, err := root.Generate(ctx)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "gen"))
	}

	if g.Filter != "" {
		filter, err := lang.CompileFilter(g.Filter)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "gen"))
		}

		suite, err = suite.Filter(ctx, filter)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "gen"))
		}
	}

	out, closeOutput, err := openOutput(g.Output)
	if err != nil {
		return err
	}

	err = suite.EmitGo(ctx, out, g.Package)
	if cerr := closeOutput(); err == nil && cerr != nil {
		err = ErrWriteFile.
			With(slog.String("file", g.Output)).
			Wrap(cerr)
	}

	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "gen"),
				slog.String("package", g.Package),
			)
	}

	return nil
}

// openInput resolves a source argument to a reader. A "-" source first checks
// for files given with the global --source flag, falling back to stdin.
func openInput(
	ctx context.Context,
	source string,
) (io.Reader, func(), error) {
	if source == "-" {
		if srcs := sourceFilesFrom(ctx); srcs != nil && !srcs.IsZero() {
			return srcs, func() {}, nil
		}

		return bufio.NewReader(os.Stdin), func() {}, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, nil, err
	}

	return bufio.NewReader(file), func() { file.Close() }, nil
}

// openOutput resolves an output argument to a writer.
func openOutput(output string) (io.Writer, func() error, error) {
	if output == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(output)
	if err != nil {
		return nil, nil, ErrWriteFile.
			With(slog.String("file", output)).
			Wrap(err)
	}

	return file, file.Close, nil
}
