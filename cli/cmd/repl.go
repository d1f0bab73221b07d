package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/demonstrate/cli/cmd/repl"
	"github.com/ardnew/demonstrate/log"
)

// Repl opens an interactive editor with a live preview of the Go test file
// that the suite compiles to.
type Repl struct {
	Package string `default:"suite_test" help:"Package name for the generated preview" short:"p"`

	Source string `arg:"" optional:"" help:"Suite file to edit (created on save if missing)." name:"source"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var content string

	if r.Source != "" {
		data, err := os.ReadFile(r.Source)
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		content = string(data)
	}

	// Unsaved edits are written here on exit so a crashed or interrupted
	// session can be recovered.
	var autosave string

	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			autosave = filepath.Join(dir, "repl-autosave.demo")
		}
	}

	logger := log.With(slog.String("command", "repl"))

	return repl.Run(ctx, repl.Session{
		Source:   content,
		Path:     r.Source,
		Package:  r.Package,
		Autosave: autosave,
	}, logger)
}
