package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/ardnew/demonstrate/log"
)

func TestCompileValidSuite(t *testing.T) {
	out, err := compile(
		context.Background(),
		"describe demo { it works { _ = 1 } }",
		"demo_test",
	)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	for _, want := range []string{
		"package demo_test",
		"func TestDemo(t *testing.T) {",
		`t.Run("works", func(t *testing.T) {`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
}

func TestCompileEmptySuite(t *testing.T) {
	out, err := compile(context.Background(), "   \n\t", "demo_test")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if !strings.Contains(out, "empty suite") {
		t.Errorf("expected empty-suite placeholder, got %q", out)
	}
}

func TestCompileParseError(t *testing.T) {
	_, err := compile(context.Background(), "describe broken {", "demo_test")
	if err == nil {
		t.Fatal("expected a parse error, got nil")
	}
}

func TestModelPreviewRefresh(t *testing.T) {
	m := newModel(
		context.Background(),
		Session{
			Source:  "it works { _ = 1 }",
			Package: "demo_test",
		},
		log.Logger{},
	)

	view := m.preview.View()
	if !strings.Contains(view, "TestWorks") {
		t.Errorf("preview should contain generated test name:\n%s", view)
	}
}

func TestModelFocusToggle(t *testing.T) {
	m := newModel(
		context.Background(),
		Session{Package: "demo_test"},
		log.Logger{},
	)

	if m.focus != focusEditor {
		t.Fatal("editor should have initial focus")
	}

	next, _ := m.toggleFocus()

	toggled, ok := next.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}

	if toggled.focus != focusPreview {
		t.Error("focus should move to the preview pane")
	}
}
