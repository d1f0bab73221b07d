package lang

import (
	"context"
	"errors"
	"testing"
)

func TestParse_UnicodeNames(t *testing.T) {
	root, err := parseSource(context.Background(), `describe übung { it prüft { _ = 1 } }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, ok := root.GetBlock("übung"); !ok {
		t.Error("unicode scope name not found")
	}
}

func TestParse_CRLF(t *testing.T) {
	input := "it x {\r\n\t_ = 1\r\n\t_ = 2\r\n}\r\n"

	root, err := parseSource(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	body := root.Blocks[0].Body
	if len(body) != 2 || body[0] != "_ = 1" || body[1] != "_ = 2" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestParse_EmptyBody(t *testing.T) {
	root, err := parseSource(context.Background(), `it noop {}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(root.Blocks[0].Body) != 0 {
		t.Errorf("expected empty body, got %q", root.Blocks[0].Body)
	}
}

func TestParse_RawStringBody(t *testing.T) {
	input := "it raw {\n\ts := `literal } brace\nand newline`\n\t_ = s\n}"

	root, err := parseSource(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	// The raw string spans lines, so the body keeps both.
	body := root.Blocks[0].Body
	if len(body) != 3 {
		t.Fatalf("expected 3 body lines, got %d: %q", len(body), body)
	}
}

func TestParse_NestedBraceDepth(t *testing.T) {
	input := `
it deep {
	f := func() {
		g := func() {
			_ = struct{ n int }{n: 1}
		}
		g()
	}
	f()
}
`

	root, err := parseSource(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(root.Blocks[0].Body) != 7 {
		t.Errorf("unexpected body lines: %q", root.Blocks[0].Body)
	}
}

func TestParse_BlockCommentInBody(t *testing.T) {
	input := "it c {\n\t/* a } inside comment */\n\t_ = 1\n}"

	root, err := parseSource(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	body := root.Blocks[0].Body
	if len(body) != 2 || body[0] != "/* a } inside comment */" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := parseSource(context.Background(), "it s {\n\tx := \"oops\n}")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}

	if !errors.Is(err, ErrUnterminatedBlock) {
		t.Errorf("expected ErrUnterminatedBlock, got %v", err)
	}
}

func TestParse_HooksOnlySuite(t *testing.T) {
	// A suite of nothing but hooks generates no units.
	root, err := parseSource(context.Background(), `before { setup() } after { cleanup() }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	suite, err := root.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	if len(suite.Nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(suite.Nodes))
	}
}

func TestParse_SiblingHooksInSeparateScopes(t *testing.T) {
	// One before per scope is fine; only duplicates within a scope fail.
	input := `
		describe a { before { x() } it u { _ = 1 } }
		describe b { before { y() } it v { _ = 2 } }
	`

	if _, err := parseSource(context.Background(), input); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_SiblingScopeIsolation(t *testing.T) {
	// Hooks in one scope never leak into a sibling scope.
	input := `
		describe a { before { x() } it u { _ = 1 } }
		describe b { it v { _ = 2 } }
	`

	suite := expand(t, input)

	for n := range suite.Units() {
		switch n.Name {
		case "u":
			if len(n.Setup) != 1 {
				t.Errorf("unit u: expected 1 setup, got %d", len(n.Setup))
			}

		case "v":
			if len(n.Setup) != 0 {
				t.Errorf("unit v: expected no setup, got %d", len(n.Setup))
			}
		}
	}
}
