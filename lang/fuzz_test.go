package lang

import (
	"bytes"
	"context"
	"testing"
)

func FuzzParseString(f *testing.F) {
	seeds := []string{
		"",
		"it x { _ = 1 }",
		"describe s { before { a() } it x { b() } }",
		"#[slow]\ntest t -> error async { return nil }",
		"context c { /* comment */ it x { s := \"}\" ; _ = s } }",
		"describe a { describe b { describe c {} } }",
		"it x -> map[string]int { return nil }",
		"describe broken {",
		"it x { `unterminated",
		"-> error { }",
		"#[unclosed",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		// Parsing arbitrary input must never panic; errors are expected.
		root, err := parseSource(context.Background(), input)
		if err != nil {
			return
		}

		// Whatever parses must also expand and emit without panicking.
		suite, err := root.Generate(context.Background())
		if err != nil {
			return
		}

		var buf bytes.Buffer

		_ = suite.EmitGo(context.Background(), &buf, "fuzz_test")
	})
}
