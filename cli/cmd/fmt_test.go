package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

// writeSuiteFile writes input to a temp suite file and returns its path.
func writeSuiteFile(t *testing.T, input string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "demonstrate-test-*.demo")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpfile.WriteString(input); err != nil {
		t.Fatal(err)
	}

	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	return tmpfile.Name()
}

// TestNativeFmtValidSyntax tests that valid syntax is formatted correctly.
func TestNativeFmtValidSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "single unit",
			input: "it works { _ = 1 }",
		},
		{
			name:  "scope with hook",
			input: "describe s { before { setUp() } it x { _ = 1 } }",
		},
		{
			name:  "multiple top-level blocks",
			input: "it a { _ = 1 }\nit b { _ = 2 }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			native := &Native{
				Indent: 4,
				Source: writeSuiteFile(t, tt.input),
			}

			if err := native.Run(context.Background()); err != nil {
				t.Errorf("Native.Run() error = %v", err)
			}
		})
	}
}

// TestNativeFmtInvalidSyntax tests that invalid syntax produces parse errors.
func TestNativeFmtInvalidSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unknown keyword",
			input: "widget x { _ = 1 }",
		},
		{
			name:  "missing identifier",
			input: "describe { it x { _ = 1 } }",
		},
		{
			name:  "unterminated scope",
			input: "describe s {",
		},
		{
			name:  "duplicate before hook",
			input: "describe s { before { a() } before { b() } }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			native := &Native{
				Indent: 4,
				Source: writeSuiteFile(t, tt.input),
			}

			if err := native.Run(context.Background()); err == nil {
				t.Error("Native.Run() expected error but got nil")
			}
		})
	}
}

// TestNativeFmtStdin tests reading from stdin.
func TestNativeFmtStdin(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid from stdin",
			input:   "it works { _ = 1 }",
			wantErr: false,
		},
		{
			name:    "invalid from stdin",
			input:   "widget x { _ = 1 }",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore stdin
			oldStdin := os.Stdin
			defer func() { os.Stdin = oldStdin }()

			r, w, err := os.Pipe()
			if err != nil {
				t.Fatal(err)
			}
			os.Stdin = r

			go func() {
				defer w.Close()
				io.WriteString(w, tt.input)
			}()

			native := &Native{
				Indent: 4,
				Source: "-",
			}

			err = native.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("Native.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestJSONFmt tests that JSON format parses and serializes suites.
func TestJSONFmt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid syntax",
			input:   "describe s { it x { _ = 1 } }",
			wantErr: false,
		},
		{
			name:    "invalid syntax",
			input:   "describe s { it { _ = 1 } }",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			json := &JSON{
				Indent: 2,
				Source: writeSuiteFile(t, tt.input),
			}

			err := json.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("JSON.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestYAMLFmt tests that YAML format parses and serializes suites.
func TestYAMLFmt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid syntax",
			input:   "describe s { it x { _ = 1 } }",
			wantErr: false,
		},
		{
			name:    "invalid syntax",
			input:   "describe s { it x { _ = 1 }",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := &YAML{
				Indent: 2,
				Source: writeSuiteFile(t, tt.input),
			}

			err := yaml.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("YAML.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestTreeFmt tests the block tree format.
func TestTreeFmt(t *testing.T) {
	tree := &Tree{
		Source: writeSuiteFile(t, "describe s { it x { _ = 1 } }"),
	}

	if err := tree.Run(context.Background()); err != nil {
		t.Errorf("Tree.Run() error = %v", err)
	}
}

// TestNativeFmtOutput tests the formatted output content.
func TestNativeFmtOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		indent   int
		contains []string
	}{
		{
			name:   "unit body reindented",
			input:  "it works {\n_ = 1\n}",
			indent: 4,
			contains: []string{
				"it works {",
				"    _ = 1",
			},
		},
		{
			name:   "nested scope",
			input:  "describe outer { context inner { it x { _ = 1 } } }",
			indent: 2,
			contains: []string{
				"describe outer {",
				"  context inner {",
				"    it x {",
			},
		},
		{
			name:   "signature preserved",
			input:  "it checks -> error async { return nil }",
			indent: 4,
			contains: []string{
				"it checks -> error async {",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := writeSuiteFile(t, tt.input)

			// Capture stdout
			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			native := &Native{
				Indent: tt.indent,
				Source: source,
			}

			err := native.Run(context.Background())

			// Restore stdout
			w.Close()
			os.Stdout = oldStdout

			if err != nil {
				t.Fatalf("Native.Run() unexpected error = %v", err)
			}

			var buf bytes.Buffer
			io.Copy(&buf, r)
			output := buf.String()

			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("Native.Run() output = %q, want to contain %q", output, expected)
				}
			}
		})
	}
}
