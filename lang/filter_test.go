package lang

import (
	"context"
	"errors"
	"testing"
)

func TestCompileFilter_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax error", `name ==`},
		{"unknown variable", `nome == "x"`},
		{"non-boolean result", `name`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileFilter(tt.source)
			if err == nil {
				t.Fatal("expected an error, got nil")
			}

			if !errors.Is(err, ErrFilterCompile) {
				t.Errorf("expected ErrFilterCompile, got %v", err)
			}
		})
	}
}

func TestSuiteFilter(t *testing.T) {
	input := `
		describe tests {
			it one { _ = 1 }

			#[slow]
			it heavy -> async { _ = 2 }

			context nested {
				it two { _ = 3 }
			}
		}
	`

	tests := []struct {
		name   string
		source string
		want   []string // unit paths surviving the filter
	}{
		{
			name:   "by name",
			source: `name == "one"`,
			want:   []string{"tests/one"},
		},
		{
			name:   "by scope",
			source: `scope == "nested"`,
			want:   []string{"tests/nested/two"},
		},
		{
			name:   "by path prefix",
			source: `path startsWith "tests/nested"`,
			want:   []string{"tests/nested/two"},
		},
		{
			name:   "by async",
			source: `async`,
			want:   []string{"tests/heavy"},
		},
		{
			name:   "by attribute",
			source: `"slow" in attrs`,
			want:   []string{"tests/heavy"},
		},
		{
			name:   "exclude attribute",
			source: `not ("slow" in attrs)`,
			want:   []string{"tests/one", "tests/nested/two"},
		},
		{
			name:   "nothing matches prunes all scopes",
			source: `name == "missing"`,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := expand(t, input)

			f, err := CompileFilter(tt.source)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			filtered, err := suite.Filter(context.Background(), f)
			if err != nil {
				t.Fatalf("filter error: %v", err)
			}

			var got []string
			for n := range filtered.Units() {
				got = append(got, n.PathString())
			}

			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}

			for i, p := range tt.want {
				if got[i] != p {
					t.Errorf("unit %d: expected %q, got %q", i, p, got[i])
				}
			}

			if len(tt.want) == 0 && len(filtered.Nodes) != 0 {
				t.Errorf("expected all scopes pruned, got %d nodes", len(filtered.Nodes))
			}
		})
	}
}

func TestFilter_Source(t *testing.T) {
	f, err := CompileFilter(`async`)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if f.Source() != "async" {
		t.Errorf("expected source %q, got %q", "async", f.Source())
	}
}
