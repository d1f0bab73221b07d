package lang

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects suite units with a compiled boolean expression.
// The expression environment exposes per-unit fields:
//
//   - name:  the unit name
//   - path:  the full path joined with "/"
//   - scope: the immediate enclosing scope name, empty at top level
//   - async: whether the unit body is concurrent
//   - attrs: the unit attribute texts
type Filter struct {
	program *vm.Program
	source  string
}

// filterEnv returns the type exemplar environment for compilation.
func filterEnv() map[string]any {
	return map[string]any{
		"name":  "",
		"path":  "",
		"scope": "",
		"async": false,
		"attrs": []string{},
	}
}

// CompileFilter compiles a unit predicate expression.
func CompileFilter(source string) (*Filter, error) {
	program, err := expr.Compile(
		source,
		expr.Env(filterEnv()),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).
			With(slog.String("source", source))
	}

	return &Filter{program: program, source: source}, nil
}

// Source returns the original predicate expression text.
func (f *Filter) Source() string { return f.source }

// Match evaluates the predicate against a unit node.
func (f *Filter) Match(n *Node) (bool, error) {
	scope := ""
	if len(n.Path) > 1 {
		scope = n.Path[len(n.Path)-2]
	}

	attrs := n.Attrs
	if attrs == nil {
		attrs = []string{}
	}

	env := map[string]any{
		"name":  n.Name,
		"path":  n.PathString(),
		"scope": scope,
		"async": n.Async,
		"attrs": attrs,
	}

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, ErrFilterEvaluate.Wrap(err).
			With(slog.String("source", f.source)).
			With(slog.String("unit", n.PathString()))
	}

	keep, ok := out.(bool)
	if !ok {
		return false, ErrFilterEvaluate.
			With(slog.String("source", f.source)).
			With(slog.String("unit", n.PathString()))
	}

	return keep, nil
}

// Filter returns a new suite containing only the units matched by the
// predicate. Scopes left without any units are pruned.
func (s *Suite) Filter(ctx context.Context, f *Filter) (*Suite, error) {
	kept, dropped := 0, 0

	nodes, err := filterNodes(s.Nodes, f, &kept, &dropped)
	if err != nil {
		return nil, err
	}

	s.logger.TraceContext(
		ctx,
		"filter",
		slog.String("source", f.source),
		slog.Int("kept", kept),
		slog.Int("dropped", dropped),
	)

	return &Suite{Nodes: nodes, logger: s.logger}, nil
}

// filterNodes recursively prunes unmatched units and emptied scopes.
func filterNodes(
	nodes []*Node,
	f *Filter,
	kept, dropped *int,
) ([]*Node, error) {
	out := make([]*Node, 0, len(nodes))

	for _, n := range nodes {
		if n.Unit {
			keep, err := f.Match(n)
			if err != nil {
				return nil, err
			}

			if keep {
				out = append(out, n)
				*kept++
			} else {
				*dropped++
			}

			continue
		}

		children, err := filterNodes(n.Children, f, kept, dropped)
		if err != nil {
			return nil, err
		}

		if len(children) == 0 {
			continue
		}

		scope := *n
		scope.Children = children
		out = append(out, &scope)
	}

	return out, nil
}
