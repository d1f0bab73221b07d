package lang

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/demonstrate/log"
)

// Inherited carries the scope context folded into descendant units:
// accumulated hook bodies and the default signature.
type Inherited struct {
	Setup    [][]string // before hook bodies, outermost first
	Teardown [][]string // after hook bodies, outermost first
	Sig      *Signature // default signature for descendant units
}

// Suite is the expanded form of a parse tree: a tree of nodes in which
// every unit carries the full setup and teardown context of its scope
// chain and its effective signature.
type Suite struct {
	Nodes []*Node

	logger log.Logger
}

// Node is a single element of an expanded suite: either a scope grouping
// child nodes, or a unit holding executable statement lines.
type Node struct {
	Name     string
	Path     []string // full path from the root, including Name
	Unit     bool     // true for units, false for scopes
	Async    bool
	Return   string     // effective return type expression, empty for none
	Attrs    []string   // attribute texts carried from the declaration
	Setup    [][]string // ancestor before bodies, outermost first (units only)
	Body     []string   // unit statement lines
	Teardown [][]string // ancestor after bodies, outermost first (units only)
	Children []*Node    // scopes only
}

// PathString returns the node path joined with "/".
func (n *Node) PathString() string {
	return strings.Join(n.Path, "/")
}

// Statements returns the setup and body lines of a unit in execution
// order. Teardown lines are not included: they run after the body, in
// innermost-first order, regardless of how the body exits.
func (n *Node) Statements() []string {
	out := make([]string, 0, len(n.Body))

	for _, setup := range n.Setup {
		out = append(out, setup...)
	}

	return append(out, n.Body...)
}

// Units returns an iterator over all unit nodes in the suite, depth-first
// in declaration order.
func (s *Suite) Units() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(nodes []*Node) bool

		walk = func(nodes []*Node) bool {
			for _, n := range nodes {
				if n.Unit {
					if !yield(n) {
						return false
					}

					continue
				}

				if !walk(n.Children) {
					return false
				}
			}

			return true
		}

		walk(s.Nodes)
	}
}

// Generate expands the parse tree into a suite. Each unit receives every
// ancestor before body (outermost first), every ancestor after body, and
// the nearest enclosing scope signature unless it declares its own.
func (root *Root) Generate(ctx context.Context) (*Suite, error) {
	root.logger.TraceContext(
		ctx,
		"generate start",
		slog.Int("block_count", len(root.Blocks)),
	)

	nodes, err := root.expandBlocks(ctx, root.Blocks, Inherited{}, nil, 0)
	if err != nil {
		return nil, err
	}

	root.logger.TraceContext(
		ctx,
		"generate complete",
		slog.Int("node_count", len(nodes)),
	)

	return &Suite{Nodes: nodes, logger: root.logger}, nil
}

// expandBlocks expands one block list under the given inherited context.
// Hooks are folded into the context first so that declaration order of
// hooks relative to units within a scope does not matter.
func (root *Root) expandBlocks(
	ctx context.Context,
	blocks []*Block,
	inh Inherited,
	path []string,
	depth int,
) ([]*Node, error) {
	if depth >= root.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.
			With(slog.Int("depth", depth)).
			With(slog.Int("max_depth", root.opts.maxDepth)).
			With(slog.String("chain", strings.Join(path, " → ")))
	}

	for _, blk := range blocks {
		switch blk.Type {
		case TypeBefore:
			inh.Setup = append(slices.Clone(inh.Setup), blk.Body)

		case TypeAfter:
			inh.Teardown = append(slices.Clone(inh.Teardown), blk.Body)
		}
	}

	nodes := make([]*Node, 0, len(blocks))

	for _, blk := range blocks {
		switch blk.Type {
		case TypeScope:
			scopePath := append(slices.Clone(path), blk.Name)

			child := inh
			if blk.Sig != nil {
				child.Sig = blk.Sig
			}

			root.logger.TraceContext(
				ctx,
				"expand scope",
				slog.String("path", strings.Join(scopePath, "/")),
			)

			children, err := root.expandBlocks(
				ctx, blk.Children, child, scopePath, depth+1,
			)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, &Node{
				Name:     blk.Name,
				Path:     scopePath,
				Attrs:    blk.Attrs,
				Children: children,
			})

		case TypeUnit:
			unitPath := append(slices.Clone(path), blk.Name)

			sig := blk.Sig
			if sig == nil {
				sig = inh.Sig
			}

			n := &Node{
				Name:     blk.Name,
				Path:     unitPath,
				Unit:     true,
				Attrs:    blk.Attrs,
				Setup:    inh.Setup,
				Body:     blk.Body,
				Teardown: inh.Teardown,
			}

			if sig != nil {
				n.Async = sig.Async
				n.Return = sig.Return
			}

			root.logger.TraceContext(
				ctx,
				"expand unit",
				slog.String("path", strings.Join(unitPath, "/")),
				slog.Bool("async", n.Async),
				slog.String("return", n.Return),
			)

			nodes = append(nodes, n)
		}
	}

	return nodes, nil
}
