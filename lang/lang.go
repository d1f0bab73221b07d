package lang

import (
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/ardnew/demonstrate/log"
)

// Root represents the parse tree of a suite source file.
type Root struct {
	Blocks []*Block

	index  map[string]*Block // top-level named blocks
	opts   optionsKey        // configuration options
	logger log.Logger        // structured logger (outside optionsKey, doesn't affect cache)
}

// GetBlock retrieves a top-level block by its name.
// Returns (nil, false) if no block with that name exists.
func (root *Root) GetBlock(name string) (*Block, bool) {
	blk, ok := root.index[name]

	return blk, ok
}

// All returns an iterator over all top-level blocks in the tree.
func (root *Root) All() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, blk := range root.Blocks {
			if !yield(blk) {
				return
			}
		}
	}
}

// buildIndex builds the name index for O(1) top-level block lookups.
func (root *Root) buildIndex() {
	root.index = make(map[string]*Block, len(root.Blocks))

	for _, blk := range root.Blocks {
		if blk.Name != "" {
			root.index[blk.Name] = blk
		}
	}
}

// Block represents a single declaration in a suite:
// a scope, a unit, or a hook.
type Block struct {
	Type     Type
	Keyword  string     // keyword as written: describe, context, it, test, before, after
	Name     string     // empty for hooks
	Attrs    []string   // inner text of each #[...] attribute, in order
	Sig      *Signature // nil unless declared
	Children []*Block   // scopes only
	Body     []string   // units and hooks only: verbatim statement lines
	Pos      Position
}

// IsScope reports whether the block is a scope declaration.
func (blk *Block) IsScope() bool { return blk.Type == TypeScope }

// IsUnit reports whether the block is a unit declaration.
func (blk *Block) IsUnit() bool { return blk.Type == TypeUnit }

// IsHook reports whether the block is a before or after hook.
func (blk *Block) IsHook() bool {
	return blk.Type == TypeBefore || blk.Type == TypeAfter
}

// WithSignature sets the block signature and returns the block for chaining.
func (blk *Block) WithSignature(sig *Signature) *Block {
	blk.Sig = sig

	return blk
}

// WithAttrs appends attributes and returns the block for chaining.
func (blk *Block) WithAttrs(attrs ...string) *Block {
	blk.Attrs = append(blk.Attrs, attrs...)

	return blk
}

// Type indicates the kind of block.
type Type int

const (
	// TypeScope represents a describe or context block grouping other blocks.
	TypeScope Type = iota

	// TypeUnit represents an it or test block holding a unit body.
	TypeUnit

	// TypeBefore represents a before hook.
	TypeBefore

	// TypeAfter represents an after hook.
	TypeAfter
)

// String returns a string representation of the block type.
func (bt Type) String() string {
	switch bt {
	case TypeScope:
		return "Scope"

	case TypeUnit:
		return "Unit"

	case TypeBefore:
		return "Before"

	case TypeAfter:
		return "After"

	default:
		return "Unknown"
	}
}

// Signature declares the return type and concurrency of a unit body.
// A signature on a scope is the default for all descendant units.
type Signature struct {
	Return string // return type expression, empty for none
	Async  bool
}

// String returns the signature in source syntax.
func (sig *Signature) String() string {
	part := make([]string, 0, 3)
	part = append(part, "->")

	if sig.Return != "" {
		part = append(part, sig.Return)
	}

	if sig.Async {
		part = append(part, "async")
	}

	return strings.Join(part, " ")
}

// Position identifies a location in suite source text.
type Position struct {
	Offset int // byte offset from start of input
	Line   int // 1-based
	Column int // 1-based
}

// String returns the position as "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// DefaultMaxDepth is the default maximum nesting depth for scopes.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// optionsKey holds Root configuration options.
// This type is gob-encodable for cache key hashing.
type optionsKey struct {
	maxDepth int
}

// Option configures parsing or generation behavior.
type Option func(*Root)

// WithMaxDepth sets the maximum nesting depth for scopes.
func WithMaxDepth(depth int) Option {
	return func(root *Root) {
		root.opts.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(root *Root) {
		root.logger = logger
	}
}

// applyDefaults sets default option values on a Root.
func applyDefaults(root *Root) {
	root.opts.maxDepth = DefaultMaxDepth
}

// applyOptions applies functional options to a Root.
func applyOptions(root *Root, opts ...Option) {
	for _, opt := range opts {
		opt(root)
	}
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Print writes a formatted representation of the tree to the writer.
func (root *Root) Print(w io.Writer) {
	root.PrintIndent(w, 0)
}

// PrintIndent writes a formatted representation of the tree to the writer
// with the specified indentation.
func (root *Root) PrintIndent(w io.Writer, indent int) {
	for _, blk := range root.Blocks {
		blk.Print(w, indent)
	}
}

// Print writes a formatted representation of the block.
func (blk *Block) Print(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch blk.Type {
	case TypeBefore, TypeAfter:
		put("\n", prefix+blk.Type.String())
	default:
		put("\n", prefix+blk.Type.String(), blk.Name)
	}

	if len(blk.Attrs) > 0 {
		put(":\n", prefix+"  Attrs")

		for _, attr := range blk.Attrs {
			put("\n", prefix+"    #["+attr+"]")
		}
	}

	if blk.Sig != nil {
		put(":\n", prefix+"  Signature")
		put("\n", prefix+"    "+blk.Sig.String())
	}

	if blk.IsScope() {
		for _, child := range blk.Children {
			child.Print(w, indent+1)
		}

		return
	}

	for _, line := range blk.Body {
		put("\n", prefix+"  | "+line)
	}
}
