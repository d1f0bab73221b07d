package lang

// Builder provides a programmatic API for constructing suite trees
// without parsing source text. This is useful for generating formatted
// suite files programmatically or for testing.
//
// Example:
//
//	b := lang.NewBuilder()
//	root := b.Suite(
//	    b.Scope("describe", "math",
//	        b.Before(`sum := 0`),
//	        b.Unit("it", "adds", `sum += 2`),
//	    ),
//	)
type Builder struct{}

// NewBuilder creates a new suite tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Suite creates a Root with the given top-level blocks.
func (b *Builder) Suite(blocks ...*Block) *Root {
	root := &Root{Blocks: blocks}

	applyDefaults(root)
	root.buildIndex()

	return root
}

// Scope creates a scope block with the given keyword, name, and children.
func (b *Builder) Scope(keyword, name string, children ...*Block) *Block {
	return &Block{
		Type:     TypeScope,
		Keyword:  keyword,
		Name:     name,
		Children: children,
	}
}

// Unit creates a unit block with the given keyword, name, and body lines.
func (b *Builder) Unit(keyword, name string, body ...string) *Block {
	return &Block{
		Type:    TypeUnit,
		Keyword: keyword,
		Name:    name,
		Body:    body,
	}
}

// Before creates a before hook with the given body lines.
func (b *Builder) Before(body ...string) *Block {
	return &Block{
		Type:    TypeBefore,
		Keyword: "before",
		Body:    body,
	}
}

// After creates an after hook with the given body lines.
func (b *Builder) After(body ...string) *Block {
	return &Block{
		Type:    TypeAfter,
		Keyword: "after",
		Body:    body,
	}
}

// Sig creates a signature with the given return type and concurrency.
func (b *Builder) Sig(ret string, async bool) *Signature {
	return &Signature{Return: ret, Async: async}
}
