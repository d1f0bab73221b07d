package lang

import (
	"encoding/json"
	"strings"
)

// MarshalJSON implements json.Marshaler for Root.
func (root *Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(root.ToMap())
}

// ToMap converts the tree to a native Go map structure.
// Named blocks key their contents by name; hooks use the parenthesized
// keys "(before)" and "(after)".
func (root *Root) ToMap() map[string]any {
	return blocksToMap(root.Blocks)
}

// blocksToMap converts a block list to a map keyed by block name.
func blocksToMap(blocks []*Block) map[string]any {
	result := make(map[string]any, len(blocks))

	for _, blk := range blocks {
		switch blk.Type {
		case TypeBefore:
			result["(before)"] = strings.Join(blk.Body, "\n")

		case TypeAfter:
			result["(after)"] = strings.Join(blk.Body, "\n")

		default:
			result[blk.Name] = blk.toMap()
		}
	}

	return result
}

// toMap converts a named block to its map representation.
func (blk *Block) toMap() any {
	var meta map[string]any

	annotate := func(key string, value any) {
		if meta == nil {
			meta = make(map[string]any)
		}

		meta[key] = value
	}

	if len(blk.Attrs) > 0 {
		attrs := make([]any, len(blk.Attrs))
		for i, attr := range blk.Attrs {
			attrs[i] = attr
		}

		annotate("(attrs)", attrs)
	}

	if blk.Sig != nil {
		annotate("(signature)", blk.Sig.String())
	}

	if blk.IsScope() {
		children := blocksToMap(blk.Children)

		if meta == nil {
			return children
		}

		for k, v := range children {
			meta[k] = v
		}

		return meta
	}

	body := strings.Join(blk.Body, "\n")

	if meta == nil {
		return body
	}

	meta["(body)"] = body

	return meta
}
