package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the tree in canonical suite syntax to the writer.
// Indentation is indent spaces per nesting level; values below 1 use the
// canonical default of 4.
func (root *Root) Format(_ context.Context, w io.Writer, indent int) error {
	if indent < 1 {
		indent = 4
	}

	for i, blk := range root.Blocks {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := formatBlock(blk, w, indent, 0); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the tree as JSON to the writer.
func (root *Root) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(root, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(root)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the tree as YAML to the writer.
func (root *Root) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, root.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// formatBlock writes one block in canonical suite syntax.
func formatBlock(blk *Block, w io.Writer, indent, depth int) error {
	prefix := strings.Repeat(" ", depth*indent)

	for _, attr := range blk.Attrs {
		if _, err := fmt.Fprintf(w, "%s#[%s]\n", prefix, attr); err != nil {
			return err
		}
	}

	head := prefix + blk.Keyword
	if blk.Name != "" {
		head += " " + blk.Name
	}

	if blk.Sig != nil {
		head += " " + blk.Sig.String()
	}

	if _, err := fmt.Fprintf(w, "%s {\n", head); err != nil {
		return err
	}

	if blk.IsScope() {
		for i, child := range blk.Children {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}

			if err := formatBlock(child, w, indent, depth+1); err != nil {
				return err
			}
		}
	} else {
		inner := strings.Repeat(" ", (depth+1)*indent)

		for _, line := range blk.Body {
			if line == "" {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}

				continue
			}

			if _, err := fmt.Fprintf(w, "%s%s\n", inner, line); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "%s}\n", prefix)

	return err
}
