package lang

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// emitHeader marks generated files per the convention recognized by the
// Go toolchain and code review tools.
const emitHeader = "// Code generated by demonstrate; DO NOT EDIT."

// EmitGo writes the suite as a Go test source file for the named package.
// Top-level nodes become Test functions, nested nodes become subtests.
// The output is passed through go/format; if formatting fails the raw
// output is written anyway and the formatting error is returned.
func (s *Suite) EmitGo(ctx context.Context, w io.Writer, pkgName string) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, emitHeader)
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "package %s\n", pkgName)

	if len(s.Nodes) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, `import "testing"`)
	}

	for _, n := range s.Nodes {
		fmt.Fprintln(&buf)
		emitTopLevel(&buf, n)
	}

	s.logger.TraceContext(
		ctx,
		"emit",
		slog.String("package", pkgName),
		slog.Int("node_count", len(s.Nodes)),
		slog.Int("raw_bytes", buf.Len()),
	)

	src, err := format.Source(buf.Bytes())
	if err != nil {
		// Emit the raw source so the failure can be inspected.
		if _, werr := w.Write(buf.Bytes()); werr != nil {
			return ErrEmit.Wrap(werr)
		}

		return ErrEmit.Wrap(err).
			With(slog.String("package", pkgName))
	}

	if _, err := w.Write(src); err != nil {
		return ErrEmit.Wrap(err)
	}

	return nil
}

// emitTopLevel writes a top-level node as a Test function.
func emitTopLevel(buf *bytes.Buffer, n *Node) {
	emitAttrs(buf, n.Attrs, 0)
	fmt.Fprintf(buf, "func Test%s(t *testing.T) {\n", exportName(n.Name))

	if n.Unit {
		emitUnitBody(buf, n, 1)
	} else {
		emitChildren(buf, n.Children, 1)
	}

	fmt.Fprintln(buf, "}")
}

// emitChildren writes nested nodes as subtests.
func emitChildren(buf *bytes.Buffer, nodes []*Node, depth int) {
	for i, n := range nodes {
		if i > 0 {
			fmt.Fprintln(buf)
		}

		emitAttrs(buf, n.Attrs, depth)
		indentf(buf, depth, "t.Run(%q, func(t *testing.T) {\n", n.Name)

		if n.Unit {
			emitUnitBody(buf, n, depth+1)
		} else {
			emitChildren(buf, n.Children, depth+1)
		}

		indentf(buf, depth, "})\n")
	}
}

// emitUnitBody writes the executable statements of a unit.
//
// Teardown runs from a single deferred closure so that it executes in
// innermost-first order even when the body returns early. A declared
// return type wraps the statements in a function literal; an error
// result fails the test, any other result is discarded.
func emitUnitBody(buf *bytes.Buffer, n *Node, depth int) {
	if n.Async {
		indentf(buf, depth, "t.Parallel()\n")
	}

	switch n.Return {
	case "":
		emitStatements(buf, n, depth)

	case "error":
		indentf(buf, depth, "if err := func() error {\n")
		emitStatements(buf, n, depth+1)
		indentf(buf, depth, "}(); err != nil {\n")
		indentf(buf, depth+1, "t.Fatal(err)\n")
		indentf(buf, depth, "}\n")

	default:
		indentf(buf, depth, "_ = func() %s {\n", n.Return)
		emitStatements(buf, n, depth+1)
		indentf(buf, depth, "}()\n")
	}
}

// emitStatements writes teardown registration, setup lines, and the unit
// body, in that order.
func emitStatements(buf *bytes.Buffer, n *Node, depth int) {
	if len(n.Teardown) > 0 {
		indentf(buf, depth, "defer func() {\n")

		for i := len(n.Teardown) - 1; i >= 0; i-- {
			emitLines(buf, n.Teardown[i], depth+1)
		}

		indentf(buf, depth, "}()\n")
	}

	for _, setup := range n.Setup {
		emitLines(buf, setup, depth)
	}

	emitLines(buf, n.Body, depth)
}

// emitAttrs writes attribute texts as comments above a declaration.
func emitAttrs(buf *bytes.Buffer, attrs []string, depth int) {
	for _, attr := range attrs {
		indentf(buf, depth, "// #[%s]\n", attr)
	}
}

// emitLines writes verbatim statement lines at the given depth.
func emitLines(buf *bytes.Buffer, lines []string, depth int) {
	for _, line := range lines {
		if line == "" {
			fmt.Fprintln(buf)

			continue
		}

		indentf(buf, depth, "%s\n", line)
	}
}

// indentf writes a tab-indented formatted line fragment.
func indentf(buf *bytes.Buffer, depth int, format string, args ...any) {
	buf.WriteString(strings.Repeat("\t", depth))
	fmt.Fprintf(buf, format, args...)
}

// exportName uppercases the leading rune of a name so the emitted Test
// function is exported and recognized by the testing package.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}
