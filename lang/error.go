package lang

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predefined errors (sentinel values).
var (
	ErrUnexpectedToken   = NewError("unexpected token")
	ErrUnterminatedBlock = NewError("unterminated block")
	ErrMissingIdentifier = NewError("missing identifier")
	ErrDuplicateHook     = NewError("duplicate hook")
	ErrInvalidSignature  = NewError("invalid signature")
	ErrMaxDepthExceeded  = NewError("maximum nesting depth exceeded")
	ErrBlockNotFound     = NewError("block not found")
	ErrReadInput         = NewError("failed to read input")
	ErrFilterCompile     = NewError("filter compilation failed")
	ErrFilterEvaluate    = NewError("filter evaluation failed")
	ErrEmit              = NewError("emit failed")
)

// keywords lists every block-introducing keyword of the suite language.
var keywords = []string{"describe", "context", "it", "test", "before", "after"}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Sentinel this error derives from (for errors.Is)
	pos   *Position   // Source position, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	if ee, ok := err.(*Error); ok {
		return ee
	}

	return &Error{err: err}
}

// derive copies the receiver, recording the originating sentinel so that
// errors.Is continues to match it.
func (e *Error) derive() *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	return &d
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> at <pos>: <err>" // all fields set
	//   2. "<msg>: <err>"          // no position
	//   3. "<msg>"                 // wrapped error is nil
	//   4. "<err>"                 // base error message is empty
	//   5. ""                      // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.pos != nil {
			msg += " at " + e.pos.String()
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether the target is this error or the sentinel it derives
// from. Derived errors created via Wrap, With, or WithPosition still match
// their sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && (t == e || t == e.base)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	d := e.derive()
	d.attrs = newAttrs

	return d
}

// WithPosition records the source position where the error occurred.
func (e *Error) WithPosition(pos Position) *Error {
	d := e.derive()
	d.pos = &pos

	return d
}

// ParseError describes a syntax error with full source context.
type ParseError struct {
	Err      *Error   // Sentinel category of the failure
	Pos      Position // Location of the offending token
	Source   string   // The original source input
	Found    string   // The offending token text, if available
	Expected []string // Token texts that would have been accepted
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Err.Error())

	if e.Found != "" {
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(e.Found))
	}

	buf.WriteString("\n")
	buf.WriteString(e.Snippet())

	if len(e.Expected) > 0 {
		exp := make([]string, 0, len(e.Expected))
		for _, s := range e.Expected {
			exp = append(exp, strconv.Quote(s))
		}

		buf.WriteString("\texpected: ")
		buf.WriteString(strings.Join(exp, ", "))
		buf.WriteString("\n")
	}

	if hint := e.Suggestion(); hint != "" {
		buf.WriteString("\tdid you mean ")
		buf.WriteString(strconv.Quote(hint))
		buf.WriteString("?\n")
	}

	return buf.String()
}

// Unwrap returns the sentinel category for errors.Is/As.
func (e *ParseError) Unwrap() error { return e.Err }

// Snippet returns the offending source line with a caret marker.
// Returns an empty string if the source or position is unavailable.
func (e *ParseError) Snippet() string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	line := lines[e.Pos.Line-1]

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// Print marker pointing to the column
	// Calculate the width needed for line number display
	lineNumWidth := len(strconv.Itoa(e.Pos.Line))
	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", lineNumWidth+5)

	// Add spaces to reach the error column
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// Suggestion returns the closest matching keyword for the offending token,
// or an empty string when nothing plausible matches.
func (e *ParseError) Suggestion() string {
	if e.Found == "" || slices.Contains(keywords, e.Found) {
		return ""
	}

	matches := fuzzy.Find(e.Found, keywords)
	if len(matches) == 0 {
		return ""
	}

	return keywords[matches[0].Index]
}
