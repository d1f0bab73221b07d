package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/demonstrate/log"
)

// ParseString parses suite source text and returns the tree.
// Options can be provided to customize parsing behavior.
// The result is cached for efficient repeated parsing of the same content
// when no options are used.
func ParseString(
	ctx context.Context,
	input string,
	opts ...Option,
) (*Root, error) {
	if len(opts) == 0 {
		return parseStringCached(ctx, input)
	}

	return parseSource(ctx, input, opts...)
}

// parseSource is the internal parsing implementation.
func parseSource(
	ctx context.Context,
	input string,
	opts ...Option,
) (*Root, error) {
	root := new(Root)

	applyDefaults(root)
	applyOptions(root, opts...)

	p := &parser{
		input:  []byte(input),
		pos:    0,
		line:   1,
		col:    1,
		root:   root,
		logger: root.logger,
	}

	p.logger.TraceContext(
		ctx,
		"parse start",
		slog.Int("source_length", len(input)),
	)

	blocks, err := p.parseSuite(ctx)
	if err != nil {
		return nil, err
	}

	root.Blocks = blocks
	root.buildIndex()

	p.logger.TraceContext(
		ctx,
		"parse complete",
		slog.Int("block_count", len(blocks)),
	)

	return root, nil
}

// parser holds the parser state.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	depth  int
	chain  []string
	root   *Root
	logger log.Logger
}

// parseSuite parses the entire input as a list of blocks.
func (p *parser) parseSuite(ctx context.Context) ([]*Block, error) {
	blocks := make([]*Block, 0)
	seen := make(map[Type]bool)

	for {
		p.skipWhitespaceAndComments()

		if p.eof() {
			break
		}

		blk, err := p.parseBlock(ctx)
		if err != nil {
			return nil, err
		}

		if blk.IsHook() {
			if seen[blk.Type] {
				return nil, p.fail(ErrDuplicateHook, blk.Pos, blk.Keyword)
			}

			seen[blk.Type] = true
		}

		blocks = append(blocks, blk)
	}

	return blocks, nil
}

// parseBlock parses: Attr* (Scope | Unit | Hook).
func (p *parser) parseBlock(ctx context.Context) (*Block, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	pos := p.position()

	if !isIdentifierStart(p.peek()) {
		return nil, p.expected(ErrUnexpectedToken, pos, "", keywords...)
	}

	word := p.parseWord()

	switch word {
	case "describe", "context":
		return p.parseScope(ctx, word, attrs, pos)

	case "it", "test":
		return p.parseUnit(ctx, word, attrs, pos)

	case "before", "after":
		if len(attrs) > 0 {
			// Hooks are merged into unit bodies, so attributes have no
			// declaration to attach to.
			return nil, p.expected(ErrUnexpectedToken, pos, word,
				"describe", "context", "it", "test")
		}

		return p.parseHook(ctx, word, pos)

	default:
		return nil, p.expected(ErrUnexpectedToken, pos, word, keywords...)
	}
}

// parseScope parses: ('describe'|'context') Ident Sig? '{' Block* '}'.
func (p *parser) parseScope(
	ctx context.Context,
	keyword string,
	attrs []string,
	pos Position,
) (*Block, error) {
	p.skipWhitespaceAndComments()

	if !isIdentifierStart(p.peek()) {
		return nil, p.expected(ErrMissingIdentifier, p.position(), "", "identifier")
	}

	name := p.parseWord()

	sig, err := p.parseSignature()
	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	if !p.expect('{') {
		return nil, p.expected(ErrUnexpectedToken, p.position(), "", "{")
	}

	// Check nesting depth
	if p.depth >= p.root.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.
			WithPosition(pos).
			With(slog.Int("depth", p.depth)).
			With(slog.Int("max_depth", p.root.opts.maxDepth)).
			With(slog.String("chain", strings.Join(p.chain, " → ")))
	}

	p.chain = append(p.chain, name)
	p.depth++

	defer func() {
		p.depth--
		p.chain = p.chain[:len(p.chain)-1]
	}()

	p.logger.TraceContext(
		ctx,
		"parse scope",
		slog.String("name", name),
		slog.Int("depth", p.depth),
	)

	children := make([]*Block, 0)
	seen := make(map[Type]bool)

	for {
		p.skipWhitespaceAndComments()

		if p.eof() {
			return nil, p.expected(ErrUnterminatedBlock, pos, name, "}")
		}

		if p.peek() == '}' {
			p.advance()

			break
		}

		child, err := p.parseBlock(ctx)
		if err != nil {
			return nil, err
		}

		if child.IsHook() {
			if seen[child.Type] {
				return nil, p.fail(ErrDuplicateHook, child.Pos, child.Keyword)
			}

			seen[child.Type] = true
		}

		children = append(children, child)
	}

	return &Block{
		Type:     TypeScope,
		Keyword:  keyword,
		Name:     name,
		Attrs:    attrs,
		Sig:      sig,
		Children: children,
		Pos:      pos,
	}, nil
}

// parseUnit parses: ('it'|'test') Ident Sig? '{' body '}'.
func (p *parser) parseUnit(
	ctx context.Context,
	keyword string,
	attrs []string,
	pos Position,
) (*Block, error) {
	p.skipWhitespaceAndComments()

	if !isIdentifierStart(p.peek()) {
		return nil, p.expected(ErrMissingIdentifier, p.position(), "", "identifier")
	}

	name := p.parseWord()

	sig, err := p.parseSignature()
	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	if !p.expect('{') {
		return nil, p.expected(ErrUnexpectedToken, p.position(), "", "{")
	}

	body, err := p.captureBody(pos, name)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(
		ctx,
		"parse unit",
		slog.String("name", name),
		slog.Int("body_lines", len(body)),
	)

	return &Block{
		Type:    TypeUnit,
		Keyword: keyword,
		Name:    name,
		Attrs:   attrs,
		Sig:     sig,
		Body:    body,
		Pos:     pos,
	}, nil
}

// parseHook parses: ('before'|'after') '{' body '}'.
func (p *parser) parseHook(
	ctx context.Context,
	keyword string,
	pos Position,
) (*Block, error) {
	p.skipWhitespaceAndComments()

	if !p.expect('{') {
		return nil, p.expected(ErrUnexpectedToken, p.position(), "", "{")
	}

	body, err := p.captureBody(pos, keyword)
	if err != nil {
		return nil, err
	}

	typ := TypeBefore
	if keyword == "after" {
		typ = TypeAfter
	}

	p.logger.TraceContext(
		ctx,
		"parse hook",
		slog.String("keyword", keyword),
		slog.Int("body_lines", len(body)),
	)

	return &Block{
		Type:    typ,
		Keyword: keyword,
		Body:    body,
		Pos:     pos,
	}, nil
}

// parseAttrs parses zero or more '#[' ... ']' attributes.
// The inner text of each attribute is captured verbatim, trimmed.
func (p *parser) parseAttrs() ([]string, error) {
	var attrs []string

	for {
		p.skipWhitespaceAndComments()

		if p.peek() != '#' || p.peekN(2) != "#[" {
			return attrs, nil
		}

		pos := p.position()

		p.advance() // skip '#'
		p.advance() // skip '['

		start := p.pos
		depth := 1

		for !p.eof() {
			ch := p.peek()

			if ch == '"' || ch == '\'' || ch == '`' {
				if err := p.skipString(ch); err != nil {
					return nil, err
				}

				continue
			}

			if ch == '[' {
				depth++
			}

			if ch == ']' {
				depth--

				if depth == 0 {
					break
				}
			}

			p.advance()
		}

		if p.eof() {
			return nil, p.expected(ErrUnterminatedBlock, pos, "", "]")
		}

		attrs = append(attrs, strings.TrimSpace(string(p.input[start:p.pos])))
		p.advance() // skip ']'
	}
}

// parseSignature parses an optional signature: '->' TypeExpr? 'async'?.
// The type expression is captured as text up to the opening '{' of the
// block body, tracking bracket nesting and string literals. A trailing
// 'async' word marks the body concurrent and is not part of the type.
func (p *parser) parseSignature() (*Signature, error) {
	p.skipWhitespaceAndComments()

	if p.peekN(2) != "->" {
		return nil, nil
	}

	pos := p.position()

	p.advance() // skip '-'
	p.advance() // skip '>'

	start := p.pos
	depth := 0 // track nesting of (), []

	for !p.eof() {
		ch := p.peek()

		if ch == '"' || ch == '\'' || ch == '`' {
			if err := p.skipString(ch); err != nil {
				return nil, err
			}

			continue
		}

		if ch == '{' && depth == 0 {
			break
		}

		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}

		p.advance()
	}

	if p.eof() {
		return nil, p.expected(ErrInvalidSignature, pos, "", "{")
	}

	text := strings.TrimSpace(string(p.input[start:p.pos]))

	sig := &Signature{}

	if rest, ok := strings.CutSuffix(text, "async"); ok &&
		(rest == "" || unicode.IsSpace(rune(rest[len(rest)-1]))) {
		sig.Async = true
		text = strings.TrimSpace(rest)
	}

	sig.Return = text

	if sig.Return == "" && !sig.Async {
		return nil, p.expected(ErrInvalidSignature, pos, "", "type expression", "async")
	}

	return sig, nil
}

// captureBody captures verbatim statement text until the matching '}'.
// Brace depth is tracked through string literals, rune literals, and both
// comment forms so delimiters inside them are ignored. The captured text
// is split into lines, common indentation is removed, and blank edge
// lines are dropped.
func (p *parser) captureBody(pos Position, name string) ([]string, error) {
	start := p.pos
	depth := 1

	for !p.eof() {
		ch := p.peek()

		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			if err := p.skipString(ch); err != nil {
				return nil, err
			}

			continue

		case ch == '/' && p.peekN(2) == "//":
			p.skipLineComment()

			continue

		case ch == '/' && p.peekN(2) == "/*":
			p.skipBlockComment()

			continue

		case ch == '{':
			depth++

		case ch == '}':
			depth--

			if depth == 0 {
				body := dedent(string(p.input[start:p.pos]))
				p.advance() // skip '}'

				return body, nil
			}
		}

		p.advance()
	}

	return nil, p.expected(ErrUnterminatedBlock, pos, name, "}")
}

// parseWord consumes and returns an identifier, or an empty string when
// the input does not start one.
func (p *parser) parseWord() string {
	start := p.pos

	if !isIdentifierStart(p.peek()) {
		return ""
	}

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

// expected constructs a ParseError for a failed expectation.
func (p *parser) expected(
	sentinel *Error,
	pos Position,
	found string,
	expected ...string,
) error {
	if found == "" && !p.eof() {
		// Capture the offending word for suggestions, when there is one.
		saved := p.pos
		found = p.parseWord()
		p.pos = saved
	}

	return &ParseError{
		Err:      sentinel,
		Pos:      pos,
		Source:   string(p.input),
		Found:    found,
		Expected: expected,
	}
}

// fail constructs a ParseError without expectations.
func (p *parser) fail(sentinel *Error, pos Position, found string) error {
	return &ParseError{
		Err:    sentinel,
		Pos:    pos,
		Source: string(p.input),
		Found:  found,
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for {
		p.skipWhitespace()

		if p.eof() {
			return
		}

		if p.peek() == '/' && p.peekN(2) == "//" {
			p.skipLineComment()

			continue
		}

		if p.peek() == '/' && p.peekN(2) == "/*" {
			p.skipBlockComment()

			continue
		}

		break
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}

	if !p.eof() {
		p.advance() // skip '\n'
	}
}

func (p *parser) skipBlockComment() {
	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peek() == '*' && p.peekN(2) == "*/" {
			p.advance() // skip '*'
			p.advance() // skip '/'

			return
		}

		p.advance()
	}
}

func (p *parser) skipString(quote rune) error {
	pos := p.position()

	p.advance() // skip opening quote

	for !p.eof() {
		ch := p.peek()
		if ch == '\\' && quote != '`' {
			p.advance() // skip backslash

			if !p.eof() {
				p.advance() // skip escaped char
			}

			continue
		}

		if ch == quote {
			p.advance() // skip closing quote

			return nil
		}

		p.advance()
	}

	return p.expected(ErrUnterminatedBlock, pos, "", string(quote))
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// dedent splits raw body text into lines, removes the longest common
// whitespace prefix of the non-blank lines, trims trailing whitespace from
// each line, and drops blank edge lines.
func dedent(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	// Drop blank edges
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 0 {
		return nil
	}

	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

		if first {
			prefix = indent
			first = false

			continue
		}

		prefix = commonPrefix(prefix, indent)
	}

	out := make([]string, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""

			continue
		}

		out[i] = strings.TrimRight(strings.TrimPrefix(line, prefix), " \t")
	}

	return out
}

// commonPrefix returns the longest common prefix of two strings.
func commonPrefix(a, b string) string {
	n := min(len(a), len(b))

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:n]
}
