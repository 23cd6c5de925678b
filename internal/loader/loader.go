// Package loader builds a diagram.Element tree from the minimal
// declarative grammar surface: terminal/non_terminal/comment leaves, skip,
// sequence/stack/no_break (three line-break synonyms over the same
// Sequence), choice, optional, one_or_more/zero_or_more, and group. A
// regexp2 tokenizer feeds a small recursive-descent parser, one element
// kind per case in parseElement.
package loader

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/0x4d5352/railroad/internal/diagram"
	"github.com/0x4d5352/railroad/internal/render"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenRe recognizes one token, skipping leading whitespace, anchored to
// the start of whatever's left of the input. A single lookaround-capable
// expression covers every token kind this grammar needs.
var tokenRe = regexp2.MustCompile(
	`^\s*(?:(?<lp>\()|(?<rp>\))|(?<comma>,)|(?<str>"(?:\\.|[^"\\])*")|(?<id>[A-Za-z_][A-Za-z0-9_]*))`,
	regexp2.None,
)

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	rest := l.src[l.pos:]
	if strings.TrimSpace(rest) == "" {
		return token{kind: tokEOF, pos: len(l.src)}, nil
	}

	m, err := tokenRe.FindStringMatch(rest)
	if err != nil {
		return token{}, fmt.Errorf("loader: tokenizing at byte %d: %w", l.pos, err)
	}
	if m == nil {
		return token{}, &diagram.LoadingError{Path: fmt.Sprintf("byte %d", l.pos), Message: "unrecognized input"}
	}

	start := l.pos
	l.pos += m.Length

	switch {
	case m.GroupByName("lp").Length > 0:
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case m.GroupByName("rp").Length > 0:
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case m.GroupByName("comma").Length > 0:
		return token{kind: tokComma, text: ",", pos: start}, nil
	case m.GroupByName("str").Length > 0:
		return token{kind: tokString, text: m.GroupByName("str").String(), pos: start}, nil
	case m.GroupByName("id").Length > 0:
		return token{kind: tokIdent, text: m.GroupByName("id").String(), pos: start}, nil
	}
	return token{}, &diagram.LoadingError{Path: fmt.Sprintf("byte %d", l.pos), Message: "unrecognized input"}
}

// parser holds a single token of lookahead over the lexer.
type parser struct {
	lx  lexer
	cur token
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur.kind != k {
		return token{}, &diagram.LoadingError{
			Path:    fmt.Sprintf("byte %d", p.cur.pos),
			Message: fmt.Sprintf("expected %s, got %q", what, p.cur.text),
		}
	}
	t := p.cur
	return t, p.advance()
}

// unquote strips the surrounding quotes and resolves the grammar's two
// escapes, \" and \\; anything else following a backslash is copied
// through unescaped.
func unquote(tok string) string {
	inner := tok[1 : len(tok)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// Parse builds an Element tree from src. It returns a *diagram.LoadingError
// on a malformed default, wrong arity, or wrong child kind.
func Parse(src string) (diagram.Element, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	el, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, &diagram.LoadingError{
			Path:    fmt.Sprintf("byte %d", p.cur.pos),
			Message: fmt.Sprintf("unexpected trailing input %q", p.cur.text),
		}
	}
	return el, nil
}

func (p *parser) parseElement() (diagram.Element, error) {
	if p.cur.kind != tokIdent {
		return nil, &diagram.LoadingError{
			Path:    fmt.Sprintf("byte %d", p.cur.pos),
			Message: fmt.Sprintf("expected element keyword, got %q", p.cur.text),
		}
	}
	kw := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch kw {
	case "skip":
		return diagram.NewSkip(), nil
	case "terminal":
		return p.parseNode(render.StyleTerminal)
	case "non_terminal":
		return p.parseNode(render.StyleNonTerminal)
	case "comment":
		return p.parseNode(render.StyleComment)
	case "sequence", "stack", "no_break":
		return p.parseSequence(kw)
	case "choice":
		return p.parseChoice()
	case "optional":
		return p.parseOptional()
	case "one_or_more":
		return p.parseRepeat(false)
	case "zero_or_more":
		return p.parseRepeat(true)
	case "group":
		return p.parseGroup()
	default:
		return nil, &diagram.LoadingError{
			Path:    fmt.Sprintf("byte %d", p.cur.pos),
			Message: fmt.Sprintf("unknown element %q", kw),
		}
	}
}

func (p *parser) parseNode(style render.NodeStyle) (diagram.Element, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	text, err := p.expect(tokString, "string literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return diagram.NewNode(style, unquote(text.text)), nil
}

// parseElementList parses a parenthesized, comma-separated run of at least
// minCount elements, as sequence/stack/no_break/choice all require.
func (p *parser) parseElementList(kw string, minCount int) ([]diagram.Element, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var items []diagram.Element
	for {
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		items = append(items, el)
		if p.cur.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if len(items) < minCount {
		return nil, &diagram.LoadingError{
			Path:    kw + ".children",
			Message: fmt.Sprintf("%s needs at least %d children, got %d", kw, minCount, len(items)),
		}
	}
	return items, nil
}

// parseSequence handles sequence/stack/no_break: three spellings of the
// same Sequence element differing only in which LineBreak joins every
// adjacent pair of children.
func (p *parser) parseSequence(kw string) (diagram.Element, error) {
	items, err := p.parseElementList(kw, 2)
	if err != nil {
		return nil, err
	}

	var brk diagram.LineBreak
	switch kw {
	case "stack":
		brk = diagram.BreakHard
	case "no_break":
		brk = diagram.BreakNoBreak
	default:
		brk = diagram.BreakSoft
	}
	breaks := make([]diagram.LineBreak, len(items)-1)
	for i := range breaks {
		breaks[i] = brk
	}

	el, err := diagram.NewSequence(items, breaks)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", kw, err)
	}
	return el, nil
}

func (p *parser) parseChoice() (diagram.Element, error) {
	items, err := p.parseElementList("choice", 2)
	if err != nil {
		return nil, err
	}
	el, err := diagram.NewChoice(items, 0)
	if err != nil {
		return nil, fmt.Errorf("loader: choice: %w", err)
	}
	return el, nil
}

func (p *parser) parseOptional() (diagram.Element, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	item, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return diagram.NewOptional(item), nil
}

func (p *parser) parseRepeat(zero bool) (diagram.Element, error) {
	kw := "one_or_more"
	if zero {
		kw = "zero_or_more"
	}
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	item, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	var repeat diagram.Element
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		repeat, err = p.parseElement()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}

	var el diagram.Element
	if zero {
		el, err = diagram.NewZeroOrMore(item, repeat, false)
	} else {
		el, err = diagram.NewOneOrMore(item, repeat, false)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", kw, err)
	}
	return el, nil
}

func (p *parser) parseGroup() (diagram.Element, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	item, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	text := ""
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		strTok, err := p.expect(tokString, "string literal")
		if err != nil {
			return nil, err
		}
		text = unquote(strTok.text)
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return diagram.NewGroup(item, text), nil
}
