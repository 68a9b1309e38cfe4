// Package parser converts an expando format string and a caller-
// supplied definition table into an AST.
//
// The grammar, informally:
//
//	literal text            copied verbatim; '\x' escapes x, '%%' is a literal '%'
//	%<spec><token>          a field; <spec> is [-|=][0][min][.max]
//	%<token?then&else>      a conditional; branches nest arbitrarily
//	%|x  %>x  %*x           padding: fill / hard / soft, using 'x' as filler
//
// Inside a conditional, the condition may be a relative-date
// predicate of the form [count]period, where period is one of
// 'ymwdHM'.
//
// Parsing stops at the first error. The caller receives a structured
// *errors.ExpandoError carrying the byte offset of the offending
// character, and no tree.
package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sambeau/expando/pkg/expando/ast"
	perrors "github.com/sambeau/expando/pkg/expando/errors"
)

// ValueType describes what a token's provider produces.
type ValueType int

const (
	TypeString ValueType = iota
	TypeNumber
)

// ParseFunc is a custom parse strategy attached to a Definition. It
// receives the source starting at the token, and returns the parsed
// node and the number of bytes consumed. Error offsets are relative
// to s; the parser re-bases them against the full source.
type ParseFunc func(s string, did, uid int) (ast.Node, int, error)

// Definition describes one valid token in a format string. The table
// is owned by the caller and read-only to the engine; it may be
// shared across concurrent parses.
type Definition struct {
	Token       string    // format token, e.g. "a" or "da"
	Description string    // human description, for documentation
	Did         int       // domain id
	Uid         int       // unique id within the domain
	Type        ValueType // what the paired provider produces
	Parse       ParseFunc // optional custom parse strategy
}

// maxCount is the overflow sentinel for widths and date counts;
// values at or above it are rejected.
const maxCount = 65535

// Parse converts source into an AST using the definition table.
// On failure it returns a *errors.ExpandoError and no tree.
func Parse(source string, defs []Definition) (*ast.ContainerNode, error) {
	p := &Parser{src: source, defs: defs}
	return p.parseSequence("")
}

// Parser holds the cursor state for one parse.
type Parser struct {
	src  string
	pos  int // byte offset of the next unconsumed character
	defs []Definition
}

// parseSequence parses sibling nodes until end of input or one of the
// terminator bytes (used for conditional branches). The terminator
// itself is not consumed. Terminator bytes are ordinary literal text
// when terminators is empty, i.e. outside conditionals.
func (p *Parser) parseSequence(terminators string) (*ast.ContainerNode, error) {
	seq := &ast.ContainerNode{}
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			seq.Children = append(seq.Children, &ast.TextNode{Value: text.String()})
			text.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		if terminators != "" && strings.IndexByte(terminators, c) >= 0 {
			break
		}

		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, perrors.NewAt("PARSE-0008", p.pos, nil)
			}
			text.WriteByte(p.src[p.pos+1])
			p.pos += 2

		case '%':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '%' {
				text.WriteByte('%')
				p.pos += 2
				continue
			}
			flush()
			node, err := p.parsePercent()
			if err != nil {
				return nil, err
			}
			seq.Children = append(seq.Children, node)

		default:
			text.WriteByte(c)
			p.pos++
		}
	}

	flush()
	return repad(seq), nil
}

// parsePercent parses one %-introduced construct. The cursor sits on
// the '%'.
func (p *Parser) parsePercent() (ast.Node, error) {
	start := p.pos
	p.pos++ // '%'

	if p.pos >= len(p.src) {
		return nil, perrors.NewAt("PARSE-0007", start, nil)
	}

	switch p.src[p.pos] {
	case '<':
		return p.parseConditional(start)
	case '|':
		return p.parsePadding(ast.PadFill)
	case '>':
		return p.parsePadding(ast.PadHard)
	case '*':
		return p.parsePadding(ast.PadSoft)
	}

	return p.parseField()
}

// parseField parses an optional format spec followed by a token.
func (p *Parser) parseField() (ast.Node, error) {
	specStart := p.pos
	spec, err := p.parseFormatSpec()
	if err != nil {
		return nil, err
	}

	def := p.matchToken()
	if def == nil {
		return nil, perrors.NewAt("PARSE-0001", p.pos, map[string]any{"Token": p.tokenAtCursor()})
	}

	if def.Parse != nil {
		// A custom parse strategy owns its own syntax; a width or
		// justification ahead of it would be dropped on the floor.
		if p.pos != specStart {
			return nil, perrors.NewAt("PARSE-0009", specStart, map[string]any{"Token": def.Token})
		}
		node, used, err := def.Parse(p.src[p.pos:], def.Did, def.Uid)
		if err != nil {
			return nil, rebase(err, p.pos)
		}
		p.pos += used
		return node, nil
	}

	p.pos += len(def.Token)
	return &ast.FieldNode{Did: def.Did, Uid: def.Uid, Token: def.Token, Format: spec}, nil
}

// parseFormatSpec parses [-|=][0][min][.max]. A spec with defaults is
// returned even when no characters are present, so every field
// carries one.
func (p *Parser) parseFormatSpec() (*ast.FormatSpec, error) {
	spec := ast.NewFormatSpec()

	if p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '-':
			spec.Justify = ast.JustifyLeft
			p.pos++
		case '=':
			spec.Justify = ast.JustifyCenter
			p.pos++
		}
	}

	if p.pos < len(p.src) && p.src[p.pos] == '0' {
		spec.Leader = '0'
		p.pos++
	}

	min, found, err := p.parseNumber()
	if err != nil {
		return nil, widthError(err)
	}
	if found {
		spec.Min = min
	}

	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		max, found, err := p.parseNumber()
		if err != nil {
			return nil, widthError(err)
		}
		if found {
			spec.Max = max
		} else {
			spec.Max = 0
		}
	}

	return spec, nil
}

// parseConditional parses %<cond?then&else>. start is the offset of
// the '%', used for unterminated-conditional errors. The cursor sits
// on the '<'.
func (p *Parser) parseConditional(start int) (ast.Node, error) {
	p.pos++ // '<'

	cond, err := p.parseCondition(start)
	if err != nil {
		return nil, err
	}

	if p.pos >= len(p.src) || p.src[p.pos] != '?' {
		return nil, perrors.NewAt("PARSE-0004", start, nil)
	}
	p.pos++ // '?'

	ifTrue, err := p.parseSequence("&>")
	if err != nil {
		return nil, err
	}

	var ifFalse *ast.ContainerNode
	if p.pos < len(p.src) && p.src[p.pos] == '&' {
		p.pos++ // '&'
		ifFalse, err = p.parseSequence(">")
		if err != nil {
			return nil, err
		}
	}

	if p.pos >= len(p.src) || p.src[p.pos] != '>' {
		return nil, perrors.NewAt("PARSE-0004", start, nil)
	}
	p.pos++ // '>'

	node := &ast.ConditionalNode{Condition: cond}
	// An empty branch is absent, not a zero-length tree.
	if ifTrue != nil && !ifTrue.Empty() {
		node.IfTrue = ifTrue
	}
	if ifFalse != nil && !ifFalse.Empty() {
		node.IfFalse = ifFalse
	}

	return node, nil
}

// parseCondition parses the token between '<' and '?'. A leading
// digit forces a relative-date predicate; otherwise the token is
// matched against the definition table, honoring any custom parse
// strategy (which is how a bare date token becomes a count-zero
// predicate).
func (p *Parser) parseCondition(start int) (ast.Node, error) {
	if p.pos >= len(p.src) {
		return nil, perrors.NewAt("PARSE-0004", start, nil)
	}
	if p.src[p.pos] == '?' {
		return nil, perrors.NewAt("PARSE-0006", start, nil)
	}

	if isDigit(p.src[p.pos]) {
		count, _, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) || !ast.ValidPeriod(p.src[p.pos]) {
			return nil, perrors.NewAt("PARSE-0003", p.pos, map[string]any{"Period": p.tokenAtCursor()})
		}
		period := p.src[p.pos]
		// The predicate reads the table's timestamp token, whichever
		// period unit is asked for.
		def := p.dateDef()
		if def == nil {
			return nil, perrors.NewAt("PARSE-0001", p.pos, map[string]any{"Token": string(period)})
		}
		p.pos++
		return &ast.CondDateNode{Did: def.Did, Uid: def.Uid, Count: count, Period: ast.Period(period)}, nil
	}

	def := p.matchToken()
	if def == nil {
		return nil, perrors.NewAt("PARSE-0001", p.pos, map[string]any{"Token": p.tokenAtCursor()})
	}

	if def.Parse != nil {
		node, used, err := def.Parse(p.src[p.pos:], def.Did, def.Uid)
		if err != nil {
			return nil, rebase(err, p.pos)
		}
		p.pos += used
		return node, nil
	}

	p.pos += len(def.Token)
	return &ast.FieldNode{Did: def.Did, Uid: def.Uid, Token: def.Token}, nil
}

// parsePadding parses %|x, %>x or %*x. The cursor sits on the marker.
func (p *Parser) parsePadding(style ast.PadStyle) (ast.Node, error) {
	marker := p.src[p.pos]
	p.pos++

	if p.pos >= len(p.src) {
		return nil, perrors.NewAt("PARSE-0005", p.pos, map[string]any{"Marker": string(marker)})
	}

	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size

	return &ast.PaddingNode{Style: style, Char: string(r)}, nil
}

// CondDateParse is the parse strategy for relative-date tokens:
// [count]period, count optional. Attach it to the definition of a
// timestamp token so that the bare token inside a conditional means
// "start of the current period".
func CondDateParse(s string, did, uid int) (ast.Node, int, error) {
	pos := 0
	count := 0

	if pos < len(s) && isDigit(s[pos]) {
		start := pos
		for pos < len(s) && isDigit(s[pos]) {
			pos++
		}
		lit := s[start:pos]
		v, err := strconv.Atoi(lit)
		if err != nil || v >= maxCount {
			return nil, 0, perrors.NewAt("PARSE-0002", start, map[string]any{"Literal": lit})
		}
		count = v
	}

	if pos >= len(s) || !ast.ValidPeriod(s[pos]) {
		got := ""
		if pos < len(s) {
			got = string(s[pos])
		}
		return nil, 0, perrors.NewAt("PARSE-0003", pos, map[string]any{"Period": got})
	}

	node := &ast.CondDateNode{Did: did, Uid: uid, Count: count, Period: ast.Period(s[pos])}
	return node, pos + 1, nil
}

// parseNumber consumes a run of digits. found is false when the
// cursor was not on a digit. Values at or above the overflow sentinel
// are an error.
func (p *Parser) parseNumber() (value int, found bool, err error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return 0, false, nil
	}

	lit := p.src[start:p.pos]
	v, convErr := strconv.Atoi(lit)
	if convErr != nil || v >= maxCount {
		return 0, true, perrors.NewAt("PARSE-0002", start, map[string]any{"Literal": lit})
	}

	return v, true, nil
}

// matchToken finds the longest definition token matching at the
// cursor, or nil.
func (p *Parser) matchToken() *Definition {
	rest := p.src[p.pos:]

	var best *Definition
	bestLen := 0
	for i := range p.defs {
		t := p.defs[i].Token
		if len(t) > bestLen && strings.HasPrefix(rest, t) {
			best = &p.defs[i]
			bestLen = len(t)
		}
	}

	return best
}

// dateDef finds the table's timestamp token: the first definition
// carrying a custom parse strategy. Relative-date predicates with an
// explicit count bind to it, whatever period unit they name.
func (p *Parser) dateDef() *Definition {
	for i := range p.defs {
		if p.defs[i].Parse != nil {
			return &p.defs[i]
		}
	}
	return nil
}

// tokenAtCursor returns the character at the cursor for error
// messages, or "" at end of input.
func (p *Parser) tokenAtCursor() string {
	if p.pos >= len(p.src) {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return string(r)
}

// repad re-roots a sequence around its first padding node: siblings
// before it become the left half, siblings after it the right half.
// Sequences without padding are returned unchanged.
func repad(seq *ast.ContainerNode) *ast.ContainerNode {
	for i, child := range seq.Children {
		pad, ok := child.(*ast.PaddingNode)
		if !ok {
			continue
		}

		left := &ast.ContainerNode{Children: seq.Children[:i]}
		right := &ast.ContainerNode{Children: seq.Children[i+1:]}
		if !left.Empty() {
			pad.Left = left
		}
		if !right.Empty() {
			pad.Right = right
		}

		return &ast.ContainerNode{Children: []ast.Node{pad}}
	}

	return seq
}

// widthError reclassifies a numeric-literal error as a format-spec
// width error, keeping the offset and the offending literal.
func widthError(err error) error {
	if ee, ok := err.(*perrors.ExpandoError); ok {
		return perrors.NewAt("FORMAT-0001", ee.Offset, ee.Data)
	}
	return err
}

// rebase shifts a relative error offset from a custom parse strategy
// to an absolute offset into the full source.
func rebase(err error, base int) error {
	if ee, ok := err.(*perrors.ExpandoError); ok && ee.Offset >= 0 {
		return ee.WithOffset(ee.Offset + base)
	}
	return err
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
