// Package ast defines the node model for parsed expando format strings.
//
// A format string compiles to an ordered tree of typed nodes: literal
// text, field references, conditionals, relative-date predicates and
// padding. The tree is built by the parser package and walked by the
// render package. Nodes are exclusively owned by their parent; the
// grammar only ever produces trees, never shared nodes or cycles.
package ast

import (
	"fmt"
	"strings"
)

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	KindText NodeKind = iota
	KindField
	KindConditional
	KindCondDate
	KindPadding
	KindContainer
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindField:
		return "field"
	case KindConditional:
		return "conditional"
	case KindCondDate:
		return "conddate"
	case KindPadding:
		return "padding"
	case KindContainer:
		return "container"
	}
	return "unknown"
}

// Node represents any node in the expando AST.
// String reconstructs a source-equivalent form of the node.
type Node interface {
	Kind() NodeKind
	String() string
}

// Justification selects which side of a field gets the padding.
type Justification int

const (
	JustifyRight Justification = iota // default
	JustifyLeft
	JustifyCenter
)

// MaxUnbounded marks a FormatSpec with no truncation limit.
const MaxUnbounded = -1

// FormatSpec holds the width/justification/padding/truncation
// parameters attached to a single rendered field.
type FormatSpec struct {
	Min     int           // minimum screen columns, padded to
	Max     int           // maximum screen columns, MaxUnbounded for none
	Justify Justification // side the content sits on
	Leader  rune          // fill character, ' ' or '0'
}

// NewFormatSpec returns a FormatSpec with the default settings:
// no minimum, unbounded, right-justified, space leader.
func NewFormatSpec() *FormatSpec {
	return &FormatSpec{Max: MaxUnbounded, Leader: ' '}
}

// Bounded reports whether the spec imposes a truncation limit.
func (fs *FormatSpec) Bounded() bool { return fs.Max != MaxUnbounded }

func (fs *FormatSpec) String() string {
	var out strings.Builder

	switch fs.Justify {
	case JustifyLeft:
		out.WriteByte('-')
	case JustifyCenter:
		out.WriteByte('=')
	}
	if fs.Leader == '0' {
		out.WriteByte('0')
	}
	if fs.Min > 0 {
		fmt.Fprintf(&out, "%d", fs.Min)
	}
	if fs.Bounded() {
		fmt.Fprintf(&out, ".%d", fs.Max)
	}

	return out.String()
}

// Period is a calendar unit used by relative-date predicates.
type Period byte

const (
	PeriodYear   Period = 'y'
	PeriodMonth  Period = 'm'
	PeriodWeek   Period = 'w'
	PeriodDay    Period = 'd'
	PeriodHour   Period = 'H'
	PeriodMinute Period = 'M'
)

// ValidPeriod reports whether c is one of the accepted period
// characters 'ymwdHM'.
func ValidPeriod(c byte) bool {
	return strings.IndexByte("ymwdHM", c) >= 0
}

// TextNode is a run of literal text, copied verbatim to the output.
type TextNode struct {
	Value string
}

func (t *TextNode) Kind() NodeKind { return KindText }
func (t *TextNode) String() string { return t.Value }

// FieldNode references one (domain-id, unique-id) pair, resolved
// against a provider registry at render time.
type FieldNode struct {
	Did    int    // domain id
	Uid    int    // unique id within the domain
	Token  string // source token, kept for diagnostics and String()
	Format *FormatSpec
}

func (f *FieldNode) Kind() NodeKind { return KindField }
func (f *FieldNode) String() string {
	spec := ""
	if f.Format != nil {
		spec = f.Format.String()
	}
	return "%" + spec + f.Token
}

// ContainerNode is an ordered sequence of sibling nodes. The root of
// every parsed format string is a container, as is each conditional
// branch.
type ContainerNode struct {
	Children []Node
}

func (c *ContainerNode) Kind() NodeKind { return KindContainer }
func (c *ContainerNode) String() string {
	var out strings.Builder
	for _, child := range c.Children {
		out.WriteString(child.String())
	}
	return out.String()
}

// Empty reports whether the container holds no children.
func (c *ContainerNode) Empty() bool { return len(c.Children) == 0 }

// ConditionalNode owns one condition (a FieldNode or CondDateNode,
// evaluated for truthiness) and up to two branches. A nil branch is
// absent: the branch clause was omitted or empty in the source, and
// selecting it renders nothing.
type ConditionalNode struct {
	Condition Node
	IfTrue    *ContainerNode
	IfFalse   *ContainerNode
}

func (c *ConditionalNode) Kind() NodeKind { return KindConditional }
func (c *ConditionalNode) String() string {
	var out strings.Builder

	out.WriteString("%<")
	out.WriteString(condString(c.Condition))
	out.WriteByte('?')
	if c.IfTrue != nil {
		out.WriteString(c.IfTrue.String())
	}
	if c.IfFalse != nil {
		out.WriteByte('&')
		out.WriteString(c.IfFalse.String())
	}
	out.WriteByte('>')

	return out.String()
}

// condString renders a condition without the leading '%' that
// Node.String would add for a field.
func condString(n Node) string {
	switch cond := n.(type) {
	case *FieldNode:
		return cond.Token
	case *CondDateNode:
		if cond.Count > 0 {
			return fmt.Sprintf("%d%c", cond.Count, cond.Period)
		}
		return string(cond.Period)
	}
	return n.String()
}

// CondDateNode is a relative-date predicate: true when the timestamp
// produced by the (Did, Uid) numeric provider is newer than a cutoff
// of Count Periods ago. Count zero means "start of the current
// period" rather than "zero periods ago".
type CondDateNode struct {
	Did    int
	Uid    int
	Count  int
	Period Period
}

func (c *CondDateNode) Kind() NodeKind { return KindCondDate }
func (c *CondDateNode) String() string {
	if c.Count > 0 {
		return fmt.Sprintf("%%%d%c", c.Count, c.Period)
	}
	return "%" + string(c.Period)
}

// PadStyle selects how a padding node divides the line.
type PadStyle int

const (
	// PadFill fills the rest of the line with the pad character.
	// Anything after the padding marker is discarded.
	PadFill PadStyle = iota
	// PadHard keeps the text left of the marker and truncates the
	// right-hand text to whatever fits.
	PadHard
	// PadSoft lets the right-hand text eat into the left when the
	// line overflows.
	PadSoft
)

func (s PadStyle) marker() byte {
	switch s {
	case PadFill:
		return '|'
	case PadHard:
		return '>'
	}
	return '*'
}

// PaddingNode splits its siblings into a left and right half around a
// run of a fixed filler character. It performs no provider lookup.
type PaddingNode struct {
	Style PadStyle
	Char  string // filler, a single rune
	Left  *ContainerNode
	Right *ContainerNode
}

func (p *PaddingNode) Kind() NodeKind { return KindPadding }
func (p *PaddingNode) String() string {
	var out strings.Builder

	if p.Left != nil {
		out.WriteString(p.Left.String())
	}
	out.WriteByte('%')
	out.WriteByte(p.Style.marker())
	out.WriteString(p.Char)
	if p.Right != nil {
		out.WriteString(p.Right.String())
	}

	return out.String()
}
