// Package render walks an expando AST against a provider registry
// and a caller-owned data context, producing column-bounded output.
//
// Rendering is synchronous and side-effect free: the only mutable
// state is the output accumulator. A parsed tree plus a registry may
// be rendered concurrently as long as each call owns its output.
//
// A field whose id has no registered provider is a programmer error,
// not a runtime condition: the definition table and the registry for
// a given template were built as a pair, and a mismatch means any
// output would be garbage. The renderer panics with a structured
// contract error rather than degrading. Registry.Validate catches
// this class of mistake at table-construction time.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sambeau/expando/pkg/expando/ast"
	perrors "github.com/sambeau/expando/pkg/expando/errors"
	"github.com/sambeau/expando/pkg/expando/format"
)

// Renderer binds a registry, a data context and flags for one or more
// render calls over the same data.
type Renderer struct {
	Registry *Registry
	Data     any
	Flags    RenderFlags
}

// Render walks the tree with a column budget of maxCols and returns
// the rendered text.
func (r *Renderer) Render(root ast.Node, maxCols int) string {
	var buf strings.Builder
	r.renderNode(&buf, root, maxCols)
	return buf.String()
}

// Render is a convenience wrapper for a one-off render.
func Render(root ast.Node, reg *Registry, data any, maxCols int) string {
	r := &Renderer{Registry: reg, Data: data}
	return r.Render(root, maxCols)
}

// renderNode renders one node within a column budget and returns the
// columns it emitted. A zero or negative budget emits nothing.
func (r *Renderer) renderNode(buf *strings.Builder, node ast.Node, maxCols int) int {
	if node == nil {
		return 0
	}

	switch n := node.(type) {
	case *ast.ContainerNode:
		if n == nil {
			// An absent padding half arrives as a typed-nil
			// *ContainerNode, which the interface check above
			// cannot catch.
			return 0
		}
		total := 0
		for _, child := range n.Children {
			total += r.renderNode(buf, child, maxCols-total)
		}
		return total

	case *ast.TextNode:
		return emit(buf, n.Value, maxCols)

	case *ast.FieldNode:
		return emit(buf, format.Apply(r.fieldText(n), n.Format), maxCols)

	case *ast.ConditionalNode:
		branch := n.IfFalse
		if r.evalCondition(n.Condition) {
			branch = n.IfTrue
		}
		if branch == nil {
			// Absent branch: nothing to render, not an error.
			return 0
		}
		return r.renderNode(buf, branch, maxCols)

	case *ast.CondDateNode:
		// Predicate nodes only answer conditions; on their own they
		// produce no output.
		return 0

	case *ast.PaddingNode:
		return r.renderPadding(buf, n, maxCols)
	}

	return 0
}

// fieldText resolves a field's text via its provider, preferring the
// string callback and falling back to decimal-formatted numbers.
func (r *Renderer) fieldText(n *ast.FieldNode) string {
	p := r.lookup(n, n.Did, n.Uid)

	if p.GetString != nil {
		return p.GetString(n, r.Data, r.Flags)
	}
	if p.GetNumber == nil {
		panic(perrors.New("CONTRACT-0002", map[string]any{"Token": n.Token, "Did": n.Did, "Uid": n.Uid}))
	}
	return strconv.FormatInt(p.GetNumber(n, r.Data, r.Flags), 10)
}

// evalCondition coerces a condition node to a boolean: nonzero
// numbers and non-empty strings are true. Relative-date predicates
// compare their timestamp against the calendar cutoff.
func (r *Renderer) evalCondition(cond ast.Node) bool {
	switch n := cond.(type) {
	case *ast.CondDateNode:
		p := r.lookup(n, n.Did, n.Uid)
		if p.GetNumber == nil {
			panic(perrors.New("CONTRACT-0003", map[string]any{"Token": string(n.Period)}))
		}
		return evalCondDate(n, p.GetNumber(n, r.Data, r.Flags))

	case *ast.FieldNode:
		p := r.lookup(n, n.Did, n.Uid)
		if p.GetNumber != nil {
			return p.GetNumber(n, r.Data, r.Flags) != 0
		}
		if p.GetString == nil {
			panic(perrors.New("CONTRACT-0002", map[string]any{"Token": n.Token, "Did": n.Did, "Uid": n.Uid}))
		}
		return p.GetString(n, r.Data, r.Flags) != ""
	}

	panic(fmt.Sprintf("render: %s node cannot be a condition", cond.Kind()))
}

// renderPadding renders the node's two halves around a run of its
// filler character, per the padding style.
func (r *Renderer) renderPadding(buf *strings.Builder, n *ast.PaddingNode, maxCols int) int {
	switch n.Style {
	case ast.PadFill:
		// Left half, then filler to the end of the budget. The right
		// half is discarded.
		used := r.renderNode(buf, n.Left, maxCols)
		return used + fill(buf, n.Char, maxCols-used)

	case ast.PadHard:
		// Left half is preserved; the right half is truncated to
		// whatever remains and pushed flush to the right margin.
		used := r.renderNode(buf, n.Left, maxCols)
		right := r.subrender(n.Right, maxCols-used)
		rightCols := format.Width(right)
		used += fill(buf, n.Char, maxCols-used-rightCols)
		buf.WriteString(right)
		return used + rightCols

	default: // ast.PadSoft
		// Right half wins; the left half is squeezed into whatever
		// the right leaves over.
		right := r.subrender(n.Right, maxCols)
		rightCols := format.Width(right)
		used := r.renderNode(buf, n.Left, maxCols-rightCols)
		used += fill(buf, n.Char, maxCols-used-rightCols)
		buf.WriteString(right)
		return used + rightCols
	}
}

// subrender renders a subtree into its own buffer.
func (r *Renderer) subrender(node ast.Node, maxCols int) string {
	if node == nil || maxCols <= 0 {
		return ""
	}
	var buf strings.Builder
	r.renderNode(&buf, node, maxCols)
	return buf.String()
}

// lookup resolves a provider or fails fast: by the time a node is
// visited, its provider must exist.
func (r *Renderer) lookup(node ast.Node, did, uid int) Provider {
	p, ok := r.Registry.Lookup(did, uid)
	if !ok {
		panic(perrors.New("CONTRACT-0001", map[string]any{"Token": node.String(), "Did": did, "Uid": uid}))
	}
	return p
}

// emit writes s clipped to maxCols screen columns and returns the
// columns written.
func emit(buf *strings.Builder, s string, maxCols int) int {
	if maxCols <= 0 {
		return 0
	}
	s = format.Truncate(s, maxCols)
	buf.WriteString(s)
	return format.Width(s)
}

// fill writes the filler character while it fits, then single spaces
// for any remaining columns a wide filler cannot cover.
func fill(buf *strings.Builder, char string, cols int) int {
	w := format.Width(char)
	if w <= 0 {
		return 0
	}

	total := 0
	for cols-total >= w {
		buf.WriteString(char)
		total += w
	}
	for cols-total > 0 {
		buf.WriteByte(' ')
		total++
	}

	return total
}
