// Package format applies a FormatSpec to a rendered field value:
// truncation to a maximum number of screen columns, then padding to a
// minimum, on the side selected by the justification.
//
// All widths are screen columns, not bytes or runes, so double-width
// characters count for two.
package format

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sambeau/expando/pkg/expando/ast"
)

// Apply shapes s per the spec: truncate to Max columns, then pad with
// the leader to Min columns on the side opposite the justification.
// Center justification splits the padding; when the pad amount is
// odd, the extra column goes on the right.
// A nil spec returns s unchanged.
func Apply(s string, spec *ast.FormatSpec) string {
	if spec == nil {
		return s
	}

	if spec.Bounded() {
		s = Truncate(s, spec.Max)
	}

	w := Width(s)
	if w >= spec.Min {
		return s
	}

	pad := spec.Min - w
	switch spec.Justify {
	case ast.JustifyLeft:
		return s + leader(spec.Leader, pad)
	case ast.JustifyCenter:
		left := pad / 2
		return leader(spec.Leader, left) + s + leader(spec.Leader, pad-left)
	default: // ast.JustifyRight
		return leader(spec.Leader, pad) + s
	}
}

// Width returns the screen-column width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most cols screen columns, with no ellipsis.
func Truncate(s string, cols int) string {
	if cols <= 0 {
		return ""
	}
	return runewidth.Truncate(s, cols, "")
}

func leader(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(r), n)
}
