// Package expando provides the public API for the expando
// format-string engine: parse a format string once, then render it
// any number of times against a provider registry and a data context.
//
//	defs := []parser.Definition{
//		{Token: "n", Description: "name", Did: 1, Uid: 1, Type: parser.TypeString},
//	}
//	reg := render.NewRegistry()
//	reg.AddString(1, 1, func(_ ast.Node, data any, _ render.RenderFlags) string {
//		return data.(string)
//	})
//
//	exp, err := expando.Parse("name: %-10n", defs)
//	if err != nil {
//		// err is a *errors.ExpandoError with the byte offset
//	}
//	line := exp.Render(reg, "inbox", 80)
package expando

import (
	"github.com/sambeau/expando/pkg/expando/ast"
	"github.com/sambeau/expando/pkg/expando/parser"
	"github.com/sambeau/expando/pkg/expando/render"
)

// Expando is a parsed format-string template: the original source and
// the tree compiled from it. The handle exclusively owns its tree;
// parse a string again if you need an independent copy.
type Expando struct {
	Source string
	Root   *ast.ContainerNode
}

// Parse compiles a format string against a definition table. On
// failure it returns a *errors.ExpandoError and no handle; no partial
// tree survives an error.
func Parse(source string, defs []parser.Definition) (*Expando, error) {
	root, err := parser.Parse(source, defs)
	if err != nil {
		return nil, err
	}
	return &Expando{Source: source, Root: root}, nil
}

// Render walks the template against a registry and data context with
// a budget of maxCols screen columns.
func (e *Expando) Render(reg *render.Registry, data any, maxCols int) string {
	return render.Render(e.Root, reg, data, maxCols)
}

// RenderWithFlags is Render with caller flags passed through to every
// provider callback.
func (e *Expando) RenderWithFlags(reg *render.Registry, data any, maxCols int, flags render.RenderFlags) string {
	r := &render.Renderer{Registry: reg, Data: data, Flags: flags}
	return r.Render(e.Root, maxCols)
}

// String reconstructs a source-equivalent form of the template.
func (e *Expando) String() string {
	return e.Root.String()
}

// Validate checks that a registry covers every field a definition
// table advertises. Run it when the tables are built; a pair that
// validates cannot trip the renderer's fail-fast contract panic.
func Validate(defs []parser.Definition, reg *render.Registry) error {
	return reg.Validate(defs)
}
