package render

import (
	"github.com/sambeau/expando/pkg/expando/ast"
	perrors "github.com/sambeau/expando/pkg/expando/errors"
	"github.com/sambeau/expando/pkg/expando/parser"
)

// RenderFlags is passed through, unmodified, to every provider
// callback.
type RenderFlags uint8

// FlagNone is the zero flag set.
const FlagNone RenderFlags = 0

// StringFunc produces the text value of a field.
type StringFunc func(node ast.Node, data any, flags RenderFlags) string

// NumberFunc produces the numeric value of a field. Timestamp
// providers return Unix seconds.
type NumberFunc func(node ast.Node, data any, flags RenderFlags) int64

// Provider is the pair of callbacks answering for one field. Either
// callback may be nil, but not both.
type Provider struct {
	GetString StringFunc
	GetNumber NumberFunc
}

// FieldID is the two-part key identifying a field: which data
// category, and which field within it.
type FieldID struct {
	Did int
	Uid int
}

// Registry maps field ids to providers. It is populated before
// rendering and read-only afterwards, so it may be shared across
// concurrent renders.
//
// The registry must cover every field the paired definition table
// advertises; Validate checks this once, at construction time.
type Registry struct {
	providers map[FieldID]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[FieldID]Provider)}
}

// Add registers a provider for a field id, replacing any previous
// one.
func (r *Registry) Add(did, uid int, p Provider) {
	r.providers[FieldID{Did: did, Uid: uid}] = p
}

// AddString registers a string-only provider.
func (r *Registry) AddString(did, uid int, fn StringFunc) {
	r.Add(did, uid, Provider{GetString: fn})
}

// AddNumber registers a number-only provider.
func (r *Registry) AddNumber(did, uid int, fn NumberFunc) {
	r.Add(did, uid, Provider{GetNumber: fn})
}

// Lookup finds the provider for a field id.
func (r *Registry) Lookup(did, uid int) (Provider, bool) {
	p, ok := r.providers[FieldID{Did: did, Uid: uid}]
	return p, ok
}

// Validate checks the registry against a definition table: every
// definition must have a provider with at least one callback, and
// number-typed definitions must have a number callback. Call it once
// when the tables are built; a table pair that passes cannot trip the
// renderer's missing-provider panic.
func (r *Registry) Validate(defs []parser.Definition) error {
	for i := range defs {
		def := &defs[i]

		p, ok := r.Lookup(def.Did, def.Uid)
		if !ok {
			return perrors.New("CONTRACT-0001", contractData(def))
		}
		if p.GetString == nil && p.GetNumber == nil {
			return perrors.New("CONTRACT-0002", contractData(def))
		}
		if def.Type == parser.TypeNumber && p.GetNumber == nil {
			return perrors.New("CONTRACT-0003", contractData(def))
		}
	}
	return nil
}

func contractData(def *parser.Definition) map[string]any {
	return map[string]any{"Token": def.Token, "Did": def.Did, "Uid": def.Uid}
}
