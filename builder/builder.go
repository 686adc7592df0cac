// Package builder implements B (spec.md §4.5): a fluent API for assembling
// a tagged value tree by hand, for callers that want to produce HCL2 text
// without writing it themselves. Mirrors the nested-builder merge semantics
// of python-hcl2's builder.py (SPEC_FULL.md §3.2): merging two builders for
// the same (type, labels) pair concatenates their same-key lists instead of
// overwriting.
package builder

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/hcl2go/hcl2/value"
)

// Builder accumulates attributes and nested blocks into a value.Map.
type Builder struct {
	attrs *value.Map
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{attrs: value.NewMap()}
}

// Attr sets a scalar attribute to a pre-built value. Use the String/Int/...
// helpers below for the common cases.
func (b *Builder) Attr(name string, v *value.Value) *Builder {
	b.attrs.Set(name, v)
	return b
}

func (b *Builder) String(name, s string) *Builder { return b.Attr(name, value.String(s)) }

func (b *Builder) Int(name string, n int64) *Builder {
	return b.Attr(name, value.Int(big.NewInt(n)))
}

func (b *Builder) Float(name string, f float64) *Builder {
	return b.Attr(name, value.Float(decimal.NewFromFloat(f)))
}

func (b *Builder) Bool(name string, v bool) *Builder { return b.Attr(name, value.Bool(v)) }

func (b *Builder) Null(name string) *Builder { return b.Attr(name, value.Null()) }

// Expr sets an attribute to a raw expression, encoded the way transform
// would encode it: "${<text>}" (spec.md §3, "Expression encoding").
func (b *Builder) Expr(name, text string) *Builder {
	return b.Attr(name, value.String("${"+text+"}"))
}

// List sets an attribute to a tuple of values.
func (b *Builder) List(name string, items ...*value.Value) *Builder {
	return b.Attr(name, value.List(items))
}

// Block appends one block instance of the given type and labels, with the
// nested Builder's own accumulated attributes as its body. If a block of
// the same type and label sequence was already appended, their bodies are
// merged: same-key lists concatenate, everything else is overwritten by
// the later call (python-hcl2 builder.py's _merge_into semantics).
func (b *Builder) Block(blockType string, labels []string, inner *Builder) *Builder {
	body := value.MapValue(inner.attrs)
	wrapped := body
	for i := len(labels) - 1; i >= 0; i-- {
		wrapped = value.LabelWrapper(labels[i], wrapped)
	}

	existing, ok := b.attrs.Get(blockType)
	if !ok {
		b.attrs.Set(blockType, value.List([]*value.Value{wrapped}))
		return b
	}
	for _, elem := range existing.List {
		if sameLabels(elem, wrapped) {
			mergeInto(innermostBody(elem), innermostBody(wrapped))
			return b
		}
	}
	existing.List = append(existing.List, wrapped)
	return b
}

// Build returns the finished value tree, with every node's metadata
// sentinels set to -1 (no source position — spec.md §3).
func (b *Builder) Build() *value.Map {
	return b.attrs
}

func innermostBody(v *value.Value) *value.Map {
	for v.Kind == value.KindMap && v.IsLabelWrapper && v.Map.Len() == 1 {
		v = v.Map.Oldest().Value
	}
	return v.Map
}

func sameLabels(a, b *value.Value) bool {
	for {
		aIsWrapper := a.Kind == value.KindMap && a.IsLabelWrapper && a.Map.Len() == 1
		bIsWrapper := b.Kind == value.KindMap && b.IsLabelWrapper && b.Map.Len() == 1
		if aIsWrapper != bIsWrapper {
			return false
		}
		if !aIsWrapper {
			return true
		}
		ap, bp := a.Map.Oldest(), b.Map.Oldest()
		if ap.Key != bp.Key {
			return false
		}
		a, b = ap.Value, bp.Value
	}
}

// mergeInto merges src's attributes into dst: a key present in both whose
// values are both lists gets concatenated; otherwise src's value wins.
func mergeInto(dst, src *value.Map) {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		if existing, ok := dst.Get(pair.Key); ok && existing.Kind == value.KindList && pair.Value.Kind == value.KindList {
			existing.List = append(existing.List, pair.Value.List...)
			continue
		}
		dst.Set(pair.Key, pair.Value)
	}
}
