// Package value implements the tagged value tree (spec.md §3): the
// canonical, CST-independent representation that the forward transformer
// produces and the reverse transformer consumes.
package value

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags which alternative of Value is populated.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindNull
	KindList
	KindMap
)

// Map is the tagged value tree's ordered mapping from string key to value,
// preserving the key order the source text established.
type Map = orderedmap.OrderedMap[string, *Value]

// NewMap returns an empty, insertion-ordered Map.
func NewMap() *Map { return orderedmap.New[string, *Value]() }

// Value is one node of the tagged value tree: exactly one field matching
// Kind is meaningful.
type Value struct {
	Kind Kind

	Str   string          // KindString: raw text, or "${...}"-wrapped expression text
	Int   *big.Int        // KindInt
	Float decimal.Decimal // KindFloat
	Bool  bool            // KindBool
	List  []*Value        // KindList
	Map   *Map            // KindMap

	// StartLine/EndLine carry __start_line__/__end_line__ metadata when the
	// with-meta option is set; both are -1 when absent or synthesised by
	// the builder (spec.md §3, §4.5).
	StartLine int
	EndLine   int

	// IsLabelWrapper marks a single-key map produced by nesting a block's
	// labels (spec.md §3, "block encoding") rather than by the block's own
	// body. The reverse transformer peels label wrappers off before
	// re-serialising a block's body (see reverse.isBlockBody); without this
	// tag a one-attribute body would be structurally indistinguishable
	// from one more label layer.
	IsLabelWrapper bool
}

func String(s string) *Value { return &Value{Kind: KindString, Str: s, StartLine: -1, EndLine: -1} }

func Int(i *big.Int) *Value { return &Value{Kind: KindInt, Int: i, StartLine: -1, EndLine: -1} }

func Float(f decimal.Decimal) *Value {
	return &Value{Kind: KindFloat, Float: f, StartLine: -1, EndLine: -1}
}

func Bool(b bool) *Value { return &Value{Kind: KindBool, Bool: b, StartLine: -1, EndLine: -1} }

func Null() *Value { return &Value{Kind: KindNull, StartLine: -1, EndLine: -1} }

func List(items []*Value) *Value {
	return &Value{Kind: KindList, List: items, StartLine: -1, EndLine: -1}
}

func MapValue(m *Map) *Value { return &Value{Kind: KindMap, Map: m, StartLine: -1, EndLine: -1} }

// LabelWrapper builds the single-key {label: inner} map a block's label
// contributes to the value tree (spec.md §3), tagged so the reverse
// transformer can peel it back off.
func LabelWrapper(label string, inner *Value) *Value {
	m := NewMap()
	m.Set(label, inner)
	return &Value{Kind: KindMap, Map: m, StartLine: -1, EndLine: -1, IsLabelWrapper: true}
}

// WithLines returns a copy of v with start/end line metadata set.
func (v *Value) WithLines(start, end int) *Value {
	cp := *v
	cp.StartLine = start
	cp.EndLine = end
	return &cp
}

// IsExpression reports whether v is a string scalar encoding a non-literal
// expression as "${...}" (spec.md §3, "Expression encoding").
func (v *Value) IsExpression() bool {
	return v.Kind == KindString && len(v.Str) >= 3 && v.Str[0] == '$' && v.Str[1] == '{' && v.Str[len(v.Str)-1] == '}'
}

// MarshalJSON renders v the way api.py's with-meta JSON output does: scalars
// and lists marshal directly, and a map with recorded source lines gets two
// extra trailing keys, __start_line__ and __end_line__ (spec.md §3, §6).
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNull:
		return json.Marshal(nil)
	case KindList:
		return json.Marshal(v.List)
	case KindMap:
		if v.StartLine == -1 && v.EndLine == -1 {
			return json.Marshal(v.Map)
		}
		out := NewMap()
		for pair := v.Map.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, pair.Value)
		}
		out.Set("__start_line__", Int(big.NewInt(int64(v.StartLine))))
		out.Set("__end_line__", Int(big.NewInt(int64(v.EndLine))))
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.Kind)
	}
}

// KindName returns the human-readable kind name used in error messages.
func (v *Value) KindName() string {
	switch v.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}
