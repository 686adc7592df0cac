// Package transform implements F (spec.md §4.2): folding a CST into the
// tagged value tree. Literals, true/false/null, tuples, and objects fold
// directly; every other expression, bare references included, is encoded
// as a "${<canonical text>}" string, with the canonical text produced by
// reconstruct so this package never duplicates W's spacing rules.
//
// Nested containers (tuples, objects) are folded with an explicit
// work-stack rather than Go call recursion (spec.md §9): arbitrarily deep
// `[[[1]]]`-shaped literals are common enough in real configuration that a
// recursive-visitor walk would tie stack depth to input nesting depth.
package transform

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/hclerr"
	"github.com/hcl2go/hcl2/reconstruct"
	"github.com/hcl2go/hcl2/value"
)

// Options controls optional behavior of the forward transform.
type Options struct {
	// WithMeta attaches __start_line__/__end_line__ metadata to every
	// block-instance mapping (spec.md §3, §6).
	WithMeta bool
}

// Body folds a parsed Body into the tagged value tree (spec.md §4.2).
func Body(b *cst.Body, opts Options) (*value.Map, error) {
	out := value.NewMap()
	isBlockKey := map[string]bool{}
	blockList := map[string]*value.Value{}

	for _, item := range b.Items {
		switch {
		case item.Attribute != nil:
			a := item.Attribute
			if _, ok := out.Get(a.Name); ok {
				if isBlockKey[a.Name] {
					return nil, &hclerr.BlockAttributeConflict{Line: a.Pos.Line, Name: a.Name}
				}
				return nil, &hclerr.DuplicateAttribute{Line: a.Pos.Line, Name: a.Name, Context: "body"}
			}
			v, err := Expression(a.Value)
			if err != nil {
				return nil, err
			}
			out.Set(a.Name, v)

		case item.Block != nil:
			blk := item.Block
			if isBlockKey[blk.Type] {
				// append
			} else if _, ok := out.Get(blk.Type); ok {
				return nil, &hclerr.BlockAttributeConflict{Line: blk.Pos.Line, Name: blk.Type}
			}
			inner, err := Body(blk.Body, opts)
			if err != nil {
				return nil, err
			}
			innerVal := value.MapValue(inner)
			if opts.WithMeta {
				innerVal = innerVal.WithLines(blk.Pos.Line, blk.Close.Pos.Line)
			}
			wrapped := wrapLabels(blk.Labels, innerVal)

			if !isBlockKey[blk.Type] {
				isBlockKey[blk.Type] = true
				listVal := value.List([]*value.Value{wrapped})
				blockList[blk.Type] = listVal
				out.Set(blk.Type, listVal)
			} else {
				lv := blockList[blk.Type]
				lv.List = append(lv.List, wrapped)
			}
		}
	}
	return out, nil
}

// wrapLabels nests a block's transformed body under one single-key map per
// label, innermost-first, matching the builder's own nesting (spec.md §3).
func wrapLabels(labels []*cst.Label, inner *value.Value) *value.Value {
	v := inner
	for i := len(labels) - 1; i >= 0; i-- {
		v = value.LabelWrapper(labelText(labels[i]), v)
	}
	return v
}

func labelText(l *cst.Label) string {
	if l.Ident != nil {
		return *l.Ident
	}
	return unquote(*l.String)
}

// Expression folds a single expression into a value (spec.md §4.2). Bare
// literals, the identifiers true/false/null, tuples, and objects fold
// structurally; everything else, any other bare identifier included,
// becomes a "${...}" string.
func Expression(e *cst.Expression) (*value.Value, error) {
	placeholder := &value.Value{}
	if err := expressionInto(e, placeholder); err != nil {
		return nil, err
	}
	return placeholder, nil
}

type workItem struct {
	expr  *cst.Expression
	store *value.Value // mutated in place once resolved
}

// expressionInto resolves e and writes the result into *store, using an
// explicit stack to process nested tuple/object elements rather than
// recursing through Go's call stack.
func expressionInto(e *cst.Expression, store *value.Value) error {
	stack := []workItem{{expr: e, store: store}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prim, bare := barePrimary(cur.expr)
		switch {
		case bare && prim.Tuple != nil:
			items := make([]*value.Value, len(prim.Tuple.Items))
			for i := range items {
				items[i] = &value.Value{}
				stack = append(stack, workItem{expr: prim.Tuple.Items[i], store: items[i]})
			}
			*cur.store = *value.List(items)

		case bare && prim.Object != nil:
			m := value.NewMap()
			seen := map[string]bool{}
			for _, elem := range prim.Object.Elems {
				key, err := objectKeyText(elem.Key)
				if err != nil {
					return err
				}
				if seen[key] {
					return &hclerr.DuplicateAttribute{Line: elem.Pos.Line, Name: key, Context: "object"}
				}
				seen[key] = true
				ph := &value.Value{}
				m.Set(key, ph)
				stack = append(stack, workItem{expr: elem.Value, store: ph})
			}
			*cur.store = *value.MapValue(m)

		default:
			v, err := leaf(cur.expr, prim, bare)
			if err != nil {
				return err
			}
			*cur.store = *v
		}
	}
	return nil
}

// barePrimary descends the precedence ladder and returns the innermost
// Primary if every intervening level is a pass-through (no operator, no
// postfix suffix) — i.e. the expression is structurally just one term.
func barePrimary(e *cst.Expression) (*cst.Primary, bool) {
	c := e.Cond
	if c.True != nil {
		return nil, false
	}
	or := c.Cond
	if len(or.Rest) > 0 {
		return nil, false
	}
	and := or.Left
	if len(and.Rest) > 0 {
		return nil, false
	}
	eq := and.Left
	if len(eq.Rest) > 0 {
		return nil, false
	}
	rel := eq.Left
	if len(rel.Rest) > 0 {
		return nil, false
	}
	add := rel.Left
	if len(add.Rest) > 0 {
		return nil, false
	}
	mul := add.Left
	if len(mul.Rest) > 0 {
		return nil, false
	}
	unary := mul.Left
	if unary.Op != "" {
		return nil, false
	}
	postfix := unary.Expr
	if len(postfix.Suffix) > 0 {
		return nil, false
	}
	return postfix.Primary, true
}

// leaf resolves a primary expression that isn't a tuple or object: scalars,
// identifiers, and anything that must fall back to canonical "${...}" text.
func leaf(e *cst.Expression, prim *cst.Primary, bare bool) (*value.Value, error) {
	if bare && prim.Literal != nil {
		return literal(prim.Literal)
	}
	if bare && prim.Ident != nil {
		switch *prim.Ident {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		case "null":
			return value.Null(), nil
		}
	}
	// Compound: function calls, for-expressions, parenthesised expressions,
	// operators, postfix chains, and bare references all canonicalise to
	// their own reconstructed source text.
	text, err := reconstruct.Expr(e)
	if err != nil {
		return nil, err
	}
	return value.String("${" + text + "}"), nil
}

func literal(l *cst.Literal) (*value.Value, error) {
	switch {
	case l.Int != nil:
		n := new(big.Int)
		if _, ok := n.SetString(*l.Int, 10); !ok {
			return nil, &hclerr.ReverseTypeError{Path: "<literal>", Kind: "int"}
		}
		return value.Int(n), nil
	case l.Float != nil:
		d, err := decimal.NewFromString(*l.Float)
		if err != nil {
			return nil, err
		}
		return value.Float(d), nil
	case l.Str != nil:
		return stringLiteral(*l.Str)
	case l.Heredoc != nil:
		return heredocLiteral(*l.Heredoc)
	}
	return value.Null(), nil
}

func stringLiteral(raw string) (*value.Value, error) {
	inner := raw[1 : len(raw)-1]
	if expr, ok := interpolationSpan(inner); ok {
		parsed, err := cst.ParseExpression(expr)
		if err != nil {
			return nil, &hclerr.ReverseParseError{Path: "<string>", Expr: expr, Err: err}
		}
		return Expression(parsed)
	}
	return value.String(unquote(raw)), nil
}

func heredocLiteral(raw string) (*value.Value, error) {
	trim := len(raw) > 2 && raw[2] == '-'
	text := dedentHeredoc(raw, trim)
	if expr, ok := interpolationSpan(text); ok {
		parsed, err := cst.ParseExpression(expr)
		if err != nil {
			return nil, &hclerr.ReverseParseError{Path: "<heredoc>", Expr: expr, Err: err}
		}
		return Expression(parsed)
	}
	return value.String(text), nil
}

func objectKeyText(k *cst.ObjectKey) (string, error) {
	switch {
	case len(k.IdentPath) > 0:
		s := k.IdentPath[0]
		for _, p := range k.IdentPath[1:] {
			s += "." + p
		}
		return s, nil
	case k.Str != nil:
		return unquote(*k.Str), nil
	case k.Int != nil:
		return *k.Int, nil
	case k.Float != nil:
		return *k.Float, nil
	case k.Paren != nil:
		text, err := reconstruct.Expr(k.Paren)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	return "", nil
}
