// Package reverse implements R (spec.md §4.4): building a CST from the
// tagged value tree, the inverse of transform. Scalars and containers
// reconstruct structurally; "${...}" strings are re-parsed as expressions
// so a value built once by hand (via builder) or by round-tripping through
// Load still reconstructs as a real expression, not a quoted literal.
package reverse

import (
	"fmt"
	"strings"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/hclerr"
	"github.com/hcl2go/hcl2/value"
)

// Body builds a CST Body from a value tree, deciding per key whether its
// value renders as repeated blocks or as a single attribute (spec.md §4.4).
func Body(m *value.Map) (*cst.Body, error) {
	body := &cst.Body{}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		key, v := pair.Key, pair.Value
		if isBlockList(v) {
			for _, elem := range v.List {
				blk, err := blockFromValue(key, elem)
				if err != nil {
					return nil, err
				}
				body.Items = append(body.Items, &cst.BodyItem{Block: blk})
			}
			continue
		}
		expr, err := Expression(v, key)
		if err != nil {
			return nil, err
		}
		body.Items = append(body.Items, &cst.BodyItem{
			Attribute: &cst.Attribute{Name: key, Value: expr},
		})
	}
	return body, nil
}

// isBlockList reports whether v should render as one or more blocks: a
// non-empty list whose every element is a map (spec.md §4.4). A list
// containing anything else — including an empty list — renders as a plain
// tuple-valued attribute.
func isBlockList(v *value.Value) bool {
	if v.Kind != value.KindList || len(v.List) == 0 {
		return false
	}
	for _, e := range v.List {
		if e.Kind != value.KindMap {
			return false
		}
	}
	return true
}

// isBlockBody reports whether v (the current layer while peeling a
// block-list element) is the block's actual body, versus one more label
// wrapper to peel off. It looks at this one layer only; blockFromValue calls
// it once per layer as it walks down the label-wrapper chain.
func isBlockBody(v *value.Value) bool {
	return v.Kind != value.KindMap || !v.IsLabelWrapper || v.Map.Len() != 1
}

// blockFromValue peels labels off a block-list element until it reaches the
// block's body, then builds the Block node.
func blockFromValue(blockType string, v *value.Value) (*cst.Block, error) {
	var labels []*cst.Label
	cur := v
	for !isBlockBody(cur) {
		pair := cur.Map.Oldest()
		labels = append(labels, labelNode(pair.Key))
		cur = pair.Value
	}
	if cur.Kind != value.KindMap {
		return nil, &hclerr.ReverseTypeError{Path: blockType, Kind: cur.KindName()}
	}
	body, err := Body(cur.Map)
	if err != nil {
		return nil, err
	}
	return cst.NewBlock(blockType, labels, body), nil
}

func labelNode(s string) *cst.Label {
	if isBareIdent(s) {
		return cst.NewIdentLabel(s)
	}
	return cst.NewStringLabel(quoteString(s))
}

// Expression builds a CST expression for a single value. path is used only
// to annotate errors.
func Expression(v *value.Value, path string) (*cst.Expression, error) {
	switch v.Kind {
	case value.KindString:
		if v.IsExpression() {
			inner := v.Str[2 : len(v.Str)-1]
			expr, err := cst.ParseExpression(inner)
			if err != nil {
				return nil, &hclerr.ReverseParseError{Path: path, Expr: inner, Err: err}
			}
			return expr, nil
		}
		lit := quoteString(v.Str)
		return cst.WrapPrimary(&cst.Primary{Literal: &cst.Literal{Str: &lit}}), nil

	case value.KindInt:
		s := v.Int.String()
		return cst.WrapPrimary(&cst.Primary{Literal: &cst.Literal{Int: &s}}), nil

	case value.KindFloat:
		// Keep the decimal's scale so trailing zeros survive ("1.50"), and
		// write a non-negative exponent in e-notation so the literal still
		// lexes as a float rather than an int ("1e10", not "10000000000").
		var s string
		if exp := v.Float.Exponent(); exp < 0 {
			s = v.Float.StringFixed(-exp)
		} else {
			s = fmt.Sprintf("%se%d", v.Float.Coefficient().String(), exp)
		}
		return cst.WrapPrimary(&cst.Primary{Literal: &cst.Literal{Float: &s}}), nil

	case value.KindBool:
		s := "false"
		if v.Bool {
			s = "true"
		}
		return cst.WrapPrimary(&cst.Primary{Ident: &s}), nil

	case value.KindNull:
		s := "null"
		return cst.WrapPrimary(&cst.Primary{Ident: &s}), nil

	case value.KindList:
		items := make([]*cst.Expression, len(v.List))
		for i, e := range v.List {
			expr, err := Expression(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = expr
		}
		return cst.WrapPrimary(&cst.Primary{Tuple: &cst.Tuple{Items: items}}), nil

	case value.KindMap:
		var elems []*cst.ObjectElem
		for pair := v.Map.Oldest(); pair != nil; pair = pair.Next() {
			expr, err := Expression(pair.Value, path+"."+pair.Key)
			if err != nil {
				return nil, err
			}
			key := &cst.ObjectKey{IdentPath: []string{pair.Key}}
			if !isBareIdent(pair.Key) {
				q := quoteString(pair.Key)
				key = &cst.ObjectKey{Str: &q}
			}
			elems = append(elems, &cst.ObjectElem{
				Key:   key,
				Eq:    "=",
				Value: expr,
			})
		}
		return cst.WrapPrimary(&cst.Primary{Object: &cst.ObjectLit{Elems: elems}}), nil
	}
	return nil, &hclerr.ReverseTypeError{Path: path, Kind: v.KindName()}
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// quoteString renders s as a double-quoted HCL2 string literal, escaping
// characters that would otherwise change its meaning — including a literal
// "${" becoming "$${", so plain data never reads back as interpolation.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				sb.WriteString("$$")
			} else {
				sb.WriteByte('$')
			}
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
