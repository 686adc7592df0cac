// Package reconstruct implements W (spec.md §4.3): rendering a CST back to
// source text. It flattens the tree into an ordered run of terminals tagged
// with the grammar rule that produced them, then applies a single pure
// whitespace-insertion function over adjacent terminals — the "whitespace
// rule engine" spec.md §9 calls for, rather than a per-node-kind printer.
package reconstruct

import (
	"strings"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/hclerr"
)

// rule tags the grammar production that produced a terminal, so spaceBefore
// can decide tight-binding pairs ("a.b", "f(", "a[0]") without needing the
// literal text of every operator.
type rule string

const (
	ruleIdent       rule = "ident"
	ruleLit         rule = "lit"
	ruleOp          rule = "op"          // generic infix/ternary operator: spaced both sides
	ruleDot         rule = "dot"         // '.': tight both sides
	ruleComma       rule = "comma"       // ',': tight-left, spaced-right
	ruleColon       rule = "colon"       // for-intro ':' and ternary ':': spaced both sides
	ruleObjColon    rule = "objcolon"    // object elem ':' form: tight-left, spaced-right
	ruleNamespace   rule = "namespace"   // '::': tight both sides
	ruleUnary       rule = "unary"       // prefix '-'/'!': tight-right
	ruleEllipsis    rule = "ellipsis"    // trailing '...': tight-left
	ruleLParen      rule = "lparen"      // grouping '(': tight-right
	ruleLParenFn    rule = "lparenfn"    // call '(': tight both sides
	ruleRParen      rule = "rparen"      // ')': tight-left
	ruleLBrack      rule = "lbrack"      // tuple/for '[': tight-right
	ruleLBrackIdx   rule = "lbrackidx"   // index/splat '[': tight both sides
	ruleRBrack      rule = "rbrack"      // ']': tight-left
	ruleLBrace      rule = "lbrace"      // object/for-object literal '{': spaced-left, tight-right
	ruleRBrace      rule = "rbrace"      // object/for-object literal '}': tight-left
	ruleBlockLBrace rule = "blocklbrace" // block '{': spaced-left, spaced-right unless the block is empty
	ruleBlockRBrace rule = "blockrbrace" // block '}': spaced-left, unless the block is empty or a newline already precedes it
	ruleNL          rule = "nl"          // newline/comment trivia token, printed verbatim
	ruleComment     rule = "comment"     // same-line trailing comment
	ruleEq          rule = "eq"          // attribute/object '=': spaced both sides
	ruleKeyword     rule = "keyword"     // for/in/if: spaced both sides (same as ident)
	ruleLabelStr    rule = "labelstr"    // quoted block label: spaced-left like ident
)

type token struct {
	rule rule
	text string
}

type flattener struct {
	toks []token
}

func (f *flattener) emit(r rule, text string) {
	f.toks = append(f.toks, token{rule: r, text: text})
}

// Writes renders a parsed Body back to source text (spec.md §4.3).
func Writes(body *cst.Body) (string, error) {
	f := &flattener{}
	f.flattenBody(body)
	return render(f.toks), nil
}

// Expr renders a single expression subtree to its canonical text, used by
// the forward transformer to encode compound expressions as "${...}"
// (spec.md §4.2) without duplicating this package's spacing rules.
func Expr(e *cst.Expression) (string, error) {
	if e == nil {
		return "", &hclerr.ReconstructError{Msg: "nil expression"}
	}
	f := &flattener{}
	f.flattenExpression(e)
	return render(f.toks), nil
}

func render(toks []token) string {
	var sb strings.Builder
	var lastRule rule
	have := false
	for _, t := range toks {
		if have && spaceBefore(lastRule, t.rule) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.text)
		lastRule = t.rule
		have = true
	}
	return sb.String()
}

// spaceBefore is the whitespace rule engine: a pure function of the
// previous and next terminal's producing rule. It holds no state and is
// called once per adjacent terminal pair during render.
func spaceBefore(last, next rule) bool {
	switch next {
	case ruleNL:
		return false
	case ruleComment:
		return last != ruleNL && last != ""
	case ruleBlockRBrace:
		// spec.md §4.3 rule 4: a space before '}' in a non-empty block, but
		// not when the block is empty or a newline already separates its
		// last item from the brace.
		return last != ruleBlockLBrace && last != ruleNL
	case ruleDot, ruleComma, ruleRParen, ruleRBrack, ruleRBrace,
		ruleNamespace, ruleEllipsis, ruleLParenFn, ruleLBrackIdx, ruleObjColon:
		return false
	}
	switch last {
	case ruleNL:
		return false
	case ruleDot, ruleNamespace, ruleUnary, ruleLParen, ruleLParenFn,
		ruleLBrack, ruleLBrackIdx, ruleLBrace:
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Flattening: Body and its contents.
// ---------------------------------------------------------------------------

func (f *flattener) flattenBody(b *cst.Body) {
	for _, item := range b.Items {
		f.flattenBodyItem(item)
	}
}

func (f *flattener) flattenBodyItem(it *cst.BodyItem) {
	switch {
	case it.Trivia != nil:
		r := ruleNL
		if *it.Trivia != "\n" {
			r = ruleComment
		}
		f.emit(r, *it.Trivia)
	case it.Attribute != nil:
		f.flattenAttribute(it.Attribute)
	case it.Block != nil:
		f.flattenBlock(it.Block)
	}
}

func (f *flattener) flattenAttribute(a *cst.Attribute) {
	f.emit(ruleIdent, a.Name)
	f.emit(ruleEq, "=")
	f.flattenExpression(a.Value)
}

func (f *flattener) flattenBlock(b *cst.Block) {
	f.emit(ruleIdent, b.Type)
	for _, l := range b.Labels {
		if l.Ident != nil {
			f.emit(ruleIdent, *l.Ident)
		} else {
			f.emit(ruleLabelStr, *l.String)
		}
	}
	f.emit(ruleBlockLBrace, "{")
	f.flattenBody(b.Body)
	f.emit(ruleBlockRBrace, "}")
}

// ---------------------------------------------------------------------------
// Flattening: expression precedence ladder.
// ---------------------------------------------------------------------------

func (f *flattener) flattenExpression(e *cst.Expression) {
	f.flattenConditional(e.Cond)
}

func (f *flattener) flattenConditional(c *cst.Conditional) {
	f.flattenLogicalOr(c.Cond)
	if c.True != nil {
		f.emit(ruleOp, "?")
		f.flattenExpression(c.True)
		f.emit(ruleColon, ":")
		f.flattenExpression(c.False)
	}
}

func (f *flattener) flattenLogicalOr(n *cst.LogicalOr) {
	f.flattenLogicalAnd(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, "||")
		f.flattenLogicalAnd(t.Right)
	}
}

func (f *flattener) flattenLogicalAnd(n *cst.LogicalAnd) {
	f.flattenEquality(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, "&&")
		f.flattenEquality(t.Right)
	}
}

func (f *flattener) flattenEquality(n *cst.Equality) {
	f.flattenRelational(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, t.Op)
		f.flattenRelational(t.Right)
	}
}

func (f *flattener) flattenRelational(n *cst.Relational) {
	f.flattenAdditive(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, t.Op)
		f.flattenAdditive(t.Right)
	}
}

func (f *flattener) flattenAdditive(n *cst.Additive) {
	f.flattenMultiplicative(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, t.Op)
		f.flattenMultiplicative(t.Right)
	}
}

func (f *flattener) flattenMultiplicative(n *cst.Multiplicative) {
	f.flattenUnary(n.Left)
	for _, t := range n.Rest {
		f.emit(ruleOp, t.Op)
		f.flattenUnary(t.Right)
	}
}

func (f *flattener) flattenUnary(n *cst.Unary) {
	if n.Op != "" {
		f.emit(ruleUnary, n.Op)
	}
	f.flattenPostfix(n.Expr)
}

func (f *flattener) flattenPostfix(n *cst.Postfix) {
	f.flattenPrimary(n.Primary)
	for _, s := range n.Suffix {
		switch {
		case s.GetAttr != nil:
			f.emit(ruleDot, ".")
			f.emit(ruleIdent, *s.GetAttr)
		case s.AttrSplat != nil:
			f.emit(ruleDot, ".")
			f.emit(ruleIdent, "*")
		case s.Index != nil:
			f.emit(ruleLBrackIdx, "[")
			f.flattenExpression(s.Index)
			f.emit(ruleRBrack, "]")
		case s.FullSplat != nil:
			f.emit(ruleLBrackIdx, "[")
			f.emit(ruleIdent, "*")
			f.emit(ruleRBrack, "]")
		}
	}
}

func (f *flattener) flattenPrimary(p *cst.Primary) {
	switch {
	case p.Literal != nil:
		f.flattenLiteral(p.Literal)
	case p.ForTuple != nil:
		f.flattenForTuple(p.ForTuple)
	case p.ForObject != nil:
		f.flattenForObject(p.ForObject)
	case p.FuncCall != nil:
		f.flattenFuncCall(p.FuncCall)
	case p.Tuple != nil:
		f.flattenTuple(p.Tuple)
	case p.Object != nil:
		f.flattenObject(p.Object)
	case p.Paren != nil:
		f.emit(ruleLParen, "(")
		f.flattenExpression(p.Paren)
		f.emit(ruleRParen, ")")
	case p.Ident != nil:
		f.emit(ruleIdent, *p.Ident)
	}
}

func (f *flattener) flattenLiteral(l *cst.Literal) {
	switch {
	case l.Int != nil:
		f.emit(ruleLit, *l.Int)
	case l.Float != nil:
		f.emit(ruleLit, *l.Float)
	case l.Str != nil:
		f.emit(ruleLit, *l.Str)
	case l.Heredoc != nil:
		f.emit(ruleLit, *l.Heredoc)
	}
}

func (f *flattener) flattenFuncCall(c *cst.FuncCall) {
	for i, part := range c.Name {
		if i > 0 {
			f.emit(ruleNamespace, "::")
		}
		f.emit(ruleIdent, part)
	}
	f.emit(ruleLParenFn, "(")
	for i, a := range c.Args {
		if i > 0 {
			f.emit(ruleComma, ",")
		}
		f.flattenExpression(a)
	}
	if c.Expand {
		f.emit(ruleEllipsis, "...")
	}
	f.emit(ruleRParen, ")")
}

func (f *flattener) flattenTuple(t *cst.Tuple) {
	f.emit(ruleLBrack, "[")
	for i, item := range t.Items {
		if i > 0 {
			f.emit(ruleComma, ",")
		}
		f.flattenExpression(item)
	}
	f.emit(ruleRBrack, "]")
}

func (f *flattener) flattenObject(o *cst.ObjectLit) {
	f.emit(ruleLBrace, "{")
	for i, elem := range o.Elems {
		f.flattenObjectKey(elem.Key)
		if elem.Eq == ":" {
			f.emit(ruleObjColon, ":")
		} else {
			f.emit(ruleEq, "=")
		}
		f.flattenExpression(elem.Value)
		f.flattenObjectSep(elem.Sep, i == len(o.Elems)-1)
	}
	f.emit(ruleRBrace, "}")
}

// flattenObjectSep re-emits the separator captured after an object element:
// a comma, a bare newline, or a trailing comment, in each case verbatim —
// except a comma immediately before the closing '}' is dropped (spec.md
// §4.3: a comma is never emitted right before ')' or '}').
func (f *flattener) flattenObjectSep(sep *string, last bool) {
	if sep == nil {
		return
	}
	switch {
	case *sep == ",":
		if !last {
			f.emit(ruleComma, ",")
		}
	case *sep == "\n":
		f.emit(ruleNL, "\n")
	default:
		f.emit(ruleComment, *sep)
	}
}

func (f *flattener) flattenObjectKey(k *cst.ObjectKey) {
	switch {
	case len(k.IdentPath) > 0:
		for i, part := range k.IdentPath {
			if i > 0 {
				f.emit(ruleDot, ".")
			}
			f.emit(ruleIdent, part)
		}
	case k.Str != nil:
		f.emit(ruleLit, *k.Str)
	case k.Int != nil:
		f.emit(ruleLit, *k.Int)
	case k.Float != nil:
		f.emit(ruleLit, *k.Float)
	case k.Paren != nil:
		f.emit(ruleLParen, "(")
		f.flattenExpression(k.Paren)
		f.emit(ruleRParen, ")")
	}
}

func (f *flattener) flattenForIntro(intro *cst.ForIntro) {
	f.emit(ruleKeyword, "for")
	f.emit(ruleIdent, intro.Key)
	if intro.Value != nil {
		f.emit(ruleComma, ",")
		f.emit(ruleIdent, *intro.Value)
	}
	f.emit(ruleKeyword, "in")
	f.flattenExpression(intro.Source)
	f.emit(ruleColon, ":")
}

func (f *flattener) flattenForTuple(ft *cst.ForTupleExpr) {
	f.emit(ruleLBrack, "[")
	f.flattenForIntro(ft.Intro)
	f.flattenExpression(ft.Expr)
	if ft.Cond != nil {
		f.emit(ruleKeyword, "if")
		f.flattenExpression(ft.Cond)
	}
	f.emit(ruleRBrack, "]")
}

func (f *flattener) flattenForObject(fo *cst.ForObjectExpr) {
	f.emit(ruleLBrace, "{")
	f.flattenForIntro(fo.Intro)
	f.flattenExpression(fo.Key)
	f.emit(ruleOp, "=>")
	f.flattenExpression(fo.Value)
	if fo.Expand {
		f.emit(ruleEllipsis, "...")
	}
	if fo.Cond != nil {
		f.emit(ruleKeyword, "if")
		f.flattenExpression(fo.Cond)
	}
	f.emit(ruleRBrace, "}")
}
