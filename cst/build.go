package cst

import "github.com/alecthomas/participle/v2/lexer"

// This file gives the reverse transformer a way to construct CST nodes from
// scratch (spec.md §4.4) without exposing closeBrace, which exists only to
// carry a parsed block's closing-brace position.

// syntheticPos marks a node with no real source position, the same -1
// sentinel the builder uses for __start_line__/__end_line__ (spec.md §3).
var syntheticPos = lexer.Position{Line: -1, Column: -1}

// NewBlock constructs a Block with no recorded source position, for use by
// code (reverse) assembling a CST rather than parsing one.
func NewBlock(blockType string, labels []*Label, body *Body) *Block {
	return &Block{
		Pos:    syntheticPos,
		Type:   blockType,
		Labels: labels,
		Body:   body,
		Close:  &closeBrace{Pos: syntheticPos, Tok: "}"},
	}
}

// NewIdentLabel builds a bare-identifier block label.
func NewIdentLabel(s string) *Label {
	return &Label{Pos: syntheticPos, Ident: &s}
}

// NewStringLabel builds a quoted-string block label; quoted is the raw,
// already-quoted token text (e.g. `"aws"`).
func NewStringLabel(quoted string) *Label {
	return &Label{Pos: syntheticPos, String: &quoted}
}

// WrapPrimary lifts a Primary back up through every precedence level to a
// full Expression, for leaves the reverse transformer builds directly.
func WrapPrimary(p *Primary) *Expression {
	postfix := &Postfix{Pos: syntheticPos, Primary: p}
	unary := &Unary{Pos: syntheticPos, Expr: postfix}
	mul := &Multiplicative{Pos: syntheticPos, Left: unary}
	add := &Additive{Pos: syntheticPos, Left: mul}
	rel := &Relational{Pos: syntheticPos, Left: add}
	eq := &Equality{Pos: syntheticPos, Left: rel}
	and := &LogicalAnd{Pos: syntheticPos, Left: eq}
	or := &LogicalOr{Pos: syntheticPos, Left: and}
	cond := &Conditional{Pos: syntheticPos, Cond: or}
	return &Expression{Pos: syntheticPos, Cond: cond}
}
