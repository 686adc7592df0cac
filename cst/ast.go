// Package cst implements the HCL2 grammar, lexer, and parser (components G
// and P of the spec): it turns HCL2 source text into a concrete syntax tree
// that preserves every terminal, including comments and blank-line
// separators, so later stages can reconstruct text from it.
//
// The grammar is expressed the way the teacher expresses its .lift grammar —
// tagged Go structs parsed by github.com/alecthomas/participle/v2 — but the
// lexer underneath is hand-written (see lexer.go) because heredoc tag
// matching and string-interpolation brace nesting aren't regular languages.
package cst

import (
	"errors"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/hcl2go/hcl2/hclerr"
)

// Body is a block's contents, or the file top: an ordered run of
// attributes, blocks, and trivia (spec.md §3, "Body").
type Body struct {
	Pos   lexer.Position
	Items []*BodyItem `@@*`
}

// BodyItem is one element of a Body: exactly one of Trivia, Attribute, or
// Block is non-nil.
type BodyItem struct {
	Pos       lexer.Position
	Trivia    *string    `(   @NLOrComment`
	Attribute *Attribute ` | @@`
	Block     *Block     ` | @@ )`
}

// Attribute is an identifier '=' expression pair.
type Attribute struct {
	Pos   lexer.Position
	Name  string      `@Ident "="`
	Value *Expression `@@`
}

// Label is one block label: an identifier or a quoted string.
type Label struct {
	Pos    lexer.Position
	Ident  *string `(  @Ident`
	String *string ` | @String )`
}

// closeBrace exists only to capture the source position of the block's
// closing brace, for the __end_line__ metadata (spec.md §3).
type closeBrace struct {
	Pos lexer.Position
	Tok string `@"}"`
}

// Block is a labelled nested body: TYPE LABEL* '{' body '}'.
type Block struct {
	Pos    lexer.Position
	Type   string      `@Ident`
	Labels []*Label    `@@* "{"`
	Body   *Body       `@@`
	Close  *closeBrace `@@`
}

// ---------------------------------------------------------------------------
// Expressions — a precedence ladder, low to high, per spec.md §4.1:
// ?: | || | && | ==,!= | <,>,<=,>= | +,- | *,/,% | unary -,! | postfix | primary
// ---------------------------------------------------------------------------

// Expression is the root of the precedence ladder.
type Expression struct {
	Pos  lexer.Position
	Cond *Conditional `@@`
}

// Conditional handles the right-associative ternary operator.
type Conditional struct {
	Pos   lexer.Position
	Cond  *LogicalOr  `@@`
	True  *Expression `( "?" @@`
	False *Expression `  ":" @@ )?`
}

type LogicalOr struct {
	Pos  lexer.Position
	Left *LogicalAnd `@@`
	Rest []*OrTail   `@@*`
}

type OrTail struct {
	Pos   lexer.Position
	Right *LogicalAnd `"||" @@`
}

type LogicalAnd struct {
	Pos  lexer.Position
	Left *Equality  `@@`
	Rest []*AndTail `@@*`
}

type AndTail struct {
	Pos   lexer.Position
	Right *Equality `"&&" @@`
}

type Equality struct {
	Pos  lexer.Position
	Left *Relational `@@`
	Rest []*EqTail   `@@*`
}

type EqTail struct {
	Pos   lexer.Position
	Op    string      `@( "==" | "!=" )`
	Right *Relational `@@`
}

type Relational struct {
	Pos  lexer.Position
	Left *Additive  `@@`
	Rest []*RelTail `@@*`
}

type RelTail struct {
	Pos   lexer.Position
	Op    string    `@( "<=" | ">=" | "<" | ">" )`
	Right *Additive `@@`
}

type Additive struct {
	Pos  lexer.Position
	Left *Multiplicative `@@`
	Rest []*AddTail      `@@*`
}

type AddTail struct {
	Pos   lexer.Position
	Op    string          `@( "+" | "-" )`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  lexer.Position
	Left *Unary     `@@`
	Rest []*MulTail `@@*`
}

type MulTail struct {
	Pos   lexer.Position
	Op    string `@( "*" | "/" | "%" )`
	Right *Unary `@@`
}

// Unary handles prefix "-" and "!".
type Unary struct {
	Pos  lexer.Position
	Op   string   `( @( "-" | "!" ) )?`
	Expr *Postfix `@@`
}

// Postfix applies indexing, attribute access, and splats to a primary term.
type Postfix struct {
	Pos     lexer.Position
	Primary *Primary  `@@`
	Suffix  []*Suffix `@@*`
}

// Suffix is one postfix operator: ".name", ".*", "[expr]", or "[*]".
type Suffix struct {
	Pos       lexer.Position
	GetAttr   *string     `(   "." @Ident`
	AttrSplat *string     ` | "." @"*"`
	Index     *Expression ` | "[" @@ "]"`
	FullSplat *string     ` | "[" @"*" "]" )`
}

// Primary is expr_term: the leaves of the expression grammar.
type Primary struct {
	Pos       lexer.Position
	Literal   *Literal       `(   @@`
	ForTuple  *ForTupleExpr  ` | @@`
	ForObject *ForObjectExpr ` | @@`
	FuncCall  *FuncCall      ` | @@`
	Tuple     *Tuple         ` | @@`
	Object    *ObjectLit     ` | @@`
	Paren     *Expression    ` | "(" @@ ")"`
	Ident     *string        ` | @Ident )`
}

// Literal is a scalar token matched atomically: int, float, quoted
// string/template (with "${...}" interpolations preserved verbatim inside
// its text), or heredoc.
type Literal struct {
	Pos     lexer.Position
	Int     *string `(   @Int`
	Float   *string ` | @Float`
	Str     *string ` | @String`
	Heredoc *string ` | @Heredoc )`
}

// FuncCall is identifier ('::' identifier){0,2} '(' arguments? ')'.
type FuncCall struct {
	Pos    lexer.Position
	Name   []string    `@Ident ( "::" @Ident ( "::" @Ident )? )?`
	Args   []*Expression `"(" ( @@ ( "," @@ )* ","? )? `
	Expand bool          `@"..."? ")"`
}

// Tuple is a '[' ... ']' literal list.
type Tuple struct {
	Pos   lexer.Position
	Items []*Expression `"[" ( @@ ( "," @@ )* ","? )? "]"`
}

// ObjectLit is a '{' ... '}' literal mapping.
type ObjectLit struct {
	Pos   lexer.Position
	Elems []*ObjectElem `"{" @@* "}"`
}

// ObjectElem is one key/value pair, optionally followed by its separator
// (a comma or the newline/comment that ended its line).
type ObjectElem struct {
	Pos   lexer.Position
	Key   *ObjectKey  `@@`
	Eq    string      `@( "=" | ":" )`
	Value *Expression `@@`
	Sep   *string     `( @"," | @NLOrComment )?`
}

// ObjectKey is an identifier, a dotted identifier path, a string, a number,
// or a parenthesised expression (spec.md §4.1 object_elem_key).
type ObjectKey struct {
	Pos       lexer.Position
	IdentPath []string    `(   @Ident ( "." @Ident )*`
	Str       *string     ` | @String`
	Int       *string     ` | @Int`
	Float     *string     ` | @Float`
	Paren     *Expression ` | "(" @@ ")" )`
}

// ForIntro is the "for k, v in src :" clause shared by both for-expression
// forms.
type ForIntro struct {
	Pos    lexer.Position
	Key    string      `"for" @Ident`
	Value  *string     `( "," @Ident )?`
	Source *Expression `"in" @@ ":"`
}

// ForTupleExpr is "[for ... : expr (if cond)?]".
type ForTupleExpr struct {
	Pos   lexer.Position
	Intro *ForIntro   `"[" @@`
	Expr  *Expression `@@`
	Cond  *Expression `( "if" @@ )? "]"`
}

// ForObjectExpr is "{for ... : k => v (...)? (if cond)?}".
type ForObjectExpr struct {
	Pos    lexer.Position
	Intro  *ForIntro   `"{" @@`
	Key    *Expression `@@`
	Value  *Expression `"=>" @@`
	Expand bool        `@"..."?`
	Cond   *Expression `( "if" @@ )?`
	_      []string    `@NLOrComment* "}"`
}

// ---------------------------------------------------------------------------
// Parser construction
// ---------------------------------------------------------------------------

var (
	bodyParserOnce sync.Once
	bodyParser     *participle.Parser[Body]
	bodyParserErr  error

	exprParserOnce sync.Once
	exprParser     *participle.Parser[Expression]
	exprParserErr  error
)

// options are shared between the body and expression parsers; the LALR
// table the spec describes has no single idiomatic Go equivalent, so this
// repo uses participle's PEG-with-lookahead parser instead (spec.md §9 asks
// for the idiomatic host-language approach, not a literal table port) —
// the lazily initialised, immutable, concurrency-safe parser spec.md §5
// requires either way.
func options() []participle.Option {
	return []participle.Option{
		participle.Lexer(Lexer),
		participle.UseLookahead(16),
	}
}

func getBodyParser() (*participle.Parser[Body], error) {
	bodyParserOnce.Do(func() {
		bodyParser, bodyParserErr = participle.Build[Body](options()...)
	})
	return bodyParser, bodyParserErr
}

func getExprParser() (*participle.Parser[Expression], error) {
	exprParserOnce.Do(func() {
		exprParser, exprParserErr = participle.Build[Expression](options()...)
	})
	return exprParser, exprParserErr
}

// Parses parses HCL2 source text into a CST. A trailing newline is appended
// first, working around the EOF-terminator requirement of body (spec.md
// §4.1).
func Parses(text string) (*Body, error) {
	p, err := getBodyParser()
	if err != nil {
		return nil, err
	}
	text = normalizeNewlines(text)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	body, err := p.ParseString("", text)
	if err != nil {
		return nil, asSyntaxError(err)
	}
	return body, nil
}

// ParseExpression parses a single HCL2 expression, used by the reverse
// transformer's inline-expression step (spec.md §4.4).
func ParseExpression(text string) (*Expression, error) {
	p, err := getExprParser()
	if err != nil {
		return nil, err
	}
	expr, err := p.ParseString("", text)
	if err != nil {
		return nil, asSyntaxError(err)
	}
	return expr, nil
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func asSyntaxError(err error) error {
	// A heredoc failure originates in the lexer, below participle's own
	// error type; recover it from underneath whatever participle wraps it
	// in so callers can errors.As for it directly instead of a generic
	// SyntaxError.
	var heredocErr *hclerr.HeredocError
	if errors.As(err, &heredocErr) {
		return heredocErr
	}
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		return &hclerr.SyntaxError{
			Line:   pos.Line,
			Column: pos.Column,
			Found:  perr.Message(),
		}
	}
	return err
}
