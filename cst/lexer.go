package cst

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/hcl2go/hcl2/hclerr"
)

// Token types. HCL2's heredoc tag matching and string interpolation brace
// nesting aren't regular languages, so unlike the teacher's
// lexer.MustSimple regex table this lexer is hand-written; it still hands
// the resulting token stream to participle the same way the teacher does.
const (
	TokenIdent lexer.TokenType = iota + 1
	TokenInt
	TokenFloat
	TokenString
	TokenHeredoc
	TokenOp
	TokenPunct
	TokenNLOrComment
)

var symbols = map[string]lexer.TokenType{
	"Ident":       TokenIdent,
	"Int":         TokenInt,
	"Float":       TokenFloat,
	"String":      TokenString,
	"Heredoc":     TokenHeredoc,
	"Op":          TokenOp,
	"Punct":       TokenPunct,
	"NLOrComment": TokenNLOrComment,
	"EOF":         lexer.EOF,
}

// hclLexerDefinition is the participle lexer.Definition for HCL2.
type hclLexerDefinition struct{}

func (hclLexerDefinition) Symbols() map[string]lexer.TokenType { return symbols }

func (hclLexerDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &hclLexer{
		filename: filename,
		src:      string(data),
		pos:      lexer.Position{Filename: filename, Line: 1, Column: 1},
	}, nil
}

// Lexer is the shared, process-wide lexer definition. It holds no mutable
// state of its own — every call to Lex constructs a fresh *hclLexer — so it
// is safe to share across concurrent callers per spec.md §5.
var Lexer lexer.Definition = hclLexerDefinition{}

var multiCharOps = []string{"...", "==", "!=", "<=", ">=", "&&", "||", "=>", "::"}

// hclLexer is a hand-rolled scanner. It is not reused across goroutines.
type hclLexer struct {
	filename string
	src      string
	offset   int
	pos      lexer.Position

	// brackets tracks nesting of '(', '[', '{' so that newlines inside a
	// parenthesised or bracketed expression (function arguments, tuples,
	// for-tuple expressions) can be treated as insignificant whitespace,
	// the way hashicorp/hcl's own scanner does — while newlines directly
	// inside a '{' (block bodies, object literals) stay significant and
	// reach the grammar as NLOrComment tokens.
	brackets []byte
}

func (l *hclLexer) Next() (lexer.Token, error) {
	for {
		l.skipInline()

		if l.offset >= len(l.src) {
			return lexer.Token{Type: lexer.EOF, Pos: l.pos}, nil
		}

		start := l.pos
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])

		switch {
		case r == '\n':
			tok, err := l.scanNewlineRun(start)
			if err != nil || !l.newlinesSuppressed() {
				return tok, err
			}
			continue
		case r == '#' || (r == '/' && l.peekAt(1) == '/'):
			return l.scanLineComment(start)
		case r == '/' && l.peekAt(1) == '*':
			return l.scanBlockComment(start)
		case r == '"':
			return l.scanString(start)
		case r == '<' && l.peekAt(1) == '<':
			return l.scanHeredoc(start)
		case isDigit(r):
			return l.scanNumber(start)
		case isIdentStart(r):
			return l.scanIdent(start)
		default:
			return l.scanOpOrPunct(start)
		}
	}
}

// newlinesSuppressed reports whether the innermost open bracket is '(' or
// '[' — contexts where HCL2 allows free line-wrapping without the newline
// acting as a statement or element separator.
func (l *hclLexer) newlinesSuppressed() bool {
	if len(l.brackets) == 0 {
		return false
	}
	top := l.brackets[len(l.brackets)-1]
	return top == '(' || top == '['
}

func (l *hclLexer) peekAt(n int) rune {
	off := l.offset
	for i := 0; i < n && off < len(l.src); i++ {
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *hclLexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	l.pos.Offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	return r
}

func (l *hclLexer) skipInline() {
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == ' ' || r == '\t' || r == '\r' {
			l.advance()
			continue
		}
		break
	}
}

// scanNewlineRun collapses a run of consecutive newlines (and blank,
// whitespace-only lines between them) into a single separator token, per
// spec.md §4.1.
func (l *hclLexer) scanNewlineRun(start lexer.Position) (lexer.Token, error) {
	l.advance() // first '\n'
	for {
		mark, markPos := l.offset, l.pos
		l.skipInline()
		if l.offset < len(l.src) {
			if r, _ := utf8.DecodeRuneInString(l.src[l.offset:]); r == '\n' {
				l.advance()
				continue
			}
		}
		l.offset, l.pos = mark, markPos
		break
	}
	return lexer.Token{Type: TokenNLOrComment, Value: "\n", Pos: start}, nil
}

func (l *hclLexer) scanLineComment(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == '\n' {
			break
		}
		sb.WriteRune(l.advance())
	}
	return lexer.Token{Type: TokenNLOrComment, Value: sb.String(), Pos: start}, nil
}

func (l *hclLexer) scanBlockComment(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	sb.WriteRune(l.advance()) // '/'
	sb.WriteRune(l.advance()) // '*'
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == '*' && l.peekAt(1) == '/' {
			sb.WriteRune(l.advance())
			sb.WriteRune(l.advance())
			return lexer.Token{Type: TokenNLOrComment, Value: sb.String(), Pos: start}, nil
		}
		sb.WriteRune(l.advance())
	}
	return lexer.Token{}, fmt.Errorf("%d:%d: unterminated block comment", start.Line, start.Column)
}

// scanString consumes a double-quoted template literal, atomically,
// tracking "${" / "}" nesting so that braces and quotes belonging to a
// nested interpolation don't terminate the outer string early.
func (l *hclLexer) scanString(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	sb.WriteRune(l.advance()) // opening quote

	type mode int
	const (
		modeString mode = iota
		modeInterp
	)
	stack := []mode{modeString}
	interpDepth := []int{0}

	for l.offset < len(l.src) {
		top := stack[len(stack)-1]
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])

		switch top {
		case modeString:
			switch {
			case r == '\\':
				sb.WriteRune(l.advance())
				if l.offset < len(l.src) {
					sb.WriteRune(l.advance())
				}
			case r == '$' && l.peekAt(1) == '{':
				sb.WriteRune(l.advance())
				sb.WriteRune(l.advance())
				stack = append(stack, modeInterp)
				interpDepth = append(interpDepth, 0)
			case r == '$' && l.peekAt(1) == '$':
				sb.WriteRune(l.advance())
				sb.WriteRune(l.advance())
			case r == '"':
				sb.WriteRune(l.advance())
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return lexer.Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
				}
			default:
				sb.WriteRune(l.advance())
			}
		case modeInterp:
			switch {
			case r == '"':
				sb.WriteRune(l.advance())
				stack = append(stack, modeString)
				interpDepth = append(interpDepth, 0)
			case r == '{':
				sb.WriteRune(l.advance())
				interpDepth[len(interpDepth)-1]++
			case r == '}':
				sb.WriteRune(l.advance())
				if interpDepth[len(interpDepth)-1] > 0 {
					interpDepth[len(interpDepth)-1]--
				} else {
					stack = stack[:len(stack)-1]
					interpDepth = interpDepth[:len(interpDepth)-1]
				}
			default:
				sb.WriteRune(l.advance())
			}
		}
	}
	return lexer.Token{}, fmt.Errorf("%d:%d: unterminated string literal", start.Line, start.Column)
}

// scanHeredoc consumes <<TAG...TAG and <<-TAG...TAG as one atomic token.
// The closing line is identified by its trimmed content equalling TAG, per
// spec.md §4.1. A "<<-" heredoc with no content lines is a HeredocError.
// Line endings are not touched here: Parses normalises CRLF to LF before
// lexing (spec.md §6), while ParseExpression passes its input through as is.
func (l *hclLexer) scanHeredoc(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	sb.WriteRune(l.advance()) // '<'
	sb.WriteRune(l.advance()) // '<'
	trim := false
	if l.offset < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[l.offset:]); r == '-' {
			trim = true
			sb.WriteRune(l.advance())
		}
	}

	var tag strings.Builder
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if isIdentPart(r) {
			tag.WriteRune(r)
			sb.WriteRune(l.advance())
			continue
		}
		break
	}
	if tag.Len() == 0 {
		return lexer.Token{}, &hclerr.HeredocError{Line: start.Line, Tag: "", Msg: "malformed heredoc marker"}
	}
	tagStr := tag.String()

	// Consume to end of the marker line.
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == '\n' {
			break
		}
		sb.WriteRune(l.advance())
	}
	if l.offset >= len(l.src) {
		return lexer.Token{}, &hclerr.HeredocError{Line: start.Line, Tag: tagStr, Msg: "never closed"}
	}
	sb.WriteRune(l.advance()) // newline after marker

	contentLines := 0
	for {
		lineStart := l.offset
		var line strings.Builder
		for l.offset < len(l.src) {
			r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
			if r == '\n' {
				break
			}
			line.WriteRune(r)
			l.advance()
		}
		lineText := line.String()
		if strings.TrimSpace(lineText) == tagStr {
			sb.WriteString(l.src[lineStart:l.offset])
			if l.offset < len(l.src) {
				sb.WriteRune(l.advance()) // trailing newline, if any
			}
			// Trimming of common indent happens in the forward transformer.
			if trim && contentLines == 0 {
				return lexer.Token{}, &hclerr.HeredocError{Line: start.Line, Tag: tagStr, Msg: "empty trim heredoc"}
			}
			return lexer.Token{Type: TokenHeredoc, Value: sb.String(), Pos: start}, nil
		}
		contentLines++
		sb.WriteString(l.src[lineStart:l.offset])
		if l.offset >= len(l.src) {
			return lexer.Token{}, &hclerr.HeredocError{Line: start.Line, Tag: tagStr, Msg: "never closed"}
		}
		sb.WriteRune(l.advance()) // newline
	}
}

func (l *hclLexer) scanNumber(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	isFloat := false
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if !isDigit(r) {
			break
		}
		sb.WriteRune(l.advance())
	}
	if l.offset < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[l.offset:]); r == '.' && isDigit(l.peekAt(1)) {
			isFloat = true
			sb.WriteRune(l.advance())
			for l.offset < len(l.src) {
				r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
				if !isDigit(r) {
					break
				}
				sb.WriteRune(l.advance())
			}
		}
	}
	if l.offset < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[l.offset:]); r == 'e' || r == 'E' {
			save := l.offset
			saveSb := sb.String()
			sb.WriteRune(l.advance())
			if l.offset < len(l.src) {
				if s, _ := utf8.DecodeRuneInString(l.src[l.offset:]); s == '+' || s == '-' {
					sb.WriteRune(l.advance())
				}
			}
			digits := 0
			for l.offset < len(l.src) {
				r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
				if !isDigit(r) {
					break
				}
				sb.WriteRune(l.advance())
				digits++
			}
			if digits == 0 {
				// Not actually an exponent; back it out.
				l.offset = save
				sb.Reset()
				sb.WriteString(saveSb)
			} else {
				isFloat = true
			}
		}
	}
	typ := TokenInt
	if isFloat {
		typ = TokenFloat
	}
	return lexer.Token{Type: typ, Value: sb.String(), Pos: start}, nil
}

func (l *hclLexer) scanIdent(start lexer.Position) (lexer.Token, error) {
	var sb strings.Builder
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if !isIdentPart(r) {
			break
		}
		sb.WriteRune(l.advance())
	}
	return lexer.Token{Type: TokenIdent, Value: sb.String(), Pos: start}, nil
}

func (l *hclLexer) scanOpOrPunct(start lexer.Position) (lexer.Token, error) {
	for _, op := range multiCharOps {
		if strings.HasPrefix(l.src[l.offset:], op) {
			for range op {
				l.advance()
			}
			return lexer.Token{Type: TokenOp, Value: op, Pos: start}, nil
		}
	}
	r := l.advance()
	switch r {
	case '(', '[', '{':
		l.brackets = append(l.brackets, byte(r))
	case ')', ']', '}':
		if len(l.brackets) > 0 {
			l.brackets = l.brackets[:len(l.brackets)-1]
		}
	}
	return lexer.Token{Type: TokenPunct, Value: string(r), Pos: start}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > utf8.RuneSelf
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}
