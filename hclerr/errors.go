// Package hclerr defines the error kinds surfaced by every stage of the
// hcl2go pipeline (parse, transform, reverse transform, reconstruct).
//
// Every kind is a plain struct implementing error. Callers distinguish them
// with errors.As, never with string matching on Error().
package hclerr

import "fmt"

// SyntaxError is returned by the parser when no grammar production matches
// the input at the given position.
type SyntaxError struct {
	Line, Column int
	Found        string
	Expected     []string
}

func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%d:%d: unexpected %s", e.Line, e.Column, e.Found)
	}
	return fmt.Sprintf("%d:%d: unexpected %s, expected one of %v", e.Line, e.Column, e.Found, e.Expected)
}

// HeredocError is returned when a heredoc's opening tag is never closed, or
// a trim-heredoc's content is empty.
type HeredocError struct {
	Line int
	Tag  string
	Msg  string
}

func (e *HeredocError) Error() string {
	return fmt.Sprintf("%d: heredoc <<%s: %s", e.Line, e.Tag, e.Msg)
}

// DuplicateAttribute is returned when two attributes share a name within one
// body, or two object-element keys share a name within one object. Context
// distinguishes the two cases ("body" or "object") since the fix differs.
type DuplicateAttribute struct {
	Line    int
	Name    string
	Context string
}

func (e *DuplicateAttribute) Error() string {
	return fmt.Sprintf("%d: duplicate %s key %q", e.Line, e.Context, e.Name)
}

// BlockAttributeConflict is returned when a body contains both an attribute
// and a block sharing the same name.
type BlockAttributeConflict struct {
	Line int
	Name string
}

func (e *BlockAttributeConflict) Error() string {
	return fmt.Sprintf("%d: %q is both an attribute and a block type", e.Line, e.Name)
}

// ReverseTypeError is returned by the reverse transformer when a value tree
// contains something it cannot serialise: a scalar outside
// string/number/bool/null, or a non-string map key.
type ReverseTypeError struct {
	Path string
	Kind string
}

func (e *ReverseTypeError) Error() string {
	return fmt.Sprintf("%s: cannot reverse-transform value of kind %s", e.Path, e.Kind)
}

// ReverseParseError is returned when the inner expression of a "${...}"
// attribute value fails to parse during the reverse transformer's
// inline-expression step.
type ReverseParseError struct {
	Path string
	Expr string
	Err  error
}

func (e *ReverseParseError) Error() string {
	return fmt.Sprintf("%s: failed to re-parse expression %q: %v", e.Path, e.Expr, e.Err)
}

func (e *ReverseParseError) Unwrap() error { return e.Err }

// ReconstructError is returned when the reconstructor encounters a CST shape
// the grammar cannot produce — a programmer error in a consumer that builds
// CSTs by hand rather than through Parse or ReverseTransform.
type ReconstructError struct {
	Msg string
}

func (e *ReconstructError) Error() string {
	return "reconstruct: " + e.Msg
}
