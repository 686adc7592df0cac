package cst_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/hclerr"
)

func TestParsesAttributeAndBlock(t *testing.T) {
	body, err := cst.Parses(`
name = "web"

resource "aws_instance" "main" {
  ami = "abc"
}
`)
	require.NoError(t, err)
	require.Len(t, body.Items, 5) // leading trivia, attribute, blank-line trivia, block, trailing trivia

	var sawAttr, sawBlock bool
	for _, item := range body.Items {
		if item.Attribute != nil && item.Attribute.Name == "name" {
			sawAttr = true
		}
		if item.Block != nil {
			sawBlock = true
			assert.Equal(t, "resource", item.Block.Type)
			require.Len(t, item.Block.Labels, 2)
			assert.Equal(t, `"aws_instance"`, *item.Block.Labels[0].String)
			assert.Equal(t, `"main"`, *item.Block.Labels[1].String)
			assert.Greater(t, item.Block.Close.Pos.Line, item.Block.Pos.Line)
		}
	}
	assert.True(t, sawAttr)
	assert.True(t, sawBlock)
}

func TestParsesSyntaxError(t *testing.T) {
	_, err := cst.Parses("foo = = bar\n")
	require.Error(t, err)
	var synErr *hclerr.SyntaxError
	assert.True(t, errors.As(err, &synErr))
}

func TestParseExpressionArithmetic(t *testing.T) {
	expr, err := cst.ParseExpression("1 + 2 * 3")
	require.NoError(t, err)
	add := expr.Cond.Cond.Left.Left.Left.Left
	require.Len(t, add.Rest, 1)
	assert.Equal(t, "+", add.Rest[0].Op)
}

func TestNewlineSuppressedInsideBrackets(t *testing.T) {
	body, err := cst.Parses(`
values = [
  1,
  2,
  3,
]
`)
	require.NoError(t, err)
	var attr *cst.Attribute
	for _, item := range body.Items {
		if item.Attribute != nil {
			attr = item.Attribute
		}
	}
	require.NotNil(t, attr)
	tuple := attr.Value.Cond.Cond.Left.Left.Left.Left.Left.Left.Expr.Primary.Tuple
	require.NotNil(t, tuple)
	assert.Len(t, tuple.Items, 3)
}

func TestNewlineSignificantInsideBlock(t *testing.T) {
	body, err := cst.Parses(`
a = 1
# a comment
b = 2
`)
	require.NoError(t, err)
	var names []string
	var sawComment bool
	for _, item := range body.Items {
		if item.Attribute != nil {
			names = append(names, item.Attribute.Name)
		}
		if item.Trivia != nil && *item.Trivia != "\n" {
			sawComment = true
		}
	}
	assert.Equal(t, []string{"a", "b"}, names)
	assert.True(t, sawComment)
}

func TestHeredocLexing(t *testing.T) {
	body, err := cst.Parses(`
msg = <<-EOT
  hello
  world
  EOT
`)
	require.NoError(t, err)
	attr := body.Items[1].Attribute
	require.NotNil(t, attr)
	heredoc := attr.Value.Cond.Cond.Left.Left.Left.Left.Left.Left.Expr.Primary.Literal.Heredoc
	require.NotNil(t, heredoc)
	assert.Contains(t, *heredoc, "hello")
	assert.Contains(t, *heredoc, "EOT")
}

func TestHeredocNeverClosedReturnsHeredocError(t *testing.T) {
	_, err := cst.Parses("msg = <<EOT\nhello\n")
	require.Error(t, err)
	var herr *hclerr.HeredocError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "EOT", herr.Tag)
}
