package transform_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/hclerr"
	"github.com/hcl2go/hcl2/transform"
	"github.com/hcl2go/hcl2/value"
)

func mustBody(t *testing.T, src string) *cst.Body {
	t.Helper()
	body, err := cst.Parses(src)
	require.NoError(t, err)
	return body
}

func TestBodyScalarsAndBlocks(t *testing.T) {
	body := mustBody(t, `
name     = "web"
replicas = 3
ratio    = 1.5
enabled  = true
missing  = null

resource "aws_instance" "main" {
  ami = "abc"
}

resource "aws_instance" "extra" {
  ami = "def"
}
`)
	m, err := transform.Body(body, transform.Options{})
	require.NoError(t, err)

	name, _ := m.Get("name")
	assert.Equal(t, "web", name.Str)

	replicas, _ := m.Get("replicas")
	assert.Equal(t, value.KindInt, replicas.Kind)
	assert.Equal(t, "3", replicas.Int.String())

	ratio, _ := m.Get("ratio")
	assert.Equal(t, value.KindFloat, ratio.Kind)
	assert.Equal(t, "1.5", ratio.Float.String())

	enabled, _ := m.Get("enabled")
	assert.True(t, enabled.Bool)

	missing, _ := m.Get("missing")
	assert.Equal(t, value.KindNull, missing.Kind)

	resources, _ := m.Get("resource")
	require.Equal(t, value.KindList, resources.Kind)
	require.Len(t, resources.List, 2)

	first := resources.List[0]
	require.True(t, first.IsLabelWrapper)
	assert.Equal(t, 1, first.Map.Len())
	mainPair := first.Map.Oldest()
	assert.Equal(t, "aws_instance", mainPair.Key)
	require.True(t, mainPair.Value.IsLabelWrapper)
	instancePair := mainPair.Value.Map.Oldest()
	assert.Equal(t, "main", instancePair.Key)
	ami, _ := instancePair.Value.Map.Get("ami")
	assert.Equal(t, "abc", ami.Str)
}

func TestBodyWithMetaRecordsBlockLines(t *testing.T) {
	body := mustBody(t, "resource \"aws_instance\" \"main\" {\nami = \"abc\"\n}\n")
	m, err := transform.Body(body, transform.Options{WithMeta: true})
	require.NoError(t, err)

	resources, _ := m.Get("resource")
	inner := resources.List[0].Map.Oldest().Value.Map.Oldest().Value
	assert.Equal(t, 1, inner.StartLine)
	assert.Equal(t, 3, inner.EndLine)
}

func TestBodyDuplicateAttribute(t *testing.T) {
	body := mustBody(t, "a = 1\na = 2\n")
	_, err := transform.Body(body, transform.Options{})
	require.Error(t, err)
	var dup *hclerr.DuplicateAttribute
	assert.True(t, errors.As(err, &dup))
}

func TestBodyBlockAttributeConflict(t *testing.T) {
	body := mustBody(t, "resource = 1\nresource \"x\" \"y\" {\n}\n")
	_, err := transform.Body(body, transform.Options{})
	require.Error(t, err)
	var conflict *hclerr.BlockAttributeConflict
	assert.True(t, errors.As(err, &conflict))
}

func TestExpressionBareContainers(t *testing.T) {
	expr, err := cst.ParseExpression("[1, [2, 3], {a = 1}]")
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)

	require.Equal(t, value.KindList, v.Kind)
	require.Len(t, v.List, 3)
	assert.Equal(t, "1", v.List[0].Int.String())

	nested := v.List[1]
	require.Equal(t, value.KindList, nested.Kind)
	assert.Equal(t, "2", nested.List[0].Int.String())
	assert.Equal(t, "3", nested.List[1].Int.String())

	obj := v.List[2]
	require.Equal(t, value.KindMap, obj.Kind)
	a, _ := obj.Map.Get("a")
	assert.Equal(t, "1", a.Int.String())
}

func TestExpressionCompoundEncodesAsInterpolation(t *testing.T) {
	expr, err := cst.ParseExpression("1 + 2")
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)
	require.Equal(t, value.KindString, v.Kind)
	assert.Equal(t, "${1 + 2}", v.Str)
	assert.True(t, v.IsExpression())
}

func TestExpressionWholeStringInterpolationCollapses(t *testing.T) {
	expr, err := cst.ParseExpression(`"${var.x}"`)
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)
	require.Equal(t, value.KindString, v.Kind)
	assert.Equal(t, "${var.x}", v.Str)
}

func TestExpressionPlainStringUnescapes(t *testing.T) {
	expr, err := cst.ParseExpression(`"line1\nline2"`)
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", v.Str)
	assert.False(t, v.IsExpression())
}

func TestExpressionMixedInterpolationPreserved(t *testing.T) {
	expr, err := cst.ParseExpression(`"hello ${name}!"`)
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)
	// A mixed literal/interpolation string keeps its "${...}" segment
	// embedded in plain text rather than re-wrapping the whole literal
	// (spec.md §8 scenario 3).
	assert.Equal(t, "hello ${name}!", v.Str)
	assert.False(t, v.IsExpression())
}

func TestHeredocDedent(t *testing.T) {
	expr, err := cst.ParseExpression("<<-EOT\n  hello\n    world\n  EOT\n")
	require.NoError(t, err)
	v, err := transform.Expression(expr)
	require.NoError(t, err)
	assert.Equal(t, "hello\n  world", v.Str)
}
