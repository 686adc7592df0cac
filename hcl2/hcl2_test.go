package hcl2_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/hcl2"
	"github.com/hcl2go/hcl2/hclerr"
)

func TestLoadsAndDumpsRoundTrip(t *testing.T) {
	src := "name = \"web\"\n" +
		"resource \"aws_instance\" \"main\" {\n" +
		"ami = \"abc\"\n" +
		"}\n"

	m, err := hcl2.Loads(src)
	require.NoError(t, err)

	out, err := hcl2.Dumps(m)
	require.NoError(t, err)

	m2, err := hcl2.Loads(out)
	require.NoError(t, err)

	name, _ := m.Get("name")
	name2, _ := m2.Get("name")
	assert.Equal(t, name.Str, name2.Str)
}

func TestLoadsWithMeta(t *testing.T) {
	src := "resource \"aws_instance\" \"main\" {\nami = \"abc\"\n}\n"
	m, err := hcl2.Loads(src, hcl2.WithMeta())
	require.NoError(t, err)

	resources, _ := m.Get("resource")
	inner := resources.List[0].Map.Oldest().Value.Map.Oldest().Value
	assert.NotEqual(t, -1, inner.StartLine)
	assert.NotEqual(t, -1, inner.EndLine)
}

func TestLoadsWithoutMetaLeavesLinesUnset(t *testing.T) {
	src := "resource \"aws_instance\" \"main\" {\nami = \"abc\"\n}\n"
	m, err := hcl2.Loads(src)
	require.NoError(t, err)

	resources, _ := m.Get("resource")
	inner := resources.List[0].Map.Oldest().Value.Map.Oldest().Value
	assert.Equal(t, -1, inner.StartLine)
	assert.Equal(t, -1, inner.EndLine)
}

func TestLoadsWrapsTransformErrors(t *testing.T) {
	_, err := hcl2.Loads("a = 1\na = 2\n")
	require.Error(t, err)
	var dup *hclerr.DuplicateAttribute
	assert.True(t, errors.As(err, &dup))
}

func TestLoadsWrapsSyntaxErrors(t *testing.T) {
	_, err := hcl2.Loads("a = = 1\n")
	require.Error(t, err)
	var syn *hclerr.SyntaxError
	assert.True(t, errors.As(err, &syn))
}

func TestLoadFileMissingPath(t *testing.T) {
	_, err := hcl2.LoadFile("/no/such/file.hcl")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "hcl2: open"))
}
