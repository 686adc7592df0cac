package reverse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/reconstruct"
	"github.com/hcl2go/hcl2/reverse"
	"github.com/hcl2go/hcl2/transform"
)

// TestRoundTripStructural parses HCL2 text, forward-transforms it, reverse
// transforms the value tree back to a CST, writes that CST back to text, and
// forward-transforms the rewritten text again — checking the two value trees
// carry the same data even though formatting need not match byte-for-byte.
func TestRoundTripStructural(t *testing.T) {
	src := "name = \"web\"\n" +
		"count = 3\n" +
		"tags = [\"a\", \"b\"]\n" +
		"resource \"aws_instance\" \"main\" {\n" +
		"ami = \"abc\"\n" +
		"size = \"${var.size}\"\n" +
		"}\n"

	body, err := cst.Parses(src)
	require.NoError(t, err)
	m1, err := transform.Body(body, transform.Options{})
	require.NoError(t, err)

	rebuilt, err := reverse.Body(m1)
	require.NoError(t, err)
	out, err := reconstruct.Writes(rebuilt)
	require.NoError(t, err)

	body2, err := cst.Parses(out)
	require.NoError(t, err)
	m2, err := transform.Body(body2, transform.Options{})
	require.NoError(t, err)

	name1, _ := m1.Get("name")
	name2, _ := m2.Get("name")
	assert.Equal(t, name1.Str, name2.Str)

	tags1, _ := m1.Get("tags")
	tags2, _ := m2.Get("tags")
	require.Len(t, tags2.List, len(tags1.List))
	for i := range tags1.List {
		assert.Equal(t, tags1.List[i].Str, tags2.List[i].Str)
	}

	r1, _ := m1.Get("resource")
	r2, _ := m2.Get("resource")
	ami1 := r1.List[0].Map.Oldest().Value.Map.Oldest().Value.Map
	ami2 := r2.List[0].Map.Oldest().Value.Map.Oldest().Value.Map
	a1, _ := ami1.Get("ami")
	a2, _ := ami2.Get("ami")
	assert.Equal(t, a1.Str, a2.Str)
	s1, _ := ami1.Get("size")
	s2, _ := ami2.Get("size")
	assert.Equal(t, s1.Str, s2.Str)
	assert.True(t, s2.IsExpression())
}

func TestObjectKeyQuotedWhenNotBareIdent(t *testing.T) {
	body, err := cst.Parses("cfg = {\"not an ident\" = 1}\n")
	require.NoError(t, err)
	m, err := transform.Body(body, transform.Options{})
	require.NoError(t, err)

	rebuilt, err := reverse.Body(m)
	require.NoError(t, err)
	out, err := reconstruct.Writes(rebuilt)
	require.NoError(t, err)
	assert.Contains(t, out, `"not an ident" = 1`)
}
