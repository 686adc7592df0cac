package reconstruct_test

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/reconstruct"
)

func assertEqualText(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	t.Fatalf("text mismatch:\n%s", dmp.DiffPrettyText(diffs))
}

func TestWritesRoundTripsUnindentedSource(t *testing.T) {
	src := "name = \"web\"\n" +
		"count = 1 + 2\n" +
		"resource \"aws_instance\" \"main\" {\n" +
		"ami = \"abc\"\n" +
		"tags = [\"a\", \"b\"]\n" +
		"}\n"

	body, err := cst.Parses(src)
	require.NoError(t, err)

	out, err := reconstruct.Writes(body)
	require.NoError(t, err)
	assertEqualText(t, src, out)
}

func TestExprSpacing(t *testing.T) {
	cases := []string{
		"-x.y[0]",
		"1 + 2 * 3",
		"a ? b : c",
		`foo::bar(1, 2, 3)`,
		"[1, 2, 3]",
		`{a = 1, b = 2}`,
	}
	for _, src := range cases {
		expr, err := cst.ParseExpression(src)
		require.NoError(t, err, src)
		out, err := reconstruct.Expr(expr)
		require.NoError(t, err, src)
		require.Equal(t, src, out)
	}
}

func TestExprNilIsReconstructError(t *testing.T) {
	_, err := reconstruct.Expr(nil)
	require.Error(t, err)
}

func TestWritesSpacesBeforeNonEmptyBlockClose(t *testing.T) {
	src := "b \"x\" { y = true }\n"
	body, err := cst.Parses(src)
	require.NoError(t, err)
	out, err := reconstruct.Writes(body)
	require.NoError(t, err)
	assertEqualText(t, src, out)
}

func TestWritesEmptyBlockHasNoSpaceBeforeClose(t *testing.T) {
	src := "b \"x\" {}\n"
	body, err := cst.Parses(src)
	require.NoError(t, err)
	out, err := reconstruct.Writes(body)
	require.NoError(t, err)
	assertEqualText(t, src, out)
}

func TestWritesObjectPreservesNewlineSeparators(t *testing.T) {
	src := "cfg = {a = 1\nb = 2}\n"
	body, err := cst.Parses(src)
	require.NoError(t, err)
	out, err := reconstruct.Writes(body)
	require.NoError(t, err)
	assertEqualText(t, src, out)
}

func TestWritesObjectDropsTrailingCommaBeforeClose(t *testing.T) {
	expr, err := cst.ParseExpression("{a = 1, b = 2,}")
	require.NoError(t, err)
	out, err := reconstruct.Expr(expr)
	require.NoError(t, err)
	assertEqualText(t, "{a = 1, b = 2}", out)
}
