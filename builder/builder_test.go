package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcl2go/hcl2/builder"
	"github.com/hcl2go/hcl2/value"
)

func TestBuilderScalarsAndList(t *testing.T) {
	m := builder.New().
		String("name", "web").
		Int("count", 3).
		Bool("enabled", true).
		Null("missing").
		List("tags", value.String("a"), value.String("b")).
		Build()

	name, _ := m.Get("name")
	assert.Equal(t, "web", name.Str)
	count, _ := m.Get("count")
	assert.Equal(t, "3", count.Int.String())
	enabled, _ := m.Get("enabled")
	assert.True(t, enabled.Bool)
	missing, _ := m.Get("missing")
	assert.Equal(t, value.KindNull, missing.Kind)
	tags, _ := m.Get("tags")
	require.Len(t, tags.List, 2)
	assert.Equal(t, "a", tags.List[0].Str)
}

func TestBuilderExprEncodesInterpolation(t *testing.T) {
	m := builder.New().Expr("size", "var.size").Build()
	size, _ := m.Get("size")
	assert.Equal(t, "${var.size}", size.Str)
	assert.True(t, size.IsExpression())
}

func TestBuilderBlockWithLabels(t *testing.T) {
	m := builder.New().
		Block("resource", []string{"aws_instance", "main"},
			builder.New().String("ami", "abc")).
		Build()

	resources, _ := m.Get("resource")
	require.Len(t, resources.List, 1)
	inst := resources.List[0]
	require.True(t, inst.IsLabelWrapper)
	typePair := inst.Map.Oldest()
	assert.Equal(t, "aws_instance", typePair.Key)
	namePair := typePair.Value.Map.Oldest()
	assert.Equal(t, "main", namePair.Key)
	ami, _ := namePair.Value.Map.Get("ami")
	assert.Equal(t, "abc", ami.Str)
}

func TestBuilderMergesSameLabelBlocks(t *testing.T) {
	m := builder.New().
		Block("resource", []string{"aws_instance", "main"},
			builder.New().List("tags", value.String("a"))).
		Block("resource", []string{"aws_instance", "main"},
			builder.New().List("tags", value.String("b"))).
		Build()

	resources, _ := m.Get("resource")
	require.Len(t, resources.List, 1, "same (type, labels) blocks should merge, not append")

	body := resources.List[0].Map.Oldest().Value.Map.Oldest().Value.Map
	tags, _ := body.Get("tags")
	require.Len(t, tags.List, 2)
	assert.Equal(t, "a", tags.List[0].Str)
	assert.Equal(t, "b", tags.List[1].Str)
}

func TestBuilderAppendsDifferentLabelBlocks(t *testing.T) {
	m := builder.New().
		Block("resource", []string{"aws_instance", "main"}, builder.New().String("ami", "abc")).
		Block("resource", []string{"aws_instance", "other"}, builder.New().String("ami", "def")).
		Build()

	resources, _ := m.Get("resource")
	require.Len(t, resources.List, 2)
}
