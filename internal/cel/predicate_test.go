package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

func testIndex() *pathindex.Index {
	return pathindex.Build(tree.ObjectOf(
		"m_Name", "Player",
		"m_Layer", int64(8),
		"children", []any{"a", "b"},
	))
}

func TestPredicateMatch(t *testing.T) {
	idx := testIndex()
	tests := []struct {
		name string
		expr string
		path string
		want bool
	}{
		{name: "key prefix", expr: `key.startsWith("m_")`, path: "root.m_Name", want: true},
		{name: "key prefix miss", expr: `key.startsWith("m_")`, path: "root.children", want: false},
		{name: "value compare", expr: `kind == "scalar" && value == "Player"`, path: "root.m_Name", want: true},
		{name: "numeric value", expr: `value > 5`, path: "root.m_Layer", want: true},
		{name: "array size", expr: `kind == "array" && size(value) == 2`, path: "root.children", want: true},
		{name: "depth", expr: `depth == 2`, path: "root.children.[1]", want: true},
		{name: "path", expr: `path.endsWith("[0]")`, path: "root.children.[0]", want: true},
		{name: "summary", expr: `summary == "Array[2]"`, path: "root.children", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			require.NoError(t, err)
			n, ok := idx.Node(tt.path)
			require.True(t, ok)
			got, err := p.Match(n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(`key ==`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")

	_, err = Compile(`depth + 1`)
	require.ErrorIs(t, err, ErrNotPredicate)

	_, err = Compile(`1 == 1`)
	require.ErrorIs(t, err, ErrConstantPredicate)
}

func TestPredicateVars(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{`key == "id"`, []string{"key"}},
		{`kind == "array" && size(value) > 1`, []string{"kind", "value"}},
		{`value.exists(x, x == path)`, []string{"path", "value"}},
		{`[key, summary].exists(s, s.contains("hp"))`, []string{"key", "summary"}},
		{`{"a": depth}["a"] == 1`, []string{"depth"}},
	}
	for _, tt := range tests {
		p, err := Compile(tt.expr)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, p.Vars(), tt.expr)
	}
}

func TestMatchEvalErrorIsReported(t *testing.T) {
	p, err := Compile(`value.missing == 1`)
	require.NoError(t, err)
	n, _ := testIndex().Node("root.m_Name")
	ok, err := p.Match(n)
	assert.Error(t, err)
	assert.False(t, ok)
}
