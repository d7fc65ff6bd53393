package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/treetest"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

func marshalString(t *testing.T, v any) string {
	t.Helper()
	b, err := Marshal(v, 2)
	require.NoError(t, err)
	return string(b)
}

func TestProjectScenarioRoundTrip(t *testing.T) {
	doc := treetest.Scenario()
	idx := pathindex.Build(doc)
	selected := pathset.New("root.a", "root.a.b", "root.a.c", "root.a.c.[0]", "root.a.c.[1]")
	filtered := pathset.New(idx.Paths()...)

	out, err := Project(doc, selected, filtered)
	require.NoError(t, err)
	assert.Equal(t, marshalString(t, doc), marshalString(t, out))
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": 1,\n    \"c\": [\n      2,\n      3\n    ]\n  }\n}\n", marshalString(t, out))

	// the projection is a copy
	c, _ := Lookup(out, "root.a.c")
	c.([]any)[0] = "changed"
	orig, _ := Lookup(doc, "root.a.c.[0]")
	assert.Equal(t, json.Number("2"), orig)
}

func TestProjectPrunesAndCompactsArrays(t *testing.T) {
	doc := tree.ObjectOf(
		"z", "first",
		"items", []any{
			tree.ObjectOf("id", 1, "name", "one"),
			tree.ObjectOf("id", 2, "name", "two"),
			tree.ObjectOf("id", 3, "name", "three"),
		},
		"a", true,
	)
	selected := pathset.New("root.a", "root.items.[2].name", "root.items.[1].id", "root.z")

	out, err := Project(doc, selected, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":"first","items":[{"id":2},{"name":"three"}],"a":true}`, marshalString(t, out))
	// source key order survives
	assert.Equal(t, []string{"z", "items", "a"}, out.(*tree.Object).Keys())
}

func TestProjectIntersectsFilter(t *testing.T) {
	doc := treetest.Scenario()
	selected := pathset.New("root.a.b", "root.a.c.[1]")
	filtered := pathset.New("root", "root.a", "root.a.c", "root.a.c.[1]")

	out, err := Project(doc, selected, filtered)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"c":[3]}}`, marshalString(t, out))

	_, err = Project(doc, selected, pathset.New("root"))
	assert.ErrorIs(t, err, ErrNothingSelected)

	_, err = Project(doc, pathset.New(), nil)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestProjectArrayRoot(t *testing.T) {
	doc := []any{"x", tree.ObjectOf("k", "v"), "y"}
	out, err := Project(doc, pathset.New("root.[1].k", "root.[2]"), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"k":"v"},"y"]`, marshalString(t, out))
}

func TestGetValueByPath(t *testing.T) {
	doc := treetest.Scenario()
	tests := []struct {
		name string
		path string
		want any
	}{
		{name: "root", path: "root", want: doc},
		{name: "leaf", path: "root.a.b", want: json.Number("1")},
		{name: "array element", path: "root.a.c.[1]", want: json.Number("3")},
		{name: "missing key", path: "root.a.x", want: NotFound},
		{name: "index out of range", path: "root.a.c.[2]", want: NotFound},
		{name: "into scalar", path: "root.a.b.x", want: NotFound},
		{name: "index into object", path: "root.a.[0]", want: NotFound},
		{name: "key into array", path: "root.a.c.x", want: NotFound},
		{name: "not rooted", path: "a.b", want: NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetValueByPath(doc, tt.path))
		})
	}
}

func TestSetValueByPathBuildsArrays(t *testing.T) {
	var out any = tree.NewObject()
	out, err := SetValueByPath(out, "root.list.[1].name", "x")
	require.NoError(t, err)

	list, ok := Lookup(out, "root.list")
	require.True(t, ok)
	arr, ok := list.([]any)
	require.True(t, ok, "index segments must create arrays")
	assert.Len(t, arr, 2)
	assert.JSONEq(t, `{"list":[null,{"name":"x"}]}`, marshalString(t, out))

	_, err = SetValueByPath(out, "root.list.key", 1)
	assert.ErrorIs(t, err, ErrPathConflict)
}

func TestSetValueByPathRootMerges(t *testing.T) {
	out := tree.ObjectOf("a", 1)
	merged, err := SetValueByPath(out, "root", tree.ObjectOf("b", 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":2}`, marshalString(t, merged))

	replaced, err := SetValueByPath(out, "root", []any{1})
	require.NoError(t, err)
	assert.Equal(t, []any{1}, replaced)
}

func TestMarshalYAMLKeepsOrder(t *testing.T) {
	doc := tree.ObjectOf("z", json.Number("1"), "a", []any{"x", nil, true}, "f", json.Number("1.5"))
	b, err := MarshalYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "z: 1\na:\n  - x\n  - null\n  - true\nf: 1.5\n", string(b))
}

func TestRenderTree(t *testing.T) {
	out := RenderTree(treetest.Scenario(), TreeOptions{})
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "b: 1")
	assert.Contains(t, out, "[1]: 3")

	shallow := RenderTree(treetest.Scenario(), TreeOptions{MaxDepth: 1})
	assert.Contains(t, shallow, "...")
	assert.NotContains(t, shallow, "b: 1")
}

func TestProjectEverythingReproducesDocument(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := treetest.Document().Draw(t, "doc")
		idx := pathindex.Build(doc)
		if idx.Len() < 2 {
			return
		}
		// select only leaves so every container is rebuilt from paths
		selected := pathset.Set{}
		for _, p := range idx.Paths()[1:] {
			if len(idx.Children(p)) == 0 {
				selected.Add(p)
			}
		}
		out, err := Project(doc, selected, nil)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := Marshal(doc, 2)
		got, _ := Marshal(out, 2)
		if string(want) != string(got) {
			t.Fatalf("projection differs:\nwant %s\ngot  %s", want, got)
		}
	})
}
