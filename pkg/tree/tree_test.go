package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := ObjectOf("z", 1, "a", 2, "m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())

	o.Set("a", 20)
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys(), "overwrite keeps position")
	v, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, 20, v)

	o.Delete("z")
	o.Delete("missing")
	assert.Equal(t, []string{"a", "m"}, o.Keys())
	assert.Equal(t, 2, o.Len())
}

func TestObjectMarshalJSON(t *testing.T) {
	o := ObjectOf("b", json.Number("1.50"), "a", []any{"x", nil, ObjectOf("k", true)})
	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1.50,"a":["x",null,{"k":true}]}`, string(b))
}

func TestKindAndLen(t *testing.T) {
	tests := []struct {
		v    any
		kind Kind
		n    int
	}{
		{ObjectOf("a", 1), Map, 1},
		{[]any{1, 2, 3}, Array, 3},
		{"s", Scalar, 0},
		{nil, Scalar, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.v))
		assert.Equal(t, tt.n, Len(tt.v))
	}
	assert.Equal(t, "object", Map.String())
	assert.Equal(t, "array", Array.String())
	assert.Equal(t, "scalar", Scalar.String())
}

func TestCloneIsDeep(t *testing.T) {
	orig := ObjectOf("list", []any{ObjectOf("k", "v")})
	c := Clone(orig).(*Object)

	list, _ := c.Get("list")
	list.([]any)[0].(*Object).Set("k", "changed")
	c.Set("extra", 1)

	origList, _ := orig.Get("list")
	v, _ := origList.([]any)[0].(*Object).Get("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, []string{"list"}, orig.Keys())
}

func TestToPlainAndFromPlain(t *testing.T) {
	doc := ObjectOf("n", json.Number("3"), "f", json.Number("1.5"), "big", json.Number("1e400"), "o", ObjectOf("x", []any{json.Number("1")}))
	plain := ToPlain(doc).(map[string]any)
	assert.Equal(t, int64(3), plain["n"])
	assert.Equal(t, 1.5, plain["f"])
	assert.Equal(t, "1e400", plain["big"])
	assert.Equal(t, map[string]any{"x": []any{int64(1)}}, plain["o"])

	back := FromPlain(map[string]any{"b": 1, "a": map[any]any{2: "two"}, "l": []map[string]any{{"z": 1}}}).(*Object)
	assert.Equal(t, []string{"a", "b", "l"}, back.Keys(), "plain maps come back sorted")
	a, _ := back.Get("a")
	v, ok := a.(*Object).Get("2")
	require.True(t, ok)
	assert.Equal(t, "two", v)
	l, _ := back.Get("l")
	assert.IsType(t, &Object{}, l.([]any)[0])
}
