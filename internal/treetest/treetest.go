// Package treetest holds document fixtures and rapid generators used by the
// engine tests.
package treetest

import (
	"encoding/json"
	"strconv"

	"pgregory.net/rapid"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

// Scenario returns {"a": {"b": 1, "c": [2, 3]}}.
func Scenario() *tree.Object {
	return tree.ObjectOf(
		"a", tree.ObjectOf(
			"b", json.Number("1"),
			"c", []any{json.Number("2"), json.Number("3")},
		),
	)
}

var keys = []string{"a", "b", "c", "name", "id", "m_Name", "x.y", "[0]", `back\slash`}

// Document generates object-rooted documents up to a bounded depth.
func Document() *rapid.Generator[any] {
	return rapid.Custom(func(t *rapid.T) any {
		return object(t, 0)
	})
}

func value(t *rapid.T, depth int) any {
	kinds := 3
	if depth >= 4 {
		kinds = 1
	}
	switch rapid.IntRange(0, kinds-1).Draw(t, "kind") {
	case 1:
		return object(t, depth+1)
	case 2:
		n := rapid.IntRange(0, 4).Draw(t, "len")
		arr := make([]any, n)
		for i := range arr {
			arr[i] = value(t, depth+1)
		}
		return arr
	default:
		return scalar(t)
	}
}

func object(t *rapid.T, depth int) *tree.Object {
	o := tree.NewObject()
	n := rapid.IntRange(0, 4).Draw(t, "keys")
	for i := 0; i < n; i++ {
		o.Set(rapid.SampledFrom(keys).Draw(t, "key"), value(t, depth))
	}
	return o
}

func scalar(t *rapid.T) any {
	switch rapid.IntRange(0, 3).Draw(t, "scalar") {
	case 0:
		return nil
	case 1:
		return rapid.Bool().Draw(t, "bool")
	case 2:
		return json.Number(strconv.Itoa(rapid.IntRange(-50, 50).Draw(t, "num")))
	default:
		return rapid.StringMatching(`[a-z0-9 ]{0,8}`).Draw(t, "str")
	}
}
