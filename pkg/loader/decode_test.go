package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

func TestTryDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "json object", input: `{"name":"alice","age":30}`, ok: true},
		{name: "json array", input: `[1,2,3]`, ok: true},
		{name: "yaml document", input: "name: bob\nage: 25\n", ok: true},
		{name: "jwt", input: validJWT, ok: true},
		{name: "plain string", input: "hello world", ok: false},
		{name: "sentence with colon", input: "note: remember this", ok: false},
		{name: "number", input: "42", ok: false},
		{name: "boolean", input: "true", ok: false},
		{name: "dotted scalar", input: "v1.2.3", ok: false},
		{name: "empty", input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TryDecode(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestExpandEmbedded(t *testing.T) {
	input := tree.ObjectOf(
		"name", "alice",
		"payload", `{"key":"value","nested":"{\"deep\":true}"}`,
		"list", []any{`[1,2]`, "plain"},
	)
	out := ExpandEmbedded(input)
	obj, ok := out.(*tree.Object)
	require.True(t, ok)

	payload, _ := obj.Get("payload")
	p, ok := payload.(*tree.Object)
	require.True(t, ok, "payload should be decoded")
	nested, _ := p.Get("nested")
	n, ok := nested.(*tree.Object)
	require.True(t, ok, "nested serialized strings are decoded too")
	deep, _ := n.Get("deep")
	assert.Equal(t, true, deep)

	list, _ := obj.Get("list")
	assert.Len(t, list.([]any)[0], 2)
	assert.Equal(t, "plain", list.([]any)[1])

	// the input is untouched
	orig, _ := input.Get("payload")
	assert.IsType(t, "", orig)
}
