package loader

import (
	"strings"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

const maxDecodeDepth = 20

// TryDecode parses a string leaf that holds serialized data (JSON, YAML,
// TOML, NDJSON, JWT). It succeeds only when the result is an object or
// array; plain strings and scalars return (nil, false).
func TryDecode(value string) (any, bool) {
	value = strings.TrimSpace(value)
	if value == "" || !strings.ContainsAny(value, "{[:=.\n") {
		return nil, false
	}
	parsed, err := LoadRoot(value)
	if err != nil {
		return nil, false
	}
	if tree.KindOf(parsed) == tree.Scalar {
		return nil, false
	}
	// a bare "key: value" line is a string, not a document
	if obj, ok := parsed.(*tree.Object); ok && !strings.ContainsAny(value, "{\n") && obj.Len() == 1 && !IsJWT(value) {
		return nil, false
	}
	return parsed, true
}

// ExpandEmbedded replaces string leaves that contain serialized documents
// with their parsed structure, recursively. Containers are rebuilt; node is
// not modified.
func ExpandEmbedded(node any) any {
	return expand(node, 0)
}

func expand(node any, depth int) any {
	if depth > maxDecodeDepth {
		return node
	}
	switch v := node.(type) {
	case *tree.Object:
		out := tree.NewObject()
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			out.Set(k, expand(child, depth+1))
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = expand(child, depth+1)
		}
		return out
	case string:
		if decoded, ok := TryDecode(v); ok {
			return expand(decoded, depth+1)
		}
		return v
	default:
		return node
	}
}
