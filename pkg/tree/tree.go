// Package tree holds the in-memory document model shared by every treepick
// component: ordered objects, arrays, and scalar leaves.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"
)

// Kind classifies a node value.
type Kind int

const (
	Scalar Kind = iota
	Array
	Map
)

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case Map:
		return "object"
	default:
		return "scalar"
	}
}

// Object is a string-keyed map that remembers insertion order.
// The zero value is not usable; call NewObject.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// ObjectOf builds an object from alternating key/value pairs.
// It panics when a key is not a string, which only happens in literal test fixtures.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("tree.ObjectOf: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree.ObjectOf: key %v is not a string", pairs[i]))
		}
		o.Set(k, pairs[i+1])
	}
	return o
}

// Set stores v under key. Existing keys keep their position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key, preserving the order of the remaining keys.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. Callers must not modify the slice.
func (o *Object) Keys() []string { return o.keys }

// Len reports the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// SortKeys reorders keys with less.
func (o *Object) SortKeys(less func(a, b string) bool) {
	sort.SliceStable(o.keys, func(i, j int) bool { return less(o.keys[i], o.keys[j]) })
}

// MarshalJSON writes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encodeJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := encodeJSON(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case *Object:
		return Map
	case []any:
		return Array
	default:
		return Scalar
	}
}

// Len reports the number of direct children of v.
func Len(v any) int {
	switch t := v.(type) {
	case *Object:
		return t.Len()
	case []any:
		return len(t)
	default:
		return 0
	}
}

// Clone deep-copies containers. Scalars are immutable and returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		c := &Object{keys: make([]string, len(t.keys)), values: make(map[string]any, len(t.values))}
		copy(c.keys, t.keys)
		for k, child := range t.values {
			c.values[k] = Clone(child)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, child := range t {
			c[i] = Clone(child)
		}
		return c
	default:
		return v
	}
}

// ToPlain converts ordered objects to map[string]any and json.Number to
// int64 or float64, for consumers that need plain Go values (CEL, JSONPath).
func ToPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, k := range t.keys {
			m[k] = ToPlain(t.values[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = ToPlain(child)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// FromPlain converts decoded Go values into the tree model. Plain maps carry
// no order, so their keys are sorted.
func FromPlain(v any) any {
	switch t := v.(type) {
	case *Object, nil:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			o.Set(k, FromPlain(t[k]))
		}
		return o
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = child
		}
		return FromPlain(m)
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = FromPlain(child)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = FromPlain(child)
		}
		return out
	default:
		return v
	}
}
