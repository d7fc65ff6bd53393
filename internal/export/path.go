package export

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

type notFound struct{}

func (notFound) String() string { return "<not found>" }

// NotFound is returned by GetValueByPath when the path does not resolve.
var NotFound any = notFound{}

// ErrPathConflict reports a path that crosses a container of the wrong kind.
var ErrPathConflict = errors.New("path conflicts with existing value")

// hole pads arrays grown past their end; Project compacts them away.
type hole struct{}

func (hole) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// GetValueByPath resolves path against doc. It returns NotFound for a
// missing key, an index out of range, or a step into a scalar.
func GetValueByPath(doc any, path string) any {
	v, ok := Lookup(doc, path)
	if !ok {
		return NotFound
	}
	return v
}

// Lookup is GetValueByPath with a found flag.
func Lookup(doc any, path string) (any, bool) {
	segs, ok := pathindex.Split(path)
	if !ok {
		return nil, false
	}
	cur := doc
	for _, s := range segs {
		switch c := cur.(type) {
		case *tree.Object:
			if s.IsIndex {
				return nil, false
			}
			next, ok := c.Get(s.Key)
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			if !s.IsIndex || s.Index < 0 || s.Index >= len(c) {
				return nil, false
			}
			cur = c[s.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetValueByPath writes value at path inside target, creating intermediate
// arrays for index segments and objects otherwise. Writing the root merges
// object keys into an object target and replaces anything else. The
// possibly new root is returned.
func SetValueByPath(target any, path string, value any) (any, error) {
	segs, ok := pathindex.Split(path)
	if !ok {
		return target, fmt.Errorf("invalid path %q", path)
	}
	if len(segs) == 0 {
		dst, dok := target.(*tree.Object)
		src, sok := value.(*tree.Object)
		if dok && sok {
			for _, k := range src.Keys() {
				v, _ := src.Get(k)
				dst.Set(k, v)
			}
			return dst, nil
		}
		return value, nil
	}
	out, err := setIn(target, segs, value)
	if err != nil {
		return target, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func setIn(cur any, segs []pathindex.Segment, value any) (any, error) {
	s := segs[0]
	if s.IsIndex {
		var arr []any
		switch c := cur.(type) {
		case nil, hole:
		case []any:
			arr = c
		default:
			return nil, ErrPathConflict
		}
		for len(arr) <= s.Index {
			arr = append(arr, hole{})
		}
		if len(segs) == 1 {
			arr[s.Index] = value
			return arr, nil
		}
		child, err := setIn(arr[s.Index], segs[1:], value)
		if err != nil {
			return nil, err
		}
		arr[s.Index] = child
		return arr, nil
	}

	var obj *tree.Object
	switch c := cur.(type) {
	case nil, hole:
		obj = tree.NewObject()
	case *tree.Object:
		obj = c
	default:
		return nil, ErrPathConflict
	}
	if len(segs) == 1 {
		obj.Set(s.Key, value)
		return obj, nil
	}
	existing, _ := obj.Get(s.Key)
	child, err := setIn(existing, segs[1:], value)
	if err != nil {
		return nil, err
	}
	obj.Set(s.Key, child)
	return obj, nil
}
