// Package export projects the selected part of a document into a new,
// pruned document and encodes it.
package export

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

// DefaultFileName is the conventional name of the export artifact.
const DefaultFileName = "treepick_export.json"

// ErrNothingSelected is returned when no selected path survives the filter.
var ErrNothingSelected = errors.New("nothing selected: select at least one field to export")

// Eligible returns selected ∩ filtered without root, ordered so that
// ancestors come before descendants. A nil filtered set keeps every
// selected path.
func Eligible(selected, filtered pathset.Set) []string {
	set := selected
	if filtered != nil {
		set = selected.Intersect(filtered)
	}
	out := make([]string, 0, set.Len())
	for p := range set {
		if p != pathindex.Root {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := depth(out[i]), depth(out[j])
		if di != dj {
			return di < dj
		}
		return out[i] < out[j]
	})
	return out
}

func depth(path string) int {
	segs, _ := pathindex.Split(path)
	return len(segs)
}

// Project copies the value of every eligible path from doc into a fresh
// document of the same root kind. Object keys keep their source order and
// arrays are compacted so unselected elements leave no gaps.
func Project(doc any, selected, filtered pathset.Set) (any, error) {
	paths := Eligible(selected, filtered)
	if len(paths) == 0 {
		return nil, ErrNothingSelected
	}
	var out any
	switch doc.(type) {
	case []any:
		out = []any{}
	default:
		out = tree.NewObject()
	}
	for _, p := range paths {
		v, ok := Lookup(doc, p)
		if !ok {
			continue
		}
		next, err := SetValueByPath(out, p, tree.Clone(v))
		if err != nil {
			return nil, err
		}
		out = next
	}
	return finalize(out, doc), nil
}

// finalize restores source key order and drops array holes.
func finalize(dst, src any) any {
	switch d := dst.(type) {
	case *tree.Object:
		s, _ := src.(*tree.Object)
		if s != nil {
			pos := make(map[string]int, s.Len())
			for i, k := range s.Keys() {
				pos[k] = i
			}
			d.SortKeys(func(a, b string) bool { return pos[a] < pos[b] })
		}
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			var sv any
			if s != nil {
				sv, _ = s.Get(k)
			}
			d.Set(k, finalize(v, sv))
		}
		return d
	case []any:
		s, _ := src.([]any)
		out := make([]any, 0, len(d))
		for i, v := range d {
			if _, gap := v.(hole); gap {
				continue
			}
			var sv any
			if i < len(s) {
				sv = s[i]
			}
			out = append(out, finalize(v, sv))
		}
		return out
	default:
		return dst
	}
}

// Marshal encodes doc as UTF-8 JSON indented with indent spaces (2 when
// indent is not positive).
func Marshal(doc any, indent int) ([]byte, error) {
	if indent <= 0 {
		indent = 2
	}
	var compact bytes.Buffer
	enc := json.NewEncoder(&compact)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(compact.Bytes()), "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
