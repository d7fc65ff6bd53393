// Package pathindex flattens a value tree into addressable paths with
// parent and child indexes, so selection and search never rescan the tree.
package pathindex

import (
	"github.com/oakwood-commons/treepick/pkg/tree"
)

// Node is one addressable position in the document.
type Node struct {
	Path        string
	Name        string
	Value       any
	Summary     string
	Kind        tree.Kind
	HasChildren bool
	Depth       int
	// Order is the node's position in depth-first document order.
	Order int
}

// Index holds every node of one document plus its parent and child maps.
type Index struct {
	nodes    map[string]*Node
	order    []string
	parent   map[string]string
	children map[string][]string
}

// Build indexes root depth-first in source order.
func Build(root any) *Index {
	idx := &Index{
		nodes:    map[string]*Node{},
		parent:   map[string]string{},
		children: map[string][]string{},
	}
	idx.add(Root, Root, root, 0)
	return idx
}

func (idx *Index) add(path, name string, v any, depth int) {
	n := &Node{
		Path:        path,
		Name:        name,
		Value:       v,
		Summary:     Summarize(v),
		Kind:        tree.KindOf(v),
		HasChildren: tree.Len(v) > 0,
		Depth:       depth,
		Order:       len(idx.order),
	}
	idx.nodes[path] = n
	idx.order = append(idx.order, path)

	switch t := v.(type) {
	case *tree.Object:
		if t.Len() == 0 {
			return
		}
		kids := make([]string, 0, t.Len())
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			cp := JoinKey(path, k)
			kids = append(kids, cp)
			idx.parent[cp] = path
			idx.add(cp, k, child, depth+1)
		}
		idx.children[path] = kids
	case []any:
		if len(t) == 0 {
			return
		}
		kids := make([]string, 0, len(t))
		for i, child := range t {
			cp := JoinIndex(path, i)
			kids = append(kids, cp)
			idx.parent[cp] = path
			idx.add(cp, IndexSegment(i), child, depth+1)
		}
		idx.children[path] = kids
	}
}

// Node returns the node at path.
func (idx *Index) Node(path string) (*Node, bool) {
	n, ok := idx.nodes[path]
	return n, ok
}

// Has reports whether path exists in the document.
func (idx *Index) Has(path string) bool {
	_, ok := idx.nodes[path]
	return ok
}

// Len reports the number of indexed paths, root included.
func (idx *Index) Len() int { return len(idx.order) }

// Paths returns every path in document order, root first.
// Callers must not modify the slice.
func (idx *Index) Paths() []string { return idx.order }

// Parent returns the parent of path. Root has none.
func (idx *Index) Parent(path string) (string, bool) {
	p, ok := idx.parent[path]
	return p, ok
}

// Children returns the direct children of path in source order.
// Callers must not modify the slice.
func (idx *Index) Children(path string) []string {
	return idx.children[path]
}

// Descendants returns every path below path in document order.
func (idx *Index) Descendants(path string) []string {
	var out []string
	stack := []string{path}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur != path {
			out = append(out, cur)
		}
		kids := idx.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Ancestors returns the parent chain of path, nearest first, ending at root.
func (idx *Index) Ancestors(path string) []string {
	var out []string
	for p, ok := idx.parent[path]; ok; p, ok = idx.parent[p] {
		out = append(out, p)
	}
	return out
}

// Order returns the document position of path, or -1 when unknown.
func (idx *Index) Order(path string) int {
	if n, ok := idx.nodes[path]; ok {
		return n.Order
	}
	return -1
}
