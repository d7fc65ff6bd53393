// Package lazyview materializes document rows on demand and keeps their
// bound selection and lock state in step with the model.
package lazyview

import (
	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/schedule"
)

const (
	DefaultBatchThreshold = 100
	DefaultBatchSize      = 50
)

// Source reports the model state a row binds to.
type Source interface {
	IsSelected(path string) bool
	IsLocked(path string) bool
}

// Options tune batching of row updates.
type Options struct {
	BatchThreshold int
	BatchSize      int
}

// Row is one materialized line of the tree.
type Row struct {
	Path        string
	Name        string
	Summary     string
	Depth       int
	HasChildren bool
	Selected    bool
	Locked      bool
	Expanded    bool
	Hit         bool
}

// View tracks which rows exist and which are expanded.
type View struct {
	idx      *pathindex.Index
	src      Source
	opts     Options
	rows     map[string]*Row
	expanded pathset.Set
	gen      schedule.Generation
	pending  *Batch
}

// New materializes the root and, since the root starts expanded, its
// direct children.
func New(idx *pathindex.Index, src Source, opts Options) *View {
	if opts.BatchThreshold <= 0 {
		opts.BatchThreshold = DefaultBatchThreshold
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	v := &View{
		idx:      idx,
		src:      src,
		opts:     opts,
		rows:     map[string]*Row{},
		expanded: pathset.New(pathindex.Root),
	}
	v.materialize(pathindex.Root)
	v.renderChildren(pathindex.Root)
	return v
}

func (v *View) materialize(path string) {
	if _, ok := v.rows[path]; ok {
		return
	}
	n, ok := v.idx.Node(path)
	if !ok {
		return
	}
	r := &Row{
		Path:        path,
		Name:        n.Name,
		Summary:     n.Summary,
		Depth:       n.Depth,
		HasChildren: n.HasChildren,
	}
	v.bind(r)
	v.rows[path] = r
}

func (v *View) bind(r *Row) {
	r.Selected = v.src.IsSelected(r.Path)
	r.Locked = v.src.IsLocked(r.Path)
}

func (v *View) renderChildren(path string) {
	for _, c := range v.idx.Children(path) {
		v.materialize(c)
	}
}

// IsRendered reports whether the row for path exists.
func (v *View) IsRendered(path string) bool {
	_, ok := v.rows[path]
	return ok
}

// RenderedCount reports how many rows exist.
func (v *View) RenderedCount() int { return len(v.rows) }

// EnsureRendered materializes path and, first, every ancestor of it along
// with their siblings.
func (v *View) EnsureRendered(path string) {
	if !v.idx.Has(path) || v.IsRendered(path) {
		return
	}
	anc := v.idx.Ancestors(path)
	for i := len(anc) - 1; i >= 0; i-- {
		v.materialize(anc[i])
		v.renderChildren(anc[i])
	}
	v.materialize(path)
}

// IsExpanded reports whether path is expanded.
func (v *View) IsExpanded(path string) bool { return v.expanded.Has(path) }

// Expanded returns the expansion set. Callers must not modify it.
func (v *View) Expanded() pathset.Set { return v.expanded }

// Expand opens path, materializing its direct children.
func (v *View) Expand(path string) {
	if !v.idx.Has(path) || len(v.idx.Children(path)) == 0 {
		return
	}
	v.EnsureRendered(path)
	v.renderChildren(path)
	v.expanded.Add(path)
}

// Collapse closes path. Its rows stay materialized.
func (v *View) Collapse(path string) {
	v.expanded.Remove(path)
}

// Toggle flips the expansion of path and reports the new state.
func (v *View) Toggle(path string) bool {
	if v.expanded.Has(path) {
		v.Collapse(path)
		return false
	}
	v.Expand(path)
	return v.expanded.Has(path)
}

// ExpandTo opens every ancestor of path so it becomes visible without a
// search.
func (v *View) ExpandTo(path string) {
	anc := v.idx.Ancestors(path)
	for i := len(anc) - 1; i >= 0; i-- {
		v.Expand(anc[i])
	}
}

// Row returns the materialized row for path.
func (v *View) Row(path string) (Row, bool) {
	r, ok := v.rows[path]
	if !ok {
		return Row{}, false
	}
	return *r, true
}

// Rows returns the materialized rows for which visible holds, in document
// order. A row whose parent is not visible is skipped along with its subtree.
// isHit marks search hits and may be nil.
func (v *View) Rows(visible func(path string) bool, isHit func(path string) bool) []Row {
	var out []Row
	var walk func(path string) bool
	walk = func(path string) bool {
		r, ok := v.rows[path]
		if !ok || !visible(path) {
			return false
		}
		pos := len(out)
		out = append(out, *r)
		open := false
		for _, c := range v.idx.Children(path) {
			if walk(c) {
				open = true
			}
		}
		out[pos].Expanded = open || v.expanded.Has(path)
		if isHit != nil {
			out[pos].Hit = isHit(path)
		}
		return true
	}
	walk(pathindex.Root)
	return out
}
