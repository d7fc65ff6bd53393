package selection

import (
	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
)

// Universe returns U = (scope ∪ descendants(scope)) \ frozen \ {root}.
// A nil scope covers the whole document.
func (s *State) Universe(scope pathset.Set) pathset.Set {
	u := pathset.Set{}
	add := func(p string) {
		if p != pathindex.Root && !s.Frozen(p) {
			u.Add(p)
		}
	}
	if scope == nil {
		for _, p := range s.idx.Paths() {
			add(p)
		}
		return u
	}
	for p := range scope {
		if !s.idx.Has(p) {
			continue
		}
		add(p)
		for _, d := range s.idx.Descendants(p) {
			add(d)
		}
	}
	return u
}

// SelectAll sets S = S ∪ U.
func (s *State) SelectAll(scope pathset.Set) []string {
	u := s.Universe(scope)
	return s.replace(s.selected.Union(u), u)
}

// DeselectAll sets S = S \ U.
func (s *State) DeselectAll(scope pathset.Set) []string {
	u := s.Universe(scope)
	return s.replace(s.selected.Difference(u), u)
}

// Invert sets S = S Δ U.
func (s *State) Invert(scope pathset.Set) []string {
	u := s.Universe(scope)
	return s.replace(s.selected.SymmetricDifference(u), u)
}

// replace installs next and settles every interior path of u and every
// ancestor of u so parents agree with their children. U holds no frozen
// path, so none of those ancestors is locked either.
func (s *State) replace(next, u pathset.Set) []string {
	prev := s.selected
	s.selected = next

	region := pathset.Set{}
	for p := range u {
		if len(s.idx.Children(p)) > 0 {
			region.Add(p)
		}
		for _, a := range s.idx.Ancestors(p) {
			if a == pathindex.Root || region.Has(a) {
				break
			}
			region.Add(a)
		}
	}
	scratch := changes{}
	order := region.Sorted(s.idx.Order)
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		s.set(p, s.fullySelected(p), scratch)
	}
	return s.ordered(prev.SymmetricDifference(s.selected))
}
