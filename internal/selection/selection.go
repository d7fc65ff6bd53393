// Package selection tracks which paths are selected and which are locked,
// and keeps parent selection consistent with children as paths change.
//
// A path with children counts as selected only when every child is
// selected; there is no stored partial state. The root is always selected
// and never stored. Locking a path freezes it together with its subtree:
// frozen paths ignore direct toggles and are skipped by every cascade and
// bulk operation, so a locked parent never has to follow its children.
package selection

import (
	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
)

// State is the selection and lock state of one document.
type State struct {
	idx      *pathindex.Index
	selected pathset.Set
	locked   pathset.Set
}

// New returns an empty state over idx.
func New(idx *pathindex.Index) *State {
	return &State{
		idx:      idx,
		selected: pathset.Set{},
		locked:   pathset.Set{},
	}
}

// IsSelected reports whether path is selected. Root always is.
func (s *State) IsSelected(path string) bool {
	return path == pathindex.Root || s.selected.Has(path)
}

// IsLocked reports whether path is locked.
func (s *State) IsLocked(path string) bool { return s.locked.Has(path) }

// Selected returns a copy of the selection set. Root is never a member.
func (s *State) Selected() pathset.Set { return s.selected.Clone() }

// Locked returns a copy of the lock set.
func (s *State) Locked() pathset.Set { return s.locked.Clone() }

func (s *State) SelectedCount() int { return s.selected.Len() }
func (s *State) LockedCount() int   { return s.locked.Len() }

// ToggleSelect selects or deselects path. With cascade, every descendant
// that is in filtered (nil means no filter) and not frozen follows, and the
// interior paths of the subtree, path included, are recomputed from their
// children. Parents are then recomputed up to root. It returns the paths
// whose selection changed, in document order.
func (s *State) ToggleSelect(path string, checked, cascade bool, filtered pathset.Set) []string {
	if path == pathindex.Root || !s.idx.Has(path) || s.Frozen(path) {
		return nil
	}
	ch := changes{}
	s.set(path, checked, ch)
	if cascade {
		for _, d := range s.idx.Descendants(path) {
			if filtered != nil && !filtered.Has(d) {
				continue
			}
			if !s.Frozen(d) {
				s.set(d, checked, ch)
			}
		}
		s.settleSubtree(path, ch)
	}
	s.updateAncestors([]string{path}, ch)
	return s.diff(ch)
}

// SelectPaths adds every known path that is not frozen (and with cascade,
// its descendants that are not frozen) to the selection.
func (s *State) SelectPaths(paths []string, cascade bool) []string {
	ch := changes{}
	var seeds []string
	for _, p := range paths {
		if p == pathindex.Root || !s.idx.Has(p) || s.Frozen(p) {
			continue
		}
		seeds = append(seeds, p)
		s.set(p, true, ch)
		if !cascade {
			continue
		}
		for _, d := range s.idx.Descendants(p) {
			if !s.Frozen(d) {
				s.set(d, true, ch)
			}
		}
	}
	if cascade {
		for _, p := range seeds {
			s.settleSubtree(p, ch)
		}
	}
	s.updateAncestors(seeds, ch)
	return s.diff(ch)
}

// SelectMatched selects the search hits themselves, not their forced
// ancestors.
func (s *State) SelectMatched(hits []string, cascade bool) []string {
	return s.SelectPaths(hits, cascade)
}

// Lock adds path, and with cascade its descendants, to the lock set.
// Selection is untouched. It returns the paths whose lock state changed.
func (s *State) Lock(path string, cascade bool) []string {
	return s.setLock(path, true, cascade)
}

// Unlock removes path, and with cascade its descendants, from the lock set.
func (s *State) Unlock(path string, cascade bool) []string {
	return s.setLock(path, false, cascade)
}

// ToggleLock flips the lock state of path.
func (s *State) ToggleLock(path string, cascade bool) []string {
	return s.setLock(path, !s.locked.Has(path), cascade)
}

func (s *State) setLock(path string, locked, cascade bool) []string {
	if path == pathindex.Root || !s.idx.Has(path) {
		return nil
	}
	targets := []string{path}
	if cascade {
		targets = append(targets, s.idx.Descendants(path)...)
	}
	var changed []string
	for _, p := range targets {
		if s.locked.Has(p) == locked {
			continue
		}
		if locked {
			s.locked.Add(p)
		} else {
			s.locked.Remove(p)
		}
		changed = append(changed, p)
	}
	return changed
}

// LockSelected locks every selected path.
func (s *State) LockSelected() []string {
	ch := pathset.Set{}
	for p := range s.selected {
		if !s.locked.Has(p) {
			s.locked.Add(p)
			ch.Add(p)
		}
	}
	return s.ordered(ch)
}

// UnlockVisible removes the locks inside scope. A nil scope unlocks everything.
func (s *State) UnlockVisible(scope pathset.Set) []string {
	ch := pathset.Set{}
	for p := range s.locked {
		if scope == nil || scope.Has(p) {
			ch.Add(p)
		}
	}
	for p := range ch {
		s.locked.Remove(p)
	}
	return s.ordered(ch)
}

// Frozen reports whether path or one of its ancestors is locked. A frozen
// path keeps its selection through toggles, cascades and bulk operations.
func (s *State) Frozen(path string) bool {
	if s.locked.Len() == 0 {
		return false
	}
	if s.locked.Has(path) {
		return true
	}
	for _, a := range s.idx.Ancestors(path) {
		if s.locked.Has(a) {
			return true
		}
	}
	return false
}

// changes records the membership a path had before its first update.
type changes map[string]bool

func (s *State) set(path string, on bool, ch changes) {
	was := s.selected.Has(path)
	if was == on {
		return
	}
	if _, seen := ch[path]; !seen {
		ch[path] = was
	}
	if on {
		s.selected.Add(path)
	} else {
		s.selected.Remove(path)
	}
}

// diff returns the paths whose membership differs from before, in document
// order.
func (s *State) diff(ch changes) []string {
	out := pathset.Set{}
	for p, was := range ch {
		if s.selected.Has(p) != was {
			out.Add(p)
		}
	}
	return s.ordered(out)
}

// settleSubtree recomputes the interior paths of the subtree at top, top
// included, from all of their children, deepest first. Frozen paths are
// left alone.
func (s *State) settleSubtree(top string, ch changes) {
	desc := s.idx.Descendants(top)
	for i := len(desc) - 1; i >= -1; i-- {
		p := top
		if i >= 0 {
			p = desc[i]
		}
		if len(s.idx.Children(p)) == 0 || s.Frozen(p) {
			continue
		}
		s.set(p, s.fullySelected(p), ch)
	}
}

// updateAncestors recomputes every ancestor of seeds, excluding root, from
// its children. Deeper ancestors are settled before their parents. Seeds are
// never frozen, so none of their ancestors is locked.
func (s *State) updateAncestors(seeds []string, ch changes) {
	anc := pathset.Set{}
	for _, p := range seeds {
		for _, a := range s.idx.Ancestors(p) {
			if a == pathindex.Root {
				break
			}
			anc.Add(a)
		}
	}
	if anc.Len() == 0 {
		return
	}
	order := anc.Sorted(s.idx.Order)
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		s.set(p, s.fullySelected(p), ch)
	}
}

func (s *State) fullySelected(path string) bool {
	kids := s.idx.Children(path)
	if len(kids) == 0 {
		return s.selected.Has(path)
	}
	for _, c := range kids {
		if !s.selected.Has(c) {
			return false
		}
	}
	return true
}

func (s *State) ordered(ch pathset.Set) []string {
	if ch.Len() == 0 {
		return nil
	}
	return ch.Sorted(s.idx.Order)
}
