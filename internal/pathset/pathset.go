// Package pathset provides the path set type shared by selection, lock,
// expansion and search state.
package pathset

import "sort"

// Set is an unordered set of paths. A nil Set is empty and read-only.
type Set map[string]struct{}

// New returns a set holding paths.
func New(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func (s Set) Add(p string)    { s[p] = struct{}{} }
func (s Set) Remove(p string) { delete(s, p) }

func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s Set) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same paths.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for p := range s {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	out := s.Clone()
	for p := range o {
		out[p] = struct{}{}
	}
	return out
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(o) < len(s) {
		small, large = o, s
	}
	out := Set{}
	for p := range small {
		if large.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Difference returns s \ o.
func (s Set) Difference(o Set) Set {
	out := Set{}
	for p := range s {
		if !o.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// SymmetricDifference returns s Δ o.
func (s Set) SymmetricDifference(o Set) Set {
	out := s.Difference(o)
	for p := range o {
		if !s.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members ordered by rank, falling back to lexical order
// for members rank does not know (rank < 0).
func (s Set) Sorted(rank func(string) int) []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}
