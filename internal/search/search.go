// Package search filters a document by key or value and keeps the set of
// visible paths: every hit plus the ancestors that lead to it.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/treepick/internal/cel"
	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/schedule"
)

// Mode selects how a term is interpreted.
type Mode int

const (
	// ModeSubstring matches a case-insensitive substring of the key and/or summary.
	ModeSubstring Mode = iota
	// ModeExpression treats the term as a CEL predicate over the node.
	ModeExpression
)

// Options control what a term is matched against.
type Options struct {
	MatchKey   bool
	MatchValue bool
	Mode       Mode
}

// DefaultOptions matches both keys and values by substring.
func DefaultOptions() Options {
	return Options{MatchKey: true, MatchValue: true}
}

// ErrStaleToken is returned by Apply for a superseded evaluation.
var ErrStaleToken = errors.New("search token is no longer current")

// Match reports whether n matches term. term is expected in lower case;
// an empty term matches everything.
func Match(n *pathindex.Node, term string, opts Options) bool {
	if term == "" {
		return true
	}
	if opts.MatchKey && strings.Contains(strings.ToLower(n.Name), term) {
		return true
	}
	if opts.MatchValue && strings.Contains(strings.ToLower(n.Summary), term) {
		return true
	}
	return false
}

// Normalize trims and lower-cases a substring term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Engine owns the search term and the hit and filtered sets derived from it.
type Engine struct {
	idx  *pathindex.Index
	opts Options
	gen  schedule.Generation

	term     string
	pending  string
	hits     []string
	hitSet   pathset.Set
	filtered pathset.Set
	all      pathset.Set
}

// New returns an engine with no active term.
func New(idx *pathindex.Index, opts Options) *Engine {
	e := &Engine{idx: idx, opts: opts}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.term = ""
	e.hits = nil
	e.hitSet = pathset.Set{}
	e.filtered = e.allPaths()
}

func (e *Engine) allPaths() pathset.Set {
	if e.all == nil {
		e.all = pathset.New(e.idx.Paths()...)
	}
	return e.all
}

// Options returns the active match options.
func (e *Engine) Options() Options { return e.opts }

// Term returns the applied term.
func (e *Engine) Term() string { return e.term }

// Active reports whether a term currently filters the document.
func (e *Engine) Active() bool { return e.term != "" }

// SetTerm records term as pending and returns the token that must still be
// current when the quiet period ends. Each call supersedes the previous token.
func (e *Engine) SetTerm(term string) schedule.Token {
	e.pending = term
	return e.gen.Next()
}

// Cancel drops any pending evaluation.
func (e *Engine) Cancel() { e.gen.Cancel() }

// Apply evaluates the pending term if tok is still current.
func (e *Engine) Apply(tok schedule.Token) error {
	if !e.gen.IsCurrent(tok) {
		return ErrStaleToken
	}
	return e.Run(e.pending)
}

// Run evaluates term immediately, superseding any pending evaluation.
// On an expression compile error the previous result stays in place.
func (e *Engine) Run(term string) error {
	e.gen.Cancel()
	e.pending = term
	hits, err := e.evaluate(term)
	if err != nil {
		return err
	}
	if hits == nil {
		e.reset()
		return nil
	}
	e.term = strings.TrimSpace(term)
	e.hits = hits
	e.hitSet = pathset.New(hits...)
	e.filtered = e.closure(hits)
	return nil
}

// SetOptions changes the match options and re-applies the active term.
func (e *Engine) SetOptions(opts Options) error {
	e.opts = opts
	if !e.Active() {
		return nil
	}
	return e.Run(e.term)
}

// evaluate returns the hits for term in document order, or nil for an
// empty term.
func (e *Engine) evaluate(term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	hits := []string{}
	if e.opts.Mode == ModeExpression {
		pred, err := cel.Compile(term)
		if err != nil {
			return nil, fmt.Errorf("search expression: %w", err)
		}
		for _, p := range e.idx.Paths() {
			if p == pathindex.Root {
				continue
			}
			n, _ := e.idx.Node(p)
			if ok, err := pred.Match(n); err == nil && ok {
				hits = append(hits, p)
			}
		}
		return hits, nil
	}
	norm := Normalize(term)
	for _, p := range e.idx.Paths() {
		if p == pathindex.Root {
			continue
		}
		n, _ := e.idx.Node(p)
		if Match(n, norm, e.opts) {
			hits = append(hits, p)
		}
	}
	return hits, nil
}

func (e *Engine) closure(hits []string) pathset.Set {
	out := pathset.New(pathindex.Root)
	for _, h := range hits {
		if out.Has(h) {
			continue
		}
		out.Add(h)
		for _, a := range e.idx.Ancestors(h) {
			if out.Has(a) {
				break
			}
			out.Add(a)
		}
	}
	return out
}

// FilteredSet computes hits ∪ ancestors(hits) ∪ {root} for term without
// changing the engine state. An empty term yields every path.
func (e *Engine) FilteredSet(term string) (pathset.Set, error) {
	hits, err := e.evaluate(term)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		return e.allPaths().Clone(), nil
	}
	return e.closure(hits), nil
}

// Filtered returns the active filtered set. Callers must not modify it.
func (e *Engine) Filtered() pathset.Set { return e.filtered }

// Hits returns the matching paths in document order.
func (e *Engine) Hits() []string { return e.hits }

// IsHit reports whether path matched the active term.
func (e *Engine) IsHit(path string) bool { return e.hitSet.Has(path) }

// Visible reports whether path is shown. With an active term the filtered
// set decides; otherwise every ancestor must be expanded.
func (e *Engine) Visible(path string, expanded pathset.Set) bool {
	if !e.idx.Has(path) {
		return false
	}
	if e.Active() {
		return e.filtered.Has(path)
	}
	for _, a := range e.idx.Ancestors(path) {
		if !expanded.Has(a) {
			return false
		}
	}
	return true
}

// NextHit returns the first hit after from in document order, wrapping.
func (e *Engine) NextHit(from string) (string, bool) {
	if len(e.hits) == 0 {
		return "", false
	}
	pos := e.idx.Order(from)
	for _, h := range e.hits {
		if e.idx.Order(h) > pos {
			return h, true
		}
	}
	return e.hits[0], true
}

// PrevHit returns the last hit before from in document order, wrapping.
func (e *Engine) PrevHit(from string) (string, bool) {
	if len(e.hits) == 0 {
		return "", false
	}
	pos := e.idx.Order(from)
	if pos < 0 {
		pos = e.idx.Len()
	}
	for i := len(e.hits) - 1; i >= 0; i-- {
		if e.idx.Order(e.hits[i]) < pos {
			return e.hits[i], true
		}
	}
	return e.hits[len(e.hits)-1], true
}
