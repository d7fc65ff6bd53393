// Package session binds one loaded document to its path index, selection,
// search and lazy view. Every intent that changes model state notifies the
// view of the affected paths.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/treepick/internal/export"
	"github.com/oakwood-commons/treepick/internal/lazyview"
	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/schedule"
	"github.com/oakwood-commons/treepick/internal/search"
	"github.com/oakwood-commons/treepick/internal/selection"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

// ErrNoDocument is returned when no document has been loaded yet.
var ErrNoDocument = errors.New("no document loaded")

// Options configure a new session.
type Options struct {
	Search             search.Options
	AutoSelectChildren bool
	View               lazyview.Options
	ExportIndent       int
}

// DefaultOptions matches keys and values, cascades selection to children,
// and uses the default batching of the view.
func DefaultOptions() Options {
	return Options{
		Search:             search.DefaultOptions(),
		AutoSelectChildren: true,
		ExportIndent:       2,
	}
}

// Change reports the paths an intent touched. Batch is non-nil when the view
// refresh was too large to apply at once and must be stepped.
type Change struct {
	Paths []string
	Batch *lazyview.Batch
}

// Empty reports whether the intent changed nothing.
func (c Change) Empty() bool { return len(c.Paths) == 0 }

// Stats summarizes a session for status lines and logs.
type Stats struct {
	Nodes    int
	Selected int
	Locked   int
	Hits     int
	Rendered int
}

// Session is the state of one loaded document. It is not safe for
// concurrent use.
type Session struct {
	id       uuid.UUID
	source   settings.Source
	loadedAt time.Time
	doc      any
	opts     Options
	log      logr.Logger

	idx    *pathindex.Index
	sel    *selection.State
	search *search.Engine
	view   *lazyview.View
}

// New indexes doc and returns a session with nothing selected and only the
// root expanded. A scalar or null doc is a root without children.
func New(doc any, src settings.Source, opts Options, log logr.Logger) (*Session, error) {
	if opts.ExportIndent <= 0 {
		opts.ExportIndent = 2
	}
	idx := pathindex.Build(doc)
	sel := selection.New(idx)
	s := &Session{
		id:       uuid.New(),
		source:   src,
		loadedAt: time.Now(),
		doc:      doc,
		opts:     opts,
		idx:      idx,
		sel:      sel,
		search:   search.New(idx, opts.Search),
		view:     lazyview.New(idx, sel, opts.View),
	}
	s.log = log.WithValues("session", s.id.String(), "source", src.Name())
	s.log.V(1).Info("session created", "nodes", idx.Len())
	return s, nil
}

func (s *Session) ID() string                  { return s.id.String() }
func (s *Session) Source() settings.Source     { return s.source }
func (s *Session) LoadedAt() time.Time         { return s.loadedAt }
func (s *Session) Document() any               { return s.doc }
func (s *Session) Index() *pathindex.Index     { return s.idx }
func (s *Session) Selection() *selection.State { return s.sel }
func (s *Session) Search() *search.Engine      { return s.search }
func (s *Session) View() *lazyview.View        { return s.view }
func (s *Session) Options() Options            { return s.opts }

// AutoSelectChildren reports whether select and lock cascade to children.
func (s *Session) AutoSelectChildren() bool { return s.opts.AutoSelectChildren }

// SetAutoSelectChildren turns cascading on or off.
func (s *Session) SetAutoSelectChildren(on bool) { s.opts.AutoSelectChildren = on }

func (s *Session) notify(paths []string) Change {
	if len(paths) == 0 {
		return Change{}
	}
	return Change{Paths: paths, Batch: s.view.Propagate(paths)}
}

// scope is the set bulk intents act on: the search hits while a search is
// active, otherwise the whole document.
func (s *Session) scope() pathset.Set {
	if !s.search.Active() {
		return nil
	}
	return pathset.New(s.search.Hits()...)
}

// Expand opens path.
func (s *Session) Expand(path string) { s.view.Expand(path) }

// Collapse closes path.
func (s *Session) Collapse(path string) { s.view.Collapse(path) }

// ToggleExpand flips the expansion of path and reports the new state.
func (s *Session) ToggleExpand(path string) bool { return s.view.Toggle(path) }

// ToggleSelect sets the selection of path, cascading to the visible
// descendants that are not frozen by a lock when auto-select is on.
func (s *Session) ToggleSelect(path string, checked bool) Change {
	ch := s.sel.ToggleSelect(path, checked, s.opts.AutoSelectChildren, s.search.Filtered())
	return s.notify(ch)
}

// ToggleSelected flips the selection of path.
func (s *Session) ToggleSelected(path string) Change {
	return s.ToggleSelect(path, !s.sel.IsSelected(path))
}

// ToggleLock flips the lock on path.
func (s *Session) ToggleLock(path string) Change {
	return s.notify(s.sel.ToggleLock(path, s.opts.AutoSelectChildren))
}

// LockSelected locks every selected path.
func (s *Session) LockSelected() Change {
	ch := s.notify(s.sel.LockSelected())
	s.log.V(1).Info("locked selection", "changed", len(ch.Paths))
	return ch
}

// UnlockVisible removes the locks on every visible path.
func (s *Session) UnlockVisible() Change {
	var scope pathset.Set
	if s.search.Active() {
		scope = s.search.Filtered()
	}
	ch := s.notify(s.sel.UnlockVisible(scope))
	s.log.V(1).Info("unlocked visible", "changed", len(ch.Paths))
	return ch
}

// SelectAll selects everything in scope.
func (s *Session) SelectAll() Change { return s.bulk("select all", s.sel.SelectAll) }

// DeselectAll clears everything in scope.
func (s *Session) DeselectAll() Change { return s.bulk("deselect all", s.sel.DeselectAll) }

// Invert flips the selection of everything in scope.
func (s *Session) Invert() Change { return s.bulk("invert", s.sel.Invert) }

func (s *Session) bulk(op string, fn func(pathset.Set) []string) Change {
	ch := s.notify(fn(s.scope()))
	s.log.V(1).Info("bulk selection", "op", op, "searchActive", s.search.Active(), "changed", len(ch.Paths))
	return ch
}

// SelectMatched adds every search hit to the selection.
func (s *Session) SelectMatched() Change {
	return s.notify(s.sel.SelectMatched(s.search.Hits(), s.opts.AutoSelectChildren))
}

// SelectPaths selects the given paths; unknown paths are ignored.
func (s *Session) SelectPaths(paths []string) Change {
	return s.notify(s.sel.SelectPaths(paths, s.opts.AutoSelectChildren))
}

// SetSearch records a new term and returns the token that must still be
// current when the debounce window closes.
func (s *Session) SetSearch(term string) schedule.Token {
	return s.search.SetTerm(term)
}

// ApplySearch evaluates the pending term if tok is still current.
func (s *Session) ApplySearch(tok schedule.Token) error {
	if err := s.search.Apply(tok); err != nil {
		return err
	}
	s.afterSearch()
	return nil
}

// RunSearch evaluates term immediately.
func (s *Session) RunSearch(term string) error {
	if err := s.search.Run(term); err != nil {
		return err
	}
	s.afterSearch()
	return nil
}

// SetMatchOptions changes what the search matches and re-applies the
// active term.
func (s *Session) SetMatchOptions(opts search.Options) error {
	if err := s.search.SetOptions(opts); err != nil {
		return err
	}
	s.opts.Search = opts
	s.afterSearch()
	return nil
}

func (s *Session) afterSearch() {
	for _, h := range s.search.Hits() {
		s.view.EnsureRendered(h)
	}
	s.log.V(1).Info("search applied", "term", s.search.Term(), "hits", len(s.search.Hits()))
}

// NextHit returns the hit after from and makes it reachable in the view.
func (s *Session) NextHit(from string) (string, bool) {
	return s.reveal(s.search.NextHit(from))
}

// PrevHit returns the hit before from and makes it reachable in the view.
func (s *Session) PrevHit(from string) (string, bool) {
	return s.reveal(s.search.PrevHit(from))
}

func (s *Session) reveal(path string, ok bool) (string, bool) {
	if ok {
		s.view.EnsureRendered(path)
	}
	return path, ok
}

// Visible reports whether path is shown under the current search and
// expansion state.
func (s *Session) Visible(path string) bool {
	return s.search.Visible(path, s.view.Expanded())
}

// Rows returns the visible rows in document order.
func (s *Session) Rows() []lazyview.Row {
	return s.view.Rows(s.Visible, s.search.IsHit)
}

// CanExport reports whether any selected path survives the active filter.
func (s *Session) CanExport() bool {
	return len(export.Eligible(s.sel.Selected(), s.search.Filtered())) > 0
}

// Export projects the selected and visible part of the document.
func (s *Session) Export() (any, error) {
	out, err := export.Project(s.doc, s.sel.Selected(), s.search.Filtered())
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("exported selection", "selected", s.sel.SelectedCount())
	return out, nil
}

// ExportJSON encodes the projection as indented JSON.
func (s *Session) ExportJSON() ([]byte, error) {
	out, err := s.Export()
	if err != nil {
		return nil, err
	}
	b, err := export.Marshal(out, s.opts.ExportIndent)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return b, nil
}

// ExportYAML encodes the projection as YAML.
func (s *Session) ExportYAML() ([]byte, error) {
	out, err := s.Export()
	if err != nil {
		return nil, err
	}
	b, err := export.MarshalYAML(out)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return b, nil
}

// Stats reports counts for the status line.
func (s *Session) Stats() Stats {
	return Stats{
		Nodes:    s.idx.Len(),
		Selected: s.sel.SelectedCount(),
		Locked:   s.sel.LockedCount(),
		Hits:     len(s.search.Hits()),
		Rendered: s.view.RenderedCount(),
	}
}
