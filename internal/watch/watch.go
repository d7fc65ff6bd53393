// Package watch reports changes to a single document file. Events are
// debounced so an editor's write-rename-chmod burst yields one change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 250 * time.Millisecond

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for dropped events and errors.
func WithLogger(log logr.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// Watcher watches the directory holding a file, so atomic saves that
// replace the file are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logr.Logger

	mu      sync.Mutex
	started bool
	timer   *time.Timer

	changes chan struct{}
	errs    chan error
}

// New returns a watcher for path. Call Run to start it.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		log:      logr.Discard(),
		changes:  make(chan struct{}, 1),
		errs:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes delivers one value per debounced burst of changes. Bursts that
// arrive before the previous one was received are coalesced.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errors delivers watcher errors, including ErrFileRemoved.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}
	w.log.V(1).Info("watching file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.report(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove):
		w.report(ErrFileRemoved)
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
		w.trigger()
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
		w.log.V(1).Info("dropping watcher error", "error", err.Error())
	}
}
