package session

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/treepick/pkg/loader"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

// Controller owns the active session and replaces it wholesale on every
// successful load. A failed load leaves the active session untouched.
type Controller struct {
	opts    Options
	log     logr.Logger
	current *Session
}

// NewController returns a controller with no document loaded.
func NewController(opts Options, log logr.Logger) *Controller {
	return &Controller{opts: opts, log: log}
}

// Current returns the active session.
func (c *Controller) Current() (*Session, error) {
	if c.current == nil {
		return nil, ErrNoDocument
	}
	return c.current, nil
}

// Options returns the options new sessions start with.
func (c *Controller) Options() Options { return c.opts }

// SetOptions changes the options of later sessions.
func (c *Controller) SetOptions(opts Options) { c.opts = opts }

// Load parses data and makes it the active document.
func (c *Controller) Load(data []byte, src settings.Source) (*Session, error) {
	doc, err := loader.Load(data)
	if err != nil {
		c.log.V(1).Info("load failed, keeping previous document", "source", src.Name(), "error", err.Error())
		return nil, fmt.Errorf("parsing %s: %w", src.Name(), err)
	}
	return c.Replace(doc, src)
}

// LoadFile reads and parses path and makes it the active document.
func (c *Controller) LoadFile(path string) (*Session, error) {
	src := settings.Source{Kind: settings.SourceFile, Path: path}
	doc, err := loader.LoadFile(path)
	if err != nil {
		c.log.V(1).Info("load failed, keeping previous document", "source", path, "error", err.Error())
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c.Replace(doc, src)
}

// Replace makes an already parsed document the active one.
func (c *Controller) Replace(doc any, src settings.Source) (*Session, error) {
	opts := c.opts
	if c.current != nil {
		// match toggles and cascading survive a reload
		opts.Search = c.current.opts.Search
		opts.AutoSelectChildren = c.current.opts.AutoSelectChildren
	}
	s, err := New(doc, src, opts, c.log)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	c.current = s
	c.log.V(1).Info("document loaded", "session", s.ID(), "source", src.Name(), "nodes", s.idx.Len())
	return s, nil
}
