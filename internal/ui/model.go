// Package ui is the interactive tree browser. The bubbletea event loop is the
// only goroutine that mutates the session; debounce timers, batch steps and
// file reloads come back as messages.
package ui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/treepick/internal/export"
	"github.com/oakwood-commons/treepick/internal/lazyview"
	"github.com/oakwood-commons/treepick/internal/search"
	"github.com/oakwood-commons/treepick/internal/session"
)

const (
	DefaultDebounce   = 200 * time.Millisecond
	DefaultValueWidth = 60
	// chromeLines are the header, search and status lines around the rows.
	chromeLines = 3
)

// Options configure a Model.
type Options struct {
	Debounce   time.Duration
	ValueWidth int
	ExportPath string
	KeyMode    KeyMode
	NoColor    bool
	Theme      *Theme
	// ShowHelp adds key hints to the status line.
	ShowHelp bool
	// WatchPath is reloaded whenever Changes fires.
	WatchPath string
	Changes   <-chan struct{}
	Errors    <-chan error
	Log       logr.Logger
}

// statusKind colors the status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Model is the tree browser.
type Model struct {
	ctl  *session.Controller
	sess *session.Session
	opts Options
	st   styles
	log  logr.Logger

	rows   []lazyview.Row
	cursor int
	offset int
	width  int
	height int

	searchInput textinput.Model
	searching   bool

	status     string
	statusKind statusKind
	pendingKey string
	keyMode    KeyMode
	help       bool
	quitting   bool

	copyText  func(string) error
	writeFile func(string, []byte) error
}

// New returns a model browsing the controller's current session.
func New(ctl *session.Controller, opts Options) (*Model, error) {
	sess, err := ctl.Current()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ValueWidth <= 0 {
		opts.ValueWidth = DefaultValueWidth
	}
	if opts.ExportPath == "" {
		opts.ExportPath = export.DefaultFileName
	}
	if opts.KeyMode == "" {
		opts.KeyMode = DefaultKeyMode
	}
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	if opts.Log.GetSink() == nil {
		opts.Log = logr.Discard()
	}

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "search keys and values"
	si.SetWidth(60)

	m := &Model{
		ctl:         ctl,
		sess:        sess,
		opts:        opts,
		st:          newStyles(th, opts.NoColor),
		log:         opts.Log,
		width:       80,
		height:      24,
		searchInput: si,
		keyMode:     opts.KeyMode,
		copyText:    clipboard.WriteAll,
		writeFile: func(path string, b []byte) error {
			return os.WriteFile(path, b, 0o644)
		},
	}
	m.refreshRows()
	return m, nil
}

// Init starts listening for file changes when watching.
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.opts.Changes, m.opts.Errors)
}

// Session returns the session being browsed.
func (m *Model) Session() *session.Session { return m.sess }

// Rows returns the rows currently on screen, in document order.
func (m *Model) Rows() []lazyview.Row { return m.rows }

// CursorPath returns the path under the cursor.
func (m *Model) CursorPath() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].Path
}

// Status returns the status line message.
func (m *Model) Status() string { return m.status }

func (m *Model) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

// refreshRows rebuilds the visible rows and keeps the cursor on the same
// path when it is still visible.
func (m *Model) refreshRows() {
	current := m.CursorPath()
	m.rows = m.sess.Rows()
	m.cursor = 0
	for i, r := range m.rows {
		if r.Path == current {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

func (m *Model) moveTo(path string) {
	for i, r := range m.rows {
		if r.Path == path {
			m.cursor = i
			m.clampCursor()
			return
		}
	}
}

func (m *Model) bodyHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	body := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+body {
		m.offset = m.cursor - body + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// applyChange refreshes rows after an intent and schedules the remaining
// chunks of a large refresh.
func (m *Model) applyChange(ch session.Change) tea.Cmd {
	m.refreshRows()
	if ch.Batch == nil {
		return nil
	}
	return stepBatch(ch.Batch.Token())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.searchInput.SetWidth(max(10, msg.Width-4))
		m.clampCursor()
		return m, nil

	case searchDebounceMsg:
		return m, m.applySearch(msg)

	case batchStepMsg:
		more := m.sess.View().StepPending(msg.token)
		m.refreshRows()
		if more {
			return m, stepBatch(msg.token)
		}
		return m, nil

	case fileChangedMsg:
		return m, tea.Batch(loadDocument(m.opts.WatchPath), waitForChange(m.opts.Changes, m.opts.Errors))

	case watchErrMsg:
		m.setStatus(statusError, "watch: %v", msg.err)
		return m, waitForChange(m.opts.Changes, m.opts.Errors)

	case documentLoadedMsg:
		m.reload(msg)
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applySearch(msg searchDebounceMsg) tea.Cmd {
	err := m.sess.ApplySearch(msg.token)
	if errors.Is(err, search.ErrStaleToken) {
		return nil
	}
	if err != nil {
		m.setStatus(statusError, "%v", err)
		return nil
	}
	m.afterSearch()
	return nil
}

func (m *Model) afterSearch() {
	m.refreshRows()
	eng := m.sess.Search()
	if !eng.Active() {
		m.setStatus(statusInfo, "")
		return
	}
	hits := eng.Hits()
	if len(hits) == 0 {
		m.setStatus(statusError, "no matches for %q", eng.Term())
		return
	}
	m.moveTo(hits[0])
	m.setStatus(statusInfo, "%d matches", len(hits))
}

func (m *Model) reload(msg documentLoadedMsg) {
	if msg.err != nil {
		m.setStatus(statusError, "reload failed, keeping previous document: %v", msg.err)
		return
	}
	sess, err := m.ctl.Replace(msg.doc, msg.src)
	if err != nil {
		m.setStatus(statusError, "reload failed, keeping previous document: %v", err)
		return
	}
	m.sess = sess
	m.cursor, m.offset = 0, 0
	m.searchInput.SetValue("")
	m.searching = false
	m.searchInput.Blur()
	m.refreshRows()
	m.setStatus(statusSuccess, "reloaded %s", msg.src.Name())
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	keyStr := msg.String()
	if m.help {
		switch keyStr {
		case "?", "f1", "esc", "q":
			m.help = false
		case "ctrl+c":
			m.quitting = true
			return tea.Quit
		}
		return nil
	}
	if m.searching {
		return m.handleSearchKey(msg, keyStr)
	}
	return m.execute(m.resolveKey(keyStr))
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg, keyStr string) tea.Cmd {
	switch keyStr {
	case "enter":
		// keep the filter, return to the tree
		m.searching = false
		m.searchInput.Blur()
		if err := m.sess.RunSearch(m.searchInput.Value()); err != nil {
			m.setStatus(statusError, "%v", err)
			return nil
		}
		m.afterSearch()
		return nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m.clearSearch()
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	}
	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return cmd
	}
	tok := m.sess.SetSearch(m.searchInput.Value())
	return tea.Batch(cmd, debouncedSearch(tok, m.opts.Debounce))
}

func (m *Model) clearSearch() tea.Cmd {
	m.searchInput.SetValue("")
	if err := m.sess.RunSearch(""); err != nil {
		m.setStatus(statusError, "%v", err)
		return nil
	}
	m.afterSearch()
	return nil
}

func (m *Model) execute(action Action) tea.Cmd {
	path := m.CursorPath()
	switch action {
	case ActionNone:
		return nil
	case ActionQuit:
		m.quitting = true
		return tea.Quit
	case ActionHelp:
		m.help = true
	case ActionDown:
		m.cursor++
		m.clampCursor()
	case ActionUp:
		m.cursor--
		m.clampCursor()
	case ActionPageDown:
		m.cursor += m.bodyHeight()
		m.clampCursor()
	case ActionPageUp:
		m.cursor -= m.bodyHeight()
		m.clampCursor()
	case ActionTop:
		m.cursor = 0
		m.clampCursor()
	case ActionBottom:
		m.cursor = len(m.rows) - 1
		m.clampCursor()
	case ActionExpand:
		m.sess.Expand(path)
		m.refreshRows()
	case ActionCollapse:
		m.collapse(path)
	case ActionToggleExpand:
		m.sess.ToggleExpand(path)
		m.refreshRows()
	case ActionToggleSelect:
		return m.applyChange(m.sess.ToggleSelected(path))
	case ActionToggleLock:
		return m.applyChange(m.sess.ToggleLock(path))
	case ActionSelectAll:
		return m.bulk("selected", m.sess.SelectAll())
	case ActionDeselectAll:
		return m.bulk("deselected", m.sess.DeselectAll())
	case ActionInvert:
		return m.bulk("inverted", m.sess.Invert())
	case ActionSelectMatched:
		return m.bulk("selected", m.sess.SelectMatched())
	case ActionLockSelected:
		return m.bulk("locked", m.sess.LockSelected())
	case ActionUnlockVisible:
		return m.bulk("unlocked", m.sess.UnlockVisible())
	case ActionSearch:
		m.searching = true
		m.searchInput.SetValue(m.sess.Search().Term())
		return m.searchInput.Focus()
	case ActionClearSearch:
		return m.clearSearch()
	case ActionNextHit:
		m.jump(m.sess.NextHit(path))
	case ActionPrevHit:
		m.jump(m.sess.PrevHit(path))
	case ActionToggleMatchKey:
		opts := m.sess.Search().Options()
		opts.MatchKey = !opts.MatchKey
		m.setMatchOptions(opts, "match keys", opts.MatchKey)
	case ActionToggleMatchVal:
		opts := m.sess.Search().Options()
		opts.MatchValue = !opts.MatchValue
		m.setMatchOptions(opts, "match values", opts.MatchValue)
	case ActionToggleExprMode:
		opts := m.sess.Search().Options()
		if opts.Mode == search.ModeExpression {
			opts.Mode = search.ModeSubstring
		} else {
			opts.Mode = search.ModeExpression
		}
		m.setMatchOptions(opts, "expression search", opts.Mode == search.ModeExpression)
	case ActionToggleCascade:
		on := !m.sess.AutoSelectChildren()
		m.sess.SetAutoSelectChildren(on)
		m.setStatus(statusInfo, "auto-select children %s", onOff(on))
	case ActionExport:
		m.exportToFile()
	case ActionCopy:
		m.exportToClipboard()
	}
	return nil
}

func (m *Model) collapse(path string) {
	row, ok := m.sess.View().Row(path)
	if ok && row.HasChildren && m.sess.View().IsExpanded(path) {
		m.sess.Collapse(path)
		m.refreshRows()
		return
	}
	// on a leaf or closed node, step out to the parent
	if parent, ok := m.sess.Index().Parent(path); ok {
		m.moveTo(parent)
	}
}

func (m *Model) bulk(verb string, ch session.Change) tea.Cmd {
	cmd := m.applyChange(ch)
	scope := "document"
	if m.sess.Search().Active() {
		scope = "matches"
	}
	m.setStatus(statusInfo, "%s %d paths in %s", verb, len(ch.Paths), scope)
	return cmd
}

func (m *Model) jump(path string, ok bool) {
	if !ok {
		m.setStatus(statusError, "no matches")
		return
	}
	if !m.sess.Search().Active() {
		m.sess.View().ExpandTo(path)
	}
	m.refreshRows()
	m.moveTo(path)
}

func (m *Model) setMatchOptions(opts search.Options, label string, on bool) {
	if err := m.sess.SetMatchOptions(opts); err != nil {
		m.setStatus(statusError, "%v", err)
		return
	}
	m.refreshRows()
	m.setStatus(statusInfo, "%s %s", label, onOff(on))
}

func (m *Model) exportToFile() {
	b, err := m.sess.ExportJSON()
	if err != nil {
		m.setStatus(statusError, "%v", err)
		return
	}
	if err := m.writeFile(m.opts.ExportPath, b); err != nil {
		m.setStatus(statusError, "export failed: %v", err)
		return
	}
	m.log.V(1).Info("wrote export", "path", m.opts.ExportPath, "bytes", len(b))
	m.setStatus(statusSuccess, "wrote %d bytes to %s", len(b), m.opts.ExportPath)
}

func (m *Model) exportToClipboard() {
	b, err := m.sess.ExportJSON()
	if err != nil {
		m.setStatus(statusError, "%v", err)
		return
	}
	if err := m.copyText(string(b)); err != nil {
		m.setStatus(statusError, "copy failed: %v", err)
		return
	}
	m.setStatus(statusSuccess, "copied export (%d bytes)", len(b))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// View renders the model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}
