package ui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/treepick/internal/schedule"
	"github.com/oakwood-commons/treepick/pkg/loader"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

// searchDebounceMsg fires when the quiet period after a keystroke ends.
// It is ignored unless its token is still current.
type searchDebounceMsg struct {
	token schedule.Token
}

// batchStepMsg applies the next chunk of a large row refresh.
type batchStepMsg struct {
	token schedule.Token
}

// fileChangedMsg reports that the watched document changed on disk.
type fileChangedMsg struct{}

// watchErrMsg reports a watcher failure such as the file being removed.
type watchErrMsg struct {
	err error
}

// documentLoadedMsg carries a document parsed off the event loop.
type documentLoadedMsg struct {
	doc any
	src settings.Source
	err error
}

func debouncedSearch(tok schedule.Token, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchDebounceMsg{token: tok}
	})
}

func stepBatch(tok schedule.Token) tea.Cmd {
	return func() tea.Msg { return batchStepMsg{token: tok} }
}

func waitForChange(changes <-chan struct{}, errs <-chan error) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := loader.LoadFile(path)
		return documentLoadedMsg{
			doc: doc,
			src: settings.Source{Kind: settings.SourceFile, Path: path},
			err: err,
		}
	}
}
