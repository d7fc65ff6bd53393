package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/treepick/internal/session"
)

// Run starts the tree browser on the controller's current session and blocks
// until the user quits. Extra ProgramOptions (e.g., custom IO) are passed to
// tea.NewProgram.
func Run(ctl *session.Controller, opts Options, progOpts ...tea.ProgramOption) error {
	m, err := New(ctl, opts)
	if err != nil {
		return err
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		m.width, m.height = w, h
	}
	p := tea.NewProgram(m, progOpts...)
	_, err = p.Run()
	return err
}
