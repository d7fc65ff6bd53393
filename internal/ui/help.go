package ui

import (
	"sort"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

// helpEntries orders the help screen.
var helpEntries = []struct {
	action Action
	text   string
}{
	{ActionDown, "move down"},
	{ActionUp, "move up"},
	{ActionPageDown, "page down"},
	{ActionPageUp, "page up"},
	{ActionTop, "go to top"},
	{ActionBottom, "go to bottom"},
	{ActionExpand, "expand node"},
	{ActionCollapse, "collapse node or go to parent"},
	{ActionToggleExpand, "toggle expansion"},
	{ActionToggleSelect, "toggle selection"},
	{ActionToggleLock, "toggle lock"},
	{ActionSelectAll, "select all (matches while searching)"},
	{ActionDeselectAll, "deselect all (matches while searching)"},
	{ActionInvert, "invert selection"},
	{ActionSelectMatched, "select search matches"},
	{ActionLockSelected, "lock selection"},
	{ActionUnlockVisible, "unlock visible"},
	{ActionSearch, "search"},
	{ActionClearSearch, "clear search"},
	{ActionNextHit, "next match"},
	{ActionPrevHit, "previous match"},
	{ActionToggleMatchKey, "toggle matching keys"},
	{ActionToggleMatchVal, "toggle matching values"},
	{ActionToggleExprMode, "toggle CEL expression search"},
	{ActionToggleCascade, "toggle auto-select children"},
	{ActionExport, "write export file"},
	{ActionCopy, "copy export to clipboard"},
	{ActionHelp, "close help"},
	{ActionQuit, "quit"},
}

// keysFor lists the keys bound to action in mode, mode-specific first.
func keysFor(mode KeyMode, action Action) []string {
	bindings := VimKeyBindings
	if mode == KeyModeEmacs {
		bindings = EmacsKeyBindings
	}
	var own, common []string
	for k, a := range bindings {
		if a == action {
			own = append(own, k)
		}
	}
	for k, a := range commonKeyBindings {
		if a == action {
			common = append(common, k)
		}
	}
	sort.Strings(own)
	sort.Strings(common)
	if mode == KeyModeVim && action == ActionTop {
		own = append([]string{"gg"}, own...)
	}
	return append(own, common...)
}

// HelpText renders the key reference for mode without styling.
func HelpText(mode KeyMode) string {
	var b strings.Builder
	for _, e := range helpEntries {
		keys := strings.Join(keysFor(mode, e.action), ", ")
		b.WriteString(runewidth.FillRight(keys, 22))
		b.WriteString(e.text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.st.header.Render(fit(" treepick help ", m.width)))
	b.WriteByte('\n')
	for _, e := range helpEntries {
		keys := strings.Join(keysFor(m.keyMode, e.action), ", ")
		b.WriteString(m.st.helpKey.Render(runewidth.FillRight(keys, 22)))
		b.WriteString(m.st.helpVal.Render(e.text))
		b.WriteByte('\n')
	}
	return b.String()
}
