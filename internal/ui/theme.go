package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors used across the tree view.
type Theme struct {
	KeyColor      color.Color // Node names
	ValueColor    color.Color // Summaries
	HeaderFG      color.Color // Title bar text
	HeaderBG      color.Color // Title bar background
	CursorFG      color.Color // Cursor row foreground
	CursorBG      color.Color // Cursor row background
	CheckColor    color.Color // Selected checkbox
	LockColor     color.Color // Lock marker
	HitColor      color.Color // Search hits
	InputFG       color.Color // Search box text
	StatusColor   color.Color // Normal status text
	StatusError   color.Color // Error status text
	StatusSuccess color.Color // Success status text
	Disabled      color.Color // Unavailable actions
	HelpKey       color.Color // Help key labels
	HelpValue     color.Color // Help descriptions
}

// DefaultTheme returns the dark palette treepick ships with.
func DefaultTheme() Theme {
	return Theme{
		KeyColor:      lipgloss.Color("81"),  // cyan keys
		ValueColor:    lipgloss.Color("246"), // muted gray values
		HeaderFG:      lipgloss.Color("81"),
		HeaderBG:      lipgloss.Color("236"),
		CursorFG:      lipgloss.Color("250"),
		CursorBG:      lipgloss.Color("24"), // deep teal
		CheckColor:    lipgloss.Color("114"),
		LockColor:     lipgloss.Color("214"),
		HitColor:      lipgloss.Color("220"),
		InputFG:       lipgloss.Color("252"),
		StatusColor:   lipgloss.Color("81"),
		StatusError:   lipgloss.Color("203"),
		StatusSuccess: lipgloss.Color("114"),
		Disabled:      lipgloss.Color("240"),
		HelpKey:       lipgloss.Color("81"),
		HelpValue:     lipgloss.Color("245"),
	}
}

// styles are the lipgloss styles derived from a theme. With noColor every
// style is plain so output carries no ANSI sequences.
type styles struct {
	header   lipgloss.Style
	key      lipgloss.Style
	value    lipgloss.Style
	cursor   lipgloss.Style
	check    lipgloss.Style
	lock     lipgloss.Style
	hit      lipgloss.Style
	input    lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	disabled lipgloss.Style
	helpKey  lipgloss.Style
	helpVal  lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	plain := lipgloss.NewStyle()
	if noColor {
		return styles{
			header: plain.Bold(true), key: plain, value: plain, cursor: plain.Reverse(true),
			check: plain, lock: plain, hit: plain.Underline(true), input: plain,
			status: plain, err: plain, success: plain, disabled: plain,
			helpKey: plain.Bold(true), helpVal: plain,
		}
	}
	return styles{
		header:   plain.Foreground(th.HeaderFG).Background(th.HeaderBG).Bold(true),
		key:      plain.Foreground(th.KeyColor),
		value:    plain.Foreground(th.ValueColor),
		cursor:   plain.Foreground(th.CursorFG).Background(th.CursorBG),
		check:    plain.Foreground(th.CheckColor).Bold(true),
		lock:     plain.Foreground(th.LockColor),
		hit:      plain.Foreground(th.HitColor).Bold(true),
		input:    plain.Foreground(th.InputFG),
		status:   plain.Foreground(th.StatusColor),
		err:      plain.Foreground(th.StatusError),
		success:  plain.Foreground(th.StatusSuccess),
		disabled: plain.Foreground(th.Disabled),
		helpKey:  plain.Foreground(th.HelpKey).Bold(true),
		helpVal:  plain.Foreground(th.HelpValue),
	}
}
