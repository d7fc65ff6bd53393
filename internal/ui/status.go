package ui

import (
	"fmt"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/treepick/internal/lazyview"
	"github.com/oakwood-commons/treepick/internal/search"
)

const (
	glyphOpen     = "▾"
	glyphClosed   = "▸"
	glyphLeaf     = " "
	glyphChecked  = "[x]"
	glyphUnticked = "[ ]"
	glyphLocked   = "*"
)

func (m *Model) render() string {
	if m.help {
		return m.renderHelp()
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	body := m.bodyHeight()
	end := min(len(m.rows), m.offset+body)
	lines := 0
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteByte('\n')
		lines++
	}
	for ; lines < body; lines++ {
		b.WriteByte('\n')
	}
	b.WriteString(m.renderSearchLine())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderHeader() string {
	stats := m.sess.Stats()
	title := fmt.Sprintf(" treepick  %s  %d nodes  %d selected  %d locked ",
		m.sess.Source().Name(), stats.Nodes, stats.Selected, stats.Locked)
	return m.st.header.Render(fit(title, m.width))
}

func (m *Model) renderRow(r lazyview.Row, atCursor bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.Depth))
	switch {
	case !r.HasChildren:
		b.WriteString(glyphLeaf)
	case r.Expanded:
		b.WriteString(glyphOpen)
	default:
		b.WriteString(glyphClosed)
	}
	b.WriteByte(' ')

	check := glyphUnticked
	if r.Selected {
		check = glyphChecked
	}
	lock := " "
	if r.Locked {
		lock = glyphLocked
	}
	name := r.Name
	summary := truncate(r.Summary, m.opts.ValueWidth)

	if atCursor {
		line := b.String() + check + lock + " " + name + ": " + summary
		return m.st.cursor.Render(fit(line, m.width))
	}

	if r.Selected {
		b.WriteString(m.st.check.Render(check))
	} else {
		b.WriteString(check)
	}
	b.WriteString(m.st.lock.Render(lock))
	b.WriteByte(' ')
	if r.Hit {
		b.WriteString(m.st.hit.Render(name))
	} else {
		b.WriteString(m.st.key.Render(name))
	}
	b.WriteString(": ")
	b.WriteString(m.st.value.Render(summary))
	return b.String()
}

func (m *Model) renderSearchLine() string {
	if m.searching {
		return m.searchInput.View()
	}
	eng := m.sess.Search()
	opts := eng.Options()
	flags := fmt.Sprintf("[keys %s] [values %s] [cascade %s]",
		onOff(opts.MatchKey), onOff(opts.MatchValue), onOff(m.sess.AutoSelectChildren()))
	if opts.Mode == search.ModeExpression {
		flags += " [cel]"
	}
	if eng.Active() {
		return m.st.input.Render(fmt.Sprintf("/ %s  (%d matches)  %s", eng.Term(), len(eng.Hits()), flags))
	}
	return m.st.disabled.Render("/ to search  " + flags)
}

func (m *Model) renderStatus() string {
	exportHint := "w export"
	if m.sess.CanExport() {
		exportHint = m.st.success.Render(exportHint)
	} else {
		exportHint = m.st.disabled.Render(exportHint + " (nothing selected)")
	}
	pos := fmt.Sprintf("%d/%d", min(m.cursor+1, len(m.rows)), len(m.rows))

	msg := m.status
	switch m.statusKind {
	case statusError:
		msg = m.st.err.Render(msg)
	case statusSuccess:
		msg = m.st.success.Render(msg)
	default:
		msg = m.st.status.Render(msg)
	}
	if m.opts.ShowHelp {
		return fmt.Sprintf("%s  %s  ? help  %s", pos, exportHint, msg)
	}
	return fmt.Sprintf("%s  %s  %s", pos, exportHint, msg)
}

// truncate shortens s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// fit pads or truncates s to exactly width display cells.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
