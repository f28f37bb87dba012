package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/jobtracker/internal/colmenu"
	"github.com/bekirdag/jobtracker/internal/coltype"
)

// renderMenu draws the open column menu. While the reveal animation runs only
// the share of rows nearest the anchor is shown.
func (m *model) renderMenu(menu *colmenu.Menu) string {
	entries := menu.Entries()
	inner := menu.Dimensions().W - 2
	if inner < 8 {
		inner = 8
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.Separator {
			lines = append(lines, m.styles.menuSep.Render(strings.Repeat("─", inner)))
			continue
		}
		lines = append(lines, m.renderMenuEntry(menu, e, i == menu.Highlight(), inner))
	}
	box := m.styles.menu.Width(inner).Render(strings.Join(lines, "\n"))

	reveal := menu.Reveal()
	if menu.Visible() || reveal >= 1 {
		return box
	}
	rows := strings.Split(box, "\n")
	keep := int(math.Ceil(reveal * float64(len(rows))))
	if keep < 1 {
		keep = 1
	}
	if keep >= len(rows) {
		return box
	}
	if menu.Flipped() {
		return strings.Join(rows[len(rows)-keep:], "\n")
	}
	return strings.Join(rows[:keep], "\n")
}

func (m *model) renderMenuEntry(menu *colmenu.Menu, e colmenu.Entry, highlighted bool, inner int) string {
	style := m.styles.menuItem
	switch {
	case e.Disabled:
		style = m.styles.menuDisabled
	case highlighted:
		style = m.styles.menuSel
	}
	if e.Input {
		prefix := e.Label + ": "
		field := menu.RenameDraft()
		if e.ID == colmenu.EntryFilterInput {
			field = menu.FilterDraft()
		}
		if highlighted && m.menuInput.Focused() {
			m.menuInput.Width = max(inner-lipgloss.Width(prefix)-3, 4)
			field = m.menuInput.View()
		}
		return style.Width(inner).Render(prefix + field)
	}
	mark := "  "
	if e.Checked {
		mark = "✓ "
	}
	suffix := ""
	if e.Submenu != colmenu.Closed {
		suffix = " ›"
	}
	label := coltype.Truncate(e.Label, inner-2-lipgloss.Width(mark)-lipgloss.Width(suffix))
	return style.Width(inner).Render(mark + label + suffix)
}

// menuEntryAt maps a screen position to an entry index of the open menu.
func menuEntryAt(menu *colmenu.Menu, x, y int) (int, bool) {
	pos := menu.Position()
	dims := menu.Dimensions()
	if x < pos.X || x >= pos.X+dims.W || y < pos.Y || y >= pos.Y+dims.H {
		return -1, false
	}
	idx := y - pos.Y - 1
	if idx < 0 || idx >= len(menu.Entries()) {
		return -1, true
	}
	return idx, true
}
