package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, selection, accent, warn lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1A202C", Dark: "#E2E8F0"},
	textMuted: lipgloss.AdaptiveColor{Light: "#718096", Dark: "#A0AEC0"},
	border:    lipgloss.AdaptiveColor{Light: "#CBD5E0", Dark: "#4A5568"},
	selection: lipgloss.AdaptiveColor{Light: "#BEE3F8", Dark: "#2C5282"},
	accent:    lipgloss.AdaptiveColor{Light: "#2B6CB0", Dark: "#63B3ED"},
	warn:      lipgloss.AdaptiveColor{Light: "#C05621", Dark: "#F6AD55"},
}

type styles struct {
	app, topBar, tabActive, tabInactive   lipgloss.Style
	header, headerActive, headerPinned    lipgloss.Style
	headerDrag                            lipgloss.Style
	cell, cellActive, rowSel              lipgloss.Style
	groupHeader, summary                  lipgloss.Style
	panel, columnTitle                    lipgloss.Style
	statusBar, statusSeg, statusHint      lipgloss.Style
	menu, menuItem, menuSel, menuDisabled lipgloss.Style
	menuSep, menuTitle                    lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint        lipgloss.Style
	empty                                 lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()

	return styles{
		app:          base,
		topBar:       base.Copy().Bold(true).Padding(0, 1),
		tabActive:    base.Copy().Bold(true).Underline(true).Padding(0, 1),
		tabInactive:  base.Copy().Foreground(palette.textMuted).Padding(0, 1),
		header:       base.Copy().Bold(true).Foreground(palette.text),
		headerActive: base.Copy().Bold(true).Foreground(palette.accent).Underline(true),
		headerPinned: base.Copy().Bold(true).Foreground(palette.warn),
		headerDrag:   base.Copy().Bold(true).Reverse(true),
		cell:         base,
		cellActive:   base.Copy().Reverse(true),
		rowSel:       base.Copy().Background(palette.selection),
		groupHeader:  base.Copy().Bold(true).Foreground(palette.accent),
		summary:      base.Copy().Italic(true).Foreground(palette.textMuted),
		panel:        base.Copy().BorderStyle(lipgloss.NormalBorder()).BorderForeground(palette.border),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		statusBar:    base.Padding(0, 1),
		statusSeg:    base.Padding(0, 1).MarginRight(1),
		statusHint:   base.Copy().Foreground(palette.textMuted),
		menu:         base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.border),
		menuItem:     base.Padding(0, 1),
		menuSel:      base.Copy().Padding(0, 1).Bold(true).Background(palette.selection),
		menuDisabled: base.Copy().Padding(0, 1).Foreground(palette.textMuted).Faint(true),
		menuSep:      base.Copy().Foreground(palette.border),
		menuTitle:    base.Copy().Padding(0, 1).Bold(true).Foreground(palette.accent),
		cmdOverlay:   base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		cmdPrompt:    base.Copy().Bold(true),
		cmdHint:      base.Copy().Faint(true),
		empty:        base.Copy().Foreground(palette.textMuted).Italic(true).Padding(1, 2),
	}
}
