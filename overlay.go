package main

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const ansiReset = "\x1b[0m"

// placeOverlay draws fg over bg with its top-left corner at (x, y). Both are
// multi-line strings that may carry ANSI styling.
func placeOverlay(x, y int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgWidth := lipgloss.Width(fg)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		base := bgLines[row]
		left := cutCells(base, x)
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := skipCells(base, x+fgWidth)
		pad := ""
		if w := lipgloss.Width(line); w < fgWidth {
			pad = strings.Repeat(" ", fgWidth-w)
		}
		bgLines[row] = left + ansiReset + line + pad + ansiReset + right
	}
	return strings.Join(bgLines, "\n")
}

// escapeLen returns the byte length of the escape sequence at the start of
// s, or 0 when s does not start with one.
func escapeLen(s string) int {
	if len(s) < 2 || s[0] != '\x1b' {
		return 0
	}
	if s[1] != '[' {
		return 2
	}
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}

// cutCells keeps the first n display cells of s, escape sequences included.
func cutCells(s string, n int) string {
	var b strings.Builder
	width := 0
	for i := 0; i < len(s); {
		if l := escapeLen(s[i:]); l > 0 {
			b.WriteString(s[i : i+l])
			i += l
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		rw := runewidth.RuneWidth(r)
		if width+rw > n {
			break
		}
		b.WriteRune(r)
		width += rw
		i += size
	}
	return b.String()
}

// skipCells drops the first n display cells of s. Escape sequences inside
// the dropped part are kept so the remainder renders with its styling.
func skipCells(s string, n int) string {
	var b strings.Builder
	width := 0
	i := 0
	for i < len(s) && width < n {
		if l := escapeLen(s[i:]); l > 0 {
			b.WriteString(s[i : i+l])
			i += l
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		width += runewidth.RuneWidth(r)
		i += size
	}
	if width > n {
		b.WriteString(strings.Repeat(" ", width-n))
	}
	b.WriteString(s[i:])
	return b.String()
}
