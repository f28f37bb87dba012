package coltype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

var (
	cellStyle      = lipgloss.NewStyle()
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("#FAF089")).Foreground(lipgloss.Color("#1A202C"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#68D391"))
	starStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C453"))
	pillStyle      = lipgloss.NewStyle().Padding(0, 1)
)

func baseStyle(args CellArgs) lipgloss.Style {
	if args.Selected {
		return selectedStyle
	}
	return cellStyle
}

// Truncate cuts s to width display cells, appending an ellipsis when cut.
// Widths <= 0 mean unbounded.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

func renderText(text string, args CellArgs) string {
	text = Truncate(strings.ReplaceAll(text, "\n", " "), args.Width)
	return Highlight(text, args.Highlight, baseStyle(args))
}

// Highlight styles every case-insensitive occurrence of query in text.
func Highlight(text, query string, base lipgloss.Style) string {
	query = strings.TrimSpace(query)
	if query == "" || text == "" {
		return base.Render(text)
	}
	lowerText, lowerQuery := strings.ToLower(text), strings.ToLower(query)
	if len(lowerText) != len(text) || !strings.Contains(lowerText, lowerQuery) {
		return base.Render(text)
	}
	var b strings.Builder
	rest, lowerRest := text, lowerText
	for {
		idx := strings.Index(lowerRest, lowerQuery)
		if idx < 0 {
			b.WriteString(base.Render(rest))
			break
		}
		if idx > 0 {
			b.WriteString(base.Render(rest[:idx]))
		}
		end := idx + len(lowerQuery)
		b.WriteString(highlightStyle.Render(rest[idx:end]))
		rest, lowerRest = rest[end:], lowerRest[end:]
		if rest == "" {
			break
		}
	}
	return b.String()
}

func renderCheckbox(checked bool, args CellArgs) string {
	if checked {
		return checkedStyle.Inherit(baseStyle(args)).Render("[x]")
	}
	return mutedStyle.Inherit(baseStyle(args)).Render("[ ]")
}

func renderStars(rating float64, args CellArgs) string {
	full := int(rating)
	half := rating-float64(full) >= 0.5
	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	empty := int(ratingMax) - full
	if half {
		b.WriteString("½")
		empty--
	}
	stars := starStyle.Inherit(baseStyle(args)).Render(b.String())
	return stars + mutedStyle.Render(strings.Repeat("☆", empty))
}

func renderPill(label, color string, args CellArgs) string {
	label = Truncate(label, args.Width-2)
	style := pillStyle.Copy().
		Background(lipgloss.Color(color)).
		Foreground(lipgloss.Color(contrastColor(color)))
	if args.Selected {
		style = style.Bold(true)
	}
	return style.Render(label)
}

func renderList(items []string, noun string, args CellArgs) string {
	switch len(items) {
	case 0:
		return mutedStyle.Render("")
	case 1:
		return renderText(items[0], args)
	}
	text := fmt.Sprintf("%d %ss: %s", len(items), noun, strings.Join(items, ", "))
	return renderText(text, args)
}

// contrastColor picks dark or light text for a hex background.
func contrastColor(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return "#1A202C"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "#1A202C"
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	if 0.299*r+0.587*g+0.114*b > 150 {
		return "#1A202C"
	}
	return "#F7FAFC"
}
