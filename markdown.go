package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func (t markdownTheme) String() string {
	if t == "" {
		return string(markdownThemeAuto)
	}
	return string(t)
}

func (t markdownTheme) next() markdownTheme {
	switch t {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// blockRenderer renders markdown blocks with glamour. The term renderer is
// rebuilt lazily after a theme or width change.
type blockRenderer struct {
	mu       sync.Mutex
	theme    markdownTheme
	wordWrap int
	renderer *glamour.TermRenderer
}

func newBlockRenderer(theme markdownTheme, wordWrap int) *blockRenderer {
	return &blockRenderer{theme: theme, wordWrap: wordWrap}
}

func (b *blockRenderer) Theme() markdownTheme {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.theme
}

func (b *blockRenderer) SetTheme(theme markdownTheme) {
	b.mu.Lock()
	if b.theme != theme {
		b.theme = theme
		b.renderer = nil
	}
	b.mu.Unlock()
}

func (b *blockRenderer) SetWordWrap(width int) {
	if width < 0 {
		width = 0
	}
	b.mu.Lock()
	if b.wordWrap != width {
		b.wordWrap = width
		b.renderer = nil
	}
	b.mu.Unlock()
}

func (b *blockRenderer) ensure() *glamour.TermRenderer {
	if b.renderer != nil {
		return b.renderer
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(b.wordWrap)}
	switch b.theme {
	case markdownThemeLight:
		opts = append(opts, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		opts = append(opts, glamour.WithStandardStyle("dark"))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	b.renderer = r
	return r
}

// Render returns the block for content, with toolbar (if any) placed above
// it. Rendering failures fall back to the raw markdown.
func (b *blockRenderer) Render(content, toolbar string) string {
	b.mu.Lock()
	r := b.ensure()
	b.mu.Unlock()

	body := content
	if r != nil {
		if out, err := r.Render(content); err == nil {
			body = strings.Trim(out, "\n")
		}
	}
	if strings.TrimSpace(toolbar) == "" {
		return body
	}
	return toolbar + "\n" + body
}

// markdownEscape keeps user text from being read as table or emphasis syntax.
func markdownEscape(s string) string {
	r := strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "\n", " ")
	return r.Replace(s)
}
