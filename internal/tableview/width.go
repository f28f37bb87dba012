package tableview

import "github.com/mattn/go-runewidth"

// Width fitting works in pixels: display cells times CharPx plus padding,
// clamped to [MinWidth, MaxWidth].
const (
	CharPx       = 8
	WidthPadding = 24
	MinWidth     = 80
	MaxWidth     = 520
	DefaultWidth = 160
)

func clampWidth(px int) int {
	if px < MinWidth {
		return MinWidth
	}
	if px > MaxWidth {
		return MaxWidth
	}
	return px
}

// Width returns the column's current pixel width.
func (c *Controller) Width(id string) int {
	if w, ok := c.widths[id]; ok {
		return w
	}
	if spec, ok := c.Column(id); ok && spec.DefaultWidth > 0 {
		return spec.DefaultWidth
	}
	return DefaultWidth
}

// SetWidth sets a clamped pixel width for the session.
func (c *Controller) SetWidth(id string, px int) {
	if !c.has(id) {
		return
	}
	c.widths[id] = clampWidth(px)
}

// FitWidth sizes id to its widest label or displayed cell text and returns
// the new width.
func (c *Controller) FitWidth(id string) int {
	if !c.has(id) {
		return 0
	}
	longest := runewidth.StringWidth(c.Label(id))
	for _, r := range c.DisplayedRows() {
		if n := runewidth.StringWidth(c.Text(r, id)); n > longest {
			longest = n
		}
	}
	px := clampWidth(longest*CharPx + WidthPadding)
	c.widths[id] = px
	return px
}

// Cells converts a pixel width to terminal cells.
func Cells(px int) int {
	if px <= 0 {
		return 0
	}
	return px / CharPx
}
