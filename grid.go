package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

const (
	gridGutter    = 2
	gridSeparator = 1
	// header and rule lines above the body
	gridChrome = 2
)

type gridCell struct {
	id   string
	x, w int
}

// grid renders one table controller and tracks the cursor over its display
// items and visible columns.
type grid struct {
	ctrl   *tableview.Controller
	items  []tableview.Item
	row    int
	col    int
	offset int
	scroll int
	width  int
	height int
	cells  []gridCell
}

func newGrid(ctrl *tableview.Controller) *grid {
	g := &grid{ctrl: ctrl}
	g.refresh()
	return g
}

func (g *grid) SetSize(width, height int) {
	g.width = width
	if height < gridChrome+1 {
		height = gridChrome + 1
	}
	g.height = height
	g.clamp()
}

// refresh re-reads the display after any controller change.
func (g *grid) refresh() {
	g.items = g.ctrl.Display()
	g.clamp()
}

func (g *grid) clamp() {
	if g.row >= len(g.items) {
		g.row = len(g.items) - 1
	}
	if g.row < 0 {
		g.row = 0
	}
	cols := g.ctrl.VisibleColumns()
	if g.col >= len(cols) {
		g.col = len(cols) - 1
	}
	if g.col < 0 {
		g.col = 0
	}
	body := g.bodyHeight()
	if g.row < g.offset {
		g.offset = g.row
	}
	if g.row >= g.offset+body {
		g.offset = g.row - body + 1
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

func (g *grid) bodyHeight() int {
	h := g.height - gridChrome
	if g.ctrl.HasSummary() {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (g *grid) CurrentColumn() string {
	cols := g.ctrl.VisibleColumns()
	if g.col < 0 || g.col >= len(cols) {
		return ""
	}
	return cols[g.col]
}

func (g *grid) CurrentItem() (tableview.Item, bool) {
	if g.row < 0 || g.row >= len(g.items) {
		return tableview.Item{}, false
	}
	return g.items[g.row], true
}

func (g *grid) CurrentRow() (tableview.Row, bool) {
	item, ok := g.CurrentItem()
	if !ok || item.IsHeader() {
		return nil, false
	}
	return item.Row, true
}

func (g *grid) Move(dRow, dCol int) {
	g.row += dRow
	g.col += dCol
	g.clamp()
}

func (g *grid) SelectColumn(id string) bool {
	for i, c := range g.ctrl.VisibleColumns() {
		if c == id {
			g.col = i
			return true
		}
	}
	return false
}

// SelectLine moves the cursor to the body line at screen offset line.
func (g *grid) SelectLine(line int) bool {
	idx := g.offset + line
	if line < 0 || idx >= len(g.items) {
		return false
	}
	g.row = idx
	g.clamp()
	return true
}

// layout places the pinned column first and as many scrolled columns as fit
// after it, keeping the cursor column on screen.
func (g *grid) layout() []gridCell {
	cols := g.ctrl.VisibleColumns()
	if len(cols) == 0 {
		return nil
	}
	pinned := 0
	if p := g.ctrl.Pinned(); p != "" && len(cols) > 0 && cols[0] == p {
		pinned = 1
	}
	if g.scroll < pinned {
		g.scroll = pinned
	}
	if g.col >= pinned && g.col < g.scroll {
		g.scroll = g.col
	}
	for {
		cells := g.place(cols, pinned)
		if g.col < pinned || g.scroll >= g.col || containsCell(cells, cols[g.col]) {
			return cells
		}
		g.scroll++
	}
}

func (g *grid) place(cols []string, pinned int) []gridCell {
	var cells []gridCell
	x := gridGutter
	add := func(id string) bool {
		w := tableview.Cells(g.ctrl.Width(id))
		if len(cells) > 0 && x+w > g.width {
			return false
		}
		cells = append(cells, gridCell{id: id, x: x, w: w})
		x += w + gridSeparator
		return true
	}
	for i := 0; i < pinned; i++ {
		add(cols[i])
	}
	for i := g.scroll; i < len(cols); i++ {
		if !add(cols[i]) {
			break
		}
	}
	return cells
}

func containsCell(cells []gridCell, id string) bool {
	for _, c := range cells {
		if c.id == id {
			return true
		}
	}
	return false
}

// HeaderCell returns the screen placement of column id from the last render.
func (g *grid) HeaderCell(id string) (gridCell, bool) {
	for _, c := range g.cells {
		if c.id == id {
			return c, true
		}
	}
	return gridCell{}, false
}

// ColumnAt returns the column under screen column x.
func (g *grid) ColumnAt(x int) (string, bool) {
	for _, c := range g.cells {
		if x >= c.x && x < c.x+c.w+gridSeparator {
			return c.id, true
		}
	}
	return "", false
}

func (g *grid) View(s styles, query string) string {
	g.cells = g.layout()
	current := g.CurrentColumn()

	lines := make([]string, 0, g.height)
	lines = append(lines, g.headerLine(s, current))
	lines = append(lines, s.statusHint.Render(strings.Repeat("─", max(g.width, 0))))

	body := g.bodyHeight()
	if len(g.items) == 0 {
		msg := "No rows"
		if query != "" || len(g.ctrl.Filters()) > 0 {
			msg = "No rows match the current search or filters"
		}
		lines = append(lines, s.empty.Render(msg))
	}
	for i := g.offset; i < len(g.items) && i < g.offset+body; i++ {
		item := g.items[i]
		if item.IsHeader() {
			lines = append(lines, g.groupLine(s, *item.Header, i == g.row))
			continue
		}
		lines = append(lines, g.rowLine(s, item.Row, i == g.row, current, query))
	}
	for len(lines) < gridChrome+body {
		lines = append(lines, "")
	}
	if g.ctrl.HasSummary() {
		lines = append(lines, g.summaryLine(s))
	}
	return strings.Join(lines, "\n")
}

func (g *grid) headerLine(s styles, current string) string {
	src, over, dragging := g.ctrl.Dragging()
	sort, sorted := g.ctrl.Sort()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridGutter))
	for i, c := range g.cells {
		label := g.ctrl.Label(c.id)
		if c.id == tableview.ActionsColumn && label == "" {
			label = "Actions"
		}
		if sorted && sort.Column == c.id {
			if sort.Direction == tableview.Ascending {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		if g.ctrl.Filter(c.id) != "" {
			label += " *"
		}
		style := s.header
		switch {
		case dragging && (c.id == src || c.id == over):
			style = s.headerDrag
		case c.id == current:
			style = s.headerActive
		case c.id == g.ctrl.Pinned():
			style = s.headerPinned
		}
		b.WriteString(pad(style.Render(coltype.Truncate(label, c.w)), c.w))
		if i < len(g.cells)-1 {
			b.WriteString(strings.Repeat(" ", gridSeparator))
		}
	}
	return b.String()
}

func (g *grid) groupLine(s styles, h tableview.GroupHeader, selected bool) string {
	marker := "▾"
	if h.Collapsed {
		marker = "▸"
	}
	line := fmt.Sprintf("%s %s (%d)", marker, h.Key, h.Count)
	if selected {
		return "› " + s.groupHeader.Copy().Reverse(true).Render(line)
	}
	return "  " + s.groupHeader.Render(line)
}

func (g *grid) rowLine(s styles, r tableview.Row, selected bool, current, query string) string {
	var b strings.Builder
	if selected {
		b.WriteString("› ")
	} else {
		b.WriteString("  ")
	}
	for i, c := range g.cells {
		b.WriteString(pad(g.renderCell(s, r, c, selected && c.id == current, query), c.w))
		if i < len(g.cells)-1 {
			b.WriteString(strings.Repeat(" ", gridSeparator))
		}
	}
	return b.String()
}

func (g *grid) renderCell(s styles, r tableview.Row, c gridCell, selected bool, query string) string {
	if c.id == tableview.ActionsColumn {
		style := s.statusHint
		if selected {
			style = s.cellActive
		}
		return style.Render(coltype.Truncate("+ add  − del", c.w))
	}
	def := g.ctrl.Type(c.id)
	if def == nil {
		return ""
	}
	args := g.ctrl.CellArgs(r, c.id, nil)
	args.Highlight = query
	args.Width = c.w
	args.Selected = selected
	out := def.RenderCell(args)
	if selected && lipgloss.Width(out) == 0 {
		out = s.cellActive.Render(" ")
	}
	return out
}

func (g *grid) summaryLine(s styles) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridGutter))
	for i, c := range g.cells {
		text := ""
		if v, ok := g.ctrl.Summary(c.id); ok {
			text = g.ctrl.Aggregate(c.id).Label() + " " + v
		}
		b.WriteString(pad(s.summary.Render(coltype.Truncate(text, c.w)), c.w))
		if i < len(g.cells)-1 {
			b.WriteString(strings.Repeat(" ", gridSeparator))
		}
	}
	return b.String()
}

// pad right-fills a rendered cell to w display cells.
func pad(rendered string, w int) string {
	if n := lipgloss.Width(rendered); n < w {
		return rendered + strings.Repeat(" ", w-n)
	}
	return rendered
}
