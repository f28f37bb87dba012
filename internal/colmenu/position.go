package colmenu

// Rect is an anchor in terminal cells.
type Rect struct {
	X, Y, W, H int
}

type Size struct {
	W, H int
}

type Point struct {
	X, Y int
}

// Position returns the menu's top-left corner.
func (m *Menu) Position() Point { return m.pos }

// Flipped reports whether the menu opens above its anchor.
func (m *Menu) Flipped() bool { return m.flipped }

// Dimensions returns the menu size for the current state.
func (m *Menu) Dimensions() Size {
	return Size{W: m.width, H: len(m.Entries()) + m.chrome}
}

// Reposition recomputes the placement after a resize or scroll.
func (m *Menu) Reposition(anchor Rect, viewport Size) {
	if m.state == Closed {
		return
	}
	m.anchor = anchor
	m.viewport = viewport
	m.place()
}

// place opens below the anchor unless the menu does not fit there and the
// space above is larger, then clamps into the viewport minus the gutter.
func (m *Menu) place() {
	size := m.Dimensions()
	below := m.anchor.Y + m.anchor.H
	spaceBelow := m.viewport.H - m.gutter - below
	spaceAbove := m.anchor.Y - m.gutter

	y := below
	m.flipped = false
	if size.H > spaceBelow && spaceAbove > spaceBelow {
		y = m.anchor.Y - size.H
		m.flipped = true
	}
	m.pos = Point{
		X: clampAxis(m.anchor.X, size.W, m.viewport.W, m.gutter),
		Y: clampAxis(y, size.H, m.viewport.H, m.gutter),
	}
}

func clampAxis(v, extent, total, gutter int) int {
	hi := total - gutter - extent
	if v > hi {
		v = hi
	}
	if v < gutter {
		v = gutter
	}
	return v
}
