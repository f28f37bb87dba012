package tableview

import "strings"

// Normalize filters order to known ids, drops duplicates keeping the first
// occurrence and appends the missing ids in their default order. The actions
// column always ends up last. The result is a permutation of known.
func Normalize(order, known []string) []string {
	isKnown := make(map[string]bool, len(known))
	hasActions := false
	for _, id := range known {
		isKnown[id] = true
		if id == ActionsColumn {
			hasActions = true
		}
	}
	out := make([]string, 0, len(known))
	seen := make(map[string]bool, len(known))
	add := func(id string) {
		if !isKnown[id] || seen[id] || id == ActionsColumn {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range order {
		add(id)
	}
	for _, id := range known {
		add(id)
	}
	if hasActions {
		out = append(out, ActionsColumn)
	}
	return out
}

// Order returns every column id in display order, hidden ones included.
func (c *Controller) Order() []string {
	return append([]string(nil), c.order...)
}

// SetOrder replaces the order after normalizing it.
func (c *Controller) SetOrder(order []string) {
	next := Normalize(order, c.known)
	if equalStrings(next, c.order) {
		return
	}
	c.order = next
	c.enforcePin()
	c.persist()
}

// VisibleColumns returns the displayed column ids in order.
func (c *Controller) VisibleColumns() []string {
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if id == ActionsColumn || !c.hidden[id] {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) hideable(id string) bool {
	return c.has(id) && id != ActionsColumn
}

func (c *Controller) IsHidden(id string) bool { return c.hidden[id] }

// HiddenColumns lists hidden ids sorted.
func (c *Controller) HiddenColumns() []string { return sortedKeys(c.hidden) }

// Hide hides id. Hiding the pinned column clears the pin.
func (c *Controller) Hide(id string) bool {
	if !c.hideable(id) || c.hidden[id] {
		return false
	}
	c.hidden[id] = true
	if c.pinned == id {
		c.pinned = ""
	}
	c.persist()
	return true
}

func (c *Controller) Show(id string) bool {
	if !c.hidden[id] {
		return false
	}
	delete(c.hidden, id)
	c.persist()
	return true
}

func (c *Controller) ToggleHidden(id string) bool {
	if c.hidden[id] {
		return c.Show(id)
	}
	return c.Hide(id)
}

// ShowAll clears the hidden set.
func (c *Controller) ShowAll() bool {
	if len(c.hidden) == 0 {
		return false
	}
	c.hidden = map[string]bool{}
	c.persist()
	return true
}

// Pinned returns the pinned column id or "".
func (c *Controller) Pinned() string { return c.pinned }

// Pin moves id to the front and keeps it there. Hidden columns and the
// actions column cannot be pinned.
func (c *Controller) Pin(id string) bool {
	if !c.hideable(id) || c.hidden[id] {
		return false
	}
	if c.pinned == id && len(c.order) > 0 && c.order[0] == id {
		return false
	}
	c.pinned = id
	c.enforcePin()
	c.persist()
	return true
}

func (c *Controller) Unpin() bool {
	if c.pinned == "" {
		return false
	}
	c.pinned = ""
	c.persist()
	return true
}

// enforcePin re-applies the pin invariant after order or visibility change.
func (c *Controller) enforcePin() {
	if c.pinned == "" {
		return
	}
	if !c.hideable(c.pinned) || c.hidden[c.pinned] {
		c.pinned = ""
		return
	}
	if c.order[0] == c.pinned {
		return
	}
	next := make([]string, 0, len(c.order))
	next = append(next, c.pinned)
	for _, id := range c.order {
		if id != c.pinned {
			next = append(next, id)
		}
	}
	c.order = next
}

// MoveColumn places id immediately before beforeID; an empty beforeID moves
// it to the end. The pinned column stays first.
func (c *Controller) MoveColumn(id, beforeID string) bool {
	if !c.hideable(id) || id == beforeID || id == c.pinned {
		return false
	}
	if beforeID != "" && !c.has(beforeID) {
		return false
	}
	next := make([]string, 0, len(c.order))
	for _, other := range c.order {
		if other == id {
			continue
		}
		if other == beforeID {
			next = append(next, id)
		}
		next = append(next, other)
	}
	if beforeID == "" {
		next = append(next, id)
	}
	next = Normalize(next, c.known)
	if equalStrings(next, c.order) {
		return false
	}
	c.order = next
	c.enforcePin()
	c.persist()
	return true
}

// Shift moves id past its nearest visible neighbor; delta < 0 moves left.
func (c *Controller) Shift(id string, delta int) bool {
	visible := c.VisibleColumns()
	pos := indexOf(visible, id)
	if pos < 0 || delta == 0 {
		return false
	}
	if delta < 0 {
		if pos == 0 {
			return false
		}
		return c.MoveColumn(id, visible[pos-1])
	}
	if pos+1 >= len(visible) || visible[pos+1] == ActionsColumn {
		return false
	}
	if pos+2 < len(visible) {
		return c.MoveColumn(id, visible[pos+2])
	}
	return c.MoveColumn(id, "")
}

type dragState struct {
	source string
	over   string
}

// BeginDrag starts a header drag of id.
func (c *Controller) BeginDrag(id string) bool {
	if !c.hideable(id) || id == c.pinned {
		return false
	}
	c.drag = dragState{source: id}
	return true
}

// DragOver records the column the dragged header is over.
func (c *Controller) DragOver(id string) {
	if c.drag.source == "" || !c.has(id) {
		return
	}
	c.drag.over = id
}

// Dragging reports the drag in progress.
func (c *Controller) Dragging() (source, over string, ok bool) {
	return c.drag.source, c.drag.over, c.drag.source != ""
}

// Drop moves the dragged column before the column it is over.
func (c *Controller) Drop() bool {
	d := c.drag
	c.drag = dragState{}
	if d.source == "" || d.over == "" || d.over == d.source {
		return false
	}
	return c.MoveColumn(d.source, d.over)
}

func (c *Controller) CancelDrag() { c.drag = dragState{} }

// Label returns the effective label of id.
func (c *Controller) Label(id string) string {
	if l, ok := c.labels[id]; ok {
		return l
	}
	if spec, ok := c.Column(id); ok {
		return spec.Label
	}
	return id
}

// DefaultLabel returns the label of id before overrides.
func (c *Controller) DefaultLabel(id string) string {
	if spec, ok := c.Column(id); ok {
		return spec.Label
	}
	return id
}

// SetLabel overrides the label of id. A blank label or the default label
// removes the override.
func (c *Controller) SetLabel(id, label string) bool {
	if !c.has(id) {
		return false
	}
	if !c.setLabel(id, label) {
		return false
	}
	c.persist()
	return true
}

func (c *Controller) setLabel(id, label string) bool {
	label = strings.TrimSpace(label)
	prev, had := c.labels[id]
	if label == "" || label == c.DefaultLabel(id) {
		if !had {
			return false
		}
		delete(c.labels, id)
		return true
	}
	if had && prev == label {
		return false
	}
	c.labels[id] = label
	return true
}

func indexOf(list []string, id string) int {
	for i, s := range list {
		if s == id {
			return i
		}
	}
	return -1
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
