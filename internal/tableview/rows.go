package tableview

import (
	"sort"
	"strings"
	"time"

	"github.com/bekirdag/jobtracker/internal/coltype"
)

// EmptyGroup is the group key of rows with a blank group value.
const EmptyGroup = "(Empty)"

// Direction is the sort sign.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort is the explicit sort.
type Sort struct {
	Column    string
	Direction Direction
}

// SetFilter sets the free-text filter of a column; blank text clears it.
func (c *Controller) SetFilter(id, text string) {
	if !c.has(id) {
		return
	}
	if strings.TrimSpace(text) == "" {
		delete(c.filters, id)
		return
	}
	c.filters[id] = text
}

func (c *Controller) Filter(id string) string { return c.filters[id] }

// Filters returns a copy of the active column filters.
func (c *Controller) Filters() map[string]string {
	out := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		out[k] = v
	}
	return out
}

func (c *Controller) ClearFilters() { c.filters = map[string]string{} }

// SetQuery sets the global query matched against every cell of a row.
func (c *Controller) SetQuery(q string) { c.query = q }

func (c *Controller) Query() string { return c.query }

func (c *Controller) SetSort(id string, dir Direction) bool {
	if !c.has(id) || id == ActionsColumn {
		return false
	}
	if dir != Descending {
		dir = Ascending
	}
	c.sort = &Sort{Column: id, Direction: dir}
	return true
}

func (c *Controller) ClearSort() { c.sort = nil }

// Sort returns the explicit sort, if any.
func (c *Controller) Sort() (Sort, bool) {
	if c.sort == nil {
		return Sort{}, false
	}
	return *c.sort, true
}

// SetGroup groups rows by id. Changing the group column expands every group.
func (c *Controller) SetGroup(id string) bool {
	if !c.has(id) || id == ActionsColumn {
		return false
	}
	if c.group != id {
		c.collapsed = map[string]bool{}
	}
	c.group = id
	return true
}

func (c *Controller) ClearGroup() {
	c.group = ""
	c.collapsed = map[string]bool{}
}

func (c *Controller) Group() string { return c.group }

// ToggleGroup flips the collapsed state of a group and reports the new state.
func (c *Controller) ToggleGroup(key string) bool {
	k := c.groupID(key)
	if c.collapsed[k] {
		delete(c.collapsed, k)
		return false
	}
	c.collapsed[k] = true
	return true
}

func (c *Controller) IsCollapsed(key string) bool { return c.collapsed[c.groupID(key)] }

func (c *Controller) groupID(key string) string { return c.fold.String(key) }

func (c *Controller) folded(s string) string { return c.fold.String(s) }

// matches applies column filters and the global query.
func (c *Controller) matches(r Row) bool {
	for id, f := range c.filters {
		needle := c.folded(strings.TrimSpace(f))
		if needle == "" {
			continue
		}
		if !strings.Contains(c.folded(c.Text(r, id)), needle) {
			return false
		}
	}
	needle := c.folded(strings.TrimSpace(c.query))
	if needle == "" {
		return true
	}
	return strings.Contains(c.folded(c.searchText(r)), needle)
}

func (c *Controller) searchText(r Row) string {
	parts := make([]string, 0, len(c.known)+1)
	for _, id := range c.known {
		if t := c.Text(r, id); t != "" {
			parts = append(parts, t)
		}
	}
	if extra, ok := r.(SearchExtras); ok {
		parts = append(parts, extra.SearchExtras()...)
	}
	return strings.Join(parts, " ")
}

type sortable struct {
	row   Row
	date  time.Time
	dated bool
	text  string
	tie   string
	group string
}

// FilteredRows returns the rows that pass filters and query, sorted and
// grouped, collapsed groups included.
func (c *Controller) FilteredRows() []Row {
	items := c.sorted()
	out := make([]Row, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out
}

func (c *Controller) sorted() []sortable {
	items := make([]sortable, 0, len(c.rows))
	for _, r := range c.rows {
		if c.matches(r) {
			items = append(items, sortable{row: r})
		}
	}
	switch {
	case c.sort != nil:
		c.sortExplicit(items)
	case c.defaultDate != "":
		c.sortDefault(items)
	}
	if c.group != "" {
		c.sortGroups(items)
	}
	return items
}

// compareDates orders missing dates last in either direction.
func compareDates(a, b sortable, dir Direction) (int, bool) {
	switch {
	case !a.dated && !b.dated:
		return 0, false
	case !a.dated:
		return 1, true
	case !b.dated:
		return -1, true
	}
	switch {
	case a.date.Before(b.date):
		return -1 * int(dir), true
	case a.date.After(b.date):
		return int(dir), true
	}
	return 0, false
}

func (c *Controller) dateOf(r Row, id string) (time.Time, bool) {
	return coltype.ParseTime(c.Text(r, id))
}

func (c *Controller) sortDefault(items []sortable) {
	for i := range items {
		items[i].date, items[i].dated = c.dateOf(items[i].row, c.defaultDate)
		if c.defaultTie != "" {
			items[i].tie = c.Text(items[i].row, c.defaultTie)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if cmp, decided := compareDates(items[i], items[j], Ascending); decided {
			return cmp < 0
		}
		return c.localeOrder.CompareString(items[i].tie, items[j].tie) < 0
	})
}

func (c *Controller) sortExplicit(items []sortable) {
	s := *c.sort
	def := c.types[s.Column]
	if def != nil && def.Kind() == coltype.KindDate {
		for i := range items {
			items[i].date, items[i].dated = c.dateOf(items[i].row, s.Column)
		}
		sort.SliceStable(items, func(i, j int) bool {
			cmp, _ := compareDates(items[i], items[j], s.Direction)
			return cmp < 0
		})
		return
	}
	for i := range items {
		items[i].text = c.folded(c.Text(items[i].row, s.Column))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.Compare(items[i].text, items[j].text)*int(s.Direction) < 0
	})
}

func (c *Controller) groupKey(r Row) string {
	v := strings.TrimSpace(c.Text(r, c.group))
	if v == "" {
		return EmptyGroup
	}
	return v
}

func (c *Controller) sortGroups(items []sortable) {
	for i := range items {
		items[i].group = c.groupKey(items[i].row)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].group, items[j].group
		if (a == EmptyGroup) != (b == EmptyGroup) {
			return b == EmptyGroup
		}
		return c.groupOrder.CompareString(a, b) < 0
	})
}

// GroupHeader describes one group in the display.
type GroupHeader struct {
	Key       string
	Count     int
	Collapsed bool
}

// Item is one line of the display: a group header or a row.
type Item struct {
	Header *GroupHeader
	Row    Row
}

func (i Item) IsHeader() bool { return i.Header != nil }

// Display returns group headers and visible rows in order. Headers of
// collapsed groups are kept with their member count.
func (c *Controller) Display() []Item {
	items := c.sorted()
	if c.group == "" {
		out := make([]Item, len(items))
		for i, it := range items {
			out[i] = Item{Row: it.row}
		}
		return out
	}
	var out []Item
	var header *GroupHeader
	for idx, it := range items {
		if idx == 0 || c.groupID(it.group) != c.groupID(items[idx-1].group) {
			header = &GroupHeader{Key: it.group, Collapsed: c.IsCollapsed(it.group)}
			out = append(out, Item{Header: header})
		}
		header.Count++
		if !header.Collapsed {
			out = append(out, Item{Row: it.row})
		}
	}
	return out
}

// DisplayedRows returns the rows currently on screen: filtered, sorted and
// not inside a collapsed group.
func (c *Controller) DisplayedRows() []Row {
	var out []Row
	for _, it := range c.Display() {
		if it.Row != nil {
			out = append(out, it.Row)
		}
	}
	return out
}
