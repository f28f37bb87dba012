package tableview

import (
	"encoding/json"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// Snapshot is the whole view state of a table: the persisted prefs plus the
// session state (filters, query, sort, group, aggregates, widths). Saved
// views store it as their config.
type Snapshot struct {
	Prefs
	Filters    map[string]string    `json:"filters,omitempty"`
	Query      string               `json:"query,omitempty"`
	Sort       *SortState           `json:"sort,omitempty"`
	Group      string               `json:"group,omitempty"`
	Aggregates map[string]Aggregate `json:"aggregates,omitempty"`
	Widths     map[string]int       `json:"widths,omitempty"`
}

// SortState is the JSON form of an explicit sort.
type SortState struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Snapshot captures the current view state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Prefs:   c.Prefs(),
		Filters: c.Filters(),
		Query:   c.query,
		Group:   c.group,
	}
	if c.sort != nil {
		s.Sort = &SortState{Column: c.sort.Column, Direction: c.sort.Direction.String()}
	}
	if len(c.aggregates) > 0 {
		s.Aggregates = make(map[string]Aggregate, len(c.aggregates))
		for id, a := range c.aggregates {
			s.Aggregates[id] = a
		}
	}
	if len(c.widths) > 0 {
		s.Widths = make(map[string]int, len(c.widths))
		for id, w := range c.widths {
			s.Widths[id] = w
		}
	}
	return s
}

// ApplySnapshot replaces the view state with s. Entries naming unknown
// columns or operators a column's kind does not support are dropped. The
// persisted part is saved like any other change.
func (c *Controller) ApplySnapshot(s Snapshot) {
	c.order = Normalize(s.Order, c.known)
	c.hidden = map[string]bool{}
	for _, id := range s.Hidden {
		if c.hideable(id) {
			c.hidden[id] = true
		}
	}
	c.labels = map[string]string{}
	for id, label := range s.Labels {
		if c.has(id) {
			c.setLabel(id, label)
		}
	}
	c.pinned = ""
	if s.Pinned != nil {
		c.pinned = *s.Pinned
	}
	c.enforcePin()

	c.filters = map[string]string{}
	for id, text := range s.Filters {
		c.SetFilter(id, text)
	}
	c.query = s.Query
	c.sort = nil
	if s.Sort != nil {
		dir := Ascending
		if s.Sort.Direction == Descending.String() {
			dir = Descending
		}
		c.SetSort(s.Sort.Column, dir)
	}
	c.ClearGroup()
	if s.Group != "" {
		c.SetGroup(s.Group)
	}
	c.aggregates = map[string]Aggregate{}
	for id, a := range s.Aggregates {
		if def := c.types[id]; def != nil && aggregateAllowed(def.Kind(), a) {
			c.SetAggregate(id, a)
		}
	}
	c.widths = map[string]int{}
	for id, w := range s.Widths {
		c.SetWidth(id, w)
	}
	c.CancelDrag()
	c.persist()
}

// DecodeSnapshot parses a saved view config. Anything that is not a JSON
// object is an empty snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, trackerrors.NewLoadError("view config is not a JSON object", err)
	}
	return s, nil
}
