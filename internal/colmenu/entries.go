package colmenu

import (
	"fmt"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// Entry ids of fixed menu entries. Submenu choices use the prefixes below.
const (
	EntryRename      = "rename"
	EntryType        = "type"
	EntryFilter      = "filter"
	EntrySort        = "sort"
	EntryGroup       = "group"
	EntryCalculate   = "calculate"
	EntryPin         = "pin"
	EntryUnpin       = "unpin"
	EntryHide        = "hide"
	EntryFit         = "fit"
	EntryFilterInput = "filter.input"
	EntryFilterClear = "filter.clear"
	EntrySortAsc     = "sort.asc"
	EntrySortDesc    = "sort.desc"
	EntrySortClear   = "sort.clear"
	EntryGroupSet    = "group.set"
	EntryGroupClear  = "group.clear"

	typePrefix = "type:"
	aggPrefix  = "agg:"
)

// Entry is one line of the menu.
type Entry struct {
	ID        string
	Label     string
	Submenu   State
	Separator bool
	Input     bool
	Checked   bool
	Disabled  bool
}

func (e Entry) selectable() bool { return !e.Separator && !e.Disabled }

var separator = Entry{Separator: true}

// Entries lists the current state's entries.
func (m *Menu) Entries() []Entry {
	switch m.state {
	case Root:
		return m.rootEntries()
	case TypeMenu:
		return m.typeEntries()
	case FilterMenu:
		return []Entry{
			{ID: EntryFilterInput, Label: "Contains", Input: true},
			{ID: EntryFilterClear, Label: "Clear filter", Disabled: m.target.Filter(m.column) == ""},
		}
	case SortMenu:
		s, sorted := m.target.Sort()
		mine := sorted && s.Column == m.column
		return []Entry{
			{ID: EntrySortAsc, Label: "Ascending", Checked: mine && s.Direction == tableview.Ascending},
			{ID: EntrySortDesc, Label: "Descending", Checked: mine && s.Direction == tableview.Descending},
			separator,
			{ID: EntrySortClear, Label: "Clear sort", Disabled: !sorted},
		}
	case GroupMenu:
		group := m.target.Group()
		return []Entry{
			{ID: EntryGroupSet, Label: "Group by this column", Checked: group == m.column},
			{ID: EntryGroupClear, Label: "Remove grouping", Disabled: group == ""},
		}
	case CalculateMenu:
		return m.calculateEntries()
	}
	return nil
}

func (m *Menu) isActions() bool { return m.column == tableview.ActionsColumn }

func (m *Menu) typeEditable() bool {
	spec, ok := m.target.Column(m.column)
	return ok && spec.TypeEditable
}

func (m *Menu) submenuAvailable(s State) bool {
	for _, e := range m.rootEntries() {
		if e.Submenu == s && e.selectable() {
			return true
		}
	}
	return false
}

func (m *Menu) rootEntries() []Entry {
	entries := []Entry{{ID: EntryRename, Label: "Rename", Input: true}, separator}
	if m.isActions() {
		return append(entries, Entry{ID: EntryFit, Label: "Fit width"})
	}
	if m.typeEditable() {
		entries = append(entries, Entry{ID: EntryType, Label: "Type", Submenu: TypeMenu})
	}
	filterLabel := "Filter"
	if f := m.target.Filter(m.column); f != "" {
		filterLabel = fmt.Sprintf("Filter: %s", f)
	}
	entries = append(entries,
		Entry{ID: EntryFilter, Label: filterLabel, Submenu: FilterMenu},
		Entry{ID: EntrySort, Label: "Sort", Submenu: SortMenu},
		Entry{ID: EntryGroup, Label: "Group", Submenu: GroupMenu},
		Entry{ID: EntryCalculate, Label: "Calculate", Submenu: CalculateMenu},
		separator,
	)
	if m.target.Pinned() == m.column {
		entries = append(entries, Entry{ID: EntryUnpin, Label: "Unpin"})
	} else {
		entries = append(entries, Entry{ID: EntryPin, Label: "Pin to start"})
	}
	return append(entries,
		Entry{ID: EntryHide, Label: "Hide"},
		Entry{ID: EntryFit, Label: "Fit width"},
	)
}

func (m *Menu) typeEntries() []Entry {
	current := ""
	if def := m.target.Type(m.column); def != nil {
		current = def.ID()
	}
	var entries []Entry
	for _, def := range m.registry.Types() {
		entries = append(entries, Entry{
			ID:      typePrefix + def.ID(),
			Label:   typeLabel(def),
			Checked: def.ID() == current,
		})
	}
	return entries
}

func typeLabel(def coltype.ColumnType) string {
	return fmt.Sprintf("%s (%s)", coltype.Family(def.ID()), def.Kind())
}

func (m *Menu) calculateEntries() []Entry {
	kind := coltype.KindText
	if def := m.target.Type(m.column); def != nil {
		kind = def.Kind()
	}
	current := m.target.Aggregate(m.column)
	var entries []Entry
	for _, a := range tableview.AggregatesFor(kind) {
		entries = append(entries, Entry{
			ID:      aggPrefix + string(a),
			Label:   a.Label(),
			Checked: a == current,
		})
	}
	return entries
}

func (m *Menu) firstSelectable() int {
	for i, e := range m.Entries() {
		if e.selectable() {
			return i
		}
	}
	return 0
}
