package colmenu

import (
	"strings"

	"github.com/bekirdag/jobtracker/internal/tableview"
)

// Key is a navigation key the host forwards to the menu.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
	KeyEscape
)

// Result reports what a key or activation did.
type Result struct {
	Handled bool
	// Closing is set when the menu started closing; the host schedules
	// FinalizeClose(Token) after ExitDelay.
	Closing bool
	Token   uint64
	Err     error
	Notice  string
}

// HandleKey applies the keyboard contract. inputConsumed is true when a
// focused text input already handled the key; such keys are ignored here.
func (m *Menu) HandleKey(k Key, inputConsumed bool) Result {
	if m.state == Closed || inputConsumed {
		return Result{}
	}
	switch k {
	case KeyUp:
		m.move(-1)
	case KeyDown:
		m.move(1)
	case KeyEnter, KeySpace:
		return m.Activate()
	case KeyRight:
		entries := m.Entries()
		if m.highlight < 0 || m.highlight >= len(entries) || entries[m.highlight].Submenu == Closed {
			return Result{}
		}
		m.Enter(entries[m.highlight].Submenu)
	case KeyLeft:
		if !m.Back() {
			return Result{}
		}
	case KeyEscape:
		return Result{Handled: true, Closing: true, Token: m.Close()}
	default:
		return Result{}
	}
	return Result{Handled: true}
}

// move shifts the highlight, skipping separators and disabled entries and
// wrapping at both ends. Leaving the rename entry commits the draft.
func (m *Menu) move(delta int) {
	entries := m.Entries()
	n := len(entries)
	if n == 0 {
		return
	}
	from := m.highlight
	i := from
	for step := 0; step < n; step++ {
		i = ((i+delta)%n + n) % n
		if entries[i].selectable() {
			break
		}
	}
	if !entries[i].selectable() {
		return
	}
	if from >= 0 && from < n && entries[from].ID == EntryRename && i != from {
		m.commitRename()
	}
	m.highlight = i
}

// SetHighlight moves the highlight to index if it is selectable.
func (m *Menu) SetHighlight(index int) bool {
	entries := m.Entries()
	if index < 0 || index >= len(entries) || !entries[index].selectable() {
		return false
	}
	if m.highlight >= 0 && m.highlight < len(entries) && entries[m.highlight].ID == EntryRename && index != m.highlight {
		m.commitRename()
	}
	m.highlight = index
	return true
}

// Activate runs the highlighted entry.
func (m *Menu) Activate() Result {
	entries := m.Entries()
	if m.state == Closed || m.highlight < 0 || m.highlight >= len(entries) {
		return Result{}
	}
	e := entries[m.highlight]
	if !e.selectable() {
		return Result{}
	}
	if e.Submenu != Closed {
		return Result{Handled: m.Enter(e.Submenu)}
	}
	return m.run(e.ID)
}

// run executes a leaf entry. Leaf choices other than rename and the filter
// entries close the menu.
func (m *Menu) run(id string) Result {
	col := m.column
	switch {
	case id == EntryRename:
		changed := m.commitRename()
		return Result{Handled: true, Notice: noticeIf(changed, "Renamed column to "+m.target.Label(col))}
	case id == EntryFilterInput:
		return Result{Handled: true}
	case id == EntryFilterClear:
		m.filterDraft = ""
		m.target.SetFilter(col, "")
		return Result{Handled: true}
	case id == EntrySortAsc:
		m.target.SetSort(col, tableview.Ascending)
	case id == EntrySortDesc:
		m.target.SetSort(col, tableview.Descending)
	case id == EntrySortClear:
		m.target.ClearSort()
	case id == EntryGroupSet:
		m.target.SetGroup(col)
	case id == EntryGroupClear:
		m.target.ClearGroup()
	case id == EntryPin:
		if !m.target.Pin(col) {
			return Result{Handled: true, Notice: "Column cannot be pinned"}
		}
	case id == EntryUnpin:
		m.target.Unpin()
	case id == EntryHide:
		m.target.Hide(col)
	case id == EntryFit:
		m.target.FitWidth(col)
	case strings.HasPrefix(id, typePrefix):
		if err := m.target.SetColumnType(col, strings.TrimPrefix(id, typePrefix)); err != nil {
			m.log.Warn("column type change rejected", "column", col, "err", err)
			return Result{Handled: true, Err: err}
		}
	case strings.HasPrefix(id, aggPrefix):
		m.target.SetAggregate(col, tableview.Aggregate(strings.TrimPrefix(id, aggPrefix)))
	default:
		return Result{}
	}
	return Result{Handled: true, Closing: true, Token: m.Close()}
}

func noticeIf(ok bool, msg string) string {
	if ok {
		return msg
	}
	return ""
}
