// Package colmenu is the state machine behind a column's context menu:
// submenu navigation, keyboard highlight, anchored placement, the rename and
// filter drafts and the reveal animation. It renders nothing; the host draws
// Entries at Position.
package colmenu

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// State is the menu's navigation position.
type State int

const (
	Closed State = iota
	Root
	TypeMenu
	FilterMenu
	SortMenu
	GroupMenu
	CalculateMenu
)

var stateNames = map[State]string{
	Closed:        "closed",
	Root:          "root",
	TypeMenu:      "type",
	FilterMenu:    "filter",
	SortMenu:      "sort",
	GroupMenu:     "group",
	CalculateMenu: "calculate",
}

func (s State) String() string { return stateNames[s] }

// ExitDelay is how long a closing menu stays interactive before the host
// calls FinalizeClose.
const ExitDelay = 150 * time.Millisecond

// Target is the view state the menu edits. *tableview.Controller satisfies it.
type Target interface {
	Column(id string) (tableview.ColumnSpec, bool)
	Label(id string) string
	SetLabel(id, label string) bool
	Type(id string) coltype.ColumnType
	SetColumnType(id, typeID string) error
	Filter(id string) string
	SetFilter(id, text string)
	Sort() (tableview.Sort, bool)
	SetSort(id string, dir tableview.Direction) bool
	ClearSort()
	Group() string
	SetGroup(id string) bool
	ClearGroup()
	Aggregate(id string) tableview.Aggregate
	SetAggregate(id string, a tableview.Aggregate) bool
	Pinned() string
	Pin(id string) bool
	Unpin() bool
	Hide(id string) bool
	FitWidth(id string) int
}

// Option configures a Menu.
type Option func(*Menu)

// WithGutter sets the margin kept between the menu and the viewport edge.
func WithGutter(g int) Option {
	return func(m *Menu) { m.gutter = g }
}

// WithSize sets the menu width and the rows added around its entries.
func WithSize(width, chrome int) Option {
	return func(m *Menu) {
		m.width = width
		m.chrome = chrome
	}
}

func WithRegistry(r *coltype.Registry) Option {
	return func(m *Menu) { m.registry = r }
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Menu) { m.log = logger.OrDiscard(log) }
}

// Menu is one context menu. Only one column is targeted at a time.
type Menu struct {
	target   Target
	registry *coltype.Registry
	log      *slog.Logger

	state     State
	column    string
	highlight int

	renameDraft string
	filterDraft string

	anchor   Rect
	viewport Size
	pos      Point
	flipped  bool
	gutter   int
	width    int
	chrome   int

	closing bool
	token   uint64

	spring   harmonica.Spring
	reveal   float64
	velocity float64
	visible  bool
}

func New(target Target, opts ...Option) *Menu {
	m := &Menu{
		target:   target,
		registry: coltype.Default(),
		log:      logger.Discard(),
		gutter:   8,
		width:    28,
		chrome:   2,
		spring:   harmonica.NewSpring(harmonica.FPS(60), 8.0, 1.0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Menu) State() State { return m.state }
func (m *Menu) Column() string { return m.column }
func (m *Menu) IsOpen() bool { return m.state != Closed }
func (m *Menu) Closing() bool { return m.closing }
func (m *Menu) Highlight() int { return m.highlight }
func (m *Menu) RenameDraft() string { return m.renameDraft }
func (m *Menu) FilterDraft() string { return m.filterDraft }

// Open targets column and shows the root menu below anchor. Opening while a
// close is pending cancels the close. A pending rename draft is committed
// first, whichever column is opened.
func (m *Menu) Open(column string, anchor Rect, viewport Size) {
	if m.state != Closed {
		m.commitRename()
	}
	m.token++
	m.closing = false
	m.column = column
	m.state = Root
	m.renameDraft = m.target.Label(column)
	m.filterDraft = m.target.Filter(column)
	m.anchor = anchor
	m.viewport = viewport
	m.reveal, m.velocity, m.visible = 0, 0, false
	m.highlight = m.firstSelectable()
	m.place()
	m.log.Debug("column menu opened", "column", column)
}

// Close starts the exit. The rename draft is committed and the filter draft
// dropped; writes already applied stay. The returned token is handed back to
// FinalizeClose after ExitDelay.
func (m *Menu) Close() uint64 {
	if m.state == Closed {
		return m.token
	}
	m.commitRename()
	m.filterDraft = ""
	m.closing = true
	m.token++
	return m.token
}

// FinalizeClose completes the close started with token unless the menu was
// reopened since.
func (m *Menu) FinalizeClose(token uint64) bool {
	if !m.closing || token != m.token {
		return false
	}
	m.closing = false
	m.state = Closed
	m.column = ""
	m.highlight = 0
	m.reveal, m.velocity, m.visible = 0, 0, false
	return true
}

// Enter switches to a submenu. Every submenu except filter replays the
// reveal animation.
func (m *Menu) Enter(s State) bool {
	if m.state == Closed || s == Closed || s == Root {
		return false
	}
	if !m.submenuAvailable(s) {
		return false
	}
	m.commitRename()
	m.state = s
	if s == FilterMenu {
		m.filterDraft = m.target.Filter(m.column)
	} else {
		m.reveal, m.velocity, m.visible = 0, 0, false
	}
	m.highlight = m.firstSelectable()
	m.place()
	return true
}

// Back returns from a submenu to the root.
func (m *Menu) Back() bool {
	if m.state == Closed || m.state == Root {
		return false
	}
	m.state = Root
	m.renameDraft = m.target.Label(m.column)
	m.highlight = m.firstSelectable()
	m.place()
	return true
}

// SetRenameDraft updates the uncommitted label.
func (m *Menu) SetRenameDraft(s string) { m.renameDraft = s }

// CommitRename applies the rename draft. A blank draft reverts to the
// effective label instead of committing.
func (m *Menu) CommitRename() bool { return m.commitRename() }

func (m *Menu) commitRename() bool {
	if m.column == "" {
		return false
	}
	if strings.TrimSpace(m.renameDraft) == "" {
		m.renameDraft = m.target.Label(m.column)
		return false
	}
	changed := m.target.SetLabel(m.column, m.renameDraft)
	m.renameDraft = m.target.Label(m.column)
	return changed
}

// SetFilterDraft writes the filter through to the target on every keystroke.
func (m *Menu) SetFilterDraft(s string) {
	if m.state == Closed {
		return
	}
	m.filterDraft = s
	m.target.SetFilter(m.column, s)
}

// InputFocused reports whether the highlighted entry is a text input.
func (m *Menu) InputFocused() bool {
	entries := m.Entries()
	if m.highlight < 0 || m.highlight >= len(entries) {
		return false
	}
	return entries[m.highlight].Input
}

// Step advances the reveal spring by one frame.
func (m *Menu) Step() {
	if m.state == Closed {
		return
	}
	target := 1.0
	if m.closing {
		target = 0
	}
	m.reveal, m.velocity = m.spring.Update(m.reveal, m.velocity, target)
	switch {
	case !m.closing && m.reveal >= 0.99:
		m.reveal, m.velocity, m.visible = 1, 0, true
	case m.closing && m.reveal <= 0.01:
		m.reveal, m.velocity = 0, 0
	}
}

// Visible reports whether the reveal animation finished.
func (m *Menu) Visible() bool { return m.visible }

// Reveal is the animation progress in [0, 1].
func (m *Menu) Reveal() float64 {
	if m.reveal < 0 {
		return 0
	}
	if m.reveal > 1 {
		return 1
	}
	return m.reveal
}

// Animating reports whether Step still has work to do.
func (m *Menu) Animating() bool {
	if m.state == Closed {
		return false
	}
	if m.closing {
		return m.reveal > 0
	}
	return !m.visible
}
