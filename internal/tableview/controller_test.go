package tableview

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/options"
	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

type testRow struct {
	cells   map[string]string
	extras  []string
	commits int
	failErr error
}

func row(kv ...string) *testRow {
	r := &testRow{cells: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.cells[kv[i]] = kv[i+1]
	}
	return r
}

func (r *testRow) Cell(id string) string { return r.cells[id] }

func (r *testRow) Commit(id, raw string) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.cells[id] = raw
	r.commits++
	return nil
}

func (r *testRow) SearchExtras() []string { return r.extras }

func todoSpecs() []ColumnSpec {
	return []ColumnSpec{
		{ID: "application", Label: "Application", TypeID: coltype.TypeText},
		{ID: "task", Label: "Task", TypeID: coltype.TypeText},
		{ID: "due_date", Label: "Due", TypeID: coltype.TypeDate},
		{ID: "status", Label: "Status", TypeID: coltype.TypeText, TypeEditable: true},
		{ID: ActionsColumn, Label: "", TypeID: coltype.TypeText},
	}
}

func newTestController(t *testing.T, store PreferencesStore, opts ...Option) *Controller {
	t.Helper()
	if store != nil {
		opts = append(opts, WithStore(store))
	}
	c, err := NewController("todo", todoSpecs(), nil, opts...)
	require.NoError(t, err)
	return c
}

func rowsOf(rs ...*testRow) []Row {
	out := make([]Row, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func cellsOf(c *Controller, rows []Row, id string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = c.Text(r, id)
	}
	return out
}

func TestNormalizePersistedOrder(t *testing.T) {
	store := NewMemoryStore()
	store.Put("todo", []byte(`{"order":["status"],"hidden":[],"pinned":null,"labels":{}}`))

	c := newTestController(t, store)
	assert.Equal(t, []string{"status", "application", "task", "due_date", ActionsColumn}, c.Order())
}

func TestNormalize(t *testing.T) {
	known := []string{"a", "b", "c", ActionsColumn}
	tests := map[string]struct {
		in   []string
		want []string
	}{
		"empty":       {in: nil, want: []string{"a", "b", "c", ActionsColumn}},
		"stale ids":   {in: []string{"zz", "c", "yy"}, want: []string{"c", "a", "b", ActionsColumn}},
		"duplicates":  {in: []string{"b", "b", "a", "b"}, want: []string{"b", "a", "c", ActionsColumn}},
		"actions":     {in: []string{ActionsColumn, "c"}, want: []string{"c", "a", "b", ActionsColumn}},
		"permutation": {in: []string{"c", "b", "a"}, want: []string{"c", "b", "a", ActionsColumn}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in, known))
		})
	}
}

func TestHydrateDropsStaleState(t *testing.T) {
	store := NewMemoryStore()
	store.Put("todo", []byte(`{"order":["ghost","task"],"hidden":["actions","ghost","due_date"],"pinned":"due_date","labels":{"task":"To do","ghost":"x","status":"Status"}}`))

	c := newTestController(t, store)
	assert.Equal(t, "task", c.Order()[0])
	assert.Equal(t, []string{"due_date"}, c.HiddenColumns())
	assert.Equal(t, "", c.Pinned(), "a hidden column cannot stay pinned")
	assert.Equal(t, "To do", c.Label("task"))
	assert.Equal(t, "Status", c.Label("status"))
	assert.Equal(t, map[string]string{"task": "To do"}, c.Prefs().Labels)
}

func TestHydrateCorruptPrefs(t *testing.T) {
	store := NewMemoryStore()
	store.Put("todo", []byte(`{"order": 5`))
	c := newTestController(t, store)
	assert.Equal(t, []string{"application", "task", "due_date", "status", ActionsColumn}, c.Order())
}

func TestUnknownColumnType(t *testing.T) {
	_, err := NewController("x", []ColumnSpec{{ID: "a", TypeID: "mystery@1"}}, nil)
	require.Error(t, err)
	assert.True(t, trackerrors.IsUnknownType(err))
}

func TestPinAndHide(t *testing.T) {
	store := NewMemoryStore()
	c := newTestController(t, store)

	require.True(t, c.Pin("due_date"))
	assert.Equal(t, "due_date", c.Order()[0])
	assert.Equal(t, "due_date", c.Pinned())

	require.True(t, c.Hide("due_date"))
	assert.Equal(t, "", c.Pinned())
	assert.NotContains(t, c.VisibleColumns(), "due_date")

	assert.False(t, c.Pin("due_date"), "hidden columns cannot be pinned")
	assert.False(t, c.Pin(ActionsColumn))
	assert.False(t, c.Hide(ActionsColumn))
	assert.Contains(t, c.VisibleColumns(), ActionsColumn)

	prefs, err := store.Load("todo")
	require.NoError(t, err)
	assert.Nil(t, prefs.Pinned)
	assert.Equal(t, []string{"due_date"}, prefs.Hidden)
}

func TestPinSurvivesMoves(t *testing.T) {
	c := newTestController(t, NewMemoryStore())
	require.True(t, c.Pin("status"))
	assert.False(t, c.MoveColumn("status", ActionsColumn), "the pinned column does not move")

	require.True(t, c.MoveColumn("due_date", "status"))
	assert.Equal(t, "status", c.Order()[0])
	assert.Equal(t, "due_date", c.Order()[1])

	c.SetOrder([]string{"task", "status"})
	assert.Equal(t, "status", c.Order()[0])
	require.True(t, c.Unpin())
	assert.Equal(t, "", c.Pinned())
}

func TestMoveColumn(t *testing.T) {
	c := newTestController(t, nil)
	require.True(t, c.MoveColumn("status", "application"))
	assert.Equal(t, []string{"status", "application", "task", "due_date", ActionsColumn}, c.Order())

	require.True(t, c.MoveColumn("status", ""))
	assert.Equal(t, []string{"application", "task", "due_date", "status", ActionsColumn}, c.Order())

	assert.False(t, c.MoveColumn(ActionsColumn, "task"))
	assert.False(t, c.MoveColumn("task", "task"))
	assert.False(t, c.MoveColumn("task", "ghost"))

	require.True(t, c.Shift("task", -1))
	assert.Equal(t, []string{"task", "application", "due_date", "status", ActionsColumn}, c.Order())
	require.True(t, c.Shift("task", 1))
	assert.Equal(t, []string{"application", "task", "due_date", "status", ActionsColumn}, c.Order())
	assert.False(t, c.Shift("status", 1), "nothing but actions to the right")
}

func TestDragReorder(t *testing.T) {
	c := newTestController(t, nil)
	require.True(t, c.BeginDrag("due_date"))
	c.DragOver("application")
	src, over, ok := c.Dragging()
	assert.True(t, ok)
	assert.Equal(t, "due_date", src)
	assert.Equal(t, "application", over)

	require.True(t, c.Drop())
	assert.Equal(t, "due_date", c.Order()[0])
	_, _, ok = c.Dragging()
	assert.False(t, ok)

	require.True(t, c.BeginDrag("task"))
	c.CancelDrag()
	assert.False(t, c.Drop())
	assert.False(t, c.BeginDrag(ActionsColumn))
}

func TestLabels(t *testing.T) {
	store := NewMemoryStore()
	c := newTestController(t, store)

	require.True(t, c.SetLabel("task", "  Next step "))
	assert.Equal(t, "Next step", c.Label("task"))
	assert.False(t, c.SetLabel("task", "Next step"))

	require.True(t, c.SetLabel("task", "  "))
	assert.Equal(t, "Task", c.Label("task"))
	assert.False(t, c.SetLabel("task", "Task"))
	assert.Equal(t, 2, store.Saves())
}

func TestPersistenceFailureKeepsState(t *testing.T) {
	store := NewMemoryStore()
	store.FailWith(errors.New("disk full"))
	c := newTestController(t, store)

	require.True(t, c.Hide("task"))
	assert.True(t, c.IsHidden("task"))
	assert.Equal(t, 0, store.Saves())
}

func TestFilterAndQuery(t *testing.T) {
	c := newTestController(t, nil)
	a := row("application", "Acme", "task", "Call HR", "status", "Open")
	b := row("application", "Globex", "task", "Send CV", "status", "Done")
	b.extras = []string{"42 Globex Engineer"}
	c.SetRows(rowsOf(a, b))

	c.SetFilter("task", "call")
	assert.Equal(t, []Row{a}, c.DisplayedRows())

	c.SetFilter("task", "   ")
	assert.Len(t, c.DisplayedRows(), 2)

	c.SetQuery("ENGINEER")
	assert.Equal(t, []Row{b}, c.DisplayedRows())
	c.SetQuery("open")
	assert.Equal(t, []Row{a}, c.DisplayedRows())
	c.SetQuery("")
	c.SetFilter("status", "o")
	assert.Len(t, c.DisplayedRows(), 2)
	c.ClearFilters()
	assert.Empty(t, c.Filters())
}

func TestDefaultSort(t *testing.T) {
	c := newTestController(t, nil, WithDefaultSort("due_date", "task"))
	late := row("task", "b", "due_date", "2024-05-02")
	early := row("task", "z", "due_date", "2024-05-01")
	undated := row("task", "a")
	tieA := row("task", "a", "due_date", "2024-05-02")
	c.SetRows(rowsOf(undated, late, early, tieA))

	assert.Equal(t, []Row{early, tieA, late, undated}, c.DisplayedRows())
}

func TestExplicitDateSortKeepsMissingLast(t *testing.T) {
	c := newTestController(t, nil)
	bad := row("task", "bad", "due_date", "someday")
	one := row("task", "one", "due_date", "2024-01-01")
	two := row("task", "two", "due_date", "2024-02-01")
	c.SetRows(rowsOf(bad, one, two))

	require.True(t, c.SetSort("due_date", Ascending))
	assert.Equal(t, []Row{one, two, bad}, c.DisplayedRows())

	require.True(t, c.SetSort("due_date", Descending))
	assert.Equal(t, []Row{two, one, bad}, c.DisplayedRows())

	c.ClearSort()
	_, ok := c.Sort()
	assert.False(t, ok)
}

func TestExplicitTextSort(t *testing.T) {
	c := newTestController(t, nil)
	rs := rowsOf(row("task", "beta"), row("task", "Alpha"), row("task", "gamma"))
	c.SetRows(rs)

	c.SetSort("task", Ascending)
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, cellsOf(c, c.DisplayedRows(), "task"))
	c.SetSort("task", Descending)
	assert.Equal(t, []string{"gamma", "beta", "Alpha"}, cellsOf(c, c.DisplayedRows(), "task"))
	assert.False(t, c.SetSort(ActionsColumn, Ascending))

	c.SetRows(rowsOf(row("task", "éclair"), row("task", "Fig"), row("task", "ÉCLAIR")))
	c.SetSort("task", Ascending)
	assert.Equal(t, []string{"Fig", "éclair", "ÉCLAIR"}, cellsOf(c, c.DisplayedRows(), "task"),
		"folded text compares by code point, not by locale collation")
}

func TestGrouping(t *testing.T) {
	c := newTestController(t, nil)
	c.SetRows(rowsOf(
		row("task", "1", "status", "open"),
		row("task", "2", "status", ""),
		row("task", "3", "status", "Done"),
		row("task", "4", "status", "Open"),
	))
	require.True(t, c.SetGroup("status"))

	var headers []string
	for _, it := range c.Display() {
		if it.IsHeader() {
			headers = append(headers, it.Header.Key)
		}
	}
	assert.Equal(t, []string{"Done", "open", EmptyGroup}, headers)

	assert.True(t, c.ToggleGroup("OPEN"))
	display := c.Display()
	require.Len(t, display, 5)
	assert.Equal(t, "open", display[2].Header.Key)
	assert.Equal(t, 2, display[2].Header.Count)
	assert.True(t, display[2].Header.Collapsed)
	assert.Len(t, c.DisplayedRows(), 2)
	assert.Len(t, c.FilteredRows(), 4)

	assert.False(t, c.ToggleGroup("open"))
	assert.Len(t, c.DisplayedRows(), 4)

	c.ToggleGroup(EmptyGroup)
	c.SetGroup("task")
	assert.False(t, c.IsCollapsed(EmptyGroup), "switching the group column expands groups")
	c.ClearGroup()
	assert.Equal(t, "", c.Group())
}

func TestAggregates(t *testing.T) {
	c := newTestController(t, nil)
	c.SetRows(rowsOf(row("task", "2"), row("task", "x"), row("task", "3"), row("task", "")))
	assert.False(t, c.HasSummary())

	expect := map[Aggregate]string{
		AggSum:         "5",
		AggAvg:         "2.5",
		AggCount:       "4",
		AggCountValues: "3",
		AggCountEmpty:  "1",
		AggUnique:      "3",
		AggMin:         "2",
		AggMax:         "3",
	}
	for agg, want := range expect {
		require.True(t, c.SetAggregate("task", agg))
		got, ok := c.Summary("task")
		require.True(t, ok)
		assert.Equal(t, want, got, string(agg))
	}
	assert.True(t, c.HasSummary())

	c.SetRows(rowsOf(row("task", "a"), row("task", "")))
	c.SetAggregate("task", AggSum)
	got, _ := c.Summary("task")
	assert.Equal(t, NoNumbers, got)

	c.SetRows(rowsOf(row("task", "1"), row("task", "1"), row("task", "2")))
	c.SetAggregate("task", AggAvg)
	got, _ = c.Summary("task")
	assert.Equal(t, "1.33", got)

	require.True(t, c.SetAggregate("task", AggNone))
	assert.False(t, c.HasSummary())
	assert.False(t, c.SetAggregate("task", Aggregate("median")))
}

func TestAggregatesSkipCollapsedGroups(t *testing.T) {
	c := newTestController(t, nil)
	c.SetRows(rowsOf(row("task", "2", "status", "a"), row("task", "3", "status", "b")))
	c.SetGroup("status")
	c.ToggleGroup("b")
	c.SetAggregate("task", AggSum)
	assert.Equal(t, map[string]string{"task": "2"}, c.Summaries())
}

func TestCheckedAggregates(t *testing.T) {
	c := newTestController(t, nil)
	require.NoError(t, c.SetColumnType("status", coltype.TypeCheckbox))
	c.SetRows(rowsOf(row("status", "true"), row("status", "no"), row("status", "yes")))
	c.SetAggregate("status", AggChecked)
	got, _ := c.Summary("status")
	assert.Equal(t, "2", got)
	c.SetAggregate("status", AggUnchecked)
	got, _ = c.Summary("status")
	assert.Equal(t, "1", got)

	assert.Contains(t, AggregatesFor(coltype.KindCheckbox), AggChecked)
	assert.NotContains(t, AggregatesFor(coltype.KindText), AggSum)
}

func TestSetColumnType(t *testing.T) {
	c := newTestController(t, nil)
	assert.Error(t, c.SetColumnType("task", coltype.TypeNumber), "fixed type")
	err := c.SetColumnType("status", "bogus@9")
	assert.True(t, trackerrors.IsUnknownType(err))

	c.SetAggregate("status", AggCount)
	require.NoError(t, c.SetColumnType("status", coltype.TypeRating))
	assert.Equal(t, coltype.KindRating, c.Type("status").Kind())
	assert.Equal(t, AggCount, c.Aggregate("status"))
}

func TestFitWidth(t *testing.T) {
	c := newTestController(t, nil)
	c.SetRows(rowsOf(row("task", "short"), row("task", strings.Repeat("x", 30))))
	assert.Equal(t, 30*CharPx+WidthPadding, c.FitWidth("task"))
	assert.Equal(t, 30*CharPx+WidthPadding, c.Width("task"))

	c.SetRows(rowsOf(row("task", "")))
	assert.Equal(t, MinWidth, c.FitWidth("task"))

	c.SetRows(rowsOf(row("task", strings.Repeat("x", 500))))
	assert.Equal(t, MaxWidth, c.FitWidth("task"))

	c.SetWidth("due_date", 10)
	assert.Equal(t, MinWidth, c.Width("due_date"))
	assert.Equal(t, DefaultWidth, c.Width("application"))
	assert.Equal(t, 20, Cells(160))
}

func TestCommit(t *testing.T) {
	c := newTestController(t, nil)
	r := row("due_date", "")

	require.NoError(t, c.Commit(r, "due_date", "2024-06-01"))
	assert.Equal(t, "2024-06-01", r.Cell("due_date"))

	err := c.Commit(r, "due_date", "06/01/2024")
	require.Error(t, err)
	assert.Equal(t, trackerrors.CategoryValidation, trackerrors.GetCategory(err))
	assert.Equal(t, 1, r.commits)

	require.NoError(t, c.CommitText(r, "due_date", "06/02/2024"))
	assert.Equal(t, "2024-06-02", r.Cell("due_date"))
	assert.Error(t, c.CommitText(r, "due_date", "whenever"))
	require.NoError(t, c.CommitText(r, "due_date", ""))
	assert.Equal(t, "", r.Cell("due_date"))

	r.failErr = errors.New("read only")
	assert.Error(t, c.Commit(r, "task", "x"))
}

func TestPrefsEncodeWritesEmptyLists(t *testing.T) {
	data, err := Prefs{Order: []string{}, Hidden: make([]string, 0, 4)}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":[],"hidden":[],"pinned":null,"labels":{}}`, string(data))

	store := NewMemoryStore()
	c := newTestController(t, store)
	c.SetLabel("task", "Step")
	assert.Contains(t, string(store.Raw("todo")), `"hidden":[]`)
}

func TestCellArgsCommitThroughController(t *testing.T) {
	state := &options.LocalState{Options: []options.Option{{Label: "Open"}, {Label: "Done"}}}
	c := newTestController(t, nil, WithContext(func(string) *coltype.Context {
		return &coltype.Context{SelectState: state}
	}))
	require.NoError(t, c.SetColumnType("status", coltype.TypeSelectLocal))
	r := row("task", "Call", "status", "Open")

	var commitErr error
	calls := 0
	args := c.CellArgs(r, "status", func(err error) { commitErr, calls = err, calls+1 })
	assert.True(t, args.CanEdit)
	assert.Equal(t, "Open", args.Value)
	assert.Equal(t, []string{"Open", "Done"}, options.Labels(args.Options))
	require.NotNil(t, args.Actions)

	label, created, ok := coltype.ResolveOption(context.Background(), c.Type("status"), args, "blocked")
	require.True(t, ok)
	assert.True(t, created)
	require.True(t, args.Commit(label))
	assert.NoError(t, commitErr)
	assert.Equal(t, "blocked", r.Cell("status"))
	assert.Equal(t, []string{"Open", "Done", "blocked"}, options.Labels(state.Options))

	require.True(t, args.Commit(42))
	assert.Error(t, commitErr)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "blocked", r.Cell("status"))

	assert.False(t, c.CellArgs(r, ActionsColumn, nil).CanEdit)
	assert.False(t, c.CellArgs(nil, "task", nil).Commit("x"))
}

func TestExportCSV(t *testing.T) {
	c := newTestController(t, nil)
	c.SetRows(rowsOf(row("application", "Acme", "task", "Call, then email", "due_date", "2024-01-02", "status", "Open")))
	c.Hide("status")
	c.SetLabel("task", "Next")

	var buf bytes.Buffer
	require.NoError(t, c.ExportCSV(&buf))
	assert.Equal(t, "Application,Next,Due\nAcme,\"Call, then email\",2024-01-02\n", buf.String())
}

func TestContextCarriesColumn(t *testing.T) {
	c := newTestController(t, nil, WithContext(func(string) *coltype.Context {
		return &coltype.Context{ColumnLabel: "ignored"}
	}))
	c.SetLabel("task", "Step")
	ctx := c.Context("task")
	assert.Equal(t, "task", ctx.ColumnKey)
	assert.Equal(t, "Step", ctx.ColumnLabel)
	assert.NotNil(t, ctx.Log)
}
