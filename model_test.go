package main

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekirdag/jobtracker/internal/colmenu"
	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/settings"
	"github.com/bekirdag/jobtracker/internal/store"
	"github.com/bekirdag/jobtracker/internal/tableview"
	"github.com/bekirdag/jobtracker/internal/todo"
)

const modelExport = `[
  {"id": 7, "company_name": "Acme", "position": "Engineer", "favorite": true, "company_score": 8,
   "todo_items": [
     {"id": "t1", "task": "Call HR", "due_date": "2024-05-02", "status": "Not started"},
     {"id": "t2", "task": "Send CV", "due_date": "2024-05-01"}
   ]},
  {"id": 9, "company_name": "Globex", "position": "Analyst",
   "todo_items": [{"id": "g1", "task": "Prepare slides"}]}
]`

type testModel struct {
	*model
	prefs    *tableview.MemoryStore
	activity string
	cfgPath  string
}

func newTestModel(t *testing.T) *testModel {
	t.Helper()
	book, err := todo.Parse([]byte(modelExport))
	require.NoError(t, err)
	dir := t.TempDir()
	tm := &testModel{
		prefs:    tableview.NewMemoryStore(),
		activity: filepath.Join(dir, "activity.jsonl"),
		cfgPath:  filepath.Join(dir, "ui.yaml"),
	}
	tm.model, err = newModel(modelDeps{
		book:     book,
		writer:   settings.NewMemory(nil),
		prefs:    tm.prefs,
		log:      logger.Discard(),
		activity: newActivityLog(tm.activity),
		cfg:      &uiConfig{},
		cfgPath:  tm.cfgPath,
	})
	require.NoError(t, err)
	tm.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return tm
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (tm *testModel) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = tm.Update(keyMsg(k))
	}
	return cmd
}

// collect runs cmd and any batched commands, returning the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func (tm *testModel) tasks() []string {
	var out []string
	for _, r := range tm.current().ctrl.DisplayedRows() {
		out = append(out, r.Cell(todo.ColTask))
	}
	return out
}

func TestModelStartsOnTodoTable(t *testing.T) {
	tm := newTestModel(t)
	assert.Equal(t, todo.TodoTable, tm.current().id)
	assert.Equal(t, []string{"Send CV", "Call HR", "Prepare slides"}, tm.tasks())
	view := tm.View()
	assert.Contains(t, view, "To-dos (3)")
	assert.Contains(t, view, "Applications (2)")
}

func TestModelColumnMenuRename(t *testing.T) {
	tm := newTestModel(t)
	tm.press("l")
	require.Equal(t, todo.ColTask, tm.current().grid.CurrentColumn())

	tm.press("m")
	menu := tm.current().menu
	require.True(t, menu.IsOpen())
	assert.Equal(t, colmenu.Root, menu.State())
	assert.True(t, menu.InputFocused())
	assert.True(t, tm.menuInput.Focused())
	assert.Equal(t, "Task", tm.menuInput.Value())

	tm.press("backspace", "backspace", "backspace", "backspace", "Todo")
	assert.Equal(t, "Todo", menu.RenameDraft())
	tm.press("enter")
	assert.Equal(t, "Todo", tm.current().ctrl.Label(todo.ColTask))
	assert.True(t, menu.IsOpen(), "rename keeps the menu open")
	assert.Equal(t, "Renamed column to Todo", tm.toastMessage)
	assert.Positive(t, tm.prefs.Saves())

	cmd := tm.press("esc")
	assert.True(t, menu.Closing())
	var closed bool
	for _, msg := range collect(cmd) {
		if mc, ok := msg.(menuCloseMsg); ok {
			tm.Update(mc)
			closed = true
		}
	}
	require.True(t, closed)
	assert.False(t, menu.IsOpen())
	assert.False(t, tm.menuInput.Focused())
}

func TestModelMenuFilterWritesThrough(t *testing.T) {
	tm := newTestModel(t)
	tm.press("l", "m", "down")
	menu := tm.current().menu
	entries := menu.Entries()
	require.Equal(t, colmenu.EntryFilter, entries[menu.Highlight()].ID)

	tm.press("right")
	require.Equal(t, colmenu.FilterMenu, menu.State())
	require.True(t, tm.menuInput.Focused())

	tm.press("slides")
	assert.Equal(t, []string{"Prepare slides"}, tm.tasks())

	tm.press("esc")
	assert.Equal(t, "slides", tm.current().ctrl.Filter(todo.ColTask), "applied filter survives the close")
}

func TestModelEditCell(t *testing.T) {
	tm := newTestModel(t)
	tm.press("l", "enter")
	require.Equal(t, inputEdit, tm.inputMode)
	assert.Equal(t, "Send CV", tm.input.Value())

	tm.input.SetValue("Send resume")
	tm.press("enter")
	assert.Equal(t, inputNone, tm.inputMode)
	assert.Contains(t, tm.tasks(), "Send resume")

	events := readActivity(t, tm.activity)
	require.Len(t, events, 1)
	assert.Equal(t, "commit", events[0].Event)
	assert.Equal(t, "Send CV", events[0].Old)

	tm.press("l", "enter")
	require.Equal(t, todo.ColDueDate, tm.editCol)
	tm.input.SetValue("not a date")
	tm.press("enter")
	assert.Contains(t, tm.toastMessage, "Not saved")
	assert.Equal(t, []string{"Send resume", "Call HR", "Prepare slides"}, tm.tasks())
}

// cellOf returns col of the displayed row whose task is task.
func (tm *testModel) cellOf(task, col string) string {
	for _, r := range tm.current().ctrl.DisplayedRows() {
		if r.Cell(todo.ColTask) == task {
			return r.Cell(col)
		}
	}
	return ""
}

func TestModelSelectEditCreatesOption(t *testing.T) {
	tm := newTestModel(t)
	require.True(t, tm.current().grid.SelectColumn(todo.ColStatus))

	tm.press("enter")
	require.Equal(t, inputEdit, tm.inputMode)
	assert.Contains(t, tm.inputPrompt, "Not started")
	tm.press("Blocked", "enter")
	assert.Equal(t, inputNone, tm.inputMode)
	assert.Equal(t, "Blocked", tm.cellOf("Send CV", todo.ColStatus))
	assert.Equal(t, []string{"Not started", "In progress", "Done", "Blocked"}, options.Labels(tm.status.Options))

	tm.press("enter")
	tm.input.SetValue("done")
	tm.press("enter")
	assert.Equal(t, "Done", tm.cellOf("Send CV", todo.ColStatus), "known labels keep their casing")
	assert.Len(t, tm.status.Options, 4)
}

func TestModelOptionsPanelLocal(t *testing.T) {
	tm := newTestModel(t)
	require.True(t, tm.current().grid.SelectColumn(todo.ColStatus))

	tm.press("o")
	require.NotNil(t, tm.optPanel)
	assert.Contains(t, tm.View(), "Options · Status")

	tm.press("a")
	require.Equal(t, inputOptionAdd, tm.inputMode)
	tm.press("Waiting", "enter")
	assert.Equal(t, []string{"Not started", "In progress", "Done", "Waiting"}, options.Labels(tm.status.Options))
	assert.Equal(t, 3, tm.optPanel.cursor)

	tm.press("K")
	assert.Equal(t, []string{"Not started", "In progress", "Waiting", "Done"}, options.Labels(tm.status.Options))
	assert.Equal(t, 2, tm.optPanel.cursor)
	tm.press("J")
	assert.Equal(t, []string{"Not started", "In progress", "Done", "Waiting"}, options.Labels(tm.status.Options))

	tm.press("c")
	require.Equal(t, inputOptionColor, tm.inputMode)
	tm.input.SetValue("#112233")
	tm.press("enter")
	assert.Equal(t, "#112233", tm.status.Options[3].Color)

	tm.press("c")
	tm.input.SetValue("blue")
	tm.press("enter")
	assert.Contains(t, tm.toastMessage, "not a #RRGGBB color")
	assert.Equal(t, "#112233", tm.status.Options[3].Color)

	tm.press("k", "k", "k")
	require.Equal(t, 0, tm.optPanel.cursor)
	tm.press("r")
	require.Equal(t, inputOptionRename, tm.inputMode)
	tm.input.SetValue("Queued")
	tm.press("enter")
	assert.Equal(t, "Queued", tm.status.Options[0].Label)
	assert.Equal(t, "Queued", tm.cellOf("Call HR", todo.ColStatus), "cells follow the renamed option")

	tm.press("r")
	tm.input.SetValue("done")
	tm.press("enter")
	assert.Contains(t, tm.toastMessage, "already an option")
	assert.Equal(t, "Queued", tm.status.Options[0].Label)

	tm.press("d")
	assert.Equal(t, []string{"In progress", "Done", "Waiting"}, options.Labels(tm.status.Options))

	tm.press("esc")
	assert.Nil(t, tm.optPanel)
	assert.NotContains(t, tm.View(), "Options · Status")
}

func TestModelManagedOptions(t *testing.T) {
	tm := newTestModel(t)
	tm.press("tab")
	tab := tm.current()
	require.True(t, tab.grid.SelectColumn("stage"))
	row, ok := tab.grid.CurrentRow()
	require.True(t, ok)
	company := row.Cell("company_name")

	tm.press("enter", "Panel", "enter")
	assert.Contains(t, tm.writer.Current().Stages, "Panel")
	assert.Equal(t, options.DefaultColor, tm.writer.Current().StageColors["Panel"])
	for _, r := range tab.ctrl.Rows() {
		if r.Cell("company_name") == company {
			assert.Equal(t, "Panel", r.Cell("stage"))
		}
	}

	tm.press("o")
	require.NotNil(t, tm.optPanel)
	stages := tm.writer.Current().Stages
	tm.optPanel.cursor = len(stages) - 1
	tm.press("c")
	tm.input.SetValue("#abc")
	tm.press("enter")
	assert.Equal(t, "#abc", tm.writer.Current().StageColors["Panel"])

	tm.press("d")
	assert.NotContains(t, tm.writer.Current().Stages, "Panel")
	_, hasColor := tm.writer.Current().StageColors["Panel"]
	assert.False(t, hasColor)

	tm.press("tab")
	assert.Nil(t, tm.optPanel, "switching tables closes the panel")
}

func TestModelOptionsNeedSelectColumn(t *testing.T) {
	tm := newTestModel(t)
	tm.press("l", "o")
	assert.Nil(t, tm.optPanel)
	assert.Contains(t, tm.toastMessage, "no option list")
}

func TestModelSearch(t *testing.T) {
	tm := newTestModel(t)
	tm.press("/", "globex")
	assert.Equal(t, inputSearch, tm.inputMode)
	assert.Equal(t, []string{"Prepare slides"}, tm.tasks())

	tm.press("esc")
	assert.Equal(t, "", tm.current().ctrl.Query())
	assert.Len(t, tm.tasks(), 3)
}

func TestModelAddAndDeleteTodo(t *testing.T) {
	tm := newTestModel(t)
	tm.press("a")
	require.Equal(t, inputAddTodo, tm.inputMode)
	tm.press("Book flights", "enter")
	require.Len(t, tm.tasks(), 4)

	g := tm.current().grid
	for i, item := range g.items {
		if item.Row != nil && item.Row.Cell(todo.ColTask) == "Book flights" {
			g.row = i
		}
	}
	tm.press("D")
	assert.NotContains(t, tm.tasks(), "Book flights")
	assert.Len(t, tm.tasks(), 3)
}

func TestModelApplicationsCheckbox(t *testing.T) {
	tm := newTestModel(t)
	tm.press("tab")
	tab := tm.current()
	require.Equal(t, todo.ApplicationsTable, tab.id)
	require.True(t, tab.grid.SelectColumn("favorite"))

	row, ok := tab.grid.CurrentRow()
	require.True(t, ok)
	require.Equal(t, "true", row.Cell("favorite"))
	tm.press(" ")
	assert.Equal(t, "false", row.Cell("favorite"))
}

func TestModelGroupAndSummary(t *testing.T) {
	tm := newTestModel(t)
	ctrl := tm.current().ctrl
	require.True(t, ctrl.SetGroup(todo.ColApplication))
	require.True(t, ctrl.SetAggregate(todo.ColTask, tableview.AggCount))
	tm.current().grid.refresh()

	view := tm.View()
	assert.Contains(t, view, "Acme · Engineer (2)")
	assert.Contains(t, view, "Count 3")

	tm.current().grid.row = 0
	tm.press(" ")
	assert.True(t, ctrl.IsCollapsed("Acme · Engineer"))
	assert.Equal(t, []string{"Prepare slides"}, tm.tasks())
}

func TestModelQuitSavesConfig(t *testing.T) {
	tm := newTestModel(t)
	tm.press("tab")
	cmd := tm.press("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cfg, _ := loadUIConfig(filepath.Dir(tm.cfgPath))
	assert.Equal(t, todo.ApplicationsTable, cfg.LastTable)
	assert.Equal(t, "auto", cfg.Theme)
}

func TestModelSavedViews(t *testing.T) {
	tm := newTestModel(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	tm.views = st

	tab := tm.current()
	tab.ctrl.SetQuery("Call")
	require.True(t, tab.ctrl.Hide(todo.ColDueDate))
	tm.press("S")
	require.Equal(t, inputSaveView, tm.inputMode)
	tm.input.SetValue("HR calls")
	tm.press("enter")
	assert.Contains(t, tm.toastMessage, `Saved view "HR calls"`)

	tab.ctrl.SetQuery("")
	tab.ctrl.Show(todo.ColDueDate)
	tab.grid.refresh()
	require.Len(t, tm.tasks(), 3)

	tm.press("v")
	require.NotNil(t, tm.viewPanel)
	require.Len(t, tm.viewPanel.views, 1)
	view := tm.View()
	assert.Contains(t, view, "Saved views · To-dos")
	assert.Contains(t, view, "HR calls")

	tm.press("enter")
	assert.Nil(t, tm.viewPanel)
	assert.Equal(t, "Call", tab.ctrl.Query())
	assert.True(t, tab.ctrl.IsHidden(todo.ColDueDate))
	assert.Equal(t, []string{"Call HR"}, tm.tasks())

	tm.press("v", "r")
	require.Equal(t, inputRenameView, tm.inputMode)
	tm.input.SetValue("Calls")
	tm.press("enter")
	require.Len(t, tm.viewPanel.views, 1)
	assert.Equal(t, "Calls", tm.viewPanel.views[0].Name)

	tm.press("tab")
	assert.Nil(t, tm.viewPanel, "switching tables closes the panel")
	tm.press("v")
	require.NotNil(t, tm.viewPanel)
	assert.Empty(t, tm.viewPanel.views, "views belong to their table")
	assert.Contains(t, tm.View(), "No saved views")

	tm.press("tab", "v", "d")
	assert.Empty(t, tm.viewPanel.views)
	listed, err := st.ListViews(context.Background(), todo.TodoTable)
	require.NoError(t, err)
	assert.Empty(t, listed)
	tm.press("esc")
	assert.Nil(t, tm.viewPanel)
}

func TestModelViewsNeedStore(t *testing.T) {
	tm := newTestModel(t)
	tm.press("S")
	assert.Equal(t, inputNone, tm.inputMode)
	assert.Contains(t, tm.toastMessage, "settings store")
	tm.press("v")
	assert.Nil(t, tm.viewPanel)
}

func TestModelOfferMovesStage(t *testing.T) {
	tm := newTestModel(t)
	tm.press("tab")
	tab := tm.current()
	require.True(t, tab.grid.SelectColumn("outcome"))
	row, ok := tab.grid.CurrentRow()
	require.True(t, ok)

	tm.press("enter")
	tm.input.SetValue("offer")
	tm.press("enter")
	assert.Equal(t, "Offer", row.Cell("outcome"))
	assert.Equal(t, "Offer", row.Cell("stage"))
}
