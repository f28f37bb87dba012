package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/jobtracker/internal/colmenu"
	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/settings"
	"github.com/bekirdag/jobtracker/internal/tableview"
	"github.com/bekirdag/jobtracker/internal/todo"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputEdit
	inputAddTodo
	inputExport
	inputOptionAdd
	inputOptionRename
	inputOptionColor
	inputSaveView
	inputRenameView
)

const (
	menuFrame     = time.Second / 60
	toastDuration = 4 * time.Second
	logsHeight    = 6
	maxLogLines   = 400
	// top bar line above the grid
	gridTop = 1
)

type menuCloseMsg struct{ token uint64 }

type menuFrameMsg struct{}

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

type tableTab struct {
	id    string
	title string
	ctrl  *tableview.Controller
	grid  *grid
	menu  *colmenu.Menu
}

// modelDeps are the collaborators main wires into the model.
type modelDeps struct {
	book      *todo.Book
	writer    settings.Writer
	prefs     tableview.PreferencesStore
	views     viewStore
	log       *slog.Logger
	activity  *activityLog
	cfg       *uiConfig
	cfgPath   string
	startWith string
}

type model struct {
	styles styles
	keys   keyMap
	help   help.Model

	width, height int

	book     *todo.Book
	writer   settings.Writer
	log      *slog.Logger
	activity *activityLog
	registry *coltype.Registry
	status   *options.LocalState

	tabs   []*tableTab
	active int

	menuInput    textinput.Model
	menuInputFor string
	menuTicking  bool

	optPanel  *optionsPanel
	viewPanel *viewsPanel
	views     viewStore

	input       textinput.Model
	inputMode   inputMode
	inputPrompt string
	editRow     tableview.Row
	editCol     string
	addTarget   *todo.Application

	showPreview bool
	preview     viewport.Model
	renderer    *blockRenderer

	showLogs bool
	logs     viewport.Model
	logLines []string

	toastMessage string
	toastExpires time.Time

	cfg     *uiConfig
	cfgPath string
}

func newModel(deps modelDeps) (*model, error) {
	if deps.cfg == nil {
		deps.cfg = &uiConfig{}
	}
	if deps.writer == nil {
		deps.writer = settings.NewMemory(nil)
	}
	s := newStyles()
	m := &model{
		styles:   s,
		keys:     newKeyMap(),
		help:     help.New(),
		book:     deps.book,
		writer:   deps.writer,
		views:    deps.views,
		log:      logger.OrDiscard(deps.log),
		activity: deps.activity,
		registry: coltype.Default(),
		cfg:      deps.cfg,
		cfgPath:  deps.cfgPath,
		showLogs: deps.cfg.logsVisible(),
		renderer: newBlockRenderer(markdownThemeFromString(deps.cfg.Theme), 60),
	}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusHint.Copy()
	m.help.Styles.FullKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.FullDesc = m.styles.statusHint.Copy()
	m.help.Styles.FullSeparator = m.styles.statusHint.Copy()

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.CharLimit = 4096
	m.menuInput = textinput.New()
	m.menuInput.Prompt = ""
	m.menuInput.CharLimit = 120

	m.logs = viewport.New(80, logsHeight)
	m.preview = viewport.New(40, 10)

	m.status = &options.LocalState{Options: todo.StatusOptions()}
	m.status.OnChange = func(opts []options.Option) {
		m.appendLog(fmt.Sprintf("[INFO] Status options: %s", strings.Join(options.Labels(opts), ", ")))
	}

	todoTab, err := m.newTab(todo.TodoTable, "To-dos", todo.TodoColumns(), deps.prefs,
		tableview.WithDefaultSort(todo.ColDueDate, todo.ColTask))
	if err != nil {
		return nil, err
	}
	scale := m.writer.Current().ScoreScale
	appsTab, err := m.newTab(todo.ApplicationsTable, "Applications", todo.ApplicationColumns(scale.Min, scale.Max), deps.prefs,
		tableview.WithDefaultSort("followup_date", "company_name"))
	if err != nil {
		return nil, err
	}
	m.tabs = []*tableTab{todoTab, appsTab}
	for i, tab := range m.tabs {
		if tab.id == deps.startWith {
			m.active = i
		}
	}

	if m.book != nil {
		m.book.OnChange(m.recordChange)
		m.book.SetStages(func() []string { return m.writer.Current().Stages })
	}
	m.reloadRows()

	m.appendLog("[INFO] Press m on a column for its menu; / searches every column.")
	if m.book != nil && m.book.Path() != "" {
		m.appendLog(fmt.Sprintf("[INFO] Loaded %d applications from %s", len(m.book.Applications()), m.book.Path()))
	} else {
		m.appendLog("[WARN] No data file loaded; start with --data <applications.json>.")
	}
	return m, nil
}

func (m *model) newTab(id, title string, specs []tableview.ColumnSpec, prefs tableview.PreferencesStore, extra ...tableview.Option) (*tableTab, error) {
	opts := []tableview.Option{
		tableview.WithLogger(m.log),
		tableview.WithContext(m.columnContext),
	}
	if prefs != nil {
		opts = append(opts, tableview.WithStore(prefs))
	}
	ctrl, err := tableview.NewController(id, specs, m.registry, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	menu := colmenu.New(ctrl,
		colmenu.WithGutter(1),
		colmenu.WithRegistry(m.registry),
		colmenu.WithLogger(m.log),
	)
	return &tableTab{id: id, title: title, ctrl: ctrl, grid: newGrid(ctrl), menu: menu}, nil
}

func (m *model) columnContext(col string) *coltype.Context {
	ctx := &coltype.Context{Writer: m.writer, Log: m.log}
	if col == todo.ColStatus {
		ctx.SelectState = m.status
	}
	return ctx
}

func (m *model) current() *tableTab { return m.tabs[m.active] }

// reloadRows rebuilds both tables from the book after any commit.
func (m *model) reloadRows() {
	if m.book == nil {
		return
	}
	var todoRows []tableview.Row
	for _, r := range m.book.TodoRows() {
		todoRows = append(todoRows, r)
	}
	var appRows []tableview.Row
	for _, r := range m.book.ApplicationRows() {
		appRows = append(appRows, r)
	}
	for _, tab := range m.tabs {
		switch tab.id {
		case todo.TodoTable:
			tab.ctrl.SetRows(todoRows)
		case todo.ApplicationsTable:
			tab.ctrl.SetRows(appRows)
		}
		tab.grid.refresh()
	}
	m.refreshPreview()
}

func (m *model) recordChange(c todo.Change) {
	m.activity.Record(c)
	m.log.Info("cell committed", "table", c.Table, "application", c.Application, "item", c.Item, "column", c.Column)
	m.appendLog(fmt.Sprintf("[EDIT] #%d %s: %q → %q", c.Application, c.Column, c.Old, c.New))
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case menuCloseMsg:
		if m.current().menu.FinalizeClose(msg.token) {
			m.blurMenuInput()
			m.current().grid.refresh()
		}
		return m, nil
	case menuFrameMsg:
		m.menuTicking = false
		m.current().menu.Step()
		return m, m.animateMenu()
	case exportDoneMsg:
		if msg.err != nil {
			m.setToast("Export failed: "+msg.err.Error(), toastDuration)
			m.appendLog("[ERROR] CSV export: " + msg.err.Error())
		} else {
			m.setToast(fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path), toastDuration)
			m.appendLog(fmt.Sprintf("[INFO] Exported %d rows to %s", msg.rows, msg.path))
		}
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m, m.updateInput(msg)
		}
		if m.optPanel != nil {
			return m, m.handleOptionsKey(msg)
		}
		if m.viewPanel != nil {
			return m, m.handleViewsKey(msg)
		}
		if menu := m.current().menu; menu.IsOpen() && !menu.Closing() {
			return m, m.handleMenuKey(msg)
		}
		return m, m.handleKey(msg)
	}

	var cmds []tea.Cmd
	if m.inputMode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.menuInput.Focused() {
		var cmd tea.Cmd
		m.menuInput, cmd = m.menuInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) layout() {
	height := m.height - gridTop - 1 - m.helpHeight()
	if m.showLogs {
		height -= logsHeight + 3
	}
	width := m.width
	if m.showPreview {
		width = m.width * 3 / 5
		m.preview.Width = m.width - width - 2
		m.preview.Height = max(height-3, 3)
		m.renderer.SetWordWrap(m.preview.Width - 2)
	}
	for _, tab := range m.tabs {
		tab.grid.SetSize(width, height)
	}
	m.logs.Width = max(m.width-2, 10)
	m.logs.Height = logsHeight
	m.help.Width = max(m.width-4, 0)
	if menu := m.current().menu; menu.IsOpen() {
		if anchor, ok := m.menuAnchor(menu.Column()); ok {
			menu.Reposition(anchor, colmenu.Size{W: m.width, H: m.height})
		}
	}
	m.refreshPreview()
}

func (m *model) helpHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	rows := 0
	for _, group := range m.keys.FullHelp() {
		rows = max(rows, len(group))
	}
	return rows
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	tab := m.current()
	g := tab.grid
	switch {
	case key.Matches(msg, m.keys.quit):
		m.saveConfig()
		return tea.Quit
	case key.Matches(msg, m.keys.nextTable):
		m.switchTab(1)
	case key.Matches(msg, m.keys.prevTable):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.up):
		g.Move(-1, 0)
		m.refreshPreview()
	case key.Matches(msg, m.keys.down):
		g.Move(1, 0)
		m.refreshPreview()
	case key.Matches(msg, m.keys.left):
		g.Move(0, -1)
	case key.Matches(msg, m.keys.right):
		g.Move(0, 1)
	case key.Matches(msg, m.keys.toggle):
		m.toggleCurrent()
	case key.Matches(msg, m.keys.edit):
		return m.editCurrent()
	case key.Matches(msg, m.keys.menu):
		return m.openMenu(g.CurrentColumn())
	case key.Matches(msg, m.keys.options):
		return m.openOptions(g.CurrentColumn())
	case key.Matches(msg, m.keys.saveView):
		return m.startSaveView()
	case key.Matches(msg, m.keys.views):
		return m.openViews()
	case key.Matches(msg, m.keys.search):
		m.openInput("Search all columns", tab.ctrl.Query(), inputSearch)
		return textinput.Blink
	case key.Matches(msg, m.keys.add):
		return m.startAddTodo()
	case key.Matches(msg, m.keys.remove):
		m.deleteCurrent()
	case key.Matches(msg, m.keys.copyCell):
		m.copyCurrent()
	case key.Matches(msg, m.keys.export):
		m.openInput("Export CSV to", m.defaultExportPath(), inputExport)
		return textinput.Blink
	case key.Matches(msg, m.keys.moveLeft):
		m.shiftColumn(-1)
	case key.Matches(msg, m.keys.moveRight):
		m.shiftColumn(1)
	case key.Matches(msg, m.keys.widen):
		col := g.CurrentColumn()
		tab.ctrl.SetWidth(col, tab.ctrl.Width(col)+2*tableview.CharPx)
	case key.Matches(msg, m.keys.narrow):
		col := g.CurrentColumn()
		tab.ctrl.SetWidth(col, tab.ctrl.Width(col)-2*tableview.CharPx)
	case key.Matches(msg, m.keys.showHidden):
		if tab.ctrl.ShowAll() {
			g.refresh()
			m.setToast("All columns shown", toastDuration)
		}
	case key.Matches(msg, m.keys.clearFilters):
		tab.ctrl.ClearFilters()
		tab.ctrl.SetQuery("")
		g.refresh()
		m.setToast("Filters cleared", toastDuration)
	case key.Matches(msg, m.keys.preview):
		m.showPreview = !m.showPreview
		m.layout()
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
		m.layout()
	case key.Matches(msg, m.keys.cycleTheme):
		theme := m.renderer.Theme().next()
		m.renderer.SetTheme(theme)
		m.cfg.Theme = theme.String()
		m.refreshPreview()
		m.setToast("Preview theme: "+theme.String(), toastDuration)
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case msg.String() == "esc":
		if tab.ctrl.Query() != "" {
			tab.ctrl.SetQuery("")
			g.refresh()
		}
	}
	return nil
}

func (m *model) switchTab(delta int) {
	m.closeOptions()
	m.closeViews()
	if menu := m.current().menu; menu.IsOpen() {
		menu.FinalizeClose(menu.Close())
		m.blurMenuInput()
	}
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.current().grid.refresh()
	m.refreshPreview()
}

func (m *model) toggleCurrent() {
	tab := m.current()
	item, ok := tab.grid.CurrentItem()
	if !ok {
		return
	}
	if item.IsHeader() {
		tab.ctrl.ToggleGroup(item.Header.Key)
		tab.grid.refresh()
		return
	}
	col := tab.grid.CurrentColumn()
	if def := tab.ctrl.Type(col); def != nil && def.Kind() == coltype.KindCheckbox {
		checked, _ := tab.ctrl.Value(item.Row, col).(bool)
		m.commit(item.Row, col, !checked)
	}
}

func (m *model) editCurrent() tea.Cmd {
	tab := m.current()
	item, ok := tab.grid.CurrentItem()
	if !ok {
		return nil
	}
	if item.IsHeader() {
		tab.ctrl.ToggleGroup(item.Header.Key)
		tab.grid.refresh()
		return nil
	}
	col := tab.grid.CurrentColumn()
	if col == tableview.ActionsColumn {
		return m.startAddTodo()
	}
	def := tab.ctrl.Type(col)
	if def == nil {
		return nil
	}
	if def.Kind() == coltype.KindCheckbox {
		checked, _ := tab.ctrl.Value(item.Row, col).(bool)
		m.commit(item.Row, col, !checked)
		return nil
	}
	initial := tab.ctrl.Text(item.Row, col)
	if def.Kind().IsList() {
		initial = item.Row.Cell(col)
	}
	prompt := "Edit " + tab.ctrl.Label(col)
	if src, ok := def.(coltype.OptionSource); ok {
		labels := options.Labels(src.Options(tab.ctrl.Context(col)))
		prompt += coltype.Truncate(" ("+strings.Join(labels, ", ")+"; new labels are added)", 56)
	}
	m.editRow, m.editCol = item.Row, col
	m.openInput(prompt, initial, inputEdit)
	return textinput.Blink
}

// commit writes value through the cell's OnCommit.
func (m *model) commit(r tableview.Row, col string, value any) bool {
	var commitErr error
	args := m.current().ctrl.CellArgs(r, col, func(err error) { commitErr = err })
	if !args.Commit(value) {
		m.setToast("This cell is read-only", toastDuration)
		return false
	}
	if commitErr != nil {
		m.setToast("Not saved: "+commitErr.Error(), toastDuration)
		return false
	}
	m.reloadRows()
	return true
}

// commitInput parses typed text for the edited cell. Unknown select labels
// become new options when the column allows it.
func (m *model) commitInput(r tableview.Row, col, text string) bool {
	tab := m.current()
	value, err := tab.ctrl.ParseInput(col, text)
	if err != nil {
		m.setToast("Not saved: "+err.Error(), toastDuration)
		return false
	}
	if def := tab.ctrl.Type(col); def != nil && def.Kind() == coltype.KindSelect {
		args := tab.ctrl.CellArgs(r, col, nil)
		label, created, ok := coltype.ResolveOption(context.Background(), def, args, text)
		if !ok {
			m.setToast(fmt.Sprintf("Not saved: %q is not an option of %s", strings.TrimSpace(text), tab.ctrl.Label(col)), toastDuration)
			return false
		}
		if created {
			m.appendLog(fmt.Sprintf("[INFO] Added option %q to %s", label, tab.ctrl.Label(col)))
		}
		value = label
	}
	return m.commit(r, col, value)
}

func (m *model) currentApplication() *todo.Application {
	row, ok := m.current().grid.CurrentRow()
	if !ok {
		return nil
	}
	switch r := row.(type) {
	case *todo.TodoRow:
		return r.Application()
	case *todo.ApplicationRow:
		return r.Application()
	}
	return nil
}

func (m *model) startAddTodo() tea.Cmd {
	app := m.currentApplication()
	if app == nil {
		m.setToast("Select a row to add a to-do to its application", toastDuration)
		return nil
	}
	m.addTarget = app
	m.openInput("New to-do for "+app.Label(), "", inputAddTodo)
	return textinput.Blink
}

func (m *model) deleteCurrent() {
	row, ok := m.current().grid.CurrentRow()
	if !ok {
		return
	}
	r, ok := row.(*todo.TodoRow)
	if !ok {
		m.setToast("Only to-do rows can be deleted", toastDuration)
		return
	}
	if r.Delete() {
		m.reloadRows()
		m.setToast("To-do deleted", toastDuration)
	}
}

func (m *model) copyCurrent() {
	tab := m.current()
	row, ok := tab.grid.CurrentRow()
	if !ok {
		return
	}
	col := tab.grid.CurrentColumn()
	text := tab.ctrl.Text(row, col)
	if err := clipboard.WriteAll(text); err != nil {
		m.setToast("Clipboard unavailable: "+err.Error(), toastDuration)
		return
	}
	m.setToast(fmt.Sprintf("Copied %s", coltype.Truncate(text, 40)), toastDuration)
}

func (m *model) shiftColumn(delta int) {
	tab := m.current()
	col := tab.grid.CurrentColumn()
	if tab.ctrl.Shift(col, delta) {
		tab.grid.SelectColumn(col)
		tab.grid.refresh()
	}
}

func (m *model) defaultExportPath() string {
	name := fmt.Sprintf("%s-%s.csv", m.current().id, time.Now().Format("20060102-150405"))
	if m.book != nil && m.book.Path() != "" {
		return filepath.Join(filepath.Dir(m.book.Path()), name)
	}
	return name
}

// exportCmd renders the CSV now and writes it off the update loop.
func (m *model) exportCmd(path string) tea.Cmd {
	var buf bytes.Buffer
	tab := m.current()
	if err := tab.ctrl.ExportCSV(&buf); err != nil {
		return func() tea.Msg { return exportDoneMsg{path: path, err: err} }
	}
	rows := len(tab.ctrl.DisplayedRows())
	data := buf.Bytes()
	return func() tea.Msg {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		return exportDoneMsg{path: path, rows: rows}
	}
}

func (m *model) openInput(prompt, initial string, mode inputMode) {
	m.inputMode = mode
	m.inputPrompt = prompt
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *model) closeInput() {
	m.inputMode = inputNone
	m.inputPrompt = ""
	m.input.Blur()
	m.input.SetValue("")
	m.editRow, m.editCol, m.addTarget = nil, "", nil
}

func (m *model) updateInput(msg tea.KeyMsg) tea.Cmd {
	tab := m.current()
	switch msg.String() {
	case "esc":
		if m.inputMode == inputSearch {
			tab.ctrl.SetQuery("")
			tab.grid.refresh()
		}
		m.closeInput()
		return nil
	case "enter":
		cmd := m.submitInput(m.input.Value())
		m.closeInput()
		return cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inputMode == inputSearch {
		tab.ctrl.SetQuery(m.input.Value())
		tab.grid.refresh()
	}
	return cmd
}

func (m *model) submitInput(value string) tea.Cmd {
	tab := m.current()
	switch m.inputMode {
	case inputSearch:
		tab.ctrl.SetQuery(value)
		tab.grid.refresh()
	case inputEdit:
		if m.editRow == nil {
			return nil
		}
		if m.commitInput(m.editRow, m.editCol, value) {
			m.setToast("Saved "+tab.ctrl.Label(m.editCol), toastDuration)
		}
	case inputAddTodo:
		if m.book == nil || m.addTarget == nil {
			return nil
		}
		if _, err := m.book.AddTodo(m.addTarget, value); err != nil {
			m.setToast(err.Error(), toastDuration)
			return nil
		}
		m.reloadRows()
		m.setToast("To-do added", toastDuration)
	case inputOptionAdd, inputOptionRename, inputOptionColor:
		m.submitOption(m.inputMode, value)
	case inputSaveView:
		m.saveView(value)
	case inputRenameView:
		m.renameView(value)
	case inputExport:
		path := strings.TrimSpace(value)
		if path == "" {
			return nil
		}
		return m.exportCmd(path)
	}
	return nil
}

func (m *model) menuAnchor(col string) (colmenu.Rect, bool) {
	tab := m.current()
	if tab.grid.cells == nil {
		tab.grid.cells = tab.grid.layout()
	}
	cell, ok := tab.grid.HeaderCell(col)
	if !ok {
		return colmenu.Rect{}, false
	}
	return colmenu.Rect{X: cell.x, Y: gridTop, W: cell.w, H: 1}, true
}

func (m *model) openMenu(col string) tea.Cmd {
	if col == "" {
		return nil
	}
	anchor, ok := m.menuAnchor(col)
	if !ok {
		return nil
	}
	menu := m.current().menu
	menu.Open(col, anchor, colmenu.Size{W: m.width, H: m.height})
	m.menuInputFor = ""
	m.syncMenuInput()
	return m.animateMenu()
}

func (m *model) animateMenu() tea.Cmd {
	if m.menuTicking || !m.current().menu.Animating() {
		return nil
	}
	m.menuTicking = true
	return tea.Tick(menuFrame, func(time.Time) tea.Msg { return menuFrameMsg{} })
}

func menuKeyFor(msg tea.KeyMsg, inputFocused bool) (colmenu.Key, bool) {
	switch msg.String() {
	case "up":
		return colmenu.KeyUp, true
	case "down":
		return colmenu.KeyDown, true
	case "enter":
		return colmenu.KeyEnter, true
	case "esc":
		return colmenu.KeyEscape, true
	}
	if inputFocused {
		return 0, false
	}
	switch msg.String() {
	case "k":
		return colmenu.KeyUp, true
	case "j":
		return colmenu.KeyDown, true
	case "left", "h":
		return colmenu.KeyLeft, true
	case "right", "l":
		return colmenu.KeyRight, true
	case " ":
		return colmenu.KeySpace, true
	}
	return 0, false
}

func (m *model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	menu := m.current().menu
	focused := menu.InputFocused()
	k, nav := menuKeyFor(msg, focused)
	var cmds []tea.Cmd
	if focused && !nav {
		var cmd tea.Cmd
		m.menuInput, cmd = m.menuInput.Update(msg)
		cmds = append(cmds, cmd)
		switch m.menuInputFor {
		case colmenu.EntryRename:
			menu.SetRenameDraft(m.menuInput.Value())
		case colmenu.EntryFilterInput:
			menu.SetFilterDraft(m.menuInput.Value())
			m.current().grid.refresh()
		}
	}
	res := menu.HandleKey(k, !nav)
	cmds = append(cmds, m.applyMenuResult(res))
	return tea.Batch(cmds...)
}

func (m *model) applyMenuResult(res colmenu.Result) tea.Cmd {
	tab := m.current()
	tab.grid.refresh()
	if res.Err != nil {
		m.setToast(res.Err.Error(), toastDuration)
	} else if res.Notice != "" {
		m.setToast(res.Notice, toastDuration)
	}
	m.syncMenuInput()
	if !res.Closing {
		return m.animateMenu()
	}
	m.blurMenuInput()
	token := res.Token
	return tea.Batch(
		tea.Tick(colmenu.ExitDelay, func(time.Time) tea.Msg { return menuCloseMsg{token: token} }),
		m.animateMenu(),
	)
}

// syncMenuInput focuses the text field on the highlighted input entry and
// loads that entry's draft when the highlight moved onto it.
func (m *model) syncMenuInput() {
	menu := m.current().menu
	if !menu.IsOpen() || menu.Closing() || !menu.InputFocused() {
		m.blurMenuInput()
		return
	}
	id := menu.Entries()[menu.Highlight()].ID
	if id == m.menuInputFor {
		return
	}
	m.menuInputFor = id
	draft := menu.RenameDraft()
	if id == colmenu.EntryFilterInput {
		draft = menu.FilterDraft()
	}
	m.menuInput.SetValue(draft)
	m.menuInput.CursorEnd()
	m.menuInput.Focus()
}

func (m *model) blurMenuInput() {
	m.menuInput.Blur()
	m.menuInputFor = ""
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	tab := m.current()
	if m.inputMode != inputNone || m.optPanel != nil || m.viewPanel != nil {
		return nil
	}
	if menu := tab.menu; menu.IsOpen() && !menu.Closing() {
		idx, inside := menuEntryAt(menu, msg.X, msg.Y)
		if msg.Type != tea.MouseLeft {
			return nil
		}
		if !inside {
			return m.applyMenuResult(colmenu.Result{Handled: true, Closing: true, Token: menu.Close()})
		}
		if idx >= 0 && (idx == menu.Highlight() || menu.SetHighlight(idx)) {
			return m.applyMenuResult(menu.Activate())
		}
		return nil
	}

	switch msg.Type {
	case tea.MouseWheelUp:
		tab.grid.Move(-1, 0)
		return nil
	case tea.MouseWheelDown:
		tab.grid.Move(1, 0)
		return nil
	}

	if msg.Y == gridTop {
		col, ok := tab.grid.ColumnAt(msg.X)
		switch msg.Type {
		case tea.MouseLeft:
			if ok {
				tab.grid.SelectColumn(col)
				tab.ctrl.BeginDrag(col)
			}
		case tea.MouseMotion:
			if ok {
				tab.ctrl.DragOver(col)
			}
		case tea.MouseRelease:
			return m.endDrag()
		}
		return nil
	}
	if msg.Type == tea.MouseMotion {
		return nil
	}
	if msg.Type == tea.MouseRelease {
		return m.endDrag()
	}
	if msg.Type == tea.MouseLeft && msg.Y > gridTop+1 {
		if tab.grid.SelectLine(msg.Y - gridTop - gridChrome) {
			if col, ok := tab.grid.ColumnAt(msg.X); ok {
				tab.grid.SelectColumn(col)
			}
			m.refreshPreview()
		}
	}
	return nil
}

// endDrag drops a header drag, or opens the column menu when the press and
// release landed on the same header.
func (m *model) endDrag() tea.Cmd {
	tab := m.current()
	src, over, ok := tab.ctrl.Dragging()
	if !ok {
		return nil
	}
	if over == "" || over == src {
		tab.ctrl.CancelDrag()
		return m.openMenu(src)
	}
	if tab.ctrl.Drop() {
		tab.grid.SelectColumn(src)
		tab.grid.refresh()
		m.setToast(fmt.Sprintf("Moved %s before %s", tab.ctrl.Label(src), tab.ctrl.Label(over)), toastDuration)
	}
	return nil
}

func (m *model) refreshPreview() {
	if !m.showPreview {
		return
	}
	tab := m.current()
	row, ok := tab.grid.CurrentRow()
	if !ok {
		m.preview.SetContent(m.styles.empty.Render("Nothing selected"))
		return
	}
	m.preview.SetContent(m.renderer.Render(rowMarkdown(tab.ctrl, row), m.styles.statusHint.Render("y copy • enter edit • a add to-do")))
	m.preview.GotoTop()
}

// rowMarkdown lists every visible column of row as a markdown table.
func rowMarkdown(ctrl *tableview.Controller, row tableview.Row) string {
	var b strings.Builder
	title := ""
	switch r := row.(type) {
	case *todo.TodoRow:
		title = r.Cell(todo.ColTask)
	case *todo.ApplicationRow:
		title = r.Application().Label()
	}
	if title != "" {
		fmt.Fprintf(&b, "## %s\n\n", markdownEscape(title))
	}
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, col := range ctrl.VisibleColumns() {
		if col == tableview.ActionsColumn {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", markdownEscape(ctrl.Label(col)), markdownEscape(ctrl.Text(row, col)))
	}
	return b.String()
}

func (m *model) appendLog(line string) {
	if line == "" {
		return
	}
	m.logLines = append(m.logLines, time.Now().Format("15:04:05")+" "+line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = toastDuration
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) saveConfig() {
	tab := m.current()
	m.cfg.LastTable = tab.id
	m.cfg.Theme = m.renderer.Theme().String()
	show := m.showLogs
	m.cfg.ShowLogs = &show
	if m.book != nil && m.book.Path() != "" {
		m.cfg.LastData = m.book.Path()
	}
	if err := saveUIConfig(m.cfg, m.cfgPath); err != nil {
		m.log.Warn("save ui config failed", "path", m.cfgPath, "err", err)
	}
}

func (m *model) View() string {
	var builder strings.Builder
	tab := m.current()

	builder.WriteString(m.renderTopBar())
	builder.WriteRune('\n')

	gridView := tab.grid.View(m.styles, tab.ctrl.Query())
	if m.showPreview {
		title := m.styles.columnTitle.Render("Preview")
		panel := m.styles.panel.Width(m.preview.Width).Render(title + "\n" + m.preview.View())
		gridView = lipgloss.JoinHorizontal(lipgloss.Top, gridView, panel)
	}
	builder.WriteString(gridView)
	builder.WriteRune('\n')

	if m.showLogs {
		title := m.styles.columnTitle.Render("Activity")
		builder.WriteString(m.styles.panel.Width(max(m.width-2, 10)).Render(title + "\n" + m.logs.View()))
		builder.WriteRune('\n')
	}
	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		builder.WriteRune('\n')
	}
	builder.WriteString(m.renderStatus())

	view := builder.String()
	if menu := tab.menu; menu.IsOpen() {
		pos := menu.Position()
		view = placeOverlay(pos.X, pos.Y, m.renderMenu(menu), view)
	}
	if m.optPanel != nil {
		panel := m.renderOptions()
		x, y := m.optionsPosition(panel)
		view = placeOverlay(x, y, panel, view)
	}
	if m.viewPanel != nil {
		panel := m.renderViews()
		x, y := m.viewsPosition(panel)
		view = placeOverlay(x, y, panel, view)
	}
	if m.inputMode != inputNone {
		view = m.overlayInput(view)
	}
	return m.styles.app.Render(view)
}

func (m *model) renderTopBar() string {
	var tabs []string
	for i, tab := range m.tabs {
		label := fmt.Sprintf("%s (%d)", tab.title, len(tab.ctrl.Rows()))
		if i == m.active {
			tabs = append(tabs, m.styles.tabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.tabInactive.Render(label))
		}
	}
	title := m.styles.topBar.Render("jobtracker")
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, tabs...)...)
}

func (m *model) renderStatus() string {
	tab := m.current()
	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("Rows: %d/%d", len(tab.ctrl.DisplayedRows()), len(tab.ctrl.Rows()))),
	}
	if col := tab.grid.CurrentColumn(); col != "" {
		segments = append(segments, m.styles.statusSeg.Render("Column: "+tab.ctrl.Label(col)))
	}
	if q := tab.ctrl.Query(); q != "" {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Search: %q", q)))
	}
	if n := len(tab.ctrl.Filters()); n > 0 {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Filters: %d", n)))
	}
	if group := tab.ctrl.Group(); group != "" {
		segments = append(segments, m.styles.statusSeg.Render("Grouped by "+tab.ctrl.Label(group)))
	}
	if hidden := tab.ctrl.HiddenColumns(); len(hidden) > 0 {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Hidden: %d", len(hidden))))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, "│")
	return m.styles.statusBar.Width(m.width).Render(content)
}

func (m *model) overlayInput(view string) string {
	overlayWidth := min(64, m.width-4)
	if overlayWidth < 24 {
		overlayWidth = 24
	}
	m.input.Width = overlayWidth - 8
	var content strings.Builder
	content.WriteString(m.styles.cmdPrompt.Render(m.inputPrompt))
	content.WriteRune('\n')
	content.WriteString(m.input.View())
	content.WriteRune('\n')
	hint := "enter confirm • esc cancel"
	if m.inputMode == inputSearch {
		hint = "typing filters live • enter keep • esc clear"
	}
	content.WriteString(m.styles.cmdHint.Render(hint))
	overlay := m.styles.cmdOverlay.Width(overlayWidth).Render(content.String())
	x := max((m.width-lipgloss.Width(overlay))/2, 0)
	y := max((m.height-lipgloss.Height(overlay))/2, 0)
	return placeOverlay(x, y, overlay, view)
}
