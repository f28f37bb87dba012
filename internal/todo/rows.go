package todo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bekirdag/jobtracker/internal/coltype"
	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// Table ids.
const (
	TodoTable         = "todo"
	ApplicationsTable = "applications"
)

// To-do column ids.
const (
	ColApplication    = "application"
	ColTask           = "task"
	ColDueDate        = "due_date"
	ColStatus         = "status"
	ColLocation       = "task_location"
	ColNotes          = "notes"
	ColDocumentsLinks = "documents_links"
)

// TodoColumns are the fixed columns of the to-do table.
func TodoColumns() []tableview.ColumnSpec {
	return []tableview.ColumnSpec{
		{ID: ColApplication, Label: "Application", TypeID: coltype.TypeText, DefaultWidth: 200},
		{ID: ColTask, Label: "Task", TypeID: coltype.TypeText, DefaultWidth: 220},
		{ID: ColDueDate, Label: "Due date", TypeID: coltype.TypeDate, DefaultWidth: 120},
		{ID: ColStatus, Label: "Status", TypeID: coltype.TypeSelectLocal, DefaultWidth: 130},
		{ID: ColLocation, Label: "Location", TypeID: coltype.TypeText, DefaultWidth: 140, TypeEditable: true},
		{ID: ColNotes, Label: "Notes", TypeID: coltype.TypeText, DefaultWidth: 220, TypeEditable: true},
		{ID: ColDocumentsLinks, Label: "Links", TypeID: coltype.TypeLinks, DefaultWidth: 160},
		{ID: tableview.ActionsColumn, Label: "", TypeID: coltype.TypeText, DefaultWidth: 80},
	}
}

// StatusOptions are the initial choices of the to-do status column.
func StatusOptions() []options.Option {
	return []options.Option{
		{Label: "Not started", Color: "#CBD5E0", Editable: true},
		{Label: "In progress", Color: "#F6C453", Editable: true},
		{Label: "Done", Color: "#68D391", Editable: true},
	}
}

// TodoRow is one to-do item of one application.
type TodoRow struct {
	book   *Book
	app    *Application
	itemID string
}

// TodoRows flattens every application's items in file order.
func (b *Book) TodoRows() []*TodoRow {
	var out []*TodoRow
	for _, app := range b.apps {
		for _, item := range app.Todos() {
			out = append(out, &TodoRow{book: b, app: app, itemID: item.ID})
		}
	}
	return out
}

// AddTodo appends a new item to app and returns its row.
func (b *Book) AddTodo(app *Application, task string) (*TodoRow, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, trackerrors.NewValidationError("task cannot be empty")
	}
	item := coltype.TodoItem{ID: coltype.NewEntryID(), Task: task, Status: StatusOptions()[0].Label}
	app.setTodos(append(app.Todos(), item))
	b.notify(Change{Table: TodoTable, Application: app.ID(), Item: item.ID, Column: ColTask, New: task})
	return &TodoRow{book: b, app: app, itemID: item.ID}, nil
}

// Delete removes the row's item from its application.
func (r *TodoRow) Delete() bool {
	items := r.app.Todos()
	for i, item := range items {
		if item.ID == r.itemID {
			r.app.setTodos(append(items[:i:i], items[i+1:]...))
			r.book.notify(Change{Table: TodoTable, Application: r.app.ID(), Item: r.itemID, Column: ColTask, Old: item.Task})
			return true
		}
	}
	return false
}

// Key identifies the row across reloads.
func (r *TodoRow) Key() string { return fmt.Sprintf("%d/%s", r.app.ID(), r.itemID) }

func (r *TodoRow) Application() *Application { return r.app }

func (r *TodoRow) item() (coltype.TodoItem, int, bool) {
	for i, item := range r.app.Todos() {
		if item.ID == r.itemID {
			return item, i, true
		}
	}
	return coltype.TodoItem{}, -1, false
}

func (r *TodoRow) Cell(col string) string {
	if col == ColApplication {
		return r.app.Label()
	}
	item, _, ok := r.item()
	if !ok {
		return ""
	}
	if f := todoField(&item, col); f != nil {
		return *f
	}
	return ""
}

func todoField(item *coltype.TodoItem, col string) *string {
	switch col {
	case ColTask:
		return &item.Task
	case ColDueDate:
		return &item.DueDate
	case ColStatus:
		return &item.Status
	case ColLocation:
		return &item.TaskLocation
	case ColNotes:
		return &item.Notes
	case ColDocumentsLinks:
		return &item.DocumentsLinks
	}
	return nil
}

// Commit writes raw into the item and re-serializes the application's list.
func (r *TodoRow) Commit(col, raw string) error {
	items := r.app.Todos()
	_, idx, ok := r.item()
	if !ok {
		return trackerrors.NewValidationError("to-do item no longer exists")
	}
	field := todoField(&items[idx], col)
	if field == nil {
		return trackerrors.NewValidationError(fmt.Sprintf("column %q is read only", col))
	}
	if col == ColTask && strings.TrimSpace(raw) == "" {
		return trackerrors.NewValidationError("task cannot be empty")
	}
	old := *field
	*field = raw
	r.app.setTodos(items)
	r.book.notify(Change{Table: TodoTable, Application: r.app.ID(), Item: r.itemID, Column: col, Old: old, New: raw})
	return nil
}

func (r *TodoRow) SearchExtras() []string { return r.app.SearchText() }

// fieldKind says how an application column is stored in the record.
type fieldKind int

const (
	stringField fieldKind = iota
	numberField
	boolField
	listField
)

type appColumn struct {
	spec tableview.ColumnSpec
	kind fieldKind
}

var appColumns = []appColumn{
	{tableview.ColumnSpec{ID: "company_name", Label: "Company", TypeID: coltype.TypeText, DefaultWidth: 180}, stringField},
	{tableview.ColumnSpec{ID: "position", Label: "Position", TypeID: coltype.TypeText, DefaultWidth: 180}, stringField},
	{tableview.ColumnSpec{ID: "job_type", Label: "Job type", TypeID: coltype.TypeSelectJobTypes, DefaultWidth: 140}, stringField},
	{tableview.ColumnSpec{ID: "stage", Label: "Stage", TypeID: coltype.TypeSelectStages, DefaultWidth: 140}, stringField},
	{tableview.ColumnSpec{ID: "outcome", Label: "Outcome", TypeID: coltype.TypeSelectOutcomes, DefaultWidth: 130}, stringField},
	{tableview.ColumnSpec{ID: "location", Label: "Location", TypeID: coltype.TypeText, DefaultWidth: 140, TypeEditable: true}, stringField},
	{tableview.ColumnSpec{ID: "application_date", Label: "Applied", TypeID: coltype.TypeDate, DefaultWidth: 120}, stringField},
	{tableview.ColumnSpec{ID: "interview_datetime", Label: "Interview", TypeID: coltype.TypeDateTime, DefaultWidth: 160}, stringField},
	{tableview.ColumnSpec{ID: "followup_date", Label: "Follow-up", TypeID: coltype.TypeDate, DefaultWidth: 120}, stringField},
	{tableview.ColumnSpec{ID: "interview_rounds", Label: "Rounds", TypeID: coltype.TypeNumber, DefaultWidth: 80}, numberField},
	{tableview.ColumnSpec{ID: "company_score", Label: "Company score", TypeID: coltype.TypeNumber, DefaultWidth: 120}, numberField},
	{tableview.ColumnSpec{ID: "my_interview_score", Label: "My score", TypeID: coltype.TypeRating, DefaultWidth: 110}, numberField},
	{tableview.ColumnSpec{ID: "contacts", Label: "Contacts", TypeID: coltype.TypeContacts, DefaultWidth: 180}, listField},
	{tableview.ColumnSpec{ID: "documents_files", Label: "Documents", TypeID: coltype.TypeDocuments, DefaultWidth: 180}, listField},
	{tableview.ColumnSpec{ID: "todo_items", Label: "To-dos", TypeID: coltype.TypeTodo, DefaultWidth: 180}, listField},
	{tableview.ColumnSpec{ID: "favorite", Label: "Favorite", TypeID: coltype.TypeCheckbox, DefaultWidth: 80}, boolField},
	{tableview.ColumnSpec{ID: "notes", Label: "Notes", TypeID: coltype.TypeText, DefaultWidth: 220, TypeEditable: true}, stringField},
	{tableview.ColumnSpec{ID: tableview.ActionsColumn, Label: "", TypeID: coltype.TypeText, DefaultWidth: 80}, stringField},
}

// ApplicationColumns are the fixed columns of the applications table. The
// company score column is bounded by the configured score scale.
func ApplicationColumns(scoreMin, scoreMax float64) []tableview.ColumnSpec {
	out := make([]tableview.ColumnSpec, len(appColumns))
	for i, c := range appColumns {
		out[i] = c.spec
		if c.spec.ID == "company_score" && scoreMax > scoreMin {
			lo, hi := scoreMin, scoreMax
			out[i].Config = coltype.ColumnConfig{Min: &lo, Max: &hi}
		}
	}
	return out
}

func appColumnKind(col string) (fieldKind, bool) {
	for _, c := range appColumns {
		if c.spec.ID == col {
			return c.kind, col != tableview.ActionsColumn
		}
	}
	return stringField, false
}

// ApplicationRow is one application in the applications table.
type ApplicationRow struct {
	book *Book
	app  *Application
}

func (b *Book) ApplicationRows() []*ApplicationRow {
	out := make([]*ApplicationRow, len(b.apps))
	for i, app := range b.apps {
		out[i] = &ApplicationRow{book: b, app: app}
	}
	return out
}

func (r *ApplicationRow) Key() string { return strconv.Itoa(r.app.ID()) }

func (r *ApplicationRow) Application() *Application { return r.app }

func (r *ApplicationRow) Cell(col string) string {
	kind, ok := appColumnKind(col)
	if !ok {
		return ""
	}
	if kind == listField {
		return r.app.listText(col)
	}
	return r.app.String(col)
}

// Commit stores raw using the JSON shape of the field. Date edits that put
// the interview or follow-up before the application date are rejected, and
// the outcome rules may move the stage afterwards.
func (r *ApplicationRow) Commit(col, raw string) error {
	kind, ok := appColumnKind(col)
	if !ok {
		return trackerrors.NewValidationError(fmt.Sprintf("column %q is read only", col))
	}
	if err := r.checkDates(col, raw); err != nil {
		return err
	}
	old := r.Cell(col)
	prevStage := r.app.String("stage")
	var encoded json.RawMessage
	switch kind {
	case numberField:
		if strings.TrimSpace(raw) == "" {
			encoded = json.RawMessage("null")
			break
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return trackerrors.NewValidationError(fmt.Sprintf("%q is not a number", raw))
		}
		encoded = json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))
	case boolField:
		encoded = json.RawMessage(strconv.FormatBool(coltype.ParseBool(raw)))
	case listField:
		if !json.Valid([]byte(raw)) {
			return trackerrors.NewValidationError(fmt.Sprintf("column %q expects a JSON list", col))
		}
		encoded = json.RawMessage(raw)
	default:
		if strings.TrimSpace(raw) == "" && col != "company_name" && col != "position" {
			encoded = json.RawMessage("null")
			break
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return trackerrors.NewInternalError("encode field", err)
		}
		encoded = data
	}
	r.app.set(col, encoded)
	r.book.notify(Change{Table: ApplicationsTable, Application: r.app.ID(), Column: col, Old: old, New: raw})
	if c, moved := r.applyStageRules(prevStage); moved {
		r.book.notify(c)
	}
	return nil
}

func (r *ApplicationRow) SearchExtras() []string { return r.app.SearchText() }
