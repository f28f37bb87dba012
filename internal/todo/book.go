// Package todo adapts an exported list of job applications to the table
// view: one row per to-do item for the to-do table and one row per
// application for the applications table. Edits change the in-memory
// records only.
package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bekirdag/jobtracker/internal/coltype"
	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// Change describes one committed cell.
type Change struct {
	Table       string `json:"table"`
	Application int    `json:"application"`
	Item        string `json:"item,omitempty"`
	Column      string `json:"column"`
	Old         string `json:"old"`
	New         string `json:"new"`
}

// Application is one record of the export. Unknown fields are kept as read.
type Application struct {
	fields map[string]json.RawMessage
}

// Book holds the loaded applications.
type Book struct {
	path     string
	apps     []*Application
	onChange func(Change)
	stages   func() []string
}

// Load reads a JSON export: either an array of applications or an object
// with an "applications" array.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trackerrors.NewLoadError(fmt.Sprintf("read %s", path), err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, err
	}
	b.path = path
	return b, nil
}

// Parse decodes an export held in memory.
func Parse(data []byte) (*Book, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Book{}, nil
	}
	var records []map[string]json.RawMessage
	if data[0] == '{' {
		var wrapper struct {
			Applications []map[string]json.RawMessage `json:"applications"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, trackerrors.NewLoadError("decode applications", err)
		}
		records = wrapper.Applications
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, trackerrors.NewLoadError("decode applications", err)
	}
	b := &Book{apps: make([]*Application, 0, len(records))}
	for i, rec := range records {
		if rec == nil {
			continue
		}
		app := &Application{fields: rec}
		if app.ID() == 0 {
			app.set("id", json.RawMessage(strconv.Itoa(i+1)))
		}
		b.apps = append(b.apps, app)
	}
	return b, nil
}

// Path is the file the book was loaded from.
func (b *Book) Path() string { return b.path }

// OnChange registers a callback invoked after every successful commit.
func (b *Book) OnChange(fn func(Change)) { b.onChange = fn }

func (b *Book) notify(c Change) {
	if b.onChange != nil {
		b.onChange(c)
	}
}

func (b *Book) Applications() []*Application {
	return append([]*Application(nil), b.apps...)
}

// Application returns the record with id.
func (b *Book) Application(id int) (*Application, bool) {
	for _, a := range b.apps {
		if a.ID() == id {
			return a, true
		}
	}
	return nil, false
}

func (a *Application) set(key string, raw json.RawMessage) {
	if a.fields == nil {
		a.fields = map[string]json.RawMessage{}
	}
	a.fields[key] = raw
}

// Raw returns the stored JSON of key.
func (a *Application) Raw(key string) json.RawMessage {
	return a.fields[key]
}

func (a *Application) ID() int {
	f, ok := a.Number("id")
	if !ok {
		return 0
	}
	return int(f)
}

// String reads a string field; numbers and booleans are formatted.
func (a *Application) String(key string) string {
	raw := bytes.TrimSpace(a.fields[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	if f, ok := a.Number(key); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}

func (a *Application) Number(key string) (float64, bool) {
	var f float64
	if err := json.Unmarshal(a.fields[key], &f); err != nil {
		var s string
		if json.Unmarshal(a.fields[key], &s) != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return parsed, err == nil
	}
	return f, true
}

func (a *Application) Company() string  { return a.String("company_name") }
func (a *Application) Position() string { return a.String("position") }

// Label is the display name of the application.
func (a *Application) Label() string {
	company, position := a.Company(), a.Position()
	switch {
	case company == "":
		return position
	case position == "":
		return company
	}
	return company + " · " + position
}

// SearchText is the id, application id, company and position composite the
// global search matches against.
func (a *Application) SearchText() []string {
	return []string{strconv.Itoa(a.ID()), a.String("application_id"), a.Company(), a.Position()}
}

var todoCodec = coltype.Default().MustResolve(coltype.TypeTodo)

// listText returns a list field as the string a list codec parses: JSON
// arrays verbatim, legacy strings unwrapped.
func (a *Application) listText(key string) string {
	raw := bytes.TrimSpace(a.fields[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		return a.String(key)
	}
	return string(raw)
}

// Todos decodes the application's to-do items.
func (a *Application) Todos() []coltype.TodoItem {
	items, _ := todoCodec.Parse(a.listText("todo_items"), nil).([]coltype.TodoItem)
	return items
}

func (a *Application) setTodos(items []coltype.TodoItem) {
	a.set("todo_items", json.RawMessage(todoCodec.Serialize(items, nil)))
}
