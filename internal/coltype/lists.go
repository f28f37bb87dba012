package coltype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TodoItem is one entry of a todo.items cell.
type TodoItem struct {
	ID             string `json:"id"`
	Task           string `json:"task"`
	DueDate        string `json:"due_date,omitempty"`
	Status         string `json:"status,omitempty"`
	TaskLocation   string `json:"task_location,omitempty"`
	Notes          string `json:"notes,omitempty"`
	DocumentsLinks string `json:"documents_links,omitempty"`
}

// Contact is one entry of a contacts.list cell.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Information string `json:"information,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Link is one entry of a links.list cell.
type Link struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Document is one entry of a documents.list cell. Only metadata is kept;
// file contents live outside the table.
type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	UploadedAt  string `json:"uploaded_at,omitempty"`
}

// NewEntryID returns an identifier for an entry created in the UI.
func NewEntryID() string {
	return uuid.NewString()
}

// listShape describes one structured list type. required and ident point at
// fields of the entry so the generic codec can read and fill them.
type listShape[T any] struct {
	id       string
	kind     Kind
	noun     string
	required func(*T) *string
	ident    func(*T) *string
	trim     func(T) T
	fromText func(string) T
	summary  func(T) string
}

type listType[T any] struct {
	listShape[T]
}

func newTodoType() listType[TodoItem] {
	return listType[TodoItem]{listShape[TodoItem]{
		id:       TypeTodo,
		kind:     KindTodo,
		noun:     "task",
		required: func(t *TodoItem) *string { return &t.Task },
		ident:    func(t *TodoItem) *string { return &t.ID },
		trim: func(t TodoItem) TodoItem {
			t.ID = strings.TrimSpace(t.ID)
			t.Task = strings.TrimSpace(t.Task)
			t.DueDate = strings.TrimSpace(t.DueDate)
			t.Status = strings.TrimSpace(t.Status)
			t.TaskLocation = strings.TrimSpace(t.TaskLocation)
			t.Notes = strings.TrimSpace(t.Notes)
			t.DocumentsLinks = strings.TrimSpace(t.DocumentsLinks)
			return t
		},
		fromText: func(s string) TodoItem { return TodoItem{Task: s} },
		summary:  func(t TodoItem) string { return t.Task },
	}}
}

func newContactsType() listType[Contact] {
	return listType[Contact]{listShape[Contact]{
		id:       TypeContacts,
		kind:     KindContacts,
		noun:     "contact",
		required: func(c *Contact) *string { return &c.Name },
		ident:    func(c *Contact) *string { return &c.ID },
		trim: func(c Contact) Contact {
			c.ID = strings.TrimSpace(c.ID)
			c.Name = strings.TrimSpace(c.Name)
			c.Information = strings.TrimSpace(c.Information)
			c.Email = strings.TrimSpace(c.Email)
			c.Phone = strings.TrimSpace(c.Phone)
			return c
		},
		fromText: func(s string) Contact { return Contact{Name: s} },
		summary:  func(c Contact) string { return c.Name },
	}}
}

func newLinksType() listType[Link] {
	return listType[Link]{listShape[Link]{
		id:       TypeLinks,
		kind:     KindLinks,
		noun:     "link",
		required: func(l *Link) *string { return &l.URL },
		ident:    func(l *Link) *string { return &l.ID },
		trim: func(l Link) Link {
			l.ID = strings.TrimSpace(l.ID)
			l.URL = strings.TrimSpace(l.URL)
			l.Label = strings.TrimSpace(l.Label)
			return l
		},
		fromText: func(s string) Link { return Link{URL: s} },
		summary: func(l Link) string {
			if l.Label != "" {
				return l.Label
			}
			return l.URL
		},
	}}
}

func newDocumentsType() listType[Document] {
	return listType[Document]{listShape[Document]{
		id:       TypeDocuments,
		kind:     KindDocuments,
		noun:     "document",
		required: func(d *Document) *string { return &d.Name },
		ident:    func(d *Document) *string { return &d.ID },
		trim: func(d Document) Document {
			d.ID = strings.TrimSpace(d.ID)
			d.Name = strings.TrimSpace(d.Name)
			d.ContentType = strings.TrimSpace(d.ContentType)
			d.UploadedAt = strings.TrimSpace(d.UploadedAt)
			if d.Size < 0 {
				d.Size = 0
			}
			return d
		},
		fromText: func(s string) Document { return Document{Name: s} },
		summary:  func(d Document) string { return d.Name },
	}}
}

func (l listType[T]) ID() string { return l.id }
func (l listType[T]) Kind() Kind { return l.kind }
func (l listType[T]) Policy() OverridePolicy { return OverridePolicy{} }

func (l listType[T]) Parse(raw string, _ *Context) any {
	return l.decode(raw)
}

// decode reads the JSON array form. Text that is not JSON is treated as a
// legacy delimited list.
func (l listType[T]) decode(raw string) []T {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []T{}
	}
	if items, ok := l.decodeJSON(s); ok {
		return items
	}
	return l.recoverLegacy(s)
}

func (l listType[T]) decodeJSON(s string) ([]T, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		if s[0] != '{' && s[0] != '"' {
			return nil, false
		}
		var single json.RawMessage
		if json.Unmarshal([]byte(s), &single) != nil {
			return nil, false
		}
		elems = []json.RawMessage{single}
	}
	out := make([]T, 0, len(elems))
	for i, el := range elems {
		el = bytes.TrimSpace(el)
		if len(el) == 0 {
			continue
		}
		var item T
		switch el[0] {
		case '{':
			if json.Unmarshal(el, &item) != nil {
				continue
			}
		case '"':
			var text string
			if json.Unmarshal(el, &text) != nil {
				continue
			}
			item = l.fromText(text)
		default:
			continue
		}
		item = l.trim(item)
		if *l.required(&item) == "" {
			continue
		}
		if id := l.ident(&item); *id == "" {
			*id = l.derivedID(i, string(el))
		}
		out = append(out, item)
	}
	return out, true
}

func (l listType[T]) recoverLegacy(s string) []T {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})
	out := make([]T, 0, len(parts))
	for i, part := range parts {
		text := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-*•"))
		if text == "" {
			continue
		}
		item := l.fromText(text)
		*l.ident(&item) = l.derivedID(i, text)
		out = append(out, item)
	}
	return out
}

// derivedID is stable for the same position and content so recovered entries
// keep their identity across reloads.
func (l listType[T]) derivedID(index int, content string) string {
	name := fmt.Sprintf("%s/%d/%s", Family(l.id), index, content)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// coerce accepts the structured slice or, for convenience, a serialized string.
func (l listType[T]) coerce(v any) ([]T, bool) {
	switch items := v.(type) {
	case []T:
		return items, true
	case *[]T:
		if items == nil {
			return nil, true
		}
		return *items, true
	case string:
		return l.decode(items), true
	case nil:
		return nil, true
	}
	return nil, false
}

func (l listType[T]) normalize(items []T) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		item = l.trim(item)
		req := *l.required(&item)
		if req == "" {
			continue
		}
		if id := l.ident(&item); *id == "" {
			*id = l.derivedID(i, req)
		}
		out = append(out, item)
	}
	return out
}

func (l listType[T]) Serialize(v any, _ *Context) string {
	items, ok := l.coerce(v)
	if !ok {
		return "[]"
	}
	data, err := json.Marshal(l.normalize(items))
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (l listType[T]) Validate(v any, _ *Context) Validation {
	items, ok := v.([]T)
	if !ok {
		return invalid(fmt.Sprintf("value is not a %s list", l.noun))
	}
	for i := range items {
		if strings.TrimSpace(*l.required(&items[i])) == "" {
			return invalid(fmt.Sprintf("%s %d is empty", l.noun, i+1))
		}
	}
	return valid
}

func (l listType[T]) Format(v any, _ *Context) string {
	items, ok := l.coerce(v)
	if !ok {
		return ""
	}
	return strings.Join(l.summaries(items), ", ")
}

func (l listType[T]) summaries(items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(l.summary(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (l listType[T]) RenderCell(args CellArgs) string {
	items, _ := l.coerce(args.Value)
	return renderList(l.summaries(items), l.noun, args)
}
