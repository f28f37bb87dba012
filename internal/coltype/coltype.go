// Package coltype defines column types: how a column's logical type parses,
// serializes, validates, formats and renders cell values that are stored as
// serialized strings. Types are looked up by identifier in a static Registry.
package coltype

import (
	"log/slog"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/settings"
)

// Kind is the structural shape a column type commits to.
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindSelect    Kind = "select"
	KindDate      Kind = "date"
	KindCheckbox  Kind = "checkbox"
	KindRating    Kind = "rating"
	KindContacts  Kind = "contacts"
	KindLinks     Kind = "links"
	KindDocuments Kind = "documents"
	KindTodo      Kind = "todo"
)

// IsList reports whether values of k are structured arrays.
func (k Kind) IsList() bool {
	switch k {
	case KindContacts, KindLinks, KindDocuments, KindTodo:
		return true
	}
	return false
}

// ColumnType is the contract every registered type implements.
//
// Parse and Serialize are total: malformed input degrades to the type's empty
// value. Validate is advisory; callers decide whether to block a commit.
type ColumnType interface {
	ID() string
	Kind() Kind
	Parse(raw string, c *Context) any
	Serialize(v any, c *Context) string
	Validate(v any, c *Context) Validation
	// Format renders v as plain text. Filtering, sorting, grouping and
	// aggregation all work on this text.
	Format(v any, c *Context) string
	RenderCell(args CellArgs) string
	Policy() OverridePolicy
}

// OptionSource is implemented by every select kind type.
type OptionSource interface {
	Options(c *Context) []options.Option
	SelectActions(c *Context) options.Actions
}

// OverridePolicy says which option edits a type permits.
type OverridePolicy struct {
	AllowAdd     bool
	AllowRelabel bool
	AllowHide    bool
}

// ColumnConfig is the per-column configuration a type may read.
type ColumnConfig struct {
	Min *float64
	Max *float64
}

// Context is the per-render environment of a cell.
type Context struct {
	Settings    *settings.Settings
	Writer      settings.Writer
	ColumnKey   string
	ColumnLabel string
	Config      ColumnConfig
	SelectState *options.LocalState
	Log         *slog.Logger
}

func (c *Context) config() ColumnConfig {
	if c == nil {
		return ColumnConfig{}
	}
	return c.Config
}

// settingsSnapshot prefers the writer's latest snapshot over the render copy.
func (c *Context) settingsSnapshot() *settings.Settings {
	if c == nil {
		return nil
	}
	if c.Writer != nil {
		if cur := c.Writer.Current(); cur != nil {
			return cur
		}
	}
	return c.Settings
}

// Validation is the advisory result of ColumnType.Validate.
type Validation struct {
	Valid  bool
	Reason string
}

var valid = Validation{Valid: true}

func invalid(reason string) Validation {
	return Validation{Valid: false, Reason: reason}
}

// Err converts a failed validation to an error; nil when valid.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return trackerrors.NewValidationError(v.Reason)
}

// CellArgs is the input of the cell render contract. Renderers must not
// mutate Value; edits are reported through OnCommit with a structured value.
type CellArgs struct {
	Value     any
	Raw       string
	CanEdit   bool
	Highlight string
	Options   []options.Option
	Context   *Context
	Actions   options.Actions
	OnCommit  func(next any)
	Width     int
	Selected  bool
}

// Commit invokes OnCommit when the cell is editable.
func (a CellArgs) Commit(next any) bool {
	if !a.CanEdit || a.OnCommit == nil {
		return false
	}
	a.OnCommit(next)
	return true
}
