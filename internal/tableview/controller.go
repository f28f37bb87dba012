// Package tableview derives the presentation of one named table: column
// order, visibility, pinning, labels, filters, sort, grouping, aggregates and
// widths. Order, hidden set, pin and labels persist through a
// PreferencesStore; everything else lives for the session.
package tableview

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bekirdag/jobtracker/internal/coltype"
	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
	"github.com/bekirdag/jobtracker/internal/logger"
)

// ActionsColumn is never hidden, pinned or moved.
const ActionsColumn = "actions"

// ColumnSpec is one fixed column of a table.
type ColumnSpec struct {
	ID           string
	Label        string
	TypeID       string
	DefaultWidth int
	// TypeEditable columns accept SetColumnType.
	TypeEditable bool
	Config       coltype.ColumnConfig
}

// Row is the host's record. The controller only reads serialized cell
// strings and hands serialized strings back on commit.
type Row interface {
	Cell(colID string) string
	Commit(colID, raw string) error
}

// SearchExtras is implemented by rows that contribute derived text, such as
// an application composite, to the global query.
type SearchExtras interface {
	SearchExtras() []string
}

// ContextFunc supplies the per-column render environment.
type ContextFunc func(colID string) *coltype.Context

// Option configures a Controller.
type Option func(*Controller)

func WithStore(store PreferencesStore) Option {
	return func(c *Controller) { c.store = store }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = logger.OrDiscard(log) }
}

// WithDefaultSort orders rows by dateCol ascending, then tieCol, while no
// explicit sort is set.
func WithDefaultSort(dateCol, tieCol string) Option {
	return func(c *Controller) {
		c.defaultDate = dateCol
		c.defaultTie = tieCol
	}
}

func WithContext(fn ContextFunc) Option {
	return func(c *Controller) { c.contextFn = fn }
}

// Controller is the view state of one table instance. It is not safe for
// concurrent use; the host drives it from its event loop.
type Controller struct {
	tableID  string
	specs    []ColumnSpec
	index    map[string]int
	known    []string
	registry *coltype.Registry
	types    map[string]coltype.ColumnType

	store     PreferencesStore
	log       *slog.Logger
	contextFn ContextFunc

	defaultDate string
	defaultTie  string

	order      []string
	hidden     map[string]bool
	pinned     string
	labels     map[string]string
	filters    map[string]string
	query      string
	sort       *Sort
	group      string
	collapsed  map[string]bool
	aggregates map[string]Aggregate
	widths     map[string]int
	drag       dragState

	rows []Row

	fold        cases.Caser
	groupOrder  *collate.Collator
	localeOrder *collate.Collator
}

// NewController builds the controller and hydrates it from the store. It
// fails only when a column names an unknown type.
func NewController(tableID string, specs []ColumnSpec, registry *coltype.Registry, opts ...Option) (*Controller, error) {
	if registry == nil {
		registry = coltype.Default()
	}
	c := &Controller{
		tableID:     tableID,
		specs:       append([]ColumnSpec(nil), specs...),
		index:       make(map[string]int, len(specs)),
		registry:    registry,
		types:       make(map[string]coltype.ColumnType, len(specs)),
		log:         logger.Discard(),
		hidden:      map[string]bool{},
		labels:      map[string]string{},
		filters:     map[string]string{},
		collapsed:   map[string]bool{},
		aggregates:  map[string]Aggregate{},
		widths:      map[string]int{},
		fold:        cases.Fold(),
		groupOrder:  collate.New(language.Und, collate.IgnoreCase),
		localeOrder: collate.New(language.Und),
	}
	for i, spec := range c.specs {
		if _, dup := c.index[spec.ID]; dup {
			return nil, trackerrors.New(trackerrors.CategoryRegistry, trackerrors.CodeUnexpected,
				fmt.Sprintf("duplicate column %q in table %q", spec.ID, tableID))
		}
		def, err := registry.Resolve(spec.TypeID)
		if err != nil {
			return nil, err
		}
		c.index[spec.ID] = i
		c.known = append(c.known, spec.ID)
		c.types[spec.ID] = def
	}
	for _, opt := range opts {
		opt(c)
	}
	c.order = Normalize(nil, c.known)
	c.hydrate()
	return c, nil
}

func (c *Controller) hydrate() {
	if c.store == nil {
		return
	}
	prefs, err := c.store.Load(c.tableID)
	if err != nil {
		c.log.Warn("view preferences load failed", "table", c.tableID, "err", err)
		return
	}
	c.order = Normalize(prefs.Order, c.known)
	for _, id := range prefs.Hidden {
		if c.hideable(id) {
			c.hidden[id] = true
		}
	}
	for id, label := range prefs.Labels {
		if c.has(id) {
			c.setLabel(id, label)
		}
	}
	if prefs.Pinned != nil {
		c.pinned = *prefs.Pinned
	}
	c.enforcePin()
	c.log.Debug("view preferences loaded", "table", c.tableID, "order", c.order, "pinned", c.pinned)
}

// persist writes the persisted fields. Failures are logged; the in-memory
// state stays authoritative.
func (c *Controller) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.tableID, c.Prefs()); err != nil {
		c.log.Warn("view preferences save failed", "table", c.tableID, "err", err)
	}
}

// Prefs is the persisted snapshot of the current state.
func (c *Controller) Prefs() Prefs {
	labels := make(map[string]string, len(c.labels))
	for k, v := range c.labels {
		labels[k] = v
	}
	p := Prefs{
		Order:  append([]string(nil), c.order...),
		Hidden: sortedKeys(c.hidden),
		Labels: labels,
	}
	if c.pinned != "" {
		pinned := c.pinned
		p.Pinned = &pinned
	}
	return p
}

func (c *Controller) TableID() string { return c.tableID }

func (c *Controller) has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Columns returns the fixed column specs in their default order.
func (c *Controller) Columns() []ColumnSpec {
	return append([]ColumnSpec(nil), c.specs...)
}

// Column returns the ColumnSpec of id.
func (c *Controller) Column(id string) (ColumnSpec, bool) {
	i, ok := c.index[id]
	if !ok {
		return ColumnSpec{}, false
	}
	return c.specs[i], true
}

// Type returns the column's current type definition.
func (c *Controller) Type(id string) coltype.ColumnType {
	return c.types[id]
}

// SetColumnType switches a type-editable column to typeID for the session.
func (c *Controller) SetColumnType(id, typeID string) error {
	spec, ok := c.Column(id)
	if !ok {
		return trackerrors.NewValidationError(fmt.Sprintf("unknown column %q", id))
	}
	if !spec.TypeEditable {
		return trackerrors.NewValidationError(fmt.Sprintf("column %q has a fixed type", id))
	}
	def, err := c.registry.Resolve(typeID)
	if err != nil {
		return err
	}
	c.types[id] = def
	if !aggregateAllowed(def.Kind(), c.aggregates[id]) {
		delete(c.aggregates, id)
	}
	return nil
}

// Context returns the render environment of column id.
func (c *Controller) Context(id string) *coltype.Context {
	var ctx coltype.Context
	if c.contextFn != nil {
		if base := c.contextFn(id); base != nil {
			ctx = *base
		}
	}
	if spec, ok := c.Column(id); ok {
		ctx.ColumnKey = id
		ctx.ColumnLabel = c.Label(id)
		ctx.Config = spec.Config
	}
	if ctx.Log == nil {
		ctx.Log = c.log
	}
	return &ctx
}

// Value parses the row's cell for id.
func (c *Controller) Value(r Row, id string) any {
	def := c.types[id]
	if def == nil || r == nil {
		return nil
	}
	return def.Parse(r.Cell(id), c.Context(id))
}

// Text is the plain text of a cell that filtering, sorting, grouping,
// aggregation and fitting operate on.
func (c *Controller) Text(r Row, id string) string {
	def := c.types[id]
	if def == nil || r == nil {
		return ""
	}
	ctx := c.Context(id)
	return def.Format(def.Parse(r.Cell(id), ctx), ctx)
}

// Commit validates value with the column type, serializes it and hands the
// serialized string to the row.
func (c *Controller) Commit(r Row, id string, value any) error {
	def := c.types[id]
	if def == nil {
		return trackerrors.NewValidationError(fmt.Sprintf("unknown column %q", id))
	}
	ctx := c.Context(id)
	if err := def.Validate(value, ctx).Err(); err != nil {
		return err
	}
	return r.Commit(id, def.Serialize(value, ctx))
}

// CommitText parses typed input and commits it.
func (c *Controller) CommitText(r Row, id, input string) error {
	value, err := c.ParseInput(id, input)
	if err != nil {
		return err
	}
	return c.Commit(r, id, value)
}

// ParseInput turns typed input into the column's structured value. Non-blank
// input that a number or date column cannot read is rejected instead of
// clearing the cell.
func (c *Controller) ParseInput(id, input string) (any, error) {
	def := c.types[id]
	if def == nil {
		return nil, trackerrors.NewValidationError(fmt.Sprintf("unknown column %q", id))
	}
	ctx := c.Context(id)
	value := def.Parse(input, ctx)
	if strings.TrimSpace(input) != "" && def.Serialize(value, ctx) == "" {
		switch def.Kind() {
		case coltype.KindNumber:
			return nil, trackerrors.NewValidationError(fmt.Sprintf("%q is not a number", input))
		case coltype.KindDate:
			return nil, trackerrors.NewValidationError(fmt.Sprintf("%q is not a date", input))
		}
	}
	return value, nil
}

// CellArgs builds the render input of r's cell in column id. OnCommit runs
// Commit and hands its result to done, which may be nil.
func (c *Controller) CellArgs(r Row, id string, done func(error)) coltype.CellArgs {
	def := c.types[id]
	ctx := c.Context(id)
	args := coltype.CellArgs{
		Context: ctx,
		CanEdit: def != nil && r != nil && id != ActionsColumn,
	}
	if def == nil || r == nil {
		return args
	}
	args.Raw = r.Cell(id)
	args.Value = def.Parse(args.Raw, ctx)
	if src, ok := def.(coltype.OptionSource); ok {
		args.Options = src.Options(ctx)
		args.Actions = src.SelectActions(ctx)
	}
	args.OnCommit = func(next any) {
		err := c.Commit(r, id, next)
		if done != nil {
			done(err)
		}
	}
	return args
}

// SetRows replaces the base rows.
func (c *Controller) SetRows(rows []Row) {
	c.rows = append([]Row(nil), rows...)
}

// Rows returns the base rows in host order.
func (c *Controller) Rows() []Row {
	return append([]Row(nil), c.rows...)
}
