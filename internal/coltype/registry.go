package coltype

import (
	"fmt"
	"sort"
	"strings"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
	"github.com/bekirdag/jobtracker/internal/settings"
)

// Built-in type identifiers.
const (
	TypeText             = "text.basic@1"
	TypeNumber           = "number.basic@1"
	TypeDate             = "date.iso@1"
	TypeDateTime         = "datetime.iso@1"
	TypeCheckbox         = "checkbox.bool@1"
	TypeRating           = "rating.stars_0_5_half@1"
	TypeTodo             = "todo.items@1"
	TypeContacts         = "contacts.list@1"
	TypeLinks            = "links.list@1"
	TypeDocuments        = "documents.list@1"
	TypeSelectLocal      = "select.local@1"
	TypeSelectStages     = "select.settings.stages@1"
	TypeSelectOutcomes   = "select.settings.outcomes@1"
	TypeSelectJobTypes   = "select.settings.job_types@1"
	defaultVersionSuffix = "@1"
)

// Registry maps type identifiers to definitions. It is built once and never
// mutated afterwards.
type Registry struct {
	defs map[string]ColumnType
}

var defaultRegistry = mustBuild(builtinTypes())

// Default returns the registry holding every built-in type.
func Default() *Registry {
	return defaultRegistry
}

func builtinTypes() []ColumnType {
	return []ColumnType{
		textType{},
		numberType{},
		dateType{id: TypeDate, withTime: false},
		dateType{id: TypeDateTime, withTime: true},
		checkboxType{},
		ratingType{},
		newTodoType(),
		newContactsType(),
		newLinksType(),
		newDocumentsType(),
		localSelectType{},
		managedSelectType{id: TypeSelectStages, slice: settings.SliceStages},
		managedSelectType{id: TypeSelectOutcomes, slice: settings.SliceOutcomes},
		managedSelectType{id: TypeSelectJobTypes, slice: settings.SliceJobTypes},
	}
}

// build validates the base kind contract of every definition.
func build(defs []ColumnType) (*Registry, error) {
	r := &Registry{defs: make(map[string]ColumnType, len(defs))}
	for _, def := range defs {
		id := def.ID()
		if _, dup := r.defs[id]; dup {
			return nil, fmt.Errorf("duplicate column type %q", id)
		}
		if def.Kind() == KindSelect {
			if _, ok := def.(OptionSource); !ok {
				return nil, fmt.Errorf("select column type %q does not expose options", id)
			}
		}
		r.defs[id] = def
	}
	return r, nil
}

func mustBuild(defs []ColumnType) *Registry {
	r, err := build(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the definition registered under typeID. A bare family name
// such as "text.basic" resolves to its first version.
func (r *Registry) Resolve(typeID string) (ColumnType, error) {
	id := canonicalID(typeID)
	if def, ok := r.defs[id]; ok {
		return def, nil
	}
	return nil, trackerrors.NewUnknownTypeError(typeID)
}

// MustResolve is Resolve for identifiers fixed at compile time.
func (r *Registry) MustResolve(typeID string) ColumnType {
	def, err := r.Resolve(typeID)
	if err != nil {
		panic(err)
	}
	return def
}

// Types lists every definition sorted by identifier.
func (r *Registry) Types() []ColumnType {
	out := make([]ColumnType, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// TypesOfKind lists the definitions committed to kind.
func (r *Registry) TypesOfKind(kind Kind) []ColumnType {
	var out []ColumnType
	for _, def := range r.Types() {
		if def.Kind() == kind {
			out = append(out, def)
		}
	}
	return out
}

func canonicalID(typeID string) string {
	id := strings.TrimSpace(typeID)
	if id != "" && !strings.Contains(id, "@") {
		id += defaultVersionSuffix
	}
	return id
}

// Family strips the version suffix, e.g. "date.iso@1" -> "date.iso".
func Family(typeID string) string {
	if idx := strings.IndexByte(typeID, '@'); idx >= 0 {
		return typeID[:idx]
	}
	return typeID
}
