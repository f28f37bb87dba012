// Package settings holds the shared application settings consumed by the
// column registry: the managed option lists, their color maps, and the table
// defaults. Writes are partial patches merged store-side.
package settings

import (
	"context"
	"strings"
)

// Slice names one of the managed option lists.
type Slice string

const (
	SliceStages   Slice = "stages"
	SliceOutcomes Slice = "outcomes"
	SliceJobTypes Slice = "job_types"
)

// Slices lists every managed slice in a stable order.
var Slices = []Slice{SliceStages, SliceOutcomes, SliceJobTypes}

// ColorKey returns the settings key of the slice's color map.
func (s Slice) ColorKey() string {
	switch s {
	case SliceStages:
		return "stage_colors"
	case SliceOutcomes:
		return "outcome_colors"
	case SliceJobTypes:
		return "job_type_colors"
	}
	return ""
}

type ScoreScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Settings is a full settings snapshot.
type Settings struct {
	Stages        []string          `json:"stages"`
	Outcomes      []string          `json:"outcomes"`
	JobTypes      []string          `json:"job_types"`
	StageColors   map[string]string `json:"stage_colors"`
	OutcomeColors map[string]string `json:"outcome_colors"`
	JobTypeColors map[string]string `json:"job_type_colors"`
	ScoreScale    ScoreScale        `json:"score_scale"`
	TableColumns  []string          `json:"table_columns"`
	HiddenColumns []string          `json:"hidden_columns"`
	ColumnWidths  map[string]int    `json:"column_widths"`
	ColumnLabels  map[string]string `json:"column_labels"`
	TableDensity  string            `json:"table_density"`
	DarkMode      bool              `json:"dark_mode"`
}

// Patch is a partial settings write. Nil fields are left untouched.
type Patch struct {
	Stages        []string          `json:"stages,omitempty"`
	Outcomes      []string          `json:"outcomes,omitempty"`
	JobTypes      []string          `json:"job_types,omitempty"`
	StageColors   map[string]string `json:"stage_colors,omitempty"`
	OutcomeColors map[string]string `json:"outcome_colors,omitempty"`
	JobTypeColors map[string]string `json:"job_type_colors,omitempty"`
	ScoreScale    *ScoreScale       `json:"score_scale,omitempty"`
	TableColumns  []string          `json:"table_columns,omitempty"`
	HiddenColumns []string          `json:"hidden_columns,omitempty"`
	ColumnWidths  map[string]int    `json:"column_widths,omitempty"`
	ColumnLabels  map[string]string `json:"column_labels,omitempty"`
	TableDensity  *string           `json:"table_density,omitempty"`
	DarkMode      *bool             `json:"dark_mode,omitempty"`
}

// Source exposes the most recent settings snapshot.
type Source interface {
	Current() *Settings
}

// Saver persists a patch and returns the merged settings.
type Saver interface {
	SaveSettings(ctx context.Context, patch Patch) (*Settings, error)
}

// Writer is the settings collaborator handed to managed option actions.
type Writer interface {
	Source
	Saver
}

// Defaults returns a fresh copy of the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Stages:   []string{"Applied", "Screening", "HR", "Technical", "Final Interview", "Offer"},
		Outcomes: []string{"In Progress", "Offer", "Rejected", "On Hold"},
		JobTypes: []string{"Internship", "Full-time", "Part-time", "Graduate Program"},
		JobTypeColors: map[string]string{
			"Internship":       "#BEE3F8",
			"Full-time":        "#C6F6D5",
			"Part-time":        "#FED7D7",
			"Graduate Program": "#FAF089",
		},
		StageColors: map[string]string{
			"Applied":         "#CBD5E0",
			"Screening":       "#63B3ED",
			"HR":              "#F6AD55",
			"Technical":       "#4FD1C5",
			"Final Interview": "#9F7AEA",
			"Offer":           "#68D391",
		},
		OutcomeColors: map[string]string{
			"In Progress": "#F6C453",
			"Offer":       "#2F855A",
			"Rejected":    "#C53030",
			"On Hold":     "#718096",
		},
		ScoreScale: ScoreScale{Min: 0, Max: 10},
		TableColumns: []string{
			"company_name", "position", "job_type", "location", "stage", "outcome",
			"application_date", "interview_datetime", "followup_date", "interview_rounds",
			"interview_type", "interviewers", "company_score", "contacts",
			"last_round_cleared", "total_rounds", "my_interview_score", "improvement_areas",
			"skill_to_upgrade", "job_description", "notes", "documents_links", "favorite",
		},
		HiddenColumns: []string{
			"job_description", "notes", "improvement_areas", "skill_to_upgrade", "documents_links",
		},
		ColumnWidths: map[string]int{},
		ColumnLabels: map[string]string{},
		TableDensity: "comfortable",
	}
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	out.Stages = cloneStrings(s.Stages)
	out.Outcomes = cloneStrings(s.Outcomes)
	out.JobTypes = cloneStrings(s.JobTypes)
	out.TableColumns = cloneStrings(s.TableColumns)
	out.HiddenColumns = cloneStrings(s.HiddenColumns)
	out.StageColors = cloneMap(s.StageColors)
	out.OutcomeColors = cloneMap(s.OutcomeColors)
	out.JobTypeColors = cloneMap(s.JobTypeColors)
	out.ColumnLabels = cloneMap(s.ColumnLabels)
	out.ColumnWidths = cloneMap(s.ColumnWidths)
	return &out
}

// Merge applies patch on top of a copy of s.
func (s *Settings) Merge(patch Patch) *Settings {
	out := s.Clone()
	if out == nil {
		out = Defaults()
	}
	if patch.Stages != nil {
		out.Stages = cloneStrings(patch.Stages)
	}
	if patch.Outcomes != nil {
		out.Outcomes = cloneStrings(patch.Outcomes)
	}
	if patch.JobTypes != nil {
		out.JobTypes = cloneStrings(patch.JobTypes)
	}
	if patch.StageColors != nil {
		out.StageColors = cloneMap(patch.StageColors)
	}
	if patch.OutcomeColors != nil {
		out.OutcomeColors = cloneMap(patch.OutcomeColors)
	}
	if patch.JobTypeColors != nil {
		out.JobTypeColors = cloneMap(patch.JobTypeColors)
	}
	if patch.ScoreScale != nil {
		out.ScoreScale = *patch.ScoreScale
	}
	if patch.TableColumns != nil {
		out.TableColumns = cloneStrings(patch.TableColumns)
	}
	if patch.HiddenColumns != nil {
		out.HiddenColumns = cloneStrings(patch.HiddenColumns)
	}
	if patch.ColumnWidths != nil {
		out.ColumnWidths = cloneMap(patch.ColumnWidths)
	}
	if patch.ColumnLabels != nil {
		out.ColumnLabels = cloneMap(patch.ColumnLabels)
	}
	if patch.TableDensity != nil {
		out.TableDensity = *patch.TableDensity
	}
	if patch.DarkMode != nil {
		out.DarkMode = *patch.DarkMode
	}
	return out
}

// List returns the option labels stored for slice.
func (s *Settings) List(slice Slice) []string {
	if s == nil {
		return nil
	}
	switch slice {
	case SliceStages:
		return s.Stages
	case SliceOutcomes:
		return s.Outcomes
	case SliceJobTypes:
		return s.JobTypes
	}
	return nil
}

// Colors returns the color map stored for slice.
func (s *Settings) Colors(slice Slice) map[string]string {
	if s == nil {
		return nil
	}
	switch slice {
	case SliceStages:
		return s.StageColors
	case SliceOutcomes:
		return s.OutcomeColors
	case SliceJobTypes:
		return s.JobTypeColors
	}
	return nil
}

// ColorFor looks up label's color case-insensitively.
func (s *Settings) ColorFor(slice Slice, label string) (string, bool) {
	colors := s.Colors(slice)
	if c, ok := colors[label]; ok {
		return c, true
	}
	key := strings.ToLower(strings.TrimSpace(label))
	for name, c := range colors {
		if strings.ToLower(strings.TrimSpace(name)) == key {
			return c, true
		}
	}
	return "", false
}

// SlicePatch builds the single patch that replaces slice's list and colors.
func SlicePatch(slice Slice, list []string, colors map[string]string) Patch {
	var p Patch
	switch slice {
	case SliceStages:
		p.Stages, p.StageColors = nonNil(list), nonNilMap(colors)
	case SliceOutcomes:
		p.Outcomes, p.OutcomeColors = nonNil(list), nonNilMap(colors)
	case SliceJobTypes:
		p.JobTypes, p.JobTypeColors = nonNil(list), nonNilMap(colors)
	}
	return p
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return cloneStrings(list)
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return cloneMap(m)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap[V any](in map[string]V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Values returns the fields set in p keyed by their settings key.
func (p Patch) Values() map[string]any {
	out := map[string]any{}
	set := func(key string, ok bool, v any) {
		if ok {
			out[key] = v
		}
	}
	set("stages", p.Stages != nil, p.Stages)
	set("outcomes", p.Outcomes != nil, p.Outcomes)
	set("job_types", p.JobTypes != nil, p.JobTypes)
	set("stage_colors", p.StageColors != nil, p.StageColors)
	set("outcome_colors", p.OutcomeColors != nil, p.OutcomeColors)
	set("job_type_colors", p.JobTypeColors != nil, p.JobTypeColors)
	set("table_columns", p.TableColumns != nil, p.TableColumns)
	set("hidden_columns", p.HiddenColumns != nil, p.HiddenColumns)
	set("column_widths", p.ColumnWidths != nil, p.ColumnWidths)
	set("column_labels", p.ColumnLabels != nil, p.ColumnLabels)
	if p.ScoreScale != nil {
		out["score_scale"] = *p.ScoreScale
	}
	if p.TableDensity != nil {
		out["table_density"] = *p.TableDensity
	}
	if p.DarkMode != nil {
		out["dark_mode"] = *p.DarkMode
	}
	return out
}
