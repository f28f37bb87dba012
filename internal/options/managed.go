package options

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/settings"
)

// ManagedActions implements Actions over one shared settings slice. Each call
// reads the writer's latest snapshot and persists the list and its color map
// as a single patch. Concurrent callers are last-write-wins.
type ManagedActions struct {
	Slice  settings.Slice
	Writer settings.Writer
	Log    *slog.Logger
}

func NewManagedActions(slice settings.Slice, w settings.Writer, log *slog.Logger) *ManagedActions {
	return &ManagedActions{Slice: slice, Writer: w, Log: logger.OrDiscard(log)}
}

// ManagedOptions builds the option list for slice from a settings snapshot.
func ManagedOptions(s *settings.Settings, slice settings.Slice) []Option {
	list := s.List(slice)
	opts := make([]Option, 0, len(list))
	for _, label := range list {
		color, ok := s.ColorFor(slice, label)
		if !ok {
			color = DefaultColor
		}
		opts = append(opts, Option{Label: label, Color: color, Editable: true})
	}
	return Normalize(opts)
}

func (a *ManagedActions) snapshot() ([]string, map[string]string) {
	if a.Writer == nil {
		return nil, map[string]string{}
	}
	cur := a.Writer.Current()
	list := append([]string(nil), cur.List(a.Slice)...)
	colors := make(map[string]string, len(cur.Colors(a.Slice)))
	for k, v := range cur.Colors(a.Slice) {
		colors[k] = v
	}
	return list, colors
}

func (a *ManagedActions) save(ctx context.Context, list []string, colors map[string]string) bool {
	if a.Writer == nil {
		return false
	}
	if _, err := a.Writer.SaveSettings(ctx, settings.SlicePatch(a.Slice, list, colors)); err != nil {
		logger.OrDiscard(a.Log).Warn("option list save failed", "slice", string(a.Slice), "err", err)
		return false
	}
	return true
}

func (a *ManagedActions) Create(ctx context.Context, label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	list, colors := a.snapshot()
	for _, existing := range list {
		if Key(existing) == Key(label) {
			return existing, true
		}
	}
	list = append(list, label)
	if _, ok := colors[label]; !ok {
		colors[label] = DefaultColor
	}
	if !a.save(ctx, list, colors) {
		return "", false
	}
	return label, true
}

func (a *ManagedActions) UpdateColor(ctx context.Context, label, color string) {
	if strings.TrimSpace(label) == "" {
		return
	}
	list, colors := a.snapshot()
	colors[label] = color
	a.save(ctx, list, colors)
}

func (a *ManagedActions) Delete(ctx context.Context, label string) {
	list, colors := a.snapshot()
	next := make([]string, 0, len(list))
	for _, existing := range list {
		if existing == label {
			continue
		}
		next = append(next, existing)
	}
	delete(colors, label)
	a.save(ctx, next, colors)
}

func (a *ManagedActions) Reorder(ctx context.Context, from, to string) {
	if from == to {
		return
	}
	list, colors := a.snapshot()
	next, moved := reorder(list, indexOf(list, from), indexOf(list, to))
	if moved {
		a.save(ctx, next, colors)
	}
}

func (a *ManagedActions) Rename(ctx context.Context, from, to string) (string, bool) {
	to = strings.TrimSpace(to)
	list, colors := a.snapshot()
	idx := indexOf(list, from)
	if idx < 0 || to == "" {
		return "", false
	}
	for i, existing := range list {
		if i != idx && Key(existing) == Key(to) {
			return existing, false
		}
	}
	list[idx] = to
	if c, ok := colors[from]; ok {
		delete(colors, from)
		colors[to] = c
	}
	if !a.save(ctx, list, colors) {
		return "", false
	}
	return to, true
}

func indexOf(list []string, label string) int {
	for i, s := range list {
		if s == label {
			return i
		}
	}
	return -1
}
