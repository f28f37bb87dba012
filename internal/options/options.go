// Package options implements the option lists behind select columns and the
// actions that create, recolor, rename, delete and reorder them. Lists are
// either local to one column or bound to a shared settings slice.
package options

import (
	"context"
	"strings"
)

// DefaultColor is assigned to options created without an explicit color.
const DefaultColor = "#E2E8F0"

// Option is one choice of a select column.
type Option struct {
	Label    string `json:"label"`
	Color    string `json:"color"`
	Editable bool   `json:"editable"`
}

// Actions mutates an option list. Every implementation persists on change.
type Actions interface {
	// Create returns the canonical label of the new or already existing option.
	// ok is false for blank labels or when persisting failed.
	Create(ctx context.Context, label string) (canonical string, ok bool)
	UpdateColor(ctx context.Context, label, color string)
	Delete(ctx context.Context, label string)
	// Reorder moves from to immediately precede to.
	Reorder(ctx context.Context, from, to string)
	Rename(ctx context.Context, from, to string) (canonical string, ok bool)
}

// Key is the comparison key of a label.
func Key(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Find returns the index of the option whose label matches label
// case-insensitively, or -1.
func Find(opts []Option, label string) int {
	key := Key(label)
	if key == "" {
		return -1
	}
	for i, o := range opts {
		if Key(o.Label) == key {
			return i
		}
	}
	return -1
}

// Normalize trims labels, drops blanks and collapses case-insensitive
// duplicates, keeping the first occurrence and its casing.
func Normalize(opts []Option) []Option {
	out := make([]Option, 0, len(opts))
	seen := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		o.Label = strings.TrimSpace(o.Label)
		key := Key(o.Label)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(o.Color) == "" {
			o.Color = DefaultColor
		}
		out = append(out, o)
	}
	return out
}

// Labels returns the labels of opts in order.
func Labels(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

// reorder moves index from so it sits immediately before the element that
// was at index to. It reports whether the order changed.
func reorder[T any](items []T, from, to int) ([]T, bool) {
	if from < 0 || to < 0 || from >= len(items) || to >= len(items) || from == to {
		return items, false
	}
	moved := items[from]
	rest := make([]T, 0, len(items)-1)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)
	target := to
	if from < to {
		target--
	}
	if target == from {
		return items, false
	}
	out := make([]T, 0, len(items))
	out = append(out, rest[:target]...)
	out = append(out, moved)
	out = append(out, rest[target:]...)
	return out, true
}
