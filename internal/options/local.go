package options

import (
	"context"
	"strings"
)

// LocalState is the option list of a column that is not backed by settings.
type LocalState struct {
	Options      []Option
	DefaultColor string
	// OnChange receives every new list; nil leaves the update in memory only.
	OnChange func([]Option)
}

func (s *LocalState) set(opts []Option) {
	s.Options = opts
	if s.OnChange != nil {
		s.OnChange(append([]Option(nil), opts...))
	}
}

func (s *LocalState) defaultColor() string {
	if c := strings.TrimSpace(s.DefaultColor); c != "" {
		return c
	}
	return DefaultColor
}

// LocalActions implements Actions over a LocalState.
type LocalActions struct {
	State *LocalState
}

func NewLocalActions(state *LocalState) *LocalActions {
	if state == nil {
		state = &LocalState{}
	}
	return &LocalActions{State: state}
}

func (a *LocalActions) Create(_ context.Context, label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if idx := Find(a.State.Options, label); idx >= 0 {
		return a.State.Options[idx].Label, true
	}
	next := append(append([]Option(nil), a.State.Options...), Option{
		Label:    label,
		Color:    a.State.defaultColor(),
		Editable: true,
	})
	a.State.set(next)
	return label, true
}

func (a *LocalActions) UpdateColor(_ context.Context, label, color string) {
	if strings.TrimSpace(label) == "" {
		return
	}
	next := append([]Option(nil), a.State.Options...)
	for i := range next {
		if next[i].Label == label {
			next[i].Color = color
			a.State.set(next)
			return
		}
	}
	next = append(next, Option{Label: label, Color: color, Editable: true})
	a.State.set(next)
}

func (a *LocalActions) Delete(_ context.Context, label string) {
	next := make([]Option, 0, len(a.State.Options))
	for _, o := range a.State.Options {
		if o.Label == label {
			continue
		}
		next = append(next, o)
	}
	a.State.set(next)
}

func (a *LocalActions) Reorder(_ context.Context, from, to string) {
	if from == to {
		return
	}
	fi, ti := indexOfLabel(a.State.Options, from), indexOfLabel(a.State.Options, to)
	next, moved := reorder(append([]Option(nil), a.State.Options...), fi, ti)
	if moved {
		a.State.set(next)
	}
}

func (a *LocalActions) Rename(_ context.Context, from, to string) (string, bool) {
	to = strings.TrimSpace(to)
	idx := indexOfLabel(a.State.Options, from)
	if idx < 0 || to == "" {
		return "", false
	}
	if other := Find(a.State.Options, to); other >= 0 && other != idx {
		return a.State.Options[other].Label, false
	}
	next := append([]Option(nil), a.State.Options...)
	next[idx].Label = to
	a.State.set(next)
	return to, true
}

func indexOfLabel(opts []Option, label string) int {
	for i, o := range opts {
		if o.Label == label {
			return i
		}
	}
	return -1
}
