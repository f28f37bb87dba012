package coltype

import (
	"context"
	"fmt"
	"strings"

	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/settings"
)

// selectCodec holds the parse and validate rules shared by every select kind.
type selectCodec struct{}

func (selectCodec) parse(raw string, opts []options.Option) string {
	label := strings.TrimSpace(raw)
	if idx := options.Find(opts, label); idx >= 0 {
		return opts[idx].Label
	}
	return label
}

func (selectCodec) validate(v any, opts []options.Option) Validation {
	s, ok := v.(string)
	if !ok {
		return invalid("value is not an option label")
	}
	if strings.TrimSpace(s) == "" || len(opts) == 0 {
		return valid
	}
	if options.Find(opts, s) < 0 {
		return invalid(fmt.Sprintf("unknown option %q", s))
	}
	return valid
}

func renderSelectCell(value string, opts []options.Option, args CellArgs) string {
	if value == "" {
		return renderText("", args)
	}
	color := options.DefaultColor
	if idx := options.Find(opts, value); idx >= 0 {
		color = opts[idx].Color
	}
	return renderPill(value, color, args)
}

// ResolveOption maps label onto the options of args. An unknown label is
// created through args.Actions when def allows adding; created reports that.
// A blank label resolves to "".
func ResolveOption(ctx context.Context, def ColumnType, args CellArgs, label string) (canonical string, created, ok bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false, true
	}
	if idx := options.Find(args.Options, label); idx >= 0 {
		return args.Options[idx].Label, false, true
	}
	if args.Actions == nil || def == nil || !def.Policy().AllowAdd {
		return label, false, false
	}
	canonical, ok = args.Actions.Create(ctx, label)
	return canonical, ok, ok
}

type localSelectType struct {
	selectCodec
}

func (localSelectType) ID() string { return TypeSelectLocal }
func (localSelectType) Kind() Kind { return KindSelect }

func (localSelectType) Policy() OverridePolicy {
	return OverridePolicy{AllowAdd: true, AllowRelabel: true, AllowHide: true}
}

func (t localSelectType) Options(c *Context) []options.Option {
	if c == nil || c.SelectState == nil {
		return nil
	}
	return options.Normalize(c.SelectState.Options)
}

func (localSelectType) SelectActions(c *Context) options.Actions {
	if c == nil || c.SelectState == nil {
		return nil
	}
	return options.NewLocalActions(c.SelectState)
}

func (t localSelectType) Parse(raw string, c *Context) any {
	return t.parse(raw, t.Options(c))
}

func (t localSelectType) Serialize(v any, c *Context) string {
	return t.parse(asString(v), t.Options(c))
}

func (t localSelectType) Validate(v any, c *Context) Validation {
	return t.validate(v, t.Options(c))
}

func (localSelectType) Format(v any, _ *Context) string { return strings.TrimSpace(asString(v)) }

func (t localSelectType) RenderCell(args CellArgs) string {
	opts := args.Options
	if opts == nil {
		opts = t.Options(args.Context)
	}
	return renderSelectCell(t.Format(args.Value, args.Context), opts, args)
}

// managedSelectType reads its options from one shared settings slice.
type managedSelectType struct {
	selectCodec
	id    string
	slice settings.Slice
}

func (m managedSelectType) ID() string { return m.id }
func (managedSelectType) Kind() Kind { return KindSelect }

// Slice is the settings slice backing the type.
func (m managedSelectType) Slice() settings.Slice { return m.slice }

func (managedSelectType) Policy() OverridePolicy {
	return OverridePolicy{AllowAdd: true, AllowRelabel: true}
}

func (m managedSelectType) Options(c *Context) []options.Option {
	s := c.settingsSnapshot()
	if s == nil {
		s = settings.Defaults()
	}
	return options.ManagedOptions(s, m.slice)
}

func (m managedSelectType) SelectActions(c *Context) options.Actions {
	if c == nil || c.Writer == nil {
		return nil
	}
	return options.NewManagedActions(m.slice, c.Writer, c.Log)
}

func (m managedSelectType) Parse(raw string, c *Context) any {
	return m.parse(raw, m.Options(c))
}

func (m managedSelectType) Serialize(v any, c *Context) string {
	return m.parse(asString(v), m.Options(c))
}

func (m managedSelectType) Validate(v any, c *Context) Validation {
	return m.validate(v, m.Options(c))
}

func (managedSelectType) Format(v any, _ *Context) string { return strings.TrimSpace(asString(v)) }

func (m managedSelectType) RenderCell(args CellArgs) string {
	opts := args.Options
	if opts == nil {
		opts = m.Options(args.Context)
	}
	return renderSelectCell(m.Format(args.Value, args.Context), opts, args)
}
