package coltype

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type textType struct{}

func (textType) ID() string { return TypeText }
func (textType) Kind() Kind { return KindText }
func (textType) Policy() OverridePolicy { return OverridePolicy{} }
func (textType) Parse(raw string, _ *Context) any { return raw }

func (textType) Serialize(v any, _ *Context) string {
	return asString(v)
}

func (textType) Validate(any, *Context) Validation { return valid }

func (textType) Format(v any, _ *Context) string { return asString(v) }

func (t textType) RenderCell(args CellArgs) string {
	return renderText(t.Format(args.Value, args.Context), args)
}

// Number is the structured value of number columns. Valid is false for empty
// or unparsable input.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(v float64) Number { return Number{Value: v, Valid: true} }

type numberType struct{}

func (numberType) ID() string { return TypeNumber }
func (numberType) Kind() Kind { return KindNumber }
func (numberType) Policy() OverridePolicy { return OverridePolicy{} }

func (numberType) Parse(raw string, c *Context) any {
	f, ok := parseFinite(raw)
	if !ok {
		return Number{}
	}
	return NewNumber(clamp(f, c.config()))
}

func (t numberType) Serialize(v any, c *Context) string {
	n, ok := toNumber(v)
	if !ok || !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return ""
	}
	return formatFloat(clamp(n.Value, c.config()))
}

func (numberType) Validate(v any, c *Context) Validation {
	n, ok := toNumber(v)
	if !ok {
		return invalid("value is not a number")
	}
	if !n.Valid {
		return valid
	}
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return invalid("value is not a finite number")
	}
	cfg := c.config()
	if cfg.Min != nil && n.Value < *cfg.Min {
		return invalid(fmt.Sprintf("value must be at least %s", formatFloat(*cfg.Min)))
	}
	if cfg.Max != nil && n.Value > *cfg.Max {
		return invalid(fmt.Sprintf("value must be at most %s", formatFloat(*cfg.Max)))
	}
	return valid
}

func (t numberType) Format(v any, c *Context) string {
	n, ok := toNumber(v)
	if !ok || !n.Valid {
		return ""
	}
	return formatFloat(n.Value)
}

func (t numberType) RenderCell(args CellArgs) string {
	return renderText(t.Format(args.Value, args.Context), args)
}

func toNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case Number:
		return n, true
	case *Number:
		if n == nil {
			return Number{}, true
		}
		return *n, true
	case nil:
		return Number{}, true
	case float64:
		return NewNumber(n), true
	case int:
		return NewNumber(float64(n)), true
	case int64:
		return NewNumber(float64(n)), true
	}
	return Number{}, false
}

func parseFinite(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clamp(f float64, cfg ColumnConfig) float64 {
	if cfg.Min != nil && f < *cfg.Min {
		f = *cfg.Min
	}
	if cfg.Max != nil && f > *cfg.Max {
		f = *cfg.Max
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)

	// Layouts tried before falling back to dateparse.
	isoLayouts = []string{
		dateTimeLayout,
		dateLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

type dateType struct {
	id       string
	withTime bool
}

func (d dateType) ID() string { return d.id }
func (dateType) Kind() Kind { return KindDate }
func (dateType) Policy() OverridePolicy { return OverridePolicy{} }

func (d dateType) layout() string {
	if d.withTime {
		return dateTimeLayout
	}
	return dateLayout
}

func (d dateType) Parse(raw string, _ *Context) any {
	t, ok := ParseTime(raw)
	if !ok {
		return ""
	}
	return t.Format(d.layout())
}

func (d dateType) Serialize(v any, c *Context) string {
	return asString(d.Parse(asString(v), c))
}

func (d dateType) Validate(v any, _ *Context) Validation {
	s, ok := v.(string)
	if !ok {
		return invalid("value is not a date string")
	}
	if s == "" {
		return valid
	}
	pattern, want := datePattern, "YYYY-MM-DD"
	if d.withTime {
		pattern, want = dateTimePattern, "YYYY-MM-DDTHH:mm"
	}
	if !pattern.MatchString(s) {
		return invalid("date must match " + want)
	}
	if _, err := time.Parse(d.layout(), s); err != nil {
		return invalid("date is not a calendar date")
	}
	return valid
}

func (d dateType) Format(v any, _ *Context) string { return asString(v) }

func (d dateType) RenderCell(args CellArgs) string {
	return renderText(d.Format(args.Value, args.Context), args)
}

// ParseTime reads the ISO forms the tracker writes and, failing those, any
// format dateparse recognizes.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, inCalendarRange(t)
		}
	}
	t, ok := parseLoose(s)
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, inCalendarRange(t)
}

// parseLoose wraps dateparse, which panics on some malformed inputs.
func parseLoose(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseAny(s)
	return t, err == nil
}

// inCalendarRange keeps years that the four digit layouts can write back.
func inCalendarRange(t time.Time) bool {
	return t.Year() >= 1 && t.Year() <= 9999
}

// trueTokens are the case-insensitive spellings read as checked.
var trueTokens = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"si":   true,
	"y":    true,
}

// ParseBool applies the checkbox token set.
func ParseBool(raw string) bool {
	return trueTokens[strings.ToLower(strings.TrimSpace(raw))]
}

type checkboxType struct{}

func (checkboxType) ID() string { return TypeCheckbox }
func (checkboxType) Kind() Kind { return KindCheckbox }
func (checkboxType) Policy() OverridePolicy { return OverridePolicy{} }

func (checkboxType) Parse(raw string, _ *Context) any { return ParseBool(raw) }

func (checkboxType) Serialize(v any, _ *Context) string {
	if toBool(v) {
		return "true"
	}
	return "false"
}

func (checkboxType) Validate(v any, _ *Context) Validation {
	if _, ok := v.(bool); !ok {
		return invalid("value is not a boolean")
	}
	return valid
}

func (t checkboxType) Format(v any, c *Context) string { return t.Serialize(v, c) }

func (checkboxType) RenderCell(args CellArgs) string {
	return renderCheckbox(toBool(args.Value), args)
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return ParseBool(b)
	}
	return false
}

const (
	ratingMax       = 5.0
	ratingTolerance = 1e-4
)

type ratingType struct{}

func (ratingType) ID() string { return TypeRating }
func (ratingType) Kind() Kind { return KindRating }
func (ratingType) Policy() OverridePolicy { return OverridePolicy{} }

func (ratingType) Parse(raw string, _ *Context) any {
	f, ok := parseFinite(raw)
	if !ok {
		return 0.0
	}
	return normalizeRating(f)
}

func (ratingType) Serialize(v any, _ *Context) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	f = normalizeRating(f)
	if f == 0 {
		return ""
	}
	return formatFloat(f)
}

func (ratingType) Validate(v any, _ *Context) Validation {
	f, ok := toFloat(v)
	if !ok {
		return invalid("rating is not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return invalid("rating is not a finite number")
	}
	if f < 0 || f > ratingMax {
		return invalid("rating must be between 0 and 5")
	}
	doubled := f * 2
	if math.Abs(doubled-math.Round(doubled)) > ratingTolerance {
		return invalid("rating must be a multiple of 0.5")
	}
	return valid
}

func (ratingType) Format(v any, _ *Context) string {
	f, ok := toFloat(v)
	if !ok || f == 0 {
		return ""
	}
	return formatFloat(normalizeRating(f))
}

func (ratingType) RenderCell(args CellArgs) string {
	f, _ := toFloat(args.Value)
	return renderStars(normalizeRating(f), args)
}

func normalizeRating(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Round(f*2) / 2
	return math.Max(0, math.Min(ratingMax, f))
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case Number:
		return f.Value, f.Valid
	}
	return 0, false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
