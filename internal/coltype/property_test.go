package coltype

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func rawInputs() gopter.Gen {
	return gen.OneGenOf(
		gen.AnyString(),
		gen.AlphaString(),
		gen.OneConstOf("", " ", "[]", "{}", "null", "abc", "1", "yes", "4.26", "-7",
			"2024-02-29", "2024-13-01", "2024-03-05T09:15", `[{"task":"x"}]`,
			`[{"id":"z","name":"Ana"},"Bo"]`, "a, b; c\nd", `[{"url":`),
	)
}

func TestPropertyParseTotalAndStable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	for _, def := range Default().Types() {
		def := def
		properties.Property(def.ID()+" serialize(parse(raw)) is a fixed point", prop.ForAll(
			func(raw string) bool {
				once := def.Serialize(def.Parse(raw, nil), nil)
				twice := def.Serialize(def.Parse(once, nil), nil)
				return once == twice
			},
			rawInputs(),
		))
	}

	properties.TestingRun(t)
}

func TestPropertyValidValuesRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	r := Default()

	properties.Property("number values survive a round trip", prop.ForAll(
		func(f float64) bool {
			def := r.MustResolve(TypeNumber)
			v := NewNumber(f)
			return def.Validate(v, nil).Valid && def.Parse(def.Serialize(v, nil), nil) == v
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("ratings on the half grid survive a round trip", prop.ForAll(
		func(steps int) bool {
			def := r.MustResolve(TypeRating)
			v := float64(steps) / 2
			return def.Validate(v, nil).Valid && def.Parse(def.Serialize(v, nil), nil) == v
		},
		gen.IntRange(0, 10),
	))

	properties.Property("checkbox values survive a round trip", prop.ForAll(
		func(b bool) bool {
			def := r.MustResolve(TypeCheckbox)
			return def.Parse(def.Serialize(b, nil), nil) == b
		},
		gen.Bool(),
	))

	properties.Property("todo items keep ids and fields", prop.ForAll(
		func(tasks []string) bool {
			def := r.MustResolve(TypeTodo)
			items := make([]TodoItem, 0, len(tasks))
			for i, task := range tasks {
				items = append(items, TodoItem{ID: fmt.Sprintf("id-%d", i), Task: "t" + task, Status: "Open"})
			}
			if !def.Validate(items, nil).Valid {
				return false
			}
			back := def.Parse(def.Serialize(items, nil), nil).([]TodoItem)
			if len(back) != len(items) {
				return false
			}
			for i := range items {
				if back[i] != items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("date strings are canonical after one pass", prop.ForAll(
		func(day int, minute int) bool {
			def := r.MustResolve(TypeDateTime)
			raw := fmt.Sprintf("2023-01-%02d %02d:%02d", day, minute/60, minute%60)
			v := def.Parse(raw, nil)
			return def.Validate(v, nil).Valid && def.Parse(def.Serialize(v, nil), nil) == v
		},
		gen.IntRange(1, 28),
		gen.IntRange(0, 24*60-1),
	))

	properties.TestingRun(t)
}
