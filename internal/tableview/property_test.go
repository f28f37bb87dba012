package tableview

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var fixedColumns = []string{"application", "task", "due_date", "status", ActionsColumn}

func TestPropertyNormalizeIsPermutation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	candidates := append([]string{"ghost", "", "Task"}, fixedColumns...)
	ids := make([]interface{}, len(candidates))
	for i, id := range candidates {
		ids[i] = id
	}

	properties.Property("every fixed id appears exactly once", prop.ForAll(
		func(order []string) bool {
			got := Normalize(order, fixedColumns)
			if len(got) != len(fixedColumns) || got[len(got)-1] != ActionsColumn {
				return false
			}
			sortedGot := append([]string(nil), got...)
			sortedWant := append([]string(nil), fixedColumns...)
			sort.Strings(sortedGot)
			sort.Strings(sortedWant)
			return equalStrings(sortedGot, sortedWant)
		},
		gen.SliceOf(gen.OneConstOf(ids...)),
	))

	properties.Property("pinning keeps the pinned column first", prop.ForAll(
		func(order []string, pin int) bool {
			c, err := NewController("todo", todoSpecs(), nil)
			if err != nil {
				return false
			}
			target := fixedColumns[pin]
			c.Pin(target)
			c.SetOrder(order)
			return c.Order()[0] == target
		},
		gen.SliceOf(gen.OneConstOf(ids...)),
		gen.IntRange(0, len(fixedColumns)-2),
	))

	properties.TestingRun(t)
}
