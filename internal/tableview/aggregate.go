package tableview

import (
	"math"
	"strconv"
	"strings"

	"github.com/bekirdag/jobtracker/internal/coltype"
)

// Aggregate is a summary operator of a column.
type Aggregate string

const (
	AggNone        Aggregate = "none"
	AggCount       Aggregate = "count"
	AggCountValues Aggregate = "count_values"
	AggCountEmpty  Aggregate = "count_empty"
	AggUnique      Aggregate = "unique"
	AggSum         Aggregate = "sum"
	AggAvg         Aggregate = "avg"
	AggMin         Aggregate = "min"
	AggMax         Aggregate = "max"
	AggChecked     Aggregate = "checked"
	AggUnchecked   Aggregate = "unchecked"
)

// NoNumbers is the summary of a numeric operator over no numeric values.
const NoNumbers = "-"

var aggregateLabels = map[Aggregate]string{
	AggNone:        "None",
	AggCount:       "Count",
	AggCountValues: "Count values",
	AggCountEmpty:  "Count empty",
	AggUnique:      "Unique",
	AggSum:         "Sum",
	AggAvg:         "Average",
	AggMin:         "Min",
	AggMax:         "Max",
	AggChecked:     "Checked",
	AggUnchecked:   "Unchecked",
}

func (a Aggregate) Label() string {
	if l, ok := aggregateLabels[a]; ok {
		return l
	}
	return string(a)
}

func (a Aggregate) numeric() bool {
	switch a {
	case AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// AggregatesFor lists the operators offered for a column kind.
func AggregatesFor(kind coltype.Kind) []Aggregate {
	out := []Aggregate{AggNone, AggCount, AggCountValues, AggCountEmpty, AggUnique}
	switch kind {
	case coltype.KindNumber, coltype.KindRating:
		out = append(out, AggSum, AggAvg, AggMin, AggMax)
	case coltype.KindCheckbox:
		out = append(out, AggChecked, AggUnchecked)
	}
	return out
}

func aggregateAllowed(kind coltype.Kind, a Aggregate) bool {
	if a == "" || a == AggNone {
		return true
	}
	for _, allowed := range AggregatesFor(kind) {
		if allowed == a {
			return true
		}
	}
	return false
}

// SetAggregate selects the operator of a column. AggNone clears it.
func (c *Controller) SetAggregate(id string, a Aggregate) bool {
	if !c.has(id) || id == ActionsColumn {
		return false
	}
	if _, known := aggregateLabels[a]; !known {
		return false
	}
	if a == AggNone {
		delete(c.aggregates, id)
		return true
	}
	c.aggregates[id] = a
	return true
}

func (c *Controller) Aggregate(id string) Aggregate {
	if a, ok := c.aggregates[id]; ok {
		return a
	}
	return AggNone
}

// HasSummary reports whether any column has an operator other than none.
func (c *Controller) HasSummary() bool {
	return len(c.aggregates) > 0
}

// Summary computes the column's operator over the displayed rows. ok is
// false when the column has no operator.
func (c *Controller) Summary(id string) (string, bool) {
	a := c.Aggregate(id)
	if a == AggNone {
		return "", false
	}
	return c.aggregate(id, a, c.DisplayedRows()), true
}

// Summaries computes every active operator in one pass over the display.
func (c *Controller) Summaries() map[string]string {
	out := make(map[string]string, len(c.aggregates))
	if len(c.aggregates) == 0 {
		return out
	}
	rows := c.DisplayedRows()
	for id, a := range c.aggregates {
		out[id] = c.aggregate(id, a, rows)
	}
	return out
}

func (c *Controller) aggregate(id string, a Aggregate, rows []Row) string {
	switch a {
	case AggCount:
		return strconv.Itoa(len(rows))
	case AggCountValues, AggCountEmpty:
		empty := 0
		for _, r := range rows {
			if strings.TrimSpace(c.Text(r, id)) == "" {
				empty++
			}
		}
		if a == AggCountEmpty {
			return strconv.Itoa(empty)
		}
		return strconv.Itoa(len(rows) - empty)
	case AggUnique:
		seen := map[string]bool{}
		for _, r := range rows {
			if t := strings.TrimSpace(c.Text(r, id)); t != "" {
				seen[c.folded(t)] = true
			}
		}
		return strconv.Itoa(len(seen))
	case AggChecked, AggUnchecked:
		checked := 0
		for _, r := range rows {
			if coltype.ParseBool(r.Cell(id)) {
				checked++
			}
		}
		if a == AggUnchecked {
			return strconv.Itoa(len(rows) - checked)
		}
		return strconv.Itoa(checked)
	}
	if !a.numeric() {
		return ""
	}
	var nums []float64
	for _, r := range rows {
		if f, ok := numeric(c.Text(r, id)); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return NoNumbers
	}
	return formatNumber(reduce(a, nums))
}

func reduce(a Aggregate, nums []float64) float64 {
	acc := nums[0]
	sum := 0.0
	for _, n := range nums {
		sum += n
		switch {
		case a == AggMin && n < acc:
			acc = n
		case a == AggMax && n > acc:
			acc = n
		}
	}
	switch a {
	case AggSum:
		return sum
	case AggAvg:
		return math.Round(sum/float64(len(nums))*100) / 100
	}
	return acc
}

func numeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
