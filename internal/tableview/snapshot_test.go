package tableview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoresView(t *testing.T) {
	store := NewMemoryStore()
	c := newTestController(t, store)
	c.SetRows(rowsOf(
		row("task", "b", "status", "open", "due_date", "2024-01-02"),
		row("task", "a", "status", "done"),
	))
	c.Pin("status")
	c.Hide("due_date")
	c.SetLabel("task", "Step")
	c.SetFilter("task", "a")
	c.SetQuery("x")
	c.SetSort("task", Descending)
	c.SetGroup("status")
	c.SetAggregate("task", AggCount)
	c.SetWidth("task", 300)

	data, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)

	other := newTestController(t, nil)
	s, err := DecodeSnapshot(data)
	require.NoError(t, err)
	other.ApplySnapshot(s)

	assert.Equal(t, c.Order(), other.Order())
	assert.Equal(t, "status", other.Pinned())
	assert.True(t, other.IsHidden("due_date"))
	assert.Equal(t, "Step", other.Label("task"))
	assert.Equal(t, "a", other.Filter("task"))
	assert.Equal(t, "x", other.Query())
	srt, ok := other.Sort()
	require.True(t, ok)
	assert.Equal(t, Sort{Column: "task", Direction: Descending}, srt)
	assert.Equal(t, "status", other.Group())
	assert.Equal(t, AggCount, other.Aggregate("task"))
	assert.Equal(t, 300, other.Width("task"))
}

func TestApplySnapshotDropsUnknownState(t *testing.T) {
	store := NewMemoryStore()
	c := newTestController(t, store)
	c.SetFilter("task", "old")
	c.SetGroup("status")
	saves := store.Saves()

	pinned := "ghost"
	c.ApplySnapshot(Snapshot{
		Prefs: Prefs{
			Order:  []string{"ghost", "status"},
			Hidden: []string{ActionsColumn, "ghost"},
			Pinned: &pinned,
			Labels: map[string]string{"ghost": "x"},
		},
		Filters:    map[string]string{"ghost": "y"},
		Sort:       &SortState{Column: ActionsColumn, Direction: "desc"},
		Aggregates: map[string]Aggregate{"task": AggSum, "due_date": AggCount, "ghost": AggCount},
	})

	assert.Equal(t, "status", c.Order()[0])
	assert.Equal(t, ActionsColumn, c.Order()[len(c.Order())-1])
	assert.Empty(t, c.HiddenColumns())
	assert.Equal(t, "", c.Pinned())
	assert.Empty(t, c.Filters())
	_, sorted := c.Sort()
	assert.False(t, sorted)
	assert.Equal(t, "", c.Group())
	assert.Equal(t, AggNone, c.Aggregate("task"), "sum is not offered for text")
	assert.Equal(t, AggCount, c.Aggregate("due_date"))
	assert.Greater(t, store.Saves(), saves)

	_, err := DecodeSnapshot([]byte(`[1,2]`))
	assert.Error(t, err)
	empty, err := DecodeSnapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, empty)
}
