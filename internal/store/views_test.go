package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

func fixedClock(s *Store, start time.Time) *time.Time {
	now := start
	s.now = func() time.Time { return now }
	return &now
}

func TestViewsCRUD(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	now := fixedClock(s, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	b, err := s.CreateView(ctx, " Beta ", "todo", []byte(`{"query":"hr"}`))
	require.NoError(t, err)
	a, err := s.CreateView(ctx, "Alpha", "todo", []byte(`[1,2]`))
	require.NoError(t, err)
	*now = now.Add(time.Minute)
	_, err = s.CreateView(ctx, "Apps", "applications", nil)
	require.NoError(t, err)

	assert.Equal(t, "Beta", b.Name)
	assert.Len(t, b.ID, 36)
	assert.JSONEq(t, `{}`, string(a.Config), "non-object config is stored as {}")

	todo, err := s.ListViews(ctx, "todo")
	require.NoError(t, err)
	require.Len(t, todo, 2)
	assert.Equal(t, "Alpha", todo[0].Name, "same created_at orders by name")
	assert.Equal(t, "Beta", todo[1].Name)
	assert.JSONEq(t, `{"query":"hr"}`, string(todo[1].Config))

	all, err := s.ListViews(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Apps", all[2].Name)

	*now = now.Add(time.Hour)
	name := "Renamed"
	updated, err := s.UpdateView(ctx, b.ID, ViewUpdate{Name: &name, Config: []byte(`"text"`)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "todo", updated.Type)
	assert.JSONEq(t, `{}`, string(updated.Config))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	blank := " "
	_, err = s.UpdateView(ctx, b.ID, ViewUpdate{Name: &blank})
	assert.Equal(t, trackerrors.CategoryValidation, trackerrors.GetCategory(err))

	require.NoError(t, s.Close())
	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetView(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.CreatedAt.Equal(b.CreatedAt))

	require.NoError(t, reopened.DeleteView(ctx, b.ID))
	_, err = reopened.GetView(ctx, b.ID)
	assert.True(t, trackerrors.IsNotFound(err))
	assert.True(t, trackerrors.IsNotFound(reopened.DeleteView(ctx, b.ID)))
	_, err = reopened.UpdateView(ctx, "missing", ViewUpdate{Name: &name})
	assert.True(t, trackerrors.IsNotFound(err))
}

func TestCreateViewNeedsName(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.CreateView(context.Background(), "  ", "todo", nil)
	assert.Equal(t, trackerrors.CategoryValidation, trackerrors.GetCategory(err))
}

func TestViewConfig(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(ViewConfig([]byte(` {"a":1} `))))
	assert.JSONEq(t, `{}`, string(ViewConfig([]byte(`{"a":`))))
	assert.JSONEq(t, `{}`, string(ViewConfig([]byte(`null`))))
	assert.JSONEq(t, `{}`, string(ViewConfig(nil)))
}

func TestNilStoreViews(t *testing.T) {
	var s *Store
	ctx := context.Background()
	views, err := s.ListViews(ctx, "todo")
	assert.NoError(t, err)
	assert.Empty(t, views)
	_, err = s.CreateView(ctx, "x", "todo", nil)
	assert.Equal(t, trackerrors.CodeStoreClosed, trackerrors.GetCode(err))
	assert.Error(t, s.DeleteView(ctx, "x"))
}
