package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/settings"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tracker.sqlite")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSettingsDefaultsAndPatch(t *testing.T) {
	s, path := openTemp(t)
	assert.Equal(t, settings.Defaults(), s.Current())

	ctx := context.Background()
	merged, err := s.SaveSettings(ctx, settings.SlicePatch(settings.SliceStages, []string{"Applied", "Offer"}, map[string]string{"Offer": "#000000"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Applied", "Offer"}, merged.Stages)
	assert.Equal(t, map[string]string{"Offer": "#000000"}, merged.StageColors)
	assert.Equal(t, settings.Defaults().Outcomes, merged.Outcomes)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	cur := reopened.Current()
	assert.Equal(t, []string{"Applied", "Offer"}, cur.Stages)
	assert.Equal(t, map[string]string{"Offer": "#000000"}, cur.StageColors, "stored maps replace the defaults")
}

func TestEmptyListsPersist(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.SaveSettings(context.Background(), settings.SlicePatch(settings.SliceJobTypes, nil, nil))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Empty(t, reopened.Current().JobTypes)
}

func TestDeleteLastManagedOptionPersists(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	_, err := s.SaveSettings(ctx, settings.SlicePatch(settings.SliceJobTypes, []string{"Only"}, map[string]string{"Only": "#ABCDEF"}))
	require.NoError(t, err)

	options.NewManagedActions(settings.SliceJobTypes, s, nil).Delete(ctx, "Only")
	assert.Empty(t, s.Current().JobTypes)

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT value FROM settings WHERE key = 'job_types'`).Scan(&raw))
	assert.JSONEq(t, `[]`, raw)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Empty(t, reopened.Current().JobTypes)
	assert.Empty(t, reopened.Current().JobTypeColors)
}

func TestCorruptSettingIsSkipped(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES ('stages', '{"oops":1}'), ('outcomes', '["Won"]'), ('mystery', '1')`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	cur := reopened.Current()
	assert.Equal(t, settings.Defaults().Stages, cur.Stages)
	assert.Equal(t, []string{"Won"}, cur.Outcomes)
}

func TestManagedOptionsThroughStore(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	actions := options.NewManagedActions(settings.SliceOutcomes, s, nil)

	label, ok := actions.Create(ctx, "Ghosted")
	require.True(t, ok)
	assert.Equal(t, "Ghosted", label)
	label, ok = actions.Create(ctx, "ghosted")
	require.True(t, ok)
	assert.Equal(t, "Ghosted", label)

	def := coltype.Default().MustResolve(coltype.TypeSelectOutcomes)
	opts := def.(coltype.OptionSource).Options(&coltype.Context{Writer: s})
	assert.Equal(t, "Ghosted", opts[len(opts)-1].Label)
	assert.Equal(t, options.DefaultColor, opts[len(opts)-1].Color)
}

func TestViewPrefs(t *testing.T) {
	s, _ := openTemp(t)
	prefs := s.ViewPrefs()

	empty, err := prefs.Load("todo")
	require.NoError(t, err)
	assert.Equal(t, tableview.Prefs{}, empty)

	c, err := tableview.NewController("todo", []tableview.ColumnSpec{
		{ID: "task", Label: "Task", TypeID: coltype.TypeText},
		{ID: "status", Label: "Status", TypeID: coltype.TypeText},
		{ID: tableview.ActionsColumn, TypeID: coltype.TypeText},
	}, nil, tableview.WithStore(prefs))
	require.NoError(t, err)
	c.Pin("status")
	c.SetLabel("task", "Step")

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT prefs FROM view_prefs WHERE table_id = 'todo'`).Scan(&raw))
	assert.JSONEq(t, `{"order":["status","task","actions"],"hidden":[],"pinned":"status","labels":{"task":"Step"}}`, raw)

	loaded, err := prefs.Load("todo")
	require.NoError(t, err)
	require.NotNil(t, loaded.Pinned)
	assert.Equal(t, "status", *loaded.Pinned)
}

func TestRecentDataFiles(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.RememberDataFile("/tmp/a.json"))
	require.NoError(t, s.RememberDataFile("/tmp/b.json"))
	require.NoError(t, s.RememberDataFile("/tmp/a.json"))
	require.NoError(t, s.RememberDataFile("  "))

	files, err := s.RecentDataFiles(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a.json", "/tmp/b.json"}, files)

	require.NoError(t, s.ForgetDataFile("/tmp/a.json"))
	files, err = s.RecentDataFiles(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/b.json"}, files)
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.NotNil(t, s.Current())
	_, err := s.SaveSettings(context.Background(), settings.Patch{})
	assert.Error(t, err)
	assert.NoError(t, s.ViewPrefs().Save("x", tableview.Prefs{}))
	assert.NoError(t, s.Close())
}
