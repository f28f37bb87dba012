package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSetByName(t *testing.T) {
	defer Level.Set(slog.LevelInfo)

	Level.SetByName("debug")
	assert.True(t, Level.Enabled(slog.LevelDebug))

	Level.SetByName("WARN")
	assert.False(t, Level.Enabled(slog.LevelInfo))
	assert.True(t, Level.Enabled(slog.LevelError))

	Level.SetByName("bogus")
	assert.False(t, Level.Enabled(slog.LevelInfo), "unknown names leave the level unchanged")
}

func TestNewTextLowercasesLevel(t *testing.T) {
	defer Level.Set(slog.LevelInfo)
	Level.Set(slog.LevelInfo)

	var buf bytes.Buffer
	NewText(&buf).Warn("prefs save failed", "table", "todo")

	out := buf.String()
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "table=todo")
}

func TestOpenFileWritesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobtracker.log")
	l, closer := OpenFile(path)
	require.NotNil(t, l)
	l.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
