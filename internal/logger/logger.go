// Package logger builds the slog loggers used by the tracker.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
)

// Level is shared by every handler created by this package.
var Level = &level{lvl: &slog.LevelVar{}}

type level struct {
	lvl *slog.LevelVar
}

func (l *level) Enabled(level slog.Level) bool {
	return level >= l.lvl.Level()
}

func (l *level) Set(level slog.Level) {
	l.lvl.Set(level)
}

func (l *level) SetByName(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "err", "error":
		l.lvl.Set(slog.LevelError)
	case "warn", "warning":
		l.lvl.Set(slog.LevelWarn)
	case "info":
		l.lvl.Set(slog.LevelInfo)
	case "debug":
		l.lvl.Set(slog.LevelDebug)
	}
}

// New returns a tint-backed logger writing to w. Colors are disabled unless
// w is a terminal-attached *os.File.
func New(w io.Writer) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok && (f == os.Stderr || f == os.Stdout) {
		noColor = false
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		NoColor:    noColor,
		Level:      Level.lvl,
		TimeFormat: "2006-01-02 15:04:05",
	}))
}

// NewText returns a plain key=value logger, used when output goes to a file
// that other tools may parse.
func NewText(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level.lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					return slog.String(a.Key, strings.ToLower(lvl.String()))
				}
			}
			return a
		},
	}))
}

// OpenFile opens (appending) path and returns a logger writing to it along with
// the closer. On failure a discarding logger is returned.
func OpenFile(path string) (*slog.Logger, io.Closer) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Discard(), io.NopCloser(nil)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Discard(), io.NopCloser(nil)
	}
	return New(f), f
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
