package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bekirdag/jobtracker/internal/todo"
)

type activityEvent struct {
	SessionID string    `json:"session_id"`
	User      string    `json:"user,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	todo.Change
}

// activityLog appends one JSON line per committed cell. Write failures are
// dropped; the log is a record, not a source of truth.
type activityLog struct {
	path      string
	sessionID string
	user      string
	now       func() time.Time
	mu        sync.Mutex
}

func newActivityLog(path string) *activityLog {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &activityLog{
		path:      path,
		sessionID: uuid.NewString(),
		user:      resolveActivityUser(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (a *activityLog) Record(change todo.Change) {
	if a == nil {
		return
	}
	event := "commit"
	switch {
	case change.Old == "" && change.Column == todo.ColTask && change.Item != "":
		event = "add"
	case change.New == "" && change.Column == todo.ColTask && change.Item != "":
		event = "delete"
	}
	a.emit(activityEvent{Event: event, Change: change})
}

func (a *activityLog) emit(ev activityEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ev.SessionID = a.sessionID
	ev.User = a.user
	if ev.Timestamp.IsZero() {
		ev.Timestamp = a.now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}

func resolveActivityUser() string {
	for _, candidate := range []string{os.Getenv("JOBTRACKER_USER"), os.Getenv("USER"), os.Getenv("USERNAME")} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
