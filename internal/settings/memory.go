package settings

import (
	"context"
	"sync"
)

// Memory is an in-process Writer. It backs tests and runs where no database
// is configured.
type Memory struct {
	mu      sync.Mutex
	current *Settings
	saves   int
	failErr error
}

func NewMemory(initial *Settings) *Memory {
	if initial == nil {
		initial = Defaults()
	}
	return &Memory{current: initial.Clone()}
}

func (m *Memory) Current() *Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

func (m *Memory) SaveSettings(_ context.Context, patch Patch) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	m.current = m.current.Merge(patch)
	m.saves++
	return m.current.Clone(), nil
}

// Saves reports how many patches were applied.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves return err; nil restores normal behavior.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}
