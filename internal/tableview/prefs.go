package tableview

import (
	"encoding/json"
	"sort"
	"sync"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// Prefs is the persisted part of a table view.
type Prefs struct {
	Order  []string          `json:"order"`
	Hidden []string          `json:"hidden"`
	Pinned *string           `json:"pinned"`
	Labels map[string]string `json:"labels"`
}

// PreferencesStore loads and saves Prefs per table id. Load returns the zero
// Prefs and no error when nothing was saved yet.
type PreferencesStore interface {
	Load(tableID string) (Prefs, error)
	Save(tableID string, prefs Prefs) error
}

// Encode returns the JSON form of p with empty collections written as [] and {}.
func (p Prefs) Encode() ([]byte, error) {
	out := Prefs{
		Order:  nonNil(p.Order),
		Hidden: nonNil(p.Hidden),
		Pinned: p.Pinned,
		Labels: p.Labels,
	}
	if out.Labels == nil {
		out.Labels = map[string]string{}
	}
	return json.Marshal(out)
}

// DecodePrefs parses the JSON form. Empty input is the zero Prefs.
func DecodePrefs(data []byte) (Prefs, error) {
	var p Prefs
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, trackerrors.NewLoadError("view preferences are not valid JSON", err)
	}
	return p, nil
}

func nonNil(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// MemoryStore keeps encoded prefs in memory.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	failErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Load(tableID string) (Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return Prefs{}, trackerrors.NewLoadError("load view preferences", m.failErr)
	}
	return DecodePrefs(m.data[tableID])
}

func (m *MemoryStore) Save(tableID string, prefs Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return trackerrors.NewSaveError("save view preferences", m.failErr)
	}
	data, err := prefs.Encode()
	if err != nil {
		return trackerrors.NewSaveError("encode view preferences", err)
	}
	m.data[tableID] = data
	m.saves++
	return nil
}

// Put stores raw JSON for tableID, as if written by an earlier session.
func (m *MemoryStore) Put(tableID string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tableID] = append([]byte(nil), raw...)
}

// Raw returns the stored JSON for tableID.
func (m *MemoryStore) Raw(tableID string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data[tableID]...)
}

// Saves reports how many successful saves happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes Load and Save fail with err; nil restores normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}
