package store

import (
	"sync"

	"github.com/sardine-ai/ctmagent-config/schema"
)

// MemoryStore implements Store in memory, for tests and check runs. The
// zero value is an empty store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int

	// Error injection, applied to every location.
	GetErr    error
	SetErr    error
	DeleteErr error
	// FailOn injects an error for a single location, keyed by Location.String().
	FailOn map[string]error
}

// NewMemoryStore creates a MemoryStore holding values keyed by
// Location.String().
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values)), FailOn: map[string]error{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemoryStore) Name() string {
	return "memory"
}

func (m *MemoryStore) injected(loc schema.Location, err error) error {
	if err != nil {
		return err
	}
	return m.FailOn[loc.String()]
}

func (m *MemoryStore) Get(loc schema.Location) (string, bool, error) {
	if err := m.injected(loc, m.GetErr); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[loc.String()]
	return v, ok, nil
}

func (m *MemoryStore) Set(loc schema.Location, value string) error {
	if err := m.injected(loc, m.SetErr); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[loc.String()] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Delete(loc schema.Location) error {
	if err := m.injected(loc, m.DeleteErr); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[loc.String()]; ok {
		delete(m.values, loc.String())
		m.writes++
	}
	return nil
}

// Values returns a copy of the stored values.
func (m *MemoryStore) Values() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Writes returns how many Set and effective Delete calls succeeded.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
