package store

import (
	"context"
	"sync"
)

// Memory is a goroutine-safe in-memory Store. State does not survive a
// restart.
type Memory struct {
	mu   sync.RWMutex
	data State
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(State)}
}

// Load returns a copy of the current state.
func (m *Memory) Load(_ context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone(), nil
}

// Save replaces the stored state with a copy of st.
func (m *Memory) Save(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = st.Clone()
	return nil
}
