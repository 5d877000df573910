package cache

import "sync"

// Memory is a volatile Store. It forgets its value when the process exits,
// so every restart triggers a full update.
type Memory struct {
	mu     sync.Mutex
	value  string
	set    bool
	writes int
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Exists() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", &ReadError{Err: ErrNotInitialized}
	}
	return m.value, nil
}

func (m *Memory) Write(ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = ip, true
	m.writes++
	return nil
}

// Writes returns how many times Write has been called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
