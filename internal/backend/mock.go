// internal/backend/mock.go
package backend

import (
	"fmt"
	"sync"
)

// Mock records every injection call instead of performing it. It backs the
// test suites and the simulate command's dry-run mode. Individual operations
// can be made to fail by name via FailOn.
type Mock struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

// NewMock returns an empty recording backend.
func NewMock() *Mock {
	return &Mock{fail: make(map[string]error)}
}

// FailOn makes every subsequent call matching the given record (for example
// "press:ctrl") return err.
func (m *Mock) FailOn(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[call] = err
}

// Calls returns a copy of the recorded call log in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the call log and failure injections.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.fail = make(map[string]error)
}

func (m *Mock) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[call]; ok {
		return err
	}
	m.calls = append(m.calls, call)
	return nil
}

func (m *Mock) PressKey(key string) error   { return m.record("press:" + key) }
func (m *Mock) ReleaseKey(key string) error { return m.record("release:" + key) }

func (m *Mock) MoveCursor(dx, dy int) error {
	return m.record(fmt.Sprintf("move:%d,%d", dx, dy))
}

func (m *Mock) PressMouse(button string) error   { return m.record("mousedown:" + button) }
func (m *Mock) ReleaseMouse(button string) error { return m.record("mouseup:" + button) }

func (m *Mock) Close() error { return m.record("close") }
