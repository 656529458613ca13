package host

import (
	"fmt"
	"sync"
	"time"
)

// Setter names recorded by MockHost.
const (
	SetterColorScheme = "color_scheme"
	SetterWindowTheme = "window_theme"
)

// Call records a setter invocation for testing
type Call struct {
	Setter string
	Name   string
	Time   time.Time
}

// MockHost implements host.Host for testing. It records every call and can
// be told to fail.
type MockHost struct {
	mu       sync.Mutex
	calls    []Call
	failures map[string]error
}

// NewMockHost creates a new mock host
func NewMockHost() *MockHost {
	return &MockHost{
		calls:    make([]Call, 0),
		failures: make(map[string]error),
	}
}

// SetColorScheme records the call
func (m *MockHost) SetColorScheme(name string) error {
	return m.record(SetterColorScheme, name)
}

// SetWindowTheme records the call
func (m *MockHost) SetWindowTheme(name string) error {
	return m.record(SetterWindowTheme, name)
}

func (m *MockHost) record(setter, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Setter: setter, Name: name, Time: time.Now()})
	if err, ok := m.failures[setter]; ok {
		return err
	}
	return nil
}

// FailWith makes the named setter return err until cleared with a nil err.
func (m *MockHost) FailWith(setter string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, setter)
		return
	}
	m.failures[setter] = err
}

// FailAll makes both setters fail.
func (m *MockHost) FailAll() {
	m.FailWith(SetterColorScheme, fmt.Errorf("mock %s failure", SetterColorScheme))
	m.FailWith(SetterWindowTheme, fmt.Errorf("mock %s failure", SetterWindowTheme))
}

// Calls returns a copy of all recorded calls
func (m *MockHost) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsFor returns the names passed to one setter, in order.
func (m *MockHost) CallsFor(setter string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for _, call := range m.calls {
		if call.Setter == setter {
			names = append(names, call.Name)
		}
	}
	return names
}

// ClearCalls clears the recorded calls
func (m *MockHost) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make([]Call, 0)
}
