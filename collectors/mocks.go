package collectors

import (
	"sync"
	"time"
)

// MockProvider is a LoadProvider that replays scripted readings. When a
// script runs out the last entry repeats. Useful for tests and the demo
// mode where no real CPU reading is wanted.
type MockProvider struct {
	mu      sync.Mutex
	process []Reading
	system  []Reading
	calls   int
}

// Reading is one scripted provider result.
type Reading struct {
	Value float64
	Err   error
}

// NewMockProvider creates a MockProvider returning the given process and
// system fractions in order.
func NewMockProvider(process, system []float64) *MockProvider {
	m := &MockProvider{}
	for _, v := range process {
		m.process = append(m.process, Reading{Value: v})
	}
	for _, v := range system {
		m.system = append(m.system, Reading{Value: v})
	}
	return m
}

// ScriptProcess replaces the process script.
func (m *MockProvider) ScriptProcess(r ...Reading) {
	m.mu.Lock()
	m.process = r
	m.mu.Unlock()
}

// ScriptSystem replaces the system script.
func (m *MockProvider) ScriptSystem(r ...Reading) {
	m.mu.Lock()
	m.system = r
	m.mu.Unlock()
}

// ProcessLoad returns the next scripted process reading.
func (m *MockProvider) ProcessLoad() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := next(&m.process)
	m.calls++
	return r.Value, r.Err
}

// SystemLoad returns the next scripted system reading.
func (m *MockProvider) SystemLoad() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := next(&m.system)
	return r.Value, r.Err
}

// Calls returns how many times ProcessLoad has been called.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func next(script *[]Reading) Reading {
	s := *script
	switch len(s) {
	case 0:
		return Reading{}
	case 1:
		return s[0]
	default:
		*script = s[1:]
		return s[0]
	}
}

// MockClock is a Clock that advances by Step on every call to Now.
type MockClock struct {
	mu   sync.Mutex
	t    time.Time
	Step time.Duration
}

// NewMockClock creates a MockClock starting at start.
func NewMockClock(start time.Time, step time.Duration) *MockClock {
	return &MockClock{t: start, Step: step}
}

// Now returns the current mock time and advances it by Step.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.Step)
	return now
}

var _ LoadProvider = (*MockProvider)(nil)
var _ Clock = (*MockClock)(nil)
