package detector

import "sync"

// Mock is a scriptable Detector for tests.
type Mock struct {
	mu      sync.Mutex
	results [][]Person
	errs    []error
	calls   int
	closed  bool
}

// NewMock creates a mock that serves the given detection results in
// order, repeating the last one when the script runs out.
func NewMock(results ...[]Person) *Mock {
	return &Mock{results: results}
}

// QueueError appends a failing Detect call to the script.
func (m *Mock) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, nil)
	for len(m.errs) < len(m.results)-1 {
		m.errs = append(m.errs, nil)
	}
	m.errs = append(m.errs, err)
}

// Detect returns the next scripted result.
func (m *Mock) Detect(jpeg []byte) ([]Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	if i >= len(m.results) {
		i = len(m.results) - 1
	}
	m.calls++

	if i < 0 {
		return nil, nil
	}
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.results[i], nil
}

// Calls returns how many times Detect was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
