package capture

import "sync"

// MockSource is a scriptable Source for tests. Each Grab pops the next
// queued result; when the script runs out it repeats the last one.
type MockSource struct {
	mu      sync.Mutex
	frames  [][]byte
	errs    []error
	grabs   int
	closed  bool
	GrabGap chan struct{} // if set, Grab blocks until a token arrives
}

// NewMockSource creates a mock that serves the given frames in order.
func NewMockSource(frames ...[]byte) *MockSource {
	return &MockSource{frames: frames}
}

// Append adds a successful Grab to the script.
func (m *MockSource) Append(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame)
}

// QueueError appends a failing Grab to the script.
func (m *MockSource) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, nil)
	for len(m.errs) < len(m.frames)-1 {
		m.errs = append(m.errs, nil)
	}
	m.errs = append(m.errs, err)
}

// Grab returns the next scripted frame or error.
func (m *MockSource) Grab() ([]byte, error) {
	if m.GrabGap != nil {
		<-m.GrabGap
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	i := m.grabs
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	}
	m.grabs++

	if i < 0 {
		return []byte{}, nil
	}
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.frames[i], nil
}

// Grabs returns how many times Grab was called.
func (m *MockSource) Grabs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grabs
}

// Close marks the source closed; later Grabs fail with ErrClosed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
