package mirror

import (
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/reachy-mirror/pkg/pose"
	"github.com/teslashibe/reachy-mirror/pkg/pose/detector"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
)

// mockActuator records all commands for testing.
type mockActuator struct {
	mu        sync.Mutex
	commands  []robot.Command
	safeCalls int
	failAll   bool
	failNext  int
}

var errLinkDown = errors.New("link down")

func (m *mockActuator) SetCommand(cmd robot.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failNext > 0 {
		if m.failNext > 0 {
			m.failNext--
		}
		return errLinkDown
	}
	m.commands = append(m.commands, cmd)
	return nil
}

func (m *mockActuator) SetSafe() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.safeCalls++
	return nil
}

func (m *mockActuator) commandCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

func (m *mockActuator) lastCommand() (robot.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.commands) == 0 {
		return robot.Command{}, false
	}
	return m.commands[len(m.commands)-1], true
}

func (m *mockActuator) safeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.safeCalls
}

// operatorPoints is a square-to-camera operator with arms straight down.
func operatorPoints() map[int]pose.Point {
	return map[int]pose.Point{
		pose.LeftShoulder:  {X: 100, Y: 50},
		pose.RightShoulder: {X: 200, Y: 50},
		pose.LeftHip:       {X: 100, Y: 150},
		pose.RightHip:      {X: 200, Y: 150},
		pose.LeftElbow:     {X: 100, Y: 100},
		pose.LeftWrist:     {X: 100, Y: 150},
		pose.RightElbow:    {X: 200, Y: 100},
		pose.RightWrist:    {X: 200, Y: 150},
	}
}

// frameWith builds a detected frame from keypoint positions at 0.9
// confidence.
func frameWith(seq uint64, points map[int]pose.Point) *pose.Frame {
	f := &pose.Frame{Detected: true, Seq: seq, Timestamp: time.Now()}
	for idx, p := range points {
		f.Landmarks[idx] = pose.Landmark{Point: p, Confidence: 0.9}
	}
	return f
}

// personWith builds a detector result from keypoint positions.
func personWith(points map[int]pose.Point) detector.Person {
	p := detector.Person{Score: 0.9, W: 0.5, H: 0.9}
	for idx, pt := range points {
		p.Landmarks[idx] = pose.Landmark{Point: pt, Confidence: 0.9}
	}
	return p
}
