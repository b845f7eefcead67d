// Package mirror contains the real-time coordination core: the
// producer/consumer pipeline that couples pose detection to robot
// actuation, and the orchestrator that owns its lifecycle.
package mirror

import (
	"sync"

	"github.com/teslashibe/reachy-mirror/pkg/pose"
)

// FrameSlot is a single-capacity, latest-wins hand-off between the pose
// producer and the robot consumer. Publish always succeeds, overwriting
// any unread frame; the consumer only ever sees the newest frame. A
// stale pose is worse than a missing one for live mirroring, so
// superseded frames are dropped, never queued.
type FrameSlot struct {
	mu        sync.Mutex
	frame     *pose.Frame
	published uint64
	dropped   uint64
}

// NewFrameSlot returns an empty slot.
func NewFrameSlot() *FrameSlot {
	return &FrameSlot{}
}

// Publish stores the frame, replacing any unread one.
func (s *FrameSlot) Publish(frame *pose.Frame) {
	s.mu.Lock()
	if s.frame != nil {
		s.dropped++
	}
	s.frame = frame
	s.published++
	s.mu.Unlock()
}

// TakeLatest removes and returns the newest unread frame. It never
// blocks; ok is false when nothing new arrived since the last take.
func (s *FrameSlot) TakeLatest() (*pose.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, false
	}
	f := s.frame
	s.frame = nil
	return f, true
}

// Published returns how many frames have been published.
func (s *FrameSlot) Published() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published
}

// Dropped returns how many frames were overwritten before being read.
func (s *FrameSlot) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
