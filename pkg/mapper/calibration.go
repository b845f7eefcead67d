package mapper

import "sync"

// Calibration holds the hip-sway value treated as "neutral". It is
// shared between the consumer (reads on every command) and the
// operator-triggered recalibration (rare writes), so access is
// mutex-guarded. No history is kept: recalibrating overwrites.
type Calibration struct {
	mu   sync.RWMutex
	zero float64
}

// NewCalibration returns a calibration zeroed at the given sway value.
func NewCalibration(zero float64) *Calibration {
	return &Calibration{zero: zero}
}

// Recalibrate sets the zero offset to the given raw sway value, so the
// next computed head offset reads zero for an operator holding the same
// pose.
func (c *Calibration) Recalibrate(rawSway float64) {
	c.mu.Lock()
	c.zero = rawSway
	c.mu.Unlock()
}

// Offset returns the current zero offset.
func (c *Calibration) Offset() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zero
}
