// Package mapper turns detected body landmarks into robot mirroring
// commands: hip sway relative to the shoulders drives the head's lateral
// axis, arm angles drive the antennas.
package mapper

import (
	"errors"
	"math"

	"github.com/teslashibe/reachy-mirror/pkg/pose"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
)

// ErrMissingLandmarks is returned when a landmark required for a control
// signal is absent or below the confidence threshold. The mapper never
// fabricates a command from partial data.
var ErrMissingLandmarks = errors.New("mapper: required landmarks missing or below confidence threshold")

// Config holds the tunable mapping parameters.
type Config struct {
	// ConfThreshold is the minimum keypoint confidence for a landmark
	// to count as detected.
	ConfThreshold float64

	// SwayMax is the normalized hip sway (fraction of shoulder width)
	// that maps to full head deflection. Larger raw sway is clamped.
	SwayMax float64

	// HeadYMaxMM is the head's lateral travel at full deflection.
	HeadYMaxMM float64

	// Smoothing is the exponential low-pass factor applied against the
	// previous command, in (0, 1]. Zero disables smoothing entirely;
	// values near 1 barely smooth. Disabled by default: the daemon's
	// own interpolation is usually enough.
	Smoothing float64
}

// DefaultConfig returns the mapping parameters tuned for a webcam at
// roughly arm's length.
func DefaultConfig() Config {
	return Config{
		ConfThreshold: 0.5,
		SwayMax:       0.4,
		HeadYMaxMM:    robot.MaxHeadYMM,
		Smoothing:     0, // identity; opt in explicitly
	}
}

// swayKeypoints are required for the hip-sway signal.
var swayKeypoints = []int{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip}

// armKeypoints are required per side for the antenna signal, vertex at
// the elbow.
var armKeypoints = [2][3]int{
	{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
	{pose.RightShoulder, pose.RightElbow, pose.RightWrist},
}

// Mapper computes robot commands from pose frames. It carries only the
// previous command (for optional smoothing), so it is owned by the
// single consumer goroutine and is not safe for concurrent use.
type Mapper struct {
	cfg     Config
	prev    robot.Command
	hasPrev bool
}

// New creates a Mapper with the given configuration.
func New(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// RawSway returns the uncalibrated hip-sway signal for the frame: the
// horizontal displacement of the hip centre from the shoulder centre,
// normalized by shoulder width so the signal is invariant to distance
// from the camera.
func (m *Mapper) RawSway(frame *pose.Frame) (float64, error) {
	lm := &frame.Landmarks
	if !frame.Detected {
		return 0, ErrMissingLandmarks
	}
	for _, idx := range swayKeypoints {
		if !lm.Has(idx, m.cfg.ConfThreshold) {
			return 0, ErrMissingLandmarks
		}
	}

	ls, rs := lm.At(pose.LeftShoulder), lm.At(pose.RightShoulder)
	lh, rh := lm.At(pose.LeftHip), lm.At(pose.RightHip)

	width := math.Hypot(ls.X-rs.X, ls.Y-rs.Y)
	if width == 0 {
		return 0, pose.ErrDegenerateGeometry
	}

	shoulderCenterX := (ls.X + rs.X) / 2
	hipCenterX := (lh.X + rh.X) / 2

	return (hipCenterX - shoulderCenterX) / width, nil
}

// Compute maps a frame to a full robot command using the current
// calibration. It returns the command together with the raw
// (uncalibrated) sway that produced it, which the caller keeps around
// for recalibration.
func (m *Mapper) Compute(frame *pose.Frame, calib *Calibration) (robot.Command, float64, error) {
	rawSway, err := m.RawSway(frame)
	if err != nil {
		return robot.Command{}, 0, err
	}

	cmd := robot.Command{
		HeadYMM: m.headY(rawSway - calib.Offset()),
	}

	lm := &frame.Landmarks
	for side, kps := range armKeypoints {
		for _, idx := range kps {
			if !lm.Has(idx, m.cfg.ConfThreshold) {
				return robot.Command{}, 0, ErrMissingLandmarks
			}
		}
		deg, err := pose.Angle(lm.At(kps[0]), lm.At(kps[1]), lm.At(kps[2]))
		if err != nil {
			return robot.Command{}, 0, err
		}
		cmd.Antennas[side] = antennaAngle(side, deg)
	}

	cmd = cmd.Clamp()
	cmd = m.smooth(cmd)
	return cmd, rawSway, nil
}

// headY maps a calibrated sway value into head millimetres. The output
// range is inverted so the robot mirrors the operator: the operator's
// right is the robot's right from its own point of view.
func (m *Mapper) headY(sway float64) float64 {
	scaled := -(sway / m.cfg.SwayMax) * m.cfg.HeadYMaxMM
	return clamp(scaled, -m.cfg.HeadYMaxMM, m.cfg.HeadYMaxMM)
}

// antennaAngle converts an elbow angle in degrees to an antenna target
// in radians. A straight arm (180°) leaves the antenna upright; bending
// the arm raises it. The left antenna turns the opposite way.
func antennaAngle(side int, deg float64) float64 {
	rad := math.Pi - deg*math.Pi/180
	if side == 0 {
		return -rad
	}
	return rad
}

// smooth applies the configured exponential low-pass against the
// previous command. With Smoothing == 0 it is the identity.
func (m *Mapper) smooth(cmd robot.Command) robot.Command {
	if m.cfg.Smoothing <= 0 || !m.hasPrev {
		m.prev = cmd
		m.hasPrev = true
		return cmd
	}

	a := m.cfg.Smoothing
	out := robot.Command{
		HeadYMM: a*cmd.HeadYMM + (1-a)*m.prev.HeadYMM,
		Antennas: [2]float64{
			a*cmd.Antennas[0] + (1-a)*m.prev.Antennas[0],
			a*cmd.Antennas[1] + (1-a)*m.prev.Antennas[1],
		},
	}
	m.prev = out
	return out
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
