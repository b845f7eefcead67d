package robot

import "math"

// Physical limits for mirroring commands.
// These are safety limits to prevent sending impossible targets to the daemon.
const (
	// MaxHeadYMM is the head's lateral travel in millimetres.
	MaxHeadYMM = 35.0

	// MaxAntennaRad is the antenna deflection limit either side of vertical.
	MaxAntennaRad = math.Pi
)

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Command is one full actuation target: lateral head position plus both
// antenna angles. A command is always applied whole, never partially.
type Command struct {
	HeadYMM  float64    `json:"head_y_mm"` // lateral head offset, millimetres
	Antennas [2]float64 `json:"antennas"`  // left, right antenna angles, radians
}

// Neutral returns the safe resting command: head centred, antennas up.
func Neutral() Command {
	return Command{}
}

// Clamp returns a copy of c with every axis limited to its physical range.
func (c Command) Clamp() Command {
	return Command{
		HeadYMM: clamp(c.HeadYMM, -MaxHeadYMM, MaxHeadYMM),
		Antennas: [2]float64{
			clamp(c.Antennas[0], -MaxAntennaRad, MaxAntennaRad),
			clamp(c.Antennas[1], -MaxAntennaRad, MaxAntennaRad),
		},
	}
}
