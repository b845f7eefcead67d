package pose

import (
	"errors"
	"math"
)

// ErrDegenerateGeometry is returned when an angle is requested with a
// zero-length arm, i.e. one of the outer points coincides with the vertex.
var ErrDegenerateGeometry = errors.New("pose: degenerate geometry, point coincides with vertex")

// Angle returns the angle at vertex b formed by the vectors b→a and
// b→c, in degrees in [0, 180]. It is symmetric in a and c and invariant
// under uniform scaling and translation of all three points.
func Angle(a, b, c Point) (float64, error) {
	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	normBA := math.Hypot(bax, bay)
	normBC := math.Hypot(bcx, bcy)
	if normBA == 0 || normBC == 0 {
		return 0, ErrDegenerateGeometry
	}

	cos := (bax*bcx + bay*bcy) / (normBA * normBC)

	// Guard against floating-point drift outside acos's domain.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi, nil
}
