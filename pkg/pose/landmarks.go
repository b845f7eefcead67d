// Package pose provides body landmark types and the geometry used to
// turn detected keypoints into robot control signals.
package pose

import "time"

// Keypoint indices following the COCO convention used by YOLO pose models.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16
	NumKeypoints  = 17
)

// Point is a 2D position in image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark is a detected keypoint with its confidence score.
// The zero value means the keypoint was not detected.
type Landmark struct {
	Point
	Confidence float64 `json:"confidence"`
}

// Landmarks holds one detected person's keypoints, indexed by the
// COCO constants above.
type Landmarks [NumKeypoints]Landmark

// Has reports whether keypoint idx was detected with at least minConf
// confidence.
func (l *Landmarks) Has(idx int, minConf float64) bool {
	if idx < 0 || idx >= NumKeypoints {
		return false
	}
	return l[idx].Confidence >= minConf
}

// At returns the position of keypoint idx.
func (l *Landmarks) At(idx int) Point {
	return l[idx].Point
}

// Frame is one processed capture: the detected landmarks (possibly
// empty when no person was in view) and when it was captured.
// Frames are immutable after creation; Seq increases monotonically
// across frames built by one producer.
type Frame struct {
	Landmarks Landmarks
	Detected  bool // false when no person was found
	Timestamp time.Time
	Seq       uint64
}
