// Package detector provides human pose estimation for the mirroring
// pipeline using computer vision.
package detector

import "github.com/teslashibe/reachy-mirror/pkg/pose"

// Person is one detected person: the body landmarks plus the detection
// score and bounding box used to pick the primary subject.
type Person struct {
	Landmarks pose.Landmarks
	Score     float64 // detection confidence (0-1)
	X, Y      float64 // bounding box origin (0-1 normalized)
	W, H      float64 // bounding box size (0-1 normalized)
}

// Area returns the normalized area of the bounding box.
func (p Person) Area() float64 {
	return p.W * p.H
}

// Detector is the interface for pose estimation backends.
// Zero detected persons is a valid empty result, not an error.
type Detector interface {
	// Detect finds people in the JPEG image and returns their landmarks.
	Detect(jpeg []byte) ([]Person, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX pose model
	ConfidenceThresh float64 // Minimum detection confidence (default 0.5)
	NMSThresh        float64 // Non-maximum suppression threshold
	InputSize        int     // Square model input size
}

// DefaultConfig returns production defaults for YOLOv8-pose.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n-pose.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputSize:        640,
	}
}

// SelectPrimary picks the person to mirror from multiple detections.
// Priority: confidence * 0.7 + area * 0.3, so a close, confidently
// detected operator wins over background passers-by.
func SelectPrimary(people []Person) *Person {
	if len(people) == 0 {
		return nil
	}
	if len(people) == 1 {
		return &people[0]
	}

	maxArea := 0.0
	for _, p := range people {
		if p.Area() > maxArea {
			maxArea = p.Area()
		}
	}

	bestScore := -1.0
	var best *Person
	for i := range people {
		score := people[i].Score * 0.7
		if maxArea > 0 {
			score += (people[i].Area() / maxArea) * 0.3
		}
		if score > bestScore {
			bestScore = score
			best = &people[i]
		}
	}

	return best
}
