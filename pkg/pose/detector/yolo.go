package detector

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/reachy-mirror/pkg/pose"
)

// yoloRowSize is the per-candidate output width of YOLOv8-pose:
// 4 box values, 1 object score, then x/y/confidence for each keypoint.
const yoloRowSize = 4 + 1 + pose.NumKeypoints*3

// YOLODetector runs a YOLOv8-pose ONNX model through OpenCV's DNN module.
type YOLODetector struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// NewYOLO creates a pose detector from a YOLOv8-pose ONNX model.
func NewYOLO(cfg Config) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model: %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:    net,
		config: cfg,
	}, nil
}

// Detect finds people in the JPEG image and returns their landmarks in
// original image pixel coordinates.
func (d *YOLODetector) Detect(jpeg []byte) ([]Person, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())
	size := d.config.InputSize

	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	// Output shape is 1 x yoloRowSize x candidates; flatten to a
	// yoloRowSize-row matrix with one candidate per column.
	rows := out.Reshape(1, yoloRowSize)
	defer rows.Close()

	// The blob was resized to a square, so x and y scale back
	// independently.
	scaleX := imgW / float64(size)
	scaleY := imgH / float64(size)

	var boxes []image.Rectangle
	var scores []float32
	var candidates []Person

	for c := 0; c < rows.Cols(); c++ {
		score := float64(rows.GetFloatAt(4, c))
		if score < d.config.ConfidenceThresh {
			continue
		}

		cx := float64(rows.GetFloatAt(0, c)) * scaleX
		cy := float64(rows.GetFloatAt(1, c)) * scaleY
		w := float64(rows.GetFloatAt(2, c)) * scaleX
		h := float64(rows.GetFloatAt(3, c)) * scaleY

		p := Person{
			Score: score,
			X:     (cx - w/2) / imgW,
			Y:     (cy - h/2) / imgH,
			W:     w / imgW,
			H:     h / imgH,
		}
		for k := 0; k < pose.NumKeypoints; k++ {
			base := 5 + k*3
			p.Landmarks[k] = pose.Landmark{
				Point: pose.Point{
					X: float64(rows.GetFloatAt(base, c)) * scaleX,
					Y: float64(rows.GetFloatAt(base+1, c)) * scaleY,
				},
				Confidence: float64(rows.GetFloatAt(base+2, c)),
			}
		}

		boxes = append(boxes, image.Rect(
			int(cx-w/2), int(cy-h/2), int(cx+w/2), int(cy+h/2)))
		scores = append(scores, float32(score))
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	// Suppress overlapping candidates of the same person.
	keep := gocv.NMSBoxes(boxes, scores,
		float32(d.config.ConfidenceThresh), float32(d.config.NMSThresh))

	people := make([]Person, 0, len(keep))
	for _, idx := range keep {
		people = append(people, candidates[idx])
	}

	return people, nil
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
