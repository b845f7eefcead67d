package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local camera through OpenCV.
type Webcam struct {
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
}

// OpenWebcam opens the configured capture device.
func OpenWebcam(cfg Config) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open video device %d: %w", cfg.DeviceID, err)
	}

	if cfg.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	return &Webcam{
		cap:   cap,
		frame: gocv.NewMat(),
	}, nil
}

// Grab reads one frame and returns it JPEG-encoded.
func (w *Webcam) Grab() ([]byte, error) {
	if w.closed {
		return nil, ErrClosed
	}

	if ok := w.cap.Read(&w.frame); !ok {
		return nil, fmt.Errorf("capture: failed to read frame from device")
	}
	if w.frame.Empty() {
		return nil, fmt.Errorf("capture: device returned empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, w.frame)
	if err != nil {
		return nil, fmt.Errorf("capture: encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the native buffer is reused on the next encode.
	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// Close releases the device and the reusable frame buffer.
func (w *Webcam) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.frame.Close()
	return w.cap.Close()
}
