// Package capture provides video frame acquisition for the mirroring
// pipeline.
package capture

import "errors"

// ErrClosed is returned by Grab after the source has been closed.
var ErrClosed = errors.New("capture: source closed")

// Source yields JPEG frames from a camera. Implementations are used by a
// single producer goroutine and need not be safe for concurrent Grab.
type Source interface {
	// Grab blocks until the next frame is available and returns it as
	// JPEG bytes.
	Grab() ([]byte, error)

	// Close releases the device.
	Close() error
}

// Config holds capture device settings.
type Config struct {
	DeviceID int `yaml:"device_id" json:"device_id"`
	Width    int `yaml:"width" json:"width"`
	Height   int `yaml:"height" json:"height"`
}

// DefaultConfig returns settings for the default webcam at a resolution
// that keeps pose inference fast.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    640,
		Height:   480,
	}
}
