package robot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/teslashibe/reachy-mirror/internal/httpc"
)

// Default daemon API settings.
const (
	DefaultPort = "8000"

	// moveDuration is the interpolation window the daemon uses for a
	// streaming mirroring target. Short, so commands feel live.
	moveDuration = 0.15

	// safeDuration is the slower interpolation used for the final
	// neutral move on shutdown.
	safeDuration = 1.0
)

// HTTPController implements Actuator using the Reachy Mini daemon's HTTP
// API. This is the primary actuation path for mirroring.
type HTTPController struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPController creates an HTTP-based actuator for the robot at the
// given IP. Requests use a short timeout so a dead link cannot stall the
// consumer loop for more than one actuation duration.
func NewHTTPController(robotIP string) *HTTPController {
	return &HTTPController{
		BaseURL: fmt.Sprintf("http://%s:%s", robotIP, DefaultPort),
		client:  httpc.NewClient(2 * time.Second),
	}
}

// SetCommand sends a full mirroring target (head + antennas) in one call.
func (r *HTTPController) SetCommand(cmd Command) error {
	cmd = cmd.Clamp()
	return r.postMove(map[string]interface{}{
		"target_head_pose": map[string]float64{
			"y_mm": cmd.HeadYMM,
		},
		"target_antennas": []float64{cmd.Antennas[0], cmd.Antennas[1]},
		"duration":        moveDuration,
	})
}

// SetSafe moves the robot to its neutral pose. Used on shutdown and
// after a sustained actuation failure.
func (r *HTTPController) SetSafe() error {
	return r.postMove(map[string]interface{}{
		"target_head_pose": map[string]float64{
			"y_mm": 0,
		},
		"target_antennas": []float64{0, 0},
		"duration":        safeDuration,
	})
}

// postMove sends a movement command to the daemon API.
func (r *HTTPController) postMove(payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal move payload: %w", err)
	}

	resp, err := r.client.Post(r.BaseURL+"/api/move", "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("move request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("move request returned status %d", resp.StatusCode)
	}

	return nil
}
