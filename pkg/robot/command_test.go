package robot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCommand_Clamp(t *testing.T) {
	c := Command{HeadYMM: 120, Antennas: [2]float64{-9, 9}}
	got := c.Clamp()

	if got.HeadYMM != MaxHeadYMM {
		t.Errorf("HeadYMM: got %v, want %v", got.HeadYMM, MaxHeadYMM)
	}
	if got.Antennas[0] != -MaxAntennaRad {
		t.Errorf("left antenna: got %v, want %v", got.Antennas[0], -MaxAntennaRad)
	}
	if got.Antennas[1] != MaxAntennaRad {
		t.Errorf("right antenna: got %v, want %v", got.Antennas[1], MaxAntennaRad)
	}

	// In-range values pass through untouched.
	c = Command{HeadYMM: -10, Antennas: [2]float64{0.5, -0.5}}
	if c.Clamp() != c {
		t.Errorf("in-range command changed by Clamp: %+v", c.Clamp())
	}
}

func TestNeutral(t *testing.T) {
	n := Neutral()
	if n.HeadYMM != 0 || n.Antennas[0] != 0 || n.Antennas[1] != 0 {
		t.Errorf("Neutral() not zero: %+v", n)
	}
}

func TestHTTPController_SetCommand(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/move" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctrl := NewHTTPController("ignored")
	ctrl.BaseURL = srv.URL

	if err := ctrl.SetCommand(Command{HeadYMM: 20, Antennas: [2]float64{0.3, -0.3}}); err != nil {
		t.Fatalf("SetCommand failed: %v", err)
	}

	head, ok := got["target_head_pose"].(map[string]interface{})
	if !ok || head["y_mm"].(float64) != 20 {
		t.Errorf("head pose not forwarded: %v", got["target_head_pose"])
	}
}

func TestHTTPController_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctrl := NewHTTPController("ignored")
	ctrl.BaseURL = srv.URL

	if err := ctrl.SetSafe(); err == nil {
		t.Fatal("expected error on 503 response")
	}
}
