package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/reachy-mirror/pkg/capture"
	"github.com/teslashibe/reachy-mirror/pkg/mapper"
	"github.com/teslashibe/reachy-mirror/pkg/pose"
	"github.com/teslashibe/reachy-mirror/pkg/pose/detector"
)

// newTestPipeline wires a full pipeline on mocks.
func newTestPipeline(act *mockActuator, det *detector.Mock) (*Orchestrator, *capture.MockSource) {
	src := capture.NewMockSource([]byte("jpeg"))
	slot := NewFrameSlot()
	calib := mapper.NewCalibration(0)
	fatal := make(chan error, 1)

	prod := NewProducer(src, det, slot, fastProducerConfig())

	ccfg := DefaultConsumerConfig()
	ccfg.PollInterval = time.Millisecond
	cons := NewConsumer(act, mapper.New(mapper.DefaultConfig()), calib, slot, ccfg, fatal)

	return New(prod, cons, calib, slot, fatal), src
}

func TestOrchestrator_RunAndStop(t *testing.T) {
	act := &mockActuator{}
	det := detector.NewMock([]detector.Person{personWith(operatorPoints())})
	o, src := newTestPipeline(act, det)

	done := make(chan error, 1)
	go func() {
		done <- o.Run(context.Background())
	}()

	// Wait for commands to flow.
	deadline := time.After(time.Second)
	for act.commandCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("no command issued within timeout")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	o.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on clean stop", err)
		}
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop within timeout")
	}

	if !src.Closed() {
		t.Error("capture source not released")
	}
	if act.safeCount() != 1 {
		t.Errorf("SetSafe calls: got %d, want 1", act.safeCount())
	}
}

func TestOrchestrator_CalibrateUsesLastRawSway(t *testing.T) {
	act := &mockActuator{}

	// Operator leaning: hips shifted 20px right on a 100px shoulder width.
	leaning := operatorPoints()
	leaning[pose.LeftHip] = pose.Point{X: 120, Y: 150}
	leaning[pose.RightHip] = pose.Point{X: 220, Y: 150}
	det := detector.NewMock([]detector.Person{personWith(leaning)})
	o, _ := newTestPipeline(act, det)

	// Calibrating before any frame has been mapped must fail.
	if err := o.Calibrate(); !errors.Is(err, ErrNoPoseYet) {
		t.Fatalf("premature calibrate: got %v, want ErrNoPoseYet", err)
	}

	go o.Run(context.Background())
	defer o.Stop()

	deadline := time.After(time.Second)
	for {
		if _, ok := o.consumer.LastRawSway(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no frame mapped within timeout")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := o.Calibrate(); err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	// Zero offset now equals the leaning pose's raw sway.
	got := o.Status().CalibrationZero
	if got < 0.19 || got > 0.21 {
		t.Errorf("calibration zero: got %v, want ~0.2", got)
	}
}

func TestOrchestrator_FatalActuationStopsPipeline(t *testing.T) {
	act := &mockActuator{failAll: true}
	det := detector.NewMock([]detector.Person{personWith(operatorPoints())})
	o, src := newTestPipeline(act, det)

	done := make(chan error, 1)
	go func() {
		done <- o.Run(context.Background())
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrActuationFailing) {
			t.Errorf("Run returned %v, want ErrActuationFailing", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not shut down on sustained actuation failure")
	}

	// Neutral command still attempted, capture device released.
	if act.safeCount() != 1 {
		t.Errorf("SetSafe calls: got %d, want 1", act.safeCount())
	}
	if !src.Closed() {
		t.Error("capture source not released")
	}
}

func TestOrchestrator_StatusCounters(t *testing.T) {
	act := &mockActuator{}
	det := detector.NewMock([]detector.Person{personWith(operatorPoints())})
	o, _ := newTestPipeline(act, det)

	go o.Run(context.Background())
	defer o.Stop()

	deadline := time.After(time.Second)
	for o.Status().FramesMapped == 0 {
		select {
		case <-deadline:
			t.Fatal("no frames mapped within timeout")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	st := o.Status()
	if !st.Running {
		t.Error("status should report running")
	}
	if st.FramesPublished == 0 {
		t.Error("published counter should be nonzero")
	}
}
