package mirror

import (
	"context"
	"errors"
	"sync"

	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/mapper"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
)

// ErrNoPoseYet is returned by Calibrate before any frame has been
// successfully mapped: there is no raw sway to zero against.
var ErrNoPoseYet = errors.New("mirror: no pose computed yet, cannot calibrate")

// Status is a point-in-time snapshot of the pipeline for dashboards and
// remote clients.
type Status struct {
	Running         bool          `json:"running"`
	FramesPublished uint64        `json:"frames_published"`
	FramesDropped   uint64        `json:"frames_dropped"`
	FramesMapped    uint64        `json:"frames_mapped"`
	MappingSkips    uint64        `json:"mapping_skips"`
	CaptureErrors   uint64        `json:"capture_errors"`
	InferenceErrors uint64        `json:"inference_errors"`
	ActuationErrors uint64        `json:"actuation_errors"`
	CalibrationZero float64       `json:"calibration_zero"`
	LastCommand     robot.Command `json:"last_command"`
}

// Orchestrator owns the two worker goroutines and the control signals
// around them. Calibrate and Stop are the only external triggers the
// core understands; translating key presses, API calls or POSIX signals
// into them is the caller's job.
type Orchestrator struct {
	producer *Producer
	consumer *Consumer
	calib    *mapper.Calibration
	slot     *FrameSlot
	fatal    chan error

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New wires a pipeline from its parts. The fatal channel must be the one
// handed to the consumer.
func New(producer *Producer, consumer *Consumer, calib *mapper.Calibration, slot *FrameSlot, fatal chan error) *Orchestrator {
	return &Orchestrator{
		producer: producer,
		consumer: consumer,
		calib:    calib,
		slot:     slot,
		fatal:    fatal,
	}
}

// Run starts both workers and blocks until ctx is cancelled, Stop is
// called, or the consumer reports a fatal condition. Workers are always
// joined before Run returns, so the capture device is released and the
// robot is parked safe by the time the caller regains control.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.cancel = cancel
	o.running = true
	o.mu.Unlock()

	logger := log.With("component", "orchestrator")
	logger.Info("mirroring pipeline starting")

	o.wg.Add(2)
	go func() {
		defer o.wg.Done()
		o.producer.Run(ctx)
	}()
	go func() {
		defer o.wg.Done()
		o.consumer.Run(ctx)
	}()

	var fatalErr error
	select {
	case <-ctx.Done():
	case fatalErr = <-o.fatal:
		logger.Error("fatal pipeline condition, shutting down", "error", fatalErr)
	}

	cancel()
	o.wg.Wait()

	o.mu.Lock()
	o.running = false
	o.mu.Unlock()

	logger.Info("mirroring pipeline stopped")
	return fatalErr
}

// Stop cancels the pipeline. Safe to call from any goroutine, including
// before Run (a later Run will still start normally) and more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Calibrate zeroes the hip-sway signal at the operator's current pose,
// using the raw sway of the most recent successfully mapped frame.
func (o *Orchestrator) Calibrate() error {
	raw, ok := o.consumer.LastRawSway()
	if !ok {
		return ErrNoPoseYet
	}
	o.calib.Recalibrate(raw)
	log.Info("hip sway calibrated", "zero", raw)
	return nil
}

// Status returns a snapshot of the pipeline counters.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()

	cmd, _ := o.consumer.LastCommand()
	return Status{
		Running:         running,
		FramesPublished: o.slot.Published(),
		FramesDropped:   o.slot.Dropped(),
		FramesMapped:    o.consumer.Frames(),
		MappingSkips:    o.consumer.MappingSkips(),
		CaptureErrors:   o.producer.CaptureErrors(),
		InferenceErrors: o.producer.InferenceErrors(),
		ActuationErrors: o.consumer.ActuationErrors(),
		CalibrationZero: o.calib.Offset(),
		LastCommand:     cmd,
	}
}
