package mirror

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/capture"
	"github.com/teslashibe/reachy-mirror/pkg/debug"
	"github.com/teslashibe/reachy-mirror/pkg/pose"
	"github.com/teslashibe/reachy-mirror/pkg/pose/detector"
)

// ProducerConfig holds the producer's recovery settings.
type ProducerConfig struct {
	// Backoff is how long to wait after a capture or inference failure
	// before retrying. Single failures never terminate the loop.
	Backoff time.Duration
}

// DefaultProducerConfig returns recovery settings tuned for a webcam.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Backoff: 250 * time.Millisecond,
	}
}

// Producer runs the capture → detect → publish loop. It owns the capture
// source for its lifetime and releases it on exit.
type Producer struct {
	source   capture.Source
	detector detector.Detector
	slot     *FrameSlot
	cfg      ProducerConfig

	seq         uint64
	captureErrs atomic.Uint64
	inferErrs   atomic.Uint64
}

// NewProducer wires a capture source and a pose detector to the slot.
func NewProducer(source capture.Source, det detector.Detector, slot *FrameSlot, cfg ProducerConfig) *Producer {
	return &Producer{
		source:   source,
		detector: det,
		slot:     slot,
		cfg:      cfg,
	}
}

// Run loops until ctx is cancelled, then releases the capture source.
// Capture and inference failures are logged and retried with backoff.
func (p *Producer) Run(ctx context.Context) {
	logger := log.With("component", "producer")
	logger.Info("pose producer started")

	defer func() {
		if err := p.source.Close(); err != nil {
			logger.Warn("failed to release capture source", "error", err)
		}
		logger.Info("pose producer stopped",
			"frames", p.seq,
			"capture_errors", p.captureErrs.Load(),
			"inference_errors", p.inferErrs.Load(),
		)
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		jpeg, err := p.source.Grab()
		if err != nil {
			p.captureErrs.Add(1)
			logger.Warn("capture failed, retrying", "error", err)
			if !sleepCtx(ctx, p.cfg.Backoff) {
				return
			}
			continue
		}

		people, err := p.detector.Detect(jpeg)
		if err != nil {
			p.inferErrs.Add(1)
			logger.Warn("inference failed, retrying", "error", err)
			if !sleepCtx(ctx, p.cfg.Backoff) {
				return
			}
			continue
		}

		frame := &pose.Frame{
			Timestamp: time.Now(),
			Seq:       p.nextSeq(),
		}
		if best := detector.SelectPrimary(people); best != nil {
			frame.Landmarks = best.Landmarks
			frame.Detected = true
		}

		// An empty frame is still published: "no person" is valid data.
		p.slot.Publish(frame)
		debug.TrackLog("frame %d published (detected=%v)\n", frame.Seq, frame.Detected)
	}
}

// CaptureErrors returns how many capture attempts failed.
func (p *Producer) CaptureErrors() uint64 { return p.captureErrs.Load() }

// InferenceErrors returns how many inference attempts failed.
func (p *Producer) InferenceErrors() uint64 { return p.inferErrs.Load() }

func (p *Producer) nextSeq() uint64 {
	p.seq++
	return p.seq
}

// sleepCtx waits for d or until ctx is cancelled. It reports false when
// the wait ended because of cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
