package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/debug"
	"github.com/teslashibe/reachy-mirror/pkg/mapper"
	"github.com/teslashibe/reachy-mirror/pkg/pose"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
)

// ErrActuationFailing is reported to the orchestrator when actuation has
// failed more times in a row than the configured limit.
var ErrActuationFailing = errors.New("mirror: sustained actuation failure")

// ConsumerConfig holds the consumer's timing and escalation settings.
type ConsumerConfig struct {
	// PollInterval is the bounded wait between checks when the slot is
	// empty. Keeps shutdown responsive without a command repetition storm.
	PollInterval time.Duration

	// FailureLimit is how many consecutive actuation errors escalate to
	// a fatal condition. Single failures just hold the last command.
	FailureLimit int
}

// DefaultConsumerConfig returns settings for a 30fps-ish pipeline.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		PollInterval: 20 * time.Millisecond,
		FailureLimit: 10,
	}
}

// Consumer runs the take → map → actuate loop. On mapping failure it
// holds the previously issued command rather than move the robot toward
// an undefined target; on sustained actuation failure it escalates to
// the orchestrator and parks the robot safe.
type Consumer struct {
	actuator robot.Actuator
	mapper   *mapper.Mapper
	calib    *mapper.Calibration
	slot     *FrameSlot
	cfg      ConsumerConfig
	fatal    chan<- error

	// OnCommand, if set, observes every successfully issued command.
	// Called from the consumer goroutine; must not block.
	OnCommand func(robot.Command)

	mu         sync.Mutex
	lastRaw    float64
	hasRaw     bool
	lastCmd    robot.Command
	hasCmd     bool
	frames     uint64
	mapSkips   uint64
	actErrs    uint64
	consecErrs int
}

// NewConsumer wires the actuator behind the slot. Fatal conditions are
// reported on the fatal channel (buffered by the orchestrator).
func NewConsumer(actuator robot.Actuator, m *mapper.Mapper, calib *mapper.Calibration, slot *FrameSlot, cfg ConsumerConfig, fatal chan<- error) *Consumer {
	return &Consumer{
		actuator: actuator,
		mapper:   m,
		calib:    calib,
		slot:     slot,
		cfg:      cfg,
		fatal:    fatal,
	}
}

// Run loops until ctx is cancelled or actuation fails fatally, then
// issues the final safe command.
func (c *Consumer) Run(ctx context.Context) {
	logger := log.With("component", "consumer")
	logger.Info("robot consumer started")

	defer func() {
		if err := c.actuator.SetSafe(); err != nil {
			logger.Error("failed to park robot safe", "error", err)
		} else {
			logger.Info("robot parked safe")
		}
		logger.Info("robot consumer stopped",
			"frames", c.Frames(),
			"mapping_skips", c.MappingSkips(),
			"actuation_errors", c.ActuationErrors(),
		)
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		frame, ok := c.slot.TakeLatest()
		if !ok {
			// Nothing fresh: wait briefly and retry without actuating.
			if !sleepCtx(ctx, c.cfg.PollInterval) {
				return
			}
			continue
		}

		if !c.cycle(frame, logger) {
			return
		}
	}
}

// cycle processes one frame. It reports false when a fatal actuation
// condition was raised and the loop must stop.
func (c *Consumer) cycle(frame *pose.Frame, logger *slog.Logger) bool {
	cmd, rawSway, err := c.mapper.Compute(frame, c.calib)
	if err != nil {
		// Hold the last valid command for this cycle.
		c.mu.Lock()
		c.mapSkips++
		c.mu.Unlock()
		debug.TrackLog("frame %d skipped: %v\n", frame.Seq, err)
		return true
	}

	c.mu.Lock()
	c.lastRaw = rawSway
	c.hasRaw = true
	c.frames++
	c.mu.Unlock()

	if err := c.actuator.SetCommand(cmd); err != nil {
		c.mu.Lock()
		c.actErrs++
		c.consecErrs++
		streak := c.consecErrs
		c.mu.Unlock()

		logger.Warn("actuation failed, holding last command",
			"error", err, "streak", streak)

		if streak >= c.cfg.FailureLimit {
			logger.Error("actuation failure limit reached, escalating",
				"limit", c.cfg.FailureLimit)
			select {
			case c.fatal <- fmt.Errorf("%w: %d consecutive errors: %v",
				ErrActuationFailing, streak, err):
			default:
			}
			return false
		}
		return true
	}

	c.mu.Lock()
	c.consecErrs = 0
	c.lastCmd = cmd
	c.hasCmd = true
	c.mu.Unlock()

	if c.OnCommand != nil {
		c.OnCommand(cmd)
	}
	return true
}

// LastRawSway returns the raw hip sway of the most recent successfully
// computed frame. Recalibration uses this rather than recomputing a pose.
func (c *Consumer) LastRawSway() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRaw, c.hasRaw
}

// LastCommand returns the most recently issued command.
func (c *Consumer) LastCommand() (robot.Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCmd, c.hasCmd
}

// Frames returns how many frames were successfully mapped.
func (c *Consumer) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// MappingSkips returns how many cycles were skipped for missing or
// degenerate landmarks.
func (c *Consumer) MappingSkips() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapSkips
}

// ActuationErrors returns the total count of failed actuation calls.
func (c *Consumer) ActuationErrors() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actErrs
}
