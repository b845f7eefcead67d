// Reachy Mini pose mirroring.
//
// Captures the operator on a webcam, estimates body pose, and mirrors
// hip sway onto the head's lateral axis and arm angles onto the
// antennas in real time.
//
// Keys: 'c' recalibrates hip sway to zero, 'q' quits.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/reachy-mirror/internal/config"
	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/capture"
	"github.com/teslashibe/reachy-mirror/pkg/debug"
	"github.com/teslashibe/reachy-mirror/pkg/mapper"
	"github.com/teslashibe/reachy-mirror/pkg/mirror"
	"github.com/teslashibe/reachy-mirror/pkg/pose/detector"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
	"github.com/teslashibe/reachy-mirror/pkg/telemetry"
	"github.com/teslashibe/reachy-mirror/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	robotIP := flag.String("robot", "", "Robot IP address (or ROBOT_IP env)")
	webPort := flag.String("port", "", "Dashboard port (empty disables)")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every pipeline frame (very verbose)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *robotIP != "" {
		cfg.Robot.IP = *robotIP
	}
	if *webPort != "" {
		cfg.Web.Port = *webPort
	}
	if *debugFlag {
		cfg.Settings.LogLevel = "debug"
	}
	debug.Enabled = *debugFlag
	debug.Tracking = *debugFrames

	log.Init(cfg.Settings.LogLevel)

	if cfg.Robot.IP == "" {
		fmt.Fprintln(os.Stderr, "Error: robot IP is required")
		fmt.Fprintln(os.Stderr, "Usage: ROBOT_IP=192.168.68.80 mirror  (or -robot, or robot.ip in the config file)")
		os.Exit(1)
	}

	fmt.Println("🤖 Reachy Mini Pose Mirror")
	fmt.Printf("   Robot:  %s\n", cfg.Robot.IP)
	fmt.Printf("   Camera: device %d (%dx%d)\n", cfg.Capture.DeviceID, cfg.Capture.Width, cfg.Capture.Height)
	fmt.Printf("   Model:  %s\n", cfg.Detector.ModelPath)
	fmt.Println()

	pipeline, cleanup, err := buildPipeline(cfg)
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C / SIGTERM stop the pipeline.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down...")
		pipeline.Stop()
	}()

	// Keyboard control: same keys the robot operators already know.
	go readKeys(pipeline)

	if cfg.Web.Port != "" {
		server := web.NewServer(cfg.Web.Port, pipeline)
		go func() {
			if err := server.Run(ctx); err != nil {
				log.Error("web server failed", "error", err)
			}
		}()
	}

	fmt.Println("--- Press 'c' + Enter to calibrate hip sway to zero ---")
	fmt.Println("--- Press 'q' + Enter to quit ---")

	if err := pipeline.Run(ctx); err != nil {
		log.Error("pipeline ended with fatal error", "error", err)
		os.Exit(1)
	}
	fmt.Println("👋 Goodbye!")
}

// buildPipeline assembles the capture → detect → map → actuate chain
// from the configuration. The returned cleanup closes everything the
// pipeline does not own itself.
func buildPipeline(cfg *config.Config) (*mirror.Orchestrator, func(), error) {
	source, err := capture.OpenWebcam(capture.Config{
		DeviceID: cfg.Capture.DeviceID,
		Width:    cfg.Capture.Width,
		Height:   cfg.Capture.Height,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open camera: %w", err)
	}

	det, err := detector.NewYOLO(detector.Config{
		ModelPath:        cfg.Detector.ModelPath,
		ConfidenceThresh: cfg.Detector.ConfidenceThresh,
		NMSThresh:        detector.DefaultConfig().NMSThresh,
		InputSize:        cfg.Detector.InputSize,
	})
	if err != nil {
		source.Close()
		return nil, nil, fmt.Errorf("load pose model: %w", err)
	}

	actuator := robot.NewHTTPController(cfg.Robot.IP)

	// Park the robot neutral before mirroring starts.
	if err := actuator.SetSafe(); err != nil {
		log.Warn("could not set initial neutral pose", "error", err)
	}

	slot := mirror.NewFrameSlot()
	calib := mapper.NewCalibration(0)
	fatal := make(chan error, 1)

	m := mapper.New(mapper.Config{
		ConfThreshold: cfg.Detector.ConfidenceThresh,
		SwayMax:       cfg.Mapping.SwayMax,
		HeadYMaxMM:    cfg.Mapping.HeadYMaxMM,
		Smoothing:     cfg.Mapping.Smoothing,
	})

	producer := mirror.NewProducer(source, det, slot, mirror.ProducerConfig{
		Backoff: time.Duration(cfg.Pipeline.BackoffMS) * time.Millisecond,
	})
	consumer := mirror.NewConsumer(actuator, m, calib, slot, mirror.ConsumerConfig{
		PollInterval: time.Duration(cfg.Pipeline.PollIntervalMS) * time.Millisecond,
		FailureLimit: cfg.Pipeline.FailureLimit,
	}, fatal)

	cleanup := func() { det.Close() }

	if cfg.Telemetry.BrokerURL != "" {
		pub, err := telemetry.Connect(cfg.Telemetry.BrokerURL, cfg.Telemetry.Topic)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		} else {
			consumer.OnCommand = pub.Command
			pub.Lifecycle("started")
			prev := cleanup
			cleanup = func() {
				pub.Lifecycle("stopped")
				pub.Close()
				prev()
			}
		}
	}

	return mirror.New(producer, consumer, calib, slot, fatal), cleanup, nil
}

// readKeys translates operator key presses into pipeline signals.
func readKeys(pipeline *mirror.Orchestrator) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "c":
			if err := pipeline.Calibrate(); err != nil {
				fmt.Printf("⚠️  calibration failed: %v\n", err)
				continue
			}
			fmt.Println("--- HIP SWAY CALIBRATED ---")
		case "q":
			fmt.Println("'q' pressed, stopping...")
			pipeline.Stop()
			return
		}
	}
}
