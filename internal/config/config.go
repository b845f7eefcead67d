// Package config provides configuration for reachy-mirror commands:
// defaults, an optional YAML file, and environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Robot holds the actuation link settings.
type Robot struct {
	IP string `yaml:"ip"`
}

// Capture holds the camera settings.
type Capture struct {
	DeviceID int `yaml:"deviceId"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// Detector holds the pose model settings.
type Detector struct {
	ModelPath        string  `yaml:"modelPath"`
	ConfidenceThresh float64 `yaml:"confidenceThreshold"`
	InputSize        int     `yaml:"inputSize"`
}

// Mapping holds the pose-to-command mapping parameters.
type Mapping struct {
	SwayMax    float64 `yaml:"swayMax"`
	HeadYMaxMM float64 `yaml:"headYMaxMM"`
	Smoothing  float64 `yaml:"smoothing"`
}

// Pipeline holds the worker loop tunables.
type Pipeline struct {
	BackoffMS      int `yaml:"backoffMs"`
	PollIntervalMS int `yaml:"pollIntervalMs"`
	FailureLimit   int `yaml:"failureLimit"`
}

// Web holds the dashboard settings. An empty port disables the server.
type Web struct {
	Port string `yaml:"port"`
}

// Telemetry holds the MQTT publisher settings. An empty broker URL
// disables telemetry.
type Telemetry struct {
	BrokerURL string `yaml:"brokerUrl"`
	Topic     string `yaml:"topic"`
}

// Config is the main application configuration.
type Config struct {
	Settings  Settings  `yaml:"settings"`
	Robot     Robot     `yaml:"robot"`
	Capture   Capture   `yaml:"capture"`
	Detector  Detector  `yaml:"detector"`
	Mapping   Mapping   `yaml:"mapping"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Web       Web       `yaml:"web"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Settings: Settings{LogLevel: "info"},
		Capture:  Capture{DeviceID: 0, Width: 640, Height: 480},
		Detector: Detector{
			ModelPath:        "models/yolov8n-pose.onnx",
			ConfidenceThresh: 0.5,
			InputSize:        640,
		},
		Mapping: Mapping{
			SwayMax:    0.4,
			HeadYMaxMM: 35,
			Smoothing:  0,
		},
		Pipeline: Pipeline{
			BackoffMS:      250,
			PollIntervalMS: 20,
			FailureLimit:   10,
		},
		Telemetry: Telemetry{Topic: "reachy/mirror"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over the file values.
func (c *Config) applyEnv() {
	if ip := os.Getenv("ROBOT_IP"); ip != "" {
		c.Robot.IP = ip
	}
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		c.Telemetry.BrokerURL = broker
	}
	if port := os.Getenv("WEB_PORT"); port != "" {
		c.Web.Port = port
	}
}

func (c *Config) validate() error {
	if c.Detector.ConfidenceThresh < 0 || c.Detector.ConfidenceThresh > 1 {
		return fmt.Errorf("confidence threshold %v out of range [0,1]", c.Detector.ConfidenceThresh)
	}
	if c.Mapping.Smoothing < 0 || c.Mapping.Smoothing > 1 {
		return fmt.Errorf("smoothing factor %v out of range [0,1]", c.Mapping.Smoothing)
	}
	if c.Mapping.SwayMax <= 0 {
		return fmt.Errorf("swayMax must be positive, got %v", c.Mapping.SwayMax)
	}
	if c.Pipeline.FailureLimit <= 0 {
		return fmt.Errorf("failureLimit must be positive, got %d", c.Pipeline.FailureLimit)
	}
	return nil
}
