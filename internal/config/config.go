package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RGB is a color as three 0-255 components.
type RGB [3]uint8

// CaptureConfig controls photograph persistence.
type CaptureConfig struct {
	Format        string `yaml:"format"`         // "jpeg", "png" or "bmp"
	Folder        string `yaml:"folder"`         // destination for image files, supports "~"
	SaveAnnotated bool   `yaml:"save_annotated"` // also persist the annotated overlay
}

// CameraConfig describes how to acquire still frames.
// Type selects a concrete implementation (e.g., "still_command", "stub").
type CameraConfig struct {
	Type     string   `yaml:"type"`               // e.g., "still_command"
	Command  string   `yaml:"command,omitempty"`  // still-capture binary, e.g. "libcamera-still"
	Args     []string `yaml:"args,omitempty"`     // extra args; the frame is read from stdout
	WidthPx  int      `yaml:"width_px"`           // capture resolution, e.g. 820
	HeightPx int      `yaml:"height_px"`          // capture resolution, e.g. 616
}

// BuzzerConfig describes the piezo buzzer used for tone feedback.
type BuzzerConfig struct {
	Pin int `yaml:"pin"` // GPIO pin (BCM) driving the buzzer
	BPM int `yaml:"bpm"` // tempo for note durations
}

// LedConfig describes the RGB status LED and its color endpoints.
type LedConfig struct {
	RedPin   int `yaml:"red_pin"`
	GreenPin int `yaml:"green_pin"`
	BluePin  int `yaml:"blue_pin"`

	PrivacyPin int `yaml:"privacy_pin,omitempty"` // camera-active indicator LED; 0 = not fitted

	JoyColor RGB `yaml:"joy_color"` // LED color at joy score 0
	SadColor RGB `yaml:"sad_color"` // LED color at joy score 1
}

// InferenceConfig describes the inference-resolution frame geometry used
// when the engine does not report it (and by the replay stream).
type InferenceConfig struct {
	Source      string `yaml:"source"` // e.g. "replay"
	FrameWidth  int    `yaml:"frame_width"`
	FrameHeight int    `yaml:"frame_height"`
}

// DefaultsConfig contains generic parameters (cooldown, queues, etc.).
type DefaultsConfig struct {
	CooldownSeconds int  `yaml:"cooldown_seconds"` // debounce after a capture trigger
	QueueCapacity   int  `yaml:"queue_capacity"`   // per-service request queue size
	WebPort         int  `yaml:"web_port"`         // streaming server port
	DebugLevel      int  `yaml:"debug_level"`      // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO        bool `yaml:"mock_gpio"`        // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Capture   CaptureConfig   `yaml:"capture"`
	Camera    CameraConfig    `yaml:"camera"`
	Buzzer    BuzzerConfig    `yaml:"buzzer"`
	Led       LedConfig       `yaml:"led"`
	Inference InferenceConfig `yaml:"inference"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	switch cfg.Capture.Format {
	case "jpeg", "png", "bmp":
	case "":
		cfg.Capture.Format = "jpeg"
	default:
		return nil, fmt.Errorf("capture.format must be jpeg, png or bmp, got %q", cfg.Capture.Format)
	}
	if cfg.Capture.Folder == "" {
		cfg.Capture.Folder = "./captures"
	}
	if cfg.Camera.Type == "" {
		return nil, fmt.Errorf("camera.type is required")
	}
	if cfg.Camera.WidthPx <= 0 {
		cfg.Camera.WidthPx = 820
	}
	if cfg.Camera.HeightPx <= 0 {
		cfg.Camera.HeightPx = 616
	}
	if cfg.Buzzer.BPM <= 0 {
		cfg.Buzzer.BPM = 10
	}
	if cfg.Inference.Source == "" {
		cfg.Inference.Source = "replay"
	}
	if cfg.Inference.FrameWidth <= 0 {
		cfg.Inference.FrameWidth = 320
	}
	if cfg.Inference.FrameHeight <= 0 {
		cfg.Inference.FrameHeight = 240
	}
	if cfg.Defaults.CooldownSeconds <= 0 {
		cfg.Defaults.CooldownSeconds = 600
	}
	if cfg.Defaults.QueueCapacity <= 0 {
		cfg.Defaults.QueueCapacity = 32
	}
	if cfg.Defaults.WebPort <= 0 {
		cfg.Defaults.WebPort = 4664
	}
	if cfg.Defaults.WebPort > 65535 {
		return nil, fmt.Errorf("defaults.web_port must be <= 65535, got %d", cfg.Defaults.WebPort)
	}
	if cfg.Led.JoyColor == (RGB{}) && cfg.Led.SadColor == (RGB{}) {
		// Endpoints from the original appliance palette.
		cfg.Led.JoyColor = RGB{255, 70, 0}
		cfg.Led.SadColor = RGB{0, 0, 64}
	}

	return &cfg, nil
}

// Cooldown returns the debounce interval after a capture trigger.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Defaults.CooldownSeconds) * time.Second
}
