package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ZuhairGhias/joycam/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Capture: config.CaptureConfig{Format: "jpeg", Folder: t.TempDir()},
		Camera:  config.CameraConfig{Type: "stub", WidthPx: 64, HeightPx: 48},
		Buzzer:  config.BuzzerConfig{Pin: 22, BPM: 6000},
		Led: config.LedConfig{
			RedPin: 17, GreenPin: 27, BluePin: 23, PrivacyPin: 24,
			JoyColor: config.RGB{255, 70, 0},
			SadColor: config.RGB{0, 0, 64},
		},
		Inference: config.InferenceConfig{Source: "replay", FrameWidth: 32, FrameHeight: 24},
		Defaults: config.DefaultsConfig{
			CooldownSeconds: 1,
			QueueCapacity:   4,
			MockGPIO:        true,
		},
	}
}

// ---------- applyCooldownOverride ----------

func TestApplyCooldownOverride_Zero(t *testing.T) {
	cfg := newTestConfig(t)
	if err := applyCooldownOverride(cfg, 0); err != nil {
		t.Errorf("zero should be valid (use config default), got: %v", err)
	}
	if cfg.Defaults.CooldownSeconds != 1 {
		t.Errorf("CooldownSeconds = %d, want config value 1 unchanged", cfg.Defaults.CooldownSeconds)
	}
}

func TestApplyCooldownOverride_Positive(t *testing.T) {
	cfg := newTestConfig(t)
	if err := applyCooldownOverride(cfg, 30); err != nil {
		t.Fatalf("applyCooldownOverride(30) error: %v", err)
	}
	if cfg.Defaults.CooldownSeconds != 30 {
		t.Errorf("CooldownSeconds = %d, want 30", cfg.Defaults.CooldownSeconds)
	}
}

func TestApplyCooldownOverride_Negative(t *testing.T) {
	cfg := newTestConfig(t)
	if err := applyCooldownOverride(cfg, -1); err == nil {
		t.Error("expected error for negative cooldown, got nil")
	}
	if cfg.Defaults.CooldownSeconds != 1 {
		t.Errorf("CooldownSeconds = %d, rejected override must not mutate config", cfg.Defaults.CooldownSeconds)
	}
}

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyString(t *testing.T) {
	w := &webPortFlag{}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\") error: %v", err)
	}
	if w.port() != useConfigPort {
		t.Errorf("port() = %d, want useConfigPort (%d)", w.port(), useConfigPort)
	}
}

func TestWebPortFlag_ValidPorts(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"8080", 8080},
		{"1", 1},
		{"65535", 65535},
		{"4664", 4664},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w := &webPortFlag{}
			if err := w.Set(tc.input); err != nil {
				t.Fatalf("Set(%q) error: %v", tc.input, err)
			}
			if w.port() != tc.want {
				t.Errorf("port() = %d, want %d", w.port(), tc.want)
			}
		})
	}
}

func TestWebPortFlag_InvalidPorts(t *testing.T) {
	cases := []string{"0", "65536", "-1", "abc", "8080.5"}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			w := &webPortFlag{}
			if err := w.Set(input); err == nil {
				t.Errorf("Set(%q) should fail, got nil", input)
			}
		})
	}
}

func TestWebPortFlag_String(t *testing.T) {
	w := &webPortFlag{val: 0}
	if s := w.String(); s != "0" {
		t.Errorf("String() = %q, want \"0\"", s)
	}
	w.val = 9090
	if s := w.String(); s != "9090" {
		t.Errorf("String() = %q, want \"9090\"", s)
	}
}

func TestWebPortOrDefault(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Defaults.WebPort = 4664

	if got := webPortOrDefault(useConfigPort, cfg); got != 4664 {
		t.Errorf("bare -web= should resolve to config port, got %d", got)
	}
	if got := webPortOrDefault(8080, cfg); got != 8080 {
		t.Errorf("explicit port should win, got %d", got)
	}
	if got := webPortOrDefault(0, cfg); got != 0 {
		t.Errorf("absent flag should keep the server disabled, got %d", got)
	}
}

// ---------- releaseStack ----------

func TestReleaseStack_ReverseOrder(t *testing.T) {
	var order []string
	r := &releaseStack{}
	for _, name := range []string{"gpio", "camera", "services"} {
		name := name
		r.add(func() { order = append(order, name) })
	}
	r.release()

	want := []string{"services", "camera", "gpio"}
	if len(order) != len(want) {
		t.Fatalf("released %d steps, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("release order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestReleaseStack_Empty(t *testing.T) {
	r := &releaseStack{}
	r.release() // must not panic
}

// ---------- component selection ----------

func TestNewCameraFromConfig_Stub(t *testing.T) {
	cfg := newTestConfig(t)
	cam, err := newCameraFromConfig(cfg)
	if err != nil {
		t.Fatalf("newCameraFromConfig error: %v", err)
	}
	if cam == nil {
		t.Fatal("expected a camera, got nil")
	}
}

func TestNewCameraFromConfig_UnknownType(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Camera.Type = "polaroid"
	if _, err := newCameraFromConfig(cfg); err == nil {
		t.Error("expected error for unknown camera type, got nil")
	}
}

func TestNewCameraFromConfig_StillCommandRequiresCommand(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Camera.Type = "still_command"
	cfg.Camera.Command = ""
	if _, err := newCameraFromConfig(cfg); err == nil {
		t.Error("expected error for still_command without command, got nil")
	}
}

func TestNewStreamFromConfig(t *testing.T) {
	cfg := newTestConfig(t)
	stream, err := newStreamFromConfig(cfg)
	if err != nil {
		t.Fatalf("newStreamFromConfig error: %v", err)
	}
	if stream == nil {
		t.Fatal("expected a stream, got nil")
	}

	cfg.Inference.Source = "telepathy"
	if _, err := newStreamFromConfig(cfg); err == nil {
		t.Error("expected error for unknown inference source, got nil")
	}
}

// ---------- run ----------

func TestRun_InterruptedContextShutsDownClean(t *testing.T) {
	cfg := newTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, cfg, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run() = %v, want context.Canceled", err)
	}
}
