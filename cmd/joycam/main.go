package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/ZuhairGhias/joycam/internal/config"
	"github.com/ZuhairGhias/joycam/internal/debug"
	"github.com/ZuhairGhias/joycam/internal/hw/buzzer"
	"github.com/ZuhairGhias/joycam/internal/hw/camera"
	"github.com/ZuhairGhias/joycam/internal/hw/gpio"
	"github.com/ZuhairGhias/joycam/internal/hw/led"
	"github.com/ZuhairGhias/joycam/internal/logic/capture"
	"github.com/ZuhairGhias/joycam/internal/logic/geometry"
	"github.com/ZuhairGhias/joycam/internal/service"
	"github.com/ZuhairGhias/joycam/internal/vision"
	"github.com/ZuhairGhias/joycam/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{}
	flag.Var(webPort, "web", "start live-feed server on port; -web= for config default, -web 8080 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	cooldownSec := flag.Int("cooldown", 0, "override capture cooldown in seconds (0 = config default)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := applyCooldownOverride(cfg, *cooldownSec); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Capture folder", cfg.Capture.Folder)
	debug.Value("Capture format", cfg.Capture.Format)
	debug.Value("Cooldown", cfg.Cooldown())
	debug.PrintStruct("Camera config", cfg.Camera)
	debug.PrintStruct("Buzzer config", cfg.Buzzer)

	if err := run(ctx, cfg, webPort.port()); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted: resources already released in reverse order,
			// success exit.
			debug.Info("Interrupted, clean shutdown")
			return
		}
		log.Printf("joycam failed: %v", err)
		os.Exit(1)
	}
}

// run acquires hardware and services in order, wires the control loop, and
// releases everything in strict reverse order on every exit path.
func run(ctx context.Context, cfg *config.Config, webPortOverride int) (runErr error) {
	rel := &releaseStack{}
	defer rel.release()

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return fmt.Errorf("init GPIO: %w", err)
	}
	rel.add(func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	})

	// Status LED is created early so the fatal-error indicator is
	// available to every later failure path.
	statusLED := led.NewRGB(gpioDriver, cfg.Led.RedPin, cfg.Led.GreenPin, cfg.Led.BluePin)
	rel.add(func() {
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			// Distinct 10 Hz red blink for one second, then the error
			// propagates to the process exit code.
			statusLED.Blink(led.Red, 50*time.Millisecond, time.Second)
		}
	})

	// Initialize camera
	debug.Step(2, "Initializing camera")
	cam, err := newCameraFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init camera: %w", err)
	}
	debug.Value("Camera type", cfg.Camera.Type)
	debug.Value("Camera resolution", fmt.Sprintf("%dx%d", cfg.Camera.WidthPx, cfg.Camera.HeightPx))

	// Privacy indicator: on while the camera is live, off on teardown.
	if pin := cfg.Led.PrivacyPin; pin > 0 {
		debug.Step(3, "Turning privacy indicator on")
		_ = gpioDriver.SetupPin(pin, gpio.Output)
		_ = gpioDriver.WritePin(pin, gpio.High)
		rel.add(func() {
			_ = gpioDriver.WritePin(pin, gpio.Low)
		})
	}

	// Start services. Each release step joins one worker; the stack
	// releases the services before the indicator and camera.
	debug.Step(4, "Starting services")
	opts := service.Options{QueueCapacity: cfg.Defaults.QueueCapacity}

	player := buzzer.NewPlayer(gpioDriver, cfg.Buzzer.Pin, cfg.Buzzer.BPM)
	tone := service.NewToneActuator(player, opts)
	rel.add(tone.Close)

	broadcaster := web.NewEventBroadcaster()
	photographer, err := service.NewPhotographer(
		cfg.Capture.Format, cfg.Capture.Folder, cfg.Capture.SaveAnnotated,
		broadcaster.Broadcast, opts)
	if err != nil {
		return fmt.Errorf("init photographer: %w", err)
	}
	rel.add(photographer.Close)

	joy := led.Color{R: cfg.Led.JoyColor[0], G: cfg.Led.JoyColor[1], B: cfg.Led.JoyColor[2]}
	sad := led.Color{R: cfg.Led.SadColor[0], G: cfg.Led.SadColor[1], B: cfg.Led.SadColor[2]}
	light := service.NewStatusLight(statusLED, joy, sad, opts)
	rel.add(light.Close)

	// Live-feed server, sharing the camera handle.
	if port := webPortOrDefault(webPortOverride, cfg); port > 0 {
		srv := web.NewServer(fmt.Sprintf(":%d", port), cam, broadcaster)
		go func() {
			if err := srv.Run(ctx); err != nil {
				debug.Errorf("web server: %v", err)
			}
		}()
	}

	// Acquire the inference stream last: its lifetime is the control loop.
	debug.Step(5, "Acquiring inference stream")
	stream, err := newStreamFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("acquire inference stream: %w", err)
	}
	debug.Info("Model loaded")
	tone.Play(service.ModelLoadSound)

	debug.Summary("Capture Pipeline Ready")
	orch := capture.NewOrchestrator(tone, photographer, light, cam, cfg.Cooldown())
	return orch.Run(ctx, stream)
}

// releaseStack collects release steps during acquisition and runs them in
// reverse order, mirroring a defer chain but testable on its own.
type releaseStack struct {
	steps []func()
}

func (r *releaseStack) add(step func()) { r.steps = append(r.steps, step) }

func (r *releaseStack) release() {
	for i := len(r.steps) - 1; i >= 0; i-- {
		r.steps[i]()
	}
}

// applyCooldownOverride applies the -cooldown CLI flag: 0 keeps the config
// value, positive values override it, negatives are rejected.
func applyCooldownOverride(cfg *config.Config, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("cooldown must be >= 0, got %d", seconds)
	}
	if seconds > 0 {
		cfg.Defaults.CooldownSeconds = seconds
	}
	return nil
}

// webPortOrDefault resolves the -web flag against the config: 0 keeps the
// server disabled, -1 (bare -web=) selects the config port.
func webPortOrDefault(override int, cfg *config.Config) int {
	if override == useConfigPort {
		return cfg.Defaults.WebPort
	}
	return override
}

// newCameraFromConfig selects a camera implementation based on configuration.
func newCameraFromConfig(cfg *config.Config) (camera.Camera, error) {
	switch cfg.Camera.Type {
	case "still_command":
		return camera.NewStillCommand(cfg.Camera.Command, cfg.Camera.Args, cfg.Camera.WidthPx, cfg.Camera.HeightPx)
	case "stub":
		return camera.NewStub(cfg.Camera.WidthPx, cfg.Camera.HeightPx), nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Camera.Type)
	}
}

// newStreamFromConfig selects an inference stream implementation.
// The on-device inference engine is an external collaborator; this binary
// ships a replay source for development and demos.
func newStreamFromConfig(cfg *config.Config) (vision.Stream, error) {
	switch cfg.Inference.Source {
	case "replay":
		geom := vision.FrameGeometry{Width: cfg.Inference.FrameWidth, Height: cfg.Inference.FrameHeight}
		face := vision.NewDetection(geometry.Box{X: 10, Y: 10, W: 50, H: 50}, 0.9)
		cycles := []vision.Cycle{
			{Geometry: geom},
			{Geometry: geom},
			{Detections: []vision.Detection{face}, Geometry: geom},
			{Geometry: geom},
		}
		return vision.NewReplayStream(cycles, 2*time.Second), nil
	default:
		return nil, fmt.Errorf("unsupported inference source: %s", cfg.Inference.Source)
	}
}

// useConfigPort marks a bare "-web=" flag: serve on the config's port.
const useConfigPort = -1

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= -> config
// default, -web 8080 -> 8080.
type webPortFlag struct {
	val int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = useConfigPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
