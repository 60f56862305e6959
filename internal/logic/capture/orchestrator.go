package capture

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ZuhairGhias/joycam/internal/debug"
	"github.com/ZuhairGhias/joycam/internal/hw/camera"
	"github.com/ZuhairGhias/joycam/internal/service"
	"github.com/ZuhairGhias/joycam/internal/vision"
)

// TonePlayer is the slice of the tone service the orchestrator needs.
type TonePlayer interface {
	Play(seq service.Sequence)
}

// Photographer is the slice of the photo service the orchestrator needs.
type Photographer interface {
	UpdateDetections(dets []vision.Detection, geom vision.FrameGeometry)
	Shoot(cam camera.Camera)
}

// StatusLight is the slice of the LED service the orchestrator needs.
type StatusLight interface {
	Update(score float64)
}

// Orchestrator consumes the inference stream and dispatches feedback work
// to the three services, debouncing capture triggers with a cooldown.
type Orchestrator struct {
	tone     TonePlayer
	photo    Photographer
	light    StatusLight
	camera   camera.Camera
	cooldown time.Duration
}

// NewOrchestrator wires the control loop to its collaborators.
func NewOrchestrator(tone TonePlayer, photo Photographer, light StatusLight, cam camera.Camera, cooldown time.Duration) *Orchestrator {
	return &Orchestrator{
		tone:     tone,
		photo:    photo,
		light:    light,
		camera:   cam,
		cooldown: cooldown,
	}
}

// Run consumes the stream until it ends or ctx is cancelled.
//
// Per cycle: detections present -> beep, forward detections to the
// photographer's cache, trigger a capture, push the batch's max joy score
// to the LED, then sleep the cooldown before consuming again (debounce
// against repeated captures of a lingering face). No detections -> push a
// zero score so the LED decays off, and consume immediately.
//
// Returns nil when the stream is exhausted or ctx is cancelled via
// interrupt; any other stream error propagates to the caller.
func (o *Orchestrator) Run(ctx context.Context, stream vision.Stream) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dets, geom, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			debug.Info("Inference stream ended")
			return nil
		}
		if err != nil {
			return err
		}

		if len(dets) == 0 {
			o.light.Update(0)
			continue
		}

		debug.Detections(len(dets), vision.MaxJoy(dets))

		// Beep first, so feedback is audible before the capture blocks
		// the photographer's queue.
		o.tone.Play(service.BeepSound)
		o.photo.UpdateDetections(dets, geom)
		o.photo.Shoot(o.camera)
		o.light.Update(vision.MaxJoy(dets))

		debug.Live("Cooldown for %v", o.cooldown)
		select {
		case <-time.After(o.cooldown):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
