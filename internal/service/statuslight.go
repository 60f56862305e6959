package service

import (
	"github.com/ZuhairGhias/joycam/internal/hw/led"
)

// Light is the narrow LED-hardware contract. Satisfied by *led.RGB.
type Light interface {
	Set(c led.Color) error
	Off() error
}

// StatusLight drives the RGB LED from joy scores: the color is the linear
// blend between the joy endpoint (score 0) and the sad endpoint (score 1).
// A score <= 0 forces the LED off. The shutdown hook forces the LED off
// regardless of the last score.
type StatusLight struct {
	worker *Worker[float64]
}

// NewStatusLight starts the LED service with the given color endpoints.
func NewStatusLight(light Light, joy, sad led.Color, opts Options) *StatusLight {
	if opts.Name == "" {
		opts.Name = "statuslight"
	}
	return &StatusLight{
		worker: NewWorker(opts, func(score float64) error {
			if score <= 0 {
				return light.Off()
			}
			return light.Set(led.Blend(joy, sad, score))
		}, func() {
			_ = light.Off()
		}),
	}
}

// Update enqueues a joy score for the LED. Fire-and-forget.
func (s *StatusLight) Update(score float64) {
	s.worker.Submit(score)
}

// Close drains pending updates, turns the LED off and stops the service.
func (s *StatusLight) Close() {
	s.worker.Close()
}
