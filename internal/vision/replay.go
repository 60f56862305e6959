package vision

import (
	"context"
	"io"
	"time"
)

// Cycle is one pre-recorded inference result for the replay stream.
type Cycle struct {
	Detections []Detection
	Geometry   FrameGeometry
}

// ReplayStream plays back a fixed list of cycles, optionally pacing them
// with a delay, then reports io.EOF. Development/test stand-in for the
// inference engine, the same role the mock GPIO driver plays for hardware.
type ReplayStream struct {
	cycles []Cycle
	delay  time.Duration
	pos    int
}

// NewReplayStream creates a replay stream over the given cycles.
func NewReplayStream(cycles []Cycle, delay time.Duration) *ReplayStream {
	return &ReplayStream{cycles: cycles, delay: delay}
}

func (s *ReplayStream) Next(ctx context.Context) ([]Detection, FrameGeometry, error) {
	if s.pos >= len(s.cycles) {
		return nil, FrameGeometry{}, io.EOF
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, FrameGeometry{}, ctx.Err()
		}
	}
	c := s.cycles[s.pos]
	s.pos++
	return c.Detections, c.Geometry, nil
}
