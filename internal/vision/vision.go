package vision

import (
	"context"

	"github.com/ZuhairGhias/joycam/internal/logic/geometry"
)

// Detection is one face found in one inference cycle: its bounding box in
// inference-frame pixels and a joy score in [0, 1]. Immutable once produced.
type Detection struct {
	Box      geometry.Box
	JoyScore float64
}

// NewDetection builds a detection with the joy score clamped to [0, 1].
func NewDetection(box geometry.Box, joyScore float64) Detection {
	if joyScore < 0 {
		joyScore = 0
	}
	if joyScore > 1 {
		joyScore = 1
	}
	return Detection{Box: box, JoyScore: joyScore}
}

// FrameGeometry is the resolution of the inference frame a detection batch
// was produced against. Paired with every batch.
type FrameGeometry struct {
	Width  int
	Height int
}

// MaxJoy returns the highest joy score in a batch, 0 for an empty batch.
func MaxJoy(dets []Detection) float64 {
	max := 0.0
	for _, d := range dets {
		if d.JoyScore > max {
			max = d.JoyScore
		}
	}
	return max
}

// Stream is the narrow contract over the inference engine: a lazy,
// logically infinite sequence of detection batches. It is not restartable;
// re-acquire the engine to start over. Next returns io.EOF once the
// underlying sequence ends.
type Stream interface {
	Next(ctx context.Context) ([]Detection, FrameGeometry, error)
}
