package geometry

import (
	"image"
	"math"
)

// Box is an axis-aligned bounding box as (origin, size), in the pixel
// space of whatever frame produced it.
type Box struct {
	X, Y, W, H float64
}

// Corners is a box as (left, upper, right, lower) corner coordinates.
type Corners struct {
	Left, Upper, Right, Lower float64
}

// Scale multiplies a box component-wise by per-axis scale factors:
// origin and size both scale linearly.
func (b Box) Scale(sx, sy float64) Box {
	return Box{
		X: b.X * sx,
		Y: b.Y * sy,
		W: b.W * sx,
		H: b.H * sy,
	}
}

// Corners converts a box to corner coordinates:
// (left, upper, right, lower) = (x, y, x+w, y+h).
func (b Box) Corners() Corners {
	return Corners{
		Left:  b.X,
		Upper: b.Y,
		Right: b.X + b.W,
		Lower: b.Y + b.H,
	}
}

// Round converts corner coordinates to an image.Rectangle, rounding each
// coordinate to the nearest pixel.
func (c Corners) Round() image.Rectangle {
	return image.Rect(
		int(math.Round(c.Left)),
		int(math.Round(c.Upper)),
		int(math.Round(c.Right)),
		int(math.Round(c.Lower)),
	)
}

// ScaleFactors derives the per-axis factors mapping inference-frame
// coordinates onto output-image coordinates. Always derived, never
// hardcoded: output dimension over inference dimension.
func ScaleFactors(outW, outH, infW, infH int) (sx, sy float64) {
	return float64(outW) / float64(infW), float64(outH) / float64(infH)
}
