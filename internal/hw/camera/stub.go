package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	"github.com/ZuhairGhias/joycam/internal/debug"
)

// Stub is a development/test camera that synthesizes a JPEG gradient frame
// at the configured resolution. The pattern shifts between captures so
// consecutive frames are distinguishable in the live feed.
type Stub struct {
	width  int
	height int

	mu    sync.Mutex
	shots int
}

// NewStub creates a stub camera.
func NewStub(width, height int) *Stub {
	return &Stub{width: width, height: height}
}

func (s *Stub) Capture() ([]byte, error) {
	s.mu.Lock()
	s.shots++
	phase := s.shots
	s.mu.Unlock()

	debug.Verbose("Camera: synthesizing stub frame %d (%dx%d)", phase, s.width, s.height)

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x + phase*16) * 255 / s.width),
				G: uint8(y * 255 / s.height),
				B: 64,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
