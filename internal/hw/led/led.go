package led

import (
	"math"
	"time"

	"github.com/ZuhairGhias/joycam/internal/debug"
	"github.com/ZuhairGhias/joycam/internal/hw/gpio"
)

// Color is an RGB color with 0-255 components.
type Color struct {
	R, G, B uint8
}

var (
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// Blend linearly interpolates between a (t=0) and b (t=1), component-wise.
// t is clamped to [0, 1].
func Blend(a, b Color, t float64) Color {
	t = math.Min(1, math.Max(0, t))
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return Color{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}

// RGB drives a common-cathode RGB LED over three PWM-capable GPIO pins.
type RGB struct {
	gpio     gpio.Driver
	redPin   int
	greenPin int
	bluePin  int
}

// NewRGB creates an RGB LED on the given pins. The LED starts off.
func NewRGB(g gpio.Driver, redPin, greenPin, bluePin int) *RGB {
	l := &RGB{
		gpio:     g,
		redPin:   redPin,
		greenPin: greenPin,
		bluePin:  bluePin,
	}
	_ = l.Off()
	return l
}

// Set drives the LED to the given color.
func (l *RGB) Set(c Color) error {
	debug.Trace("LED: set color (%d, %d, %d)", c.R, c.G, c.B)
	if err := l.gpio.WritePWM(l.redPin, c.R); err != nil {
		return err
	}
	if err := l.gpio.WritePWM(l.greenPin, c.G); err != nil {
		return err
	}
	return l.gpio.WritePWM(l.bluePin, c.B)
}

// Off turns the LED off. Idempotent.
func (l *RGB) Off() error {
	debug.Trace("LED: off")
	return l.Set(Color{})
}

// Blink flashes the LED in the given color for the whole duration,
// toggling every interval. The LED is left off afterwards. Used for the
// fatal-error indicator, so per-write errors are ignored: the blink is
// best effort on a path that is already failing.
func (l *RGB) Blink(c Color, interval, duration time.Duration) {
	deadline := time.Now().Add(duration)
	on := true
	for time.Now().Before(deadline) {
		if on {
			_ = l.Set(c)
		} else {
			_ = l.Off()
		}
		on = !on
		time.Sleep(interval)
	}
	_ = l.Off()
}
