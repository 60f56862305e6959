package led

import (
	"testing"
)

var (
	joyColor = Color{255, 70, 0}
	sadColor = Color{0, 0, 64}
)

func TestBlend_Endpoints(t *testing.T) {
	if got := Blend(joyColor, sadColor, 0); got != joyColor {
		t.Errorf("Blend(joy, sad, 0) = %v, want %v", got, joyColor)
	}
	if got := Blend(joyColor, sadColor, 1); got != sadColor {
		t.Errorf("Blend(joy, sad, 1) = %v, want %v", got, sadColor)
	}
}

func TestBlend_Midpoint(t *testing.T) {
	got := Blend(Color{0, 0, 0}, Color{100, 200, 50}, 0.5)
	want := Color{50, 100, 25}
	if got != want {
		t.Errorf("Blend(black, c, 0.5) = %v, want %v", got, want)
	}
}

func TestBlend_MonotonicInScore(t *testing.T) {
	// Red decreases and blue increases as t walks joy -> sad.
	prev := Blend(joyColor, sadColor, 0)
	for i := 1; i <= 10; i++ {
		cur := Blend(joyColor, sadColor, float64(i)/10)
		if cur.R > prev.R {
			t.Fatalf("R not monotonic at t=%.1f: %d > %d", float64(i)/10, cur.R, prev.R)
		}
		if cur.B < prev.B {
			t.Fatalf("B not monotonic at t=%.1f: %d < %d", float64(i)/10, cur.B, prev.B)
		}
		prev = cur
	}
}

func TestBlend_ClampsT(t *testing.T) {
	if got := Blend(joyColor, sadColor, -3); got != joyColor {
		t.Errorf("Blend with t<0 = %v, want %v", got, joyColor)
	}
	if got := Blend(joyColor, sadColor, 42); got != sadColor {
		t.Errorf("Blend with t>1 = %v, want %v", got, sadColor)
	}
}
