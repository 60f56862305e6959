package service

import (
	"sync"
	"testing"

	"github.com/ZuhairGhias/joycam/internal/hw/led"
)

// fakeLight records Set/Off calls in order.
type fakeLight struct {
	mu    sync.Mutex
	calls []string
	last  led.Color
}

func (f *fakeLight) Set(c led.Color) error {
	f.mu.Lock()
	f.calls = append(f.calls, "set")
	f.last = c
	f.mu.Unlock()
	return nil
}

func (f *fakeLight) Off() error {
	f.mu.Lock()
	f.calls = append(f.calls, "off")
	f.mu.Unlock()
	return nil
}

func (f *fakeLight) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeLight) lastColor() led.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

var (
	testJoy = led.Color{R: 255, G: 70, B: 0}
	testSad = led.Color{R: 0, G: 0, B: 64}
)

func TestStatusLight_PositiveScoreBlends(t *testing.T) {
	light := &fakeLight{}
	s := NewStatusLight(light, testJoy, testSad, Options{})

	s.Update(0.0)
	s.Update(1.0)
	s.Close()

	// score 0 forces off; score 1 lands exactly on the sad endpoint.
	got := light.history()
	want := []string{"off", "set", "off"} // trailing off from the shutdown hook
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if light.lastColor() != testSad {
		t.Errorf("color at score 1 = %v, want %v", light.lastColor(), testSad)
	}
}

func TestStatusLight_NegativeScoreForcesOff(t *testing.T) {
	light := &fakeLight{}
	s := NewStatusLight(light, testJoy, testSad, Options{})

	s.Update(-0.5)
	s.Close()

	for _, call := range light.history() {
		if call == "set" {
			t.Fatal("LED was set for a non-positive score")
		}
	}
}

func TestStatusLight_ShutdownForcesOff(t *testing.T) {
	light := &fakeLight{}
	s := NewStatusLight(light, testJoy, testSad, Options{})

	s.Update(0.9) // LED lit
	s.Close()

	got := light.history()
	if len(got) == 0 || got[len(got)-1] != "off" {
		t.Errorf("calls = %v, want a trailing off from the shutdown hook", got)
	}
}
