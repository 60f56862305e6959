package capture

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZuhairGhias/joycam/internal/hw/camera"
	"github.com/ZuhairGhias/joycam/internal/logic/geometry"
	"github.com/ZuhairGhias/joycam/internal/service"
	"github.com/ZuhairGhias/joycam/internal/vision"
)

// callLog records dispatches across all fake services, in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

type fakeTone struct{ log *callLog }

func (f *fakeTone) Play(seq service.Sequence) { f.log.add("tone:" + seq[0]) }

type fakePhoto struct{ log *callLog }

func (f *fakePhoto) UpdateDetections(dets []vision.Detection, geom vision.FrameGeometry) {
	f.log.add(fmt.Sprintf("update:%d", len(dets)))
}

func (f *fakePhoto) Shoot(cam camera.Camera) { f.log.add("shoot") }

type fakeLight struct{ log *callLog }

func (f *fakeLight) Update(score float64) { f.log.add(fmt.Sprintf("light:%.1f", score)) }

type fakeCam struct{}

func (fakeCam) Capture() ([]byte, error) { return nil, nil }

func testFace() vision.Detection {
	return vision.NewDetection(geometry.Box{X: 10, Y: 10, W: 50, H: 50}, 0.9)
}

func newTestOrchestrator(log *callLog, cooldown time.Duration) *Orchestrator {
	return NewOrchestrator(&fakeTone{log}, &fakePhoto{log}, &fakeLight{log}, fakeCam{}, cooldown)
}

func TestRun_DetectionCycleDispatchOrder(t *testing.T) {
	log := &callLog{}
	orch := newTestOrchestrator(log, time.Millisecond)

	geom := vision.FrameGeometry{Width: 320, Height: 240}
	stream := vision.NewReplayStream([]vision.Cycle{
		{Detections: []vision.Detection{testFace()}, Geometry: geom},
	}, 0)

	if err := orch.Run(context.Background(), stream); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"tone:E6q", "update:1", "shoot", "light:0.9"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v (beep must precede the capture trigger)", got, want)
		}
	}
}

func TestRun_EmptyCyclesDoNotTrigger(t *testing.T) {
	log := &callLog{}
	orch := newTestOrchestrator(log, time.Millisecond)

	geom := vision.FrameGeometry{Width: 320, Height: 240}
	stream := vision.NewReplayStream([]vision.Cycle{
		{Geometry: geom},
		{Geometry: geom},
	}, 0)

	if err := orch.Run(context.Background(), stream); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, call := range log.snapshot() {
		if call == "shoot" || call == "tone:E6q" {
			t.Fatalf("empty cycle dispatched %q", call)
		}
		if call != "light:0.0" {
			t.Fatalf("unexpected call %q", call)
		}
	}
}

func TestRun_CooldownSeparatesTriggers(t *testing.T) {
	log := &callLog{}
	cooldown := 50 * time.Millisecond
	orch := newTestOrchestrator(log, cooldown)

	geom := vision.FrameGeometry{Width: 320, Height: 240}
	face := testFace()
	stream := vision.NewReplayStream([]vision.Cycle{
		{Detections: []vision.Detection{face}, Geometry: geom},
		{Detections: []vision.Detection{face}, Geometry: geom},
	}, 0)

	start := time.Now()
	if err := orch.Run(context.Background(), stream); err != nil {
		t.Fatalf("Run: %v", err)
	}
	elapsed := time.Since(start)

	shoots := 0
	for _, call := range log.snapshot() {
		if call == "shoot" {
			shoots++
		}
	}
	if shoots != 2 {
		t.Errorf("shoot count = %d, want 2", shoots)
	}
	if elapsed < 2*cooldown {
		t.Errorf("elapsed = %v, want at least %v (cooldown after each trigger)", elapsed, 2*cooldown)
	}
}

func TestRun_StreamExhaustionExitsCleanly(t *testing.T) {
	log := &callLog{}
	orch := newTestOrchestrator(log, time.Millisecond)

	stream := vision.NewReplayStream(nil, 0)
	if err := orch.Run(context.Background(), stream); err != nil {
		t.Errorf("Run on exhausted stream = %v, want nil", err)
	}
}

// endlessStream yields empty cycles forever.
type endlessStream struct{}

func (endlessStream) Next(ctx context.Context) ([]vision.Detection, vision.FrameGeometry, error) {
	select {
	case <-ctx.Done():
		return nil, vision.FrameGeometry{}, ctx.Err()
	case <-time.After(time.Millisecond):
		return nil, vision.FrameGeometry{Width: 320, Height: 240}, nil
	}
}

func TestRun_ContextCancelStopsLoop(t *testing.T) {
	log := &callLog{}
	orch := newTestOrchestrator(log, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- orch.Run(ctx, endlessStream{})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
