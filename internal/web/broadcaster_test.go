package web

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ZuhairGhias/joycam/internal/service"
)

func testEvent() service.CaptureEvent {
	return service.CaptureEvent{
		Timestamp: "2024-01-01_00.00.00",
		Faces:     1,
		MaxJoy:    0.9,
		File:      "./captures/2024-01-01_00.00.00.jpeg",
	}
}

func TestBroadcaster_SubscribeAndReceive(t *testing.T) {
	b := NewEventBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast(testEvent())

	select {
	case msg := <-ch:
		var evt service.CaptureEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt != testEvent() {
			t.Errorf("event = %+v, want %+v", evt, testEvent())
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	b := NewEventBroadcaster()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Broadcast(testEvent())

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timeout", i)
		}
	}
}

func TestBroadcaster_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewEventBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	b.Broadcast(testEvent()) // must not panic on the closed channel

	if _, ok := <-ch; ok {
		t.Error("received on unsubscribed channel")
	}
}

func TestBroadcaster_SlowClientDoesNotBlock(t *testing.T) {
	b := NewEventBroadcaster()
	_, unsub := b.Subscribe() // never drained
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Broadcast(testEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
