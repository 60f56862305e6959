package web

import (
	"encoding/json"
	"sync"

	"github.com/ZuhairGhias/joycam/internal/service"
)

// EventBroadcaster distributes capture events to multiple SSE clients.
type EventBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewEventBroadcaster creates a new broadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast events and a cleanup
// function. The caller must call the returned cleanup when done (e.g. on
// client disconnect).
func (b *EventBroadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// Broadcast sends a capture event to all subscribed clients as JSON.
// Slow clients may miss events (non-blocking, buffered).
func (b *EventBroadcaster) Broadcast(evt service.CaptureEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}
