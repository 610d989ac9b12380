package mocks

import (
	"sync"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
)

// EventRecorder is a dispatcher.Poster that keeps every posted event.
type EventRecorder struct {
	mu     sync.Mutex
	events []dispatcher.Event
}

func (r *EventRecorder) Post(ev dispatcher.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

// Drain returns and forgets the recorded events.
func (r *EventRecorder) Drain() []dispatcher.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
