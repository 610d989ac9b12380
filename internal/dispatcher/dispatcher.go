package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Handler processes one event. It runs on the dispatcher goroutine only.
type Handler func(Event)

// Poster accepts events from any goroutine.
type Poster interface {
	Post(ev Event) bool
}

// Dispatcher serializes all events onto a single goroutine in FIFO order.
type Dispatcher struct {
	events chan Event
	done   chan struct{}
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	stopped bool
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(buffer int, logger zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues ev. It blocks while the queue is full and returns false once
// the dispatcher has stopped.
func (d *Dispatcher) Post(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.events <- ev:
		return true
	case <-d.done:
		return false
	}
}

// Run processes events until ctx is cancelled. It can be called once.
func (d *Dispatcher) Run(ctx context.Context, handle Handler) error {
	d.mu.Lock()
	if d.running || d.stopped {
		d.mu.Unlock()
		return errors.New("dispatcher already started")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.stopped = true
		d.mu.Unlock()
		close(d.done)
	}()

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug().Int("pending", len(d.events)).Msg("Dispatcher stopping")
			return nil
		case ev := <-d.events:
			d.dispatch(handle, ev)
		}
	}
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) dispatch(handle Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("event", Name(ev)).
				Err(fmt.Errorf("panic: %v", r)).
				Msg("Event handler panicked")
		}
	}()
	handle(ev)
}
