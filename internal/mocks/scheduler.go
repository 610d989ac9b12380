package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
)

// FakeScheduler is a manually advanced clock for tests.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*FakeTimer
}

// FakeTimer records one AfterFunc call.
type FakeTimer struct {
	Delay time.Duration
	At    time.Time

	fn      func()
	stopped bool
	fired   bool
}

// NewFakeScheduler starts the clock at start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) dispatcher.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{Delay: d, At: s.now.Add(d), fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and fires every due timer in deadline order.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now
	var due []*FakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && !t.At.After(now) {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })
	for _, t := range due {
		t.fn()
	}
}

// Delays lists the delay of every timer ever scheduled, in scheduling order.
func (s *FakeScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t.Delay)
	}
	return out
}

// Pending counts timers that have neither fired nor been stopped.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *FakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
