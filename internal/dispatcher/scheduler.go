package dispatcher

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler supplies wall-clock time and delayed callbacks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler uses the runtime clock.
type SystemScheduler struct{}

// Now returns the current local time.
func (SystemScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
