package connection

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// LinearBackOff waits attempt*Step before each attempt and gives up after
// MaxAttempts. It implements backoff.BackOff.
type LinearBackOff struct {
	Step        time.Duration
	MaxAttempts int

	attempt int
}

var _ backoff.BackOff = (*LinearBackOff)(nil)

// NewLinearBackOff creates a policy with zero attempts made.
func NewLinearBackOff(step time.Duration, maxAttempts int) *LinearBackOff {
	return &LinearBackOff{Step: step, MaxAttempts: maxAttempts}
}

// NextBackOff counts a new attempt and returns its delay, or backoff.Stop
// once the budget is spent.
func (b *LinearBackOff) NextBackOff() time.Duration {
	if b.attempt >= b.MaxAttempts {
		return backoff.Stop
	}
	b.attempt++
	return time.Duration(b.attempt) * b.Step
}

// Reset forgets all attempts.
func (b *LinearBackOff) Reset() {
	b.attempt = 0
}

// Attempt returns the number of attempts counted since the last reset.
func (b *LinearBackOff) Attempt() int {
	return b.attempt
}
