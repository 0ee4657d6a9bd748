package worker

import (
	"math"
	"time"
)

// RetryPolicy is the exponential backoff applied to failed publishes.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Exhausted reports whether a task that has failed attempt times gets no
// further retry.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return r.MaxRetries > 0 && attempt >= r.MaxRetries
}

// NextDelay is the wait before retry number attempt (1-based), capped at
// MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial, factor := r.InitialDelay, r.BackoffFactor
	if initial <= 0 {
		initial = time.Second
	}
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	switch {
	case r.MaxDelay > 0 && (d > r.MaxDelay || d <= 0):
		return r.MaxDelay
	case d <= 0:
		return initial
	}
	return d
}
