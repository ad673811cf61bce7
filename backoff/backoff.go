// Package backoff provides wait strategies for polling loops.
//
// A Strategy maps a 1-based attempt number to the delay before the next
// try. The client package consults one between job-status polls, and any
// loop that waits on an external condition can reuse the same strategies:
//
//	b := backoff.NewExponential(250*time.Millisecond, 2*time.Second)
//	select {
//	case <-time.After(b.Delay(attempt)):
//	case <-ctx.Done():
//	}
package backoff

import (
	"math/rand/v2"
	"time"
)

// Strategy computes the wait before the next try. Delay is called with the
// number of the attempt that just finished, starting at 1.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// DefaultStrategy returns an exponential curve from 250ms up to 2s. Early
// polls come quickly, when a short job may already be done, and the cap
// bounds the steady request rate against a long-running one.
func DefaultStrategy() Strategy {
	return NewExponential(250*time.Millisecond, 2*time.Second)
}

// ─────────────────────────────────────────────────────────────────────────────
// Constant
// ─────────────────────────────────────────────────────────────────────────────

// Constant waits the same Interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant returns a Constant strategy with the given interval.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval regardless of attempt.
func (c *Constant) Delay(int) time.Duration { return c.Interval }

// ─────────────────────────────────────────────────────────────────────────────
// Exponential
// ─────────────────────────────────────────────────────────────────────────────

// Exponential doubles the delay with each attempt: Initial, 2*Initial,
// 4*Initial, and so on, capped at Max.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential returns an Exponential strategy growing from initial up
// to max.
func NewExponential(initial, max time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: max}
}

// Delay returns Initial * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := e.Initial
	for i := 1; i < attempt; i++ {
		d *= 2
		// Overflow shows up as a sign flip once the doubling leaves
		// the int64 range.
		if d >= e.Max || d < 0 {
			return e.Max
		}
	}
	if d > e.Max {
		return e.Max
	}
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// ExponentialWithJitter
// ─────────────────────────────────────────────────────────────────────────────

// ExponentialWithJitter spreads the exponential delay uniformly over
// [0, Delay(attempt)] so a fleet of callers does not poll in lockstep.
type ExponentialWithJitter struct {
	Exponential
}

// NewExponentialWithJitter returns a full-jitter exponential strategy
// growing from initial up to max.
func NewExponentialWithJitter(initial, max time.Duration) *ExponentialWithJitter {
	return &ExponentialWithJitter{Exponential{Initial: initial, Max: max}}
}

// Delay returns a uniform random duration between zero and the exponential
// delay for the attempt.
func (e *ExponentialWithJitter) Delay(attempt int) time.Duration {
	base := e.Exponential.Delay(attempt)
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(base) + 1)) //nolint:gosec // jitter does not need crypto rand
}

var (
	_ Strategy = (*Constant)(nil)
	_ Strategy = (*Exponential)(nil)
	_ Strategy = (*ExponentialWithJitter)(nil)
)
