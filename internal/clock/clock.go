// Package clock provides the time source injected throughout the
// controller so that the state machine's timers (minimum time in state,
// cooldown, daily ceiling window) can be tested deterministically instead
// of with real sleeps.
package clock

import "time"

// Clock is the time source used by the monitor and state machine. The
// production implementation wraps time.Now; tests use Fake.
type Clock interface {
	Now() time.Time
}

// Real is the production Clock backed by the system clock.
type Real struct{}

// Now returns the current wall-clock time.
func (Real) Now() time.Time { return time.Now() }
