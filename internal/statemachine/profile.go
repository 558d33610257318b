package statemachine

import "time"

// Profile pins the scale and timers a Machine evaluates scores against.
// Exactly one profile is chosen at construction; profiles are never mixed
// within a single Machine.
type Profile struct {
	Name string

	// MinTimeInState is the minimum dwell time before any transition out
	// of the current state is permitted.
	MinTimeInState time.Duration

	// FailoverCooldown is the minimum wall-clock separation required
	// between two FAILING_OVER entries.
	FailoverCooldown time.Duration

	// MaxDailyFailovers bounds the count of FAILING_OVER entries accepted
	// in the current UTC calendar day.
	MaxDailyFailovers int

	// RequireManualAuth, when true, requires a single-use authorization
	// flag to be set before a FAILING_OVER entry is permitted.
	RequireManualAuth bool

	// HealthyToDegraded is the score below which HEALTHY yields to
	// DEGRADED.
	HealthyToDegraded float64

	// DegradedRecover is the score at or above which DEGRADED returns to
	// HEALTHY.
	DegradedRecover float64

	// DegradedToFailingOver is the score below which DEGRADED escalates
	// to FAILING_OVER.
	DegradedToFailingOver float64

	// FailedOverToRecovering is the score at or above which FAILED_OVER
	// begins RECOVERING (evaluated against the originally-primary
	// provider's score).
	FailedOverToRecovering float64

	// RecoveringAbort is the score below which RECOVERING aborts back to
	// FAILED_OVER.
	RecoveringAbort float64

	// RecoveringComplete is the score at or above which RECOVERING
	// commits to HEALTHY, once min-time is also satisfied.
	RecoveringComplete float64
}

// ProductionProfile is the default profile: 0-100 score scale, 5 minute
// minimum dwell, 1 hour cooldown, 1 failover per UTC day.
func ProductionProfile() Profile {
	return Profile{
		Name:                   "production",
		MinTimeInState:         5 * time.Minute,
		FailoverCooldown:       time.Hour,
		MaxDailyFailovers:      1,
		HealthyToDegraded:      40,
		DegradedRecover:        60,
		DegradedToFailingOver:  20,
		FailedOverToRecovering: 60,
		RecoveringAbort:        40,
		RecoveringComplete:     60,
	}
}

// SimplifiedProfile is the 0-1 scale profile used by the literal test
// scenarios: 60 second minimum dwell, 5 minute cooldown, 3 failovers per
// UTC day.
func SimplifiedProfile() Profile {
	return Profile{
		Name:                   "simplified",
		MinTimeInState:         60 * time.Second,
		FailoverCooldown:       5 * time.Minute,
		MaxDailyFailovers:      3,
		HealthyToDegraded:      0.4,
		DegradedRecover:        0.6,
		DegradedToFailingOver:  0.2,
		FailedOverToRecovering: 0.6,
		RecoveringAbort:        0.4,
		RecoveringComplete:     0.6,
	}
}

// WithManualAuth returns a copy of p requiring a single-use authorization
// flag before FAILING_OVER entry.
func (p Profile) WithManualAuth() Profile {
	p.RequireManualAuth = true
	return p
}
