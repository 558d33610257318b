// Package storage implements the StorageSink the core depends on: durable
// persistence for ProbeResults, TransitionRecords, and FailoverLedger
// entries, so a controller restart within a 24-hour window recovers its
// ledger and transition log. The default implementation is bbolt-backed,
// grounded on the bucket-per-entity, JSON-marshaled-value layout of the
// cuemby-warren example's pkg/storage/boltdb.go (the teacher itself has
// no BoltDB code); an in-memory implementation backs unit tests.
package storage

import (
	"context"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
	"gitlab.bluewillows.net/root/failoverctl/internal/txlog"
)

// Sink is the full StorageSink contract: probe-result persistence for the
// Monitor, and transition/ledger persistence for the state machine.
// Implementations must be safe under concurrent callers.
type Sink interface {
	SaveResult(ctx context.Context, r probe.Result) error
	GetResultsSince(ctx context.Context, since time.Time, providerID string) ([]probe.Result, error)

	SaveTransition(ctx context.Context, t txlog.TransitionRecord) error
	LoadTransitions(ctx context.Context, limit int) ([]txlog.TransitionRecord, error)

	SaveLedgerEntry(ctx context.Context, at time.Time) error
	LoadLedger(ctx context.Context, since time.Time) ([]time.Time, error)
}
