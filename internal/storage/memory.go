package storage

import (
	"context"
	"sync"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
	"gitlab.bluewillows.net/root/failoverctl/internal/txlog"
)

// MemorySink is an in-process Sink used by tests; it holds no durability
// guarantee across restarts.
type MemorySink struct {
	mu          sync.RWMutex
	results     []probe.Result
	transitions []txlog.TransitionRecord
	ledger      []time.Time
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) SaveResult(_ context.Context, r probe.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *MemorySink) GetResultsSince(_ context.Context, since time.Time, providerID string) ([]probe.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []probe.Result
	for _, r := range s.results {
		if r.Timestamp.Before(since) {
			continue
		}
		if providerID != "" && r.ProviderID != providerID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemorySink) SaveTransition(_ context.Context, t txlog.TransitionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, t)
	return nil
}

func (s *MemorySink) LoadTransitions(_ context.Context, limit int) ([]txlog.TransitionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]txlog.TransitionRecord, len(s.transitions))
	copy(out, s.transitions)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemorySink) SaveLedgerEntry(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, at)
	return nil
}

func (s *MemorySink) LoadLedger(_ context.Context, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []time.Time
	for _, t := range s.ledger {
		if !t.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}
