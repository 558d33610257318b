package storage

import (
	"context"
	"testing"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
	"gitlab.bluewillows.net/root/failoverctl/internal/txlog"
)

func TestMemorySink_ResultsFilteredByProviderAndTime(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	results := []probe.Result{
		{ProviderID: "cloudflare", Timestamp: base},
		{ProviderID: "route53", Timestamp: base.Add(time.Minute)},
		{ProviderID: "cloudflare", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, r := range results {
		if err := s.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}
	}

	got, err := s.GetResultsSince(ctx, base.Add(30*time.Second), "cloudflare")
	if err != nil {
		t.Fatalf("GetResultsSince() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("got[0].Timestamp = %v, want %v", got[0].Timestamp, base.Add(2*time.Minute))
	}
}

func TestMemorySink_TransitionsRespectLimit(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.SaveTransition(ctx, txlog.TransitionRecord{To: "HEALTHY"}); err != nil {
			t.Fatalf("SaveTransition() error = %v", err)
		}
	}

	got, err := s.LoadTransitions(ctx, 2)
	if err != nil {
		t.Fatalf("LoadTransitions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}

func TestMemorySink_LedgerSince(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := s.SaveLedgerEntry(ctx, base); err != nil {
		t.Fatalf("SaveLedgerEntry() error = %v", err)
	}
	if err := s.SaveLedgerEntry(ctx, base.Add(25*time.Hour)); err != nil {
		t.Fatalf("SaveLedgerEntry() error = %v", err)
	}

	got, err := s.LoadLedger(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
}
