// Package statemachine implements the guarded failover state machine: the
// fixed five-state graph, the four safety gates guarding entry into
// FAILING_OVER, and the registrar-mediated side effects that run on
// commit of a failover or a recovery.
package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/clock"
	"gitlab.bluewillows.net/root/failoverctl/internal/txlog"
	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

// Store is the subset of the StorageSink contract the state machine
// depends on: durable transition log and failover ledger.
type Store interface {
	SaveTransition(ctx context.Context, t txlog.TransitionRecord) error
	LoadTransitions(ctx context.Context, limit int) ([]txlog.TransitionRecord, error)
	SaveLedgerEntry(ctx context.Context, at time.Time) error
	LoadLedger(ctx context.Context, since time.Time) ([]time.Time, error)
}

// Binding mirrors the registrar's view of a zone's active provider and
// nameserver set. Mutated only by the state machine's registrar side
// effects.
type Binding struct {
	Domain              string
	ActiveProvider      string
	Nameservers         []string
	PropagationVerified bool
}

// Config configures a Machine. Exactly one Profile must be chosen; it is
// never changed after construction.
type Config struct {
	Domain      string
	PrimaryID   string
	PrimaryNS   []string
	SecondaryID string
	SecondaryNS []string
	Profile     Profile
	Clock       clock.Clock
	Registrar   registrar.Registrar
	Store       Store
	Logger      *slog.Logger

	// OnTransition, if set, is invoked after every accepted commit.
	OnTransition func(from, to State)
	// OnSafetyRejection, if set, is invoked whenever a safety gate
	// refuses a transition (including an unrecognized edge).
	OnSafetyRejection func(reason string)
}

// Machine is the single-writer guarded state machine for one zone. All
// calls to Transition and Evaluate are serialized by mu; registrar I/O
// during a failover or recovery side effect runs with mu held, matching
// the held-lock design the specification accepts as a default (a split
// pre-commit/commit-or-abort design is not built).
type Machine struct {
	mu sync.Mutex

	domain      string
	primaryID   string
	primaryNS   []string
	secondaryID string
	secondaryNS []string

	profile   Profile
	clock     clock.Clock
	registrar registrar.Registrar
	store     Store
	logger    *slog.Logger

	current   State
	enteredAt time.Time
	ledger    *ledger
	authorized bool
	binding   Binding

	onTransition      func(from, to State)
	onSafetyRejection func(reason string)
}

// New constructs a Machine starting in HEALTHY with the primary provider
// active, recovering its ledger (if any) from the storage sink.
func New(ctx context.Context, cfg Config) (*Machine, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registrar == nil {
		return nil, fmt.Errorf("statemachine: registrar is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("statemachine: store is required")
	}

	now := cfg.Clock.Now()
	m := &Machine{
		domain:      cfg.Domain,
		primaryID:   cfg.PrimaryID,
		primaryNS:   cfg.PrimaryNS,
		secondaryID: cfg.SecondaryID,
		secondaryNS: cfg.SecondaryNS,
		profile:     cfg.Profile,
		clock:       cfg.Clock,
		registrar:   cfg.Registrar,
		store:       cfg.Store,
		logger:      cfg.Logger,
		current:     StateHealthy,
		enteredAt:   now,
		ledger:      newLedger(),
		binding: Binding{
			Domain:              cfg.Domain,
			ActiveProvider:      cfg.PrimaryID,
			Nameservers:         cfg.PrimaryNS,
			PropagationVerified: true,
		},
		onTransition:      cfg.OnTransition,
		onSafetyRejection: cfg.OnSafetyRejection,
	}

	entries, err := cfg.Store.LoadLedger(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, &StorageError{Op: "load ledger", Err: err}
	}
	m.ledger.seed(entries)

	return m, nil
}

// CurrentState returns the machine's current state.
func (m *Machine) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Binding returns a snapshot of the current DNSBinding mirror.
func (m *Machine) Binding() Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}

// EnteredAt returns the wall-clock time the machine entered its current
// state.
func (m *Machine) EnteredAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enteredAt
}

// LedgerCount returns the number of FAILING_OVER entries recorded on the
// same UTC calendar day as at.
func (m *Machine) LedgerCount(at time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.countOnDay(at)
}

// PrimaryID and SecondaryID expose the configured provider identities the
// machine fails between, for status reporting.
func (m *Machine) PrimaryID() string   { return m.primaryID }
func (m *Machine) SecondaryID() string { return m.secondaryID }

// Authorize sets the single-use manual authorization flag consumed by the
// next accepted FAILING_OVER entry.
func (m *Machine) Authorize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorized = true
}

// Transition validates and, if permitted, commits a move to target.
// Validation order: (1) target is a known state, (2) target differs from
// the current state, (3) the edge exists from the current state, (4)
// min-time-in-state is satisfied, (5) for FAILING_OVER, the remaining
// three safety gates. On success, side effects for the target run (with
// the lock held) before state, entry timestamp, and the transition log
// are updated atomically.
func (m *Machine) Transition(ctx context.Context, target State, reason, operatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(ctx, target, reason, operatorID)
}

func (m *Machine) transitionLocked(ctx context.Context, target State, reason, operatorID string) error {
	if !target.IsValid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown state: %s", target)}
	}
	if target == m.current {
		return &ValidationError{Reason: "self-transition"}
	}
	if !edgeExists(m.current, target) {
		return m.rejectLocked(target, "invalid transition")
	}

	now := m.clock.Now()
	if now.Before(m.enteredAt) {
		return &ValidationError{Reason: "clock regression detected"}
	}
	if now.Sub(m.enteredAt) < m.profile.MinTimeInState {
		return m.rejectLocked(target, "minimum time in state not met")
	}

	if target == StateFailingOver {
		if err := m.checkFailoverGates(now); err != nil {
			return err
		}
	}

	switch {
	case target == StateFailingOver:
		if err := m.executeFailoverLocked(ctx); err != nil {
			return err
		}
	case target == StateHealthy && m.current == StateRecovering:
		if err := m.executeRecoveryLocked(ctx); err != nil {
			return err
		}
	}

	from := m.current
	m.current = target
	m.enteredAt = now

	record := txlog.TransitionRecord{
		From:       string(from),
		To:         string(target),
		Timestamp:  now,
		Reason:     reason,
		OperatorID: operatorID,
	}
	if err := m.store.SaveTransition(ctx, record); err != nil {
		return &StorageError{Op: "save transition", Err: err}
	}

	if target == StateFailingOver {
		m.ledger.append(now)
		m.ledger.trim(now)
		if err := m.store.SaveLedgerEntry(ctx, now); err != nil {
			return &StorageError{Op: "save ledger entry", Err: err}
		}
		m.authorized = false
	}

	m.logger.Info("state transition committed",
		slog.String("from", string(from)),
		slog.String("to", string(target)),
		slog.String("reason", reason),
	)

	if m.onTransition != nil {
		m.onTransition(from, target)
	}

	return nil
}

// rejectLocked builds a SafetyRejection for a move to target from the
// current state and notifies the optional rejection hook.
func (m *Machine) rejectLocked(target State, reason string) *SafetyRejection {
	if m.onSafetyRejection != nil {
		m.onSafetyRejection(reason)
	}
	return &SafetyRejection{From: m.current, To: target, Reason: reason}
}

// checkFailoverGates evaluates safety gates 2-4 (minimum-time was already
// checked by the caller, applying to every transition).
func (m *Machine) checkFailoverGates(now time.Time) error {
	if last, ok := m.ledger.last(); ok {
		if now.Sub(last) < m.profile.FailoverCooldown {
			return m.rejectLocked(StateFailingOver, "failover cooldown not elapsed")
		}
	}

	if m.ledger.countOnDay(now) >= m.profile.MaxDailyFailovers {
		return m.rejectLocked(StateFailingOver, "daily failover ceiling reached")
	}

	if m.profile.RequireManualAuth && !m.authorized {
		return m.rejectLocked(StateFailingOver, "manual authorization required")
	}

	return nil
}

// Evaluate consults the score(s) relevant to the current state against
// the profile's thresholds and attempts the corresponding transition.
// SafetyRejections are swallowed per the evaluate contract: only a
// successful transition is observable via the returned (state, true).
// Hard errors (registrar or storage failures during side effects)
// propagate to the caller.
func (m *Machine) Evaluate(ctx context.Context, scores map[string]float64) (State, bool, error) {
	m.mu.Lock()
	target, reason, ok := m.nextTransitionLocked(scores)
	current := m.current
	m.mu.Unlock()

	if !ok {
		return current, false, nil
	}

	err := m.Transition(ctx, target, reason, "")
	if err == nil {
		return target, true, nil
	}
	if isSafetyRejection(err) {
		return current, false, nil
	}
	return current, false, err
}

func (m *Machine) nextTransitionLocked(scores map[string]float64) (target State, reason string, ok bool) {
	switch m.current {
	case StateHealthy:
		s := scores[m.binding.ActiveProvider]
		if s < m.profile.HealthyToDegraded {
			return StateDegraded, "score below healthy threshold", true
		}
	case StateDegraded:
		s := scores[m.binding.ActiveProvider]
		if s >= m.profile.DegradedRecover {
			return StateHealthy, "score recovered above degraded threshold", true
		}
		if s < m.profile.DegradedToFailingOver {
			return StateFailingOver, fmt.Sprintf("failover to %s", m.secondaryID), true
		}
	case StateFailingOver:
		return StateFailedOver, "failover side effects complete", true
	case StateFailedOver:
		s := scores[m.primaryID]
		if s >= m.profile.FailedOverToRecovering {
			return StateRecovering, fmt.Sprintf("recovery of %s underway", m.primaryID), true
		}
	case StateRecovering:
		s := scores[m.primaryID]
		if s < m.profile.RecoveringAbort {
			return StateFailedOver, "recovery aborted, primary re-degraded", true
		}
		if s >= m.profile.RecoveringComplete {
			return StateHealthy, fmt.Sprintf("recovery back to %s", m.primaryID), true
		}
	}
	return "", "", false
}

func isSafetyRejection(err error) bool {
	_, ok := err.(*SafetyRejection)
	return ok
}

// executeFailoverLocked points the zone at the secondary provider's NS
// and confirms propagation. Called with mu held; the caller commits the
// state change only if this returns nil.
func (m *Machine) executeFailoverLocked(ctx context.Context) error {
	reason := fmt.Sprintf("failover to %s", m.secondaryID)
	if err := m.registrar.UpdateNameservers(ctx, m.domain, m.secondaryNS, reason); err != nil {
		return err
	}

	verified, err := m.registrar.VerifyPropagation(ctx, m.domain)
	if err != nil {
		return err
	}
	if !verified {
		return registrar.ErrPropagationTimeout
	}

	m.binding = Binding{
		Domain:              m.domain,
		ActiveProvider:      m.secondaryID,
		Nameservers:         m.secondaryNS,
		PropagationVerified: true,
	}
	return nil
}

// executeRecoveryLocked restores the primary provider's NS and confirms
// propagation. Called with mu held from the RECOVERING -> HEALTHY edge.
func (m *Machine) executeRecoveryLocked(ctx context.Context) error {
	reason := fmt.Sprintf("recovery back to %s", m.primaryID)
	if err := m.registrar.UpdateNameservers(ctx, m.domain, m.primaryNS, reason); err != nil {
		return err
	}

	verified, err := m.registrar.VerifyPropagation(ctx, m.domain)
	if err != nil {
		return err
	}
	if !verified {
		return registrar.ErrPropagationTimeout
	}

	m.binding = Binding{
		Domain:              m.domain,
		ActiveProvider:      m.primaryID,
		Nameservers:         m.primaryNS,
		PropagationVerified: true,
	}
	return nil
}
