package main

import (
	"context"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/health"
	"gitlab.bluewillows.net/root/failoverctl/internal/statemachine"
)

// adminAdapter implements health.Admin over a running *statemachine.Machine,
// translating its error taxonomy into the health.AdminError classes the
// admin HTTP endpoints (and, in turn, the CLI's exit codes) key off.
type adminAdapter struct {
	machine *statemachine.Machine
	store   statemachine.Store
	scores  *scoreboard
}

func (a *adminAdapter) Status(ctx context.Context) (health.StatusInfo, error) {
	records, err := a.store.LoadTransitions(ctx, 20)
	if err != nil {
		return health.StatusInfo{}, err
	}

	transitions := make([]health.TransitionInfo, len(records))
	for i, r := range records {
		transitions[i] = health.TransitionInfo{
			From:       r.From,
			To:         r.To,
			Timestamp:  r.Timestamp,
			Reason:     r.Reason,
			OperatorID: r.OperatorID,
		}
	}

	binding := a.machine.Binding()

	return health.StatusInfo{
		State:     string(a.machine.CurrentState()),
		EnteredAt: a.machine.EnteredAt(),
		Scores:    a.scores.snapshot(),
		Binding: health.BindingInfo{
			Domain:              binding.Domain,
			ActiveProvider:      binding.ActiveProvider,
			Nameservers:         binding.Nameservers,
			PropagationVerified: binding.PropagationVerified,
		},
		Transitions:      transitions,
		LedgerCountToday: a.machine.LedgerCount(time.Now()),
	}, nil
}

func (a *adminAdapter) Authorize(_ context.Context) error {
	a.machine.Authorize()
	return nil
}

// ForceFailover requests an operator-initiated move to FAILING_OVER. It is
// still subject to every safety gate: this is a shortcut around waiting
// for the next scheduled Evaluate, not a bypass.
func (a *adminAdapter) ForceFailover(ctx context.Context, operatorID string) error {
	err := a.machine.Transition(ctx, statemachine.StateFailingOver, "operator-forced failover", operatorID)
	if err == nil {
		return nil
	}
	return classifyTransitionError(err)
}

// classifyTransitionError maps the state machine's error taxonomy onto the
// three admin error classes spec.md §6 assigns exit codes 1/2/3.
func classifyTransitionError(err error) error {
	switch err.(type) {
	case *statemachine.SafetyRejection:
		return &health.AdminError{Class: health.ClassSafetyRejection, Err: err}
	case *statemachine.ValidationError:
		return &health.AdminError{Class: health.ClassGeneric, Err: err}
	case *statemachine.StorageError:
		return &health.AdminError{Class: health.ClassGeneric, Err: err}
	default:
		// Anything else reaching here during a FAILING_OVER commit is a
		// registrar failure from executeFailoverLocked (update or
		// propagation-verification error).
		return &health.AdminError{Class: health.ClassRegistrar, Err: err}
	}
}
