package registrar

import (
	"context"
	"log/slog"
)

// DryRunRegistrar wraps a Registrar so that UpdateNameservers is logged
// but never actually applied, grounded on the teacher's reconciler
// DryRun config field ("would create record (dry-run)" pattern applied
// here to "would update nameservers").
type DryRunRegistrar struct {
	inner  Registrar
	logger *slog.Logger
}

// NewDryRunRegistrar wraps inner so writes are logged, not applied. Reads
// (GetNameservers) still pass through, since they have no side effect.
func NewDryRunRegistrar(inner Registrar, logger *slog.Logger) *DryRunRegistrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunRegistrar{inner: inner, logger: logger}
}

// GetNameservers passes through to the wrapped registrar.
func (r *DryRunRegistrar) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	return r.inner.GetNameservers(ctx, domain)
}

// UpdateNameservers logs the nameserver set that would have been written
// and returns success without contacting the registrar.
func (r *DryRunRegistrar) UpdateNameservers(_ context.Context, domain string, newNS []string, reason string) error {
	r.logger.Info("would update nameservers (dry-run)",
		slog.String("domain", domain),
		slog.Any("nameservers", newNS),
		slog.String("reason", reason),
	)
	return nil
}

// VerifyPropagation always reports success in dry-run mode: no write was
// ever made, so there is nothing to confirm propagation of.
func (r *DryRunRegistrar) VerifyPropagation(_ context.Context, _ string) (bool, error) {
	return true, nil
}
