package cloudflare

import (
	"context"
	"log/slog"

	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

// Registrar implements registrar.Registrar against a Cloudflare account's
// domain registration.
type Registrar struct {
	client      *Client
	propagation *registrar.PropagationChecker
	logger      *slog.Logger
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPropagationChecker overrides the default public-resolver propagation
// checker, primarily for tests.
func WithPropagationChecker(c *registrar.PropagationChecker) Option {
	return func(r *Registrar) { r.propagation = c }
}

// New builds a Cloudflare Registrar from cfg.
func New(cfg Config, opts ...Option) (*Registrar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registrar{
		logger:      slog.Default(),
		propagation: registrar.NewPropagationChecker(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client = NewClient(cfg.Token, cfg.AccountID, WithLogger(r.logger))
	return r, nil
}

// GetNameservers returns domain's currently registered nameservers.
func (r *Registrar) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	d, err := r.client.GetDomain(ctx, domain)
	if err != nil {
		return nil, registrar.Wrap("cloudflare", domain, "get_nameservers", err)
	}
	return d.NameServers, nil
}

// UpdateNameservers replaces domain's registered nameservers with newNS.
// reason is logged but Cloudflare's registrar API has no update-history
// field to carry it in.
func (r *Registrar) UpdateNameservers(ctx context.Context, domain string, newNS []string, reason string) error {
	r.logger.Info("updating cloudflare registrar nameservers",
		slog.String("domain", domain),
		slog.Any("name_servers", newNS),
		slog.String("reason", reason),
	)

	if err := r.client.UpdateNameServers(ctx, domain, newNS); err != nil {
		return registrar.Wrap("cloudflare", domain, "update_nameservers", err)
	}
	return nil
}

// VerifyPropagation polls public resolvers until they observe the
// registrar's currently configured NS set for domain.
func (r *Registrar) VerifyPropagation(ctx context.Context, domain string) (bool, error) {
	d, err := r.client.GetDomain(ctx, domain)
	if err != nil {
		return false, registrar.Wrap("cloudflare", domain, "verify_propagation", err)
	}

	ok, err := r.propagation.Verify(ctx, domain, d.NameServers)
	if err != nil {
		return false, registrar.Wrap("cloudflare", domain, "verify_propagation", err)
	}
	return ok, nil
}

// Ensure Registrar implements registrar.Registrar at compile time.
var _ registrar.Registrar = (*Registrar)(nil)
