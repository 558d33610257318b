package rfc2136

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/miekg/dns"

	"gitlab.bluewillows.net/root/failoverctl/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

// Registrar implements registrar.Registrar against an authoritative
// server's apex NS RRset, updated via RFC 2136 dynamic update.
type Registrar struct {
	client      *dnsupdate.Client
	zone        string
	ttl         uint32
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

// WithTTL overrides the NS record TTL used on update (default 300s).
func WithTTL(ttl uint32) Option {
	return func(r *Registrar) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPropagationChecker overrides the default public-resolver propagation
// checker, primarily for tests.
func WithPropagationChecker(c *registrar.PropagationChecker) Option {
	return func(r *Registrar) { r.propagation = c }
}

// New builds an RFC 2136 Registrar from cfg.
func New(cfg Config, opts ...Option) (*Registrar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registrar{
		zone:        dns1Fqdn(cfg.Zone),
		ttl:         300,
		propagation: registrar.NewPropagationChecker(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	client, err := dnsupdate.NewClient(cfg.ToDNSUpdateConfig(), dnsupdate.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("rfc2136 registrar: creating dnsupdate client: %w", err)
	}
	r.client = client

	return r, nil
}

// GetNameservers returns domain's current NS RRset as queried directly
// from the authoritative server.
func (r *Registrar) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	records, err := r.client.Query(ctx, dns1Fqdn(domain), dns.TypeNS)
	if err != nil {
		return nil, registrar.Wrap("rfc2136", domain, "get_nameservers", err)
	}

	var hosts []string
	for _, rec := range records {
		hosts = append(hosts, trimDot(rec.RData))
	}
	return hosts, nil
}

// UpdateNameservers replaces domain's NS RRset with newNS: one dynamic
// update message deletes the existing set, then one message per entry of
// newNS inserts it. The replacement is not atomic; if an insert fails,
// the RRset is left holding only the records inserted before it.
func (r *Registrar) UpdateNameservers(ctx context.Context, domain string, newNS []string, reason string) error {
	r.logger.Info("updating rfc2136 NS RRset",
		slog.String("domain", domain),
		slog.Any("name_servers", newNS),
		slog.String("reason", reason),
	)

	fqdn := dns1Fqdn(domain)
	if err := r.client.DeleteAll(ctx, fqdn, dns.TypeNS); err != nil {
		return registrar.Wrap("rfc2136", domain, "update_nameservers", err)
	}

	for _, ns := range newNS {
		rec := dnsupdate.NewNSRecord(fqdn, dns1Fqdn(ns), r.ttl)
		if err := r.client.Create(ctx, rec); err != nil {
			return registrar.Wrap("rfc2136", domain, "update_nameservers", err)
		}
	}

	return nil
}

// VerifyPropagation polls public resolvers until they observe the
// authoritative server's currently configured NS set for domain.
func (r *Registrar) VerifyPropagation(ctx context.Context, domain string) (bool, error) {
	expected, err := r.GetNameservers(ctx, domain)
	if err != nil {
		return false, registrar.Wrap("rfc2136", domain, "verify_propagation", err)
	}

	ok, err := r.propagation.Verify(ctx, domain, expected)
	if err != nil {
		return false, registrar.Wrap("rfc2136", domain, "verify_propagation", err)
	}
	return ok, nil
}

func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

// Ensure Registrar implements registrar.Registrar at compile time.
var _ registrar.Registrar = (*Registrar)(nil)
