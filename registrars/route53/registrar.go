package route53

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"

	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

// Registrar implements registrar.Registrar against a Route 53 hosted
// zone's NS record set at the apex.
type Registrar struct {
	client      *route53.Route53
	hostedZone  string
	ttl         int64
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
func WithTTL(ttl int64) Option {
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

// New builds a Route 53 Registrar from cfg, opening an AWS session with
// static credentials the same way the corpus's AWS-backed DNS provider
// does.
func New(cfg Config, opts ...Option) (*Registrar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg := aws.NewConfig().WithCredentials(
		credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
	)
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigDisable,
	})
	if err != nil {
		return nil, fmt.Errorf("route53 registrar: creating aws session: %w", err)
	}

	r := &Registrar{
		client:      route53.New(sess),
		hostedZone:  cfg.HostedZoneID,
		ttl:         300,
		propagation: registrar.NewPropagationChecker(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// GetNameservers returns the hosted zone's apex NS record targets for
// domain.
func (r *Registrar) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	fqdn := aws.String(dns(domain))
	out, err := r.client.ListResourceRecordSetsWithContext(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(r.hostedZone),
		StartRecordName: fqdn,
		StartRecordType: aws.String(route53.RRTypeNs),
		MaxItems:        aws.String("1"),
	})
	if err != nil {
		return nil, registrar.Wrap("route53", domain, "get_nameservers", err)
	}

	for _, rrset := range out.ResourceRecordSets {
		if aws.StringValue(rrset.Type) != route53.RRTypeNs {
			continue
		}
		if aws.StringValue(rrset.Name) != dns(domain) {
			continue
		}
		var hosts []string
		for _, rr := range rrset.ResourceRecords {
			hosts = append(hosts, trimDot(aws.StringValue(rr.Value)))
		}
		return hosts, nil
	}

	return nil, registrar.ErrNotFound
}

// UpdateNameservers upserts domain's apex NS record set to newNS.
func (r *Registrar) UpdateNameservers(ctx context.Context, domain string, newNS []string, reason string) error {
	r.logger.Info("updating route53 NS record set",
		slog.String("domain", domain),
		slog.Any("name_servers", newNS),
		slog.String("reason", reason),
	)

	var records []*route53.ResourceRecord
	for _, ns := range newNS {
		records = append(records, &route53.ResourceRecord{Value: aws.String(dns(ns))})
	}

	_, err := r.client.ChangeResourceRecordSetsWithContext(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZone),
		ChangeBatch: &route53.ChangeBatch{
			Comment: aws.String(reason),
			Changes: []*route53.Change{
				{
					Action: aws.String(route53.ChangeActionUpsert),
					ResourceRecordSet: &route53.ResourceRecordSet{
						Name:            aws.String(dns(domain)),
						Type:            aws.String(route53.RRTypeNs),
						TTL:             aws.Int64(r.ttl),
						ResourceRecords: records,
					},
				},
			},
		},
	})
	if err != nil {
		return registrar.Wrap("route53", domain, "update_nameservers", err)
	}

	return nil
}

// VerifyPropagation polls public resolvers until they observe the hosted
// zone's currently configured NS set for domain.
func (r *Registrar) VerifyPropagation(ctx context.Context, domain string) (bool, error) {
	expected, err := r.GetNameservers(ctx, domain)
	if err != nil {
		return false, registrar.Wrap("route53", domain, "verify_propagation", err)
	}

	ok, err := r.propagation.Verify(ctx, domain, expected)
	if err != nil {
		return false, registrar.Wrap("route53", domain, "verify_propagation", err)
	}
	return ok, nil
}

func dns(s string) string {
	if len(s) == 0 || s[len(s)-1] != '.' {
		return s + "."
	}
	return s
}

func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

// Ensure Registrar implements registrar.Registrar at compile time.
var _ registrar.Registrar = (*Registrar)(nil)
