// Package dnsupdate implements the RFC 2136 dynamic-update primitives the
// rfc2136 registrar driver uses to replace a zone's apex NS RRset: a
// TSIG-capable update client scoped to the single create/delete/query
// sequence a failover commit performs, not a general-purpose DNS record
// management client.
package dnsupdate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Sentinel errors for RFC 2136 NS RRset updates.
var (
	// ErrUpdateFailed is returned when the DNS UPDATE operation fails.
	ErrUpdateFailed = errors.New("dns update failed")

	// ErrRecordNotFound is returned when a record cannot be found for deletion/update.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists is returned when trying to create a record that already exists.
	ErrRecordExists = errors.New("record already exists")

	// ErrAuthenticationFailed is returned when TSIG authentication fails.
	ErrAuthenticationFailed = errors.New("tsig authentication failed")

	// ErrZoneMismatch is returned when a record name doesn't match the configured zone.
	ErrZoneMismatch = errors.New("record name does not match configured zone")
)

// Client performs RFC 2136 Dynamic DNS updates against a zone's apex NS
// RRset on behalf of the rfc2136 registrar driver.
type Client struct {
	config *Config
	tsig   *TSIG
	logger *slog.Logger

	mu         sync.RWMutex
	dnsClient  *dns.Client
	lastUpdate time.Time
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the DNS update client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new RFC 2136 Dynamic DNS client with the given configuration.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create TSIG if configured
	tsig, err := TSIGFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG configuration: %w", err)
	}

	c := &Client{
		config: config,
		tsig:   tsig,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Initialize DNS client
	c.dnsClient = &dns.Client{
		Timeout: config.GetTimeout(),
	}

	if config.UseTCP {
		c.dnsClient.Net = "tcp"
	} else {
		c.dnsClient.Net = "udp"
	}

	// Apply TSIG to client if configured
	if tsig != nil {
		tsig.ApplyToClient(c.dnsClient)
	}

	c.logger.Debug("RFC 2136 client initialized",
		slog.String("server", config.GetServer()),
		slog.String("zone", config.Zone),
		slog.Bool("tsig", tsig != nil),
		slog.Bool("tcp", config.UseTCP),
	)

	return c, nil
}

// Create adds a DNS record to the apex NS RRset, used once per nameserver
// in the new delegation set during a registrar commit.
// Returns ErrRecordExists if a record with the same name and type already exists.
func (c *Client) Create(ctx context.Context, record Record) error {
	if err := c.validateRecord(record); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rr, err := record.ToRR()
	if err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	// Build UPDATE message
	msg := new(dns.Msg)
	msg.SetUpdate(c.config.Zone)

	// Add the record
	msg.Insert([]dns.RR{rr})

	// Apply TSIG if configured
	if c.tsig != nil {
		c.tsig.ApplyToMessage(msg)
	}

	c.logger.Debug("creating DNS record",
		slog.String("name", record.Name),
		slog.String("type", record.TypeString()),
		slog.String("rdata", record.RData),
		slog.Uint64("ttl", uint64(record.TTL)),
	)

	resp, _, err := c.exchangeWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	if err := c.checkResponse(resp); err != nil {
		return err
	}

	c.lastUpdate = time.Now()
	c.logger.Info("DNS record created",
		slog.String("name", record.Name),
		slog.String("type", record.TypeString()),
	)

	return nil
}

// DeleteAll removes every RR of recordType for name — used to clear the
// existing NS RRset before inserting the new delegation's records. The
// deletion is sent as its own UPDATE message; records inserted afterwards
// go in separate messages, so the replacement is not atomic.
func (c *Client) DeleteAll(ctx context.Context, name string, recordType uint16) error {
	fqdn := c.ensureFQDN(name)
	if !c.isInZone(fqdn) {
		return fmt.Errorf("%w: %s not in zone %s", ErrZoneMismatch, fqdn, c.config.Zone)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Build UPDATE message
	msg := new(dns.Msg)
	msg.SetUpdate(c.config.Zone)

	// Remove all RRs of the type for the name
	// An RR of the given type with class ANY, TTL 0 and no rdata deletes
	// the whole RRset (RFC 2136 §2.5.2)
	rr := &dns.ANY{
		Hdr: dns.RR_Header{
			Name:   fqdn,
			Rrtype: recordType,
			Class:  dns.ClassANY,
			Ttl:    0,
		},
	}
	msg.Ns = append(msg.Ns, rr)

	// Apply TSIG if configured
	if c.tsig != nil {
		c.tsig.ApplyToMessage(msg)
	}

	c.logger.Debug("deleting all DNS records of type",
		slog.String("name", fqdn),
		slog.String("type", dns.TypeToString[recordType]),
	)

	resp, _, err := c.exchangeWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	if err := c.checkResponse(resp); err != nil {
		return err
	}

	c.lastUpdate = time.Now()
	c.logger.Info("DNS records deleted",
		slog.String("name", fqdn),
		slog.String("type", dns.TypeToString[recordType]),
	)

	return nil
}

// Query retrieves the existing records of a given type for a name — used
// by the registrar's GetNameservers and VerifyPropagation to read the
// apex NS RRset directly from the authoritative server.
// This uses standard DNS queries (not UPDATE).
func (c *Client) Query(ctx context.Context, name string, recordType uint16) ([]Record, error) {
	fqdn := c.ensureFQDN(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, recordType)
	msg.RecursionDesired = false

	c.logger.Debug("querying DNS records",
		slog.String("name", fqdn),
		slog.String("type", dns.TypeToString[recordType]),
	)

	resp, _, err := c.exchangeWithContext(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("dns query failed: %w", err)
	}

	// NXDOMAIN means no records exist
	if resp.Rcode == dns.RcodeNameError {
		return []Record{}, nil
	}

	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query returned %s", dns.RcodeToString[resp.Rcode])
	}

	records := make([]Record, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		record, err := RecordFromRR(rr)
		if err != nil {
			c.logger.Warn("failed to parse DNS record",
				slog.String("error", err.Error()),
				slog.String("rr", rr.String()),
			)
			continue
		}
		records = append(records, record)
	}

	c.logger.Debug("DNS query complete",
		slog.String("name", fqdn),
		slog.Int("count", len(records)),
	)

	return records, nil
}

// exchangeWithContext performs DNS exchange with context support.
func (c *Client) exchangeWithContext(ctx context.Context, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
	// Create a channel for the result
	type result struct {
		resp *dns.Msg
		rtt  time.Duration
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		resp, rtt, err := c.dnsClient.Exchange(msg, c.config.GetServer())
		ch <- result{resp, rtt, err}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case r := <-ch:
		return r.resp, r.rtt, r.err
	}
}

// checkResponse checks the DNS response for errors.
func (c *Client) checkResponse(resp *dns.Msg) error {
	if resp == nil {
		return fmt.Errorf("%w: no response from server", ErrUpdateFailed)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return nil

	case dns.RcodeYXRrset:
		// RRset exists when it should not (for prerequisites)
		return ErrRecordExists

	case dns.RcodeNXRrset:
		// RRset does not exist when it should (for prerequisites)
		return ErrRecordNotFound

	case dns.RcodeNotAuth:
		// Server is not authoritative or TSIG failed
		if resp.IsTsig() != nil {
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, dns.RcodeToString[resp.Rcode])
		}
		return fmt.Errorf("%w: server not authoritative for zone", ErrUpdateFailed)

	case dns.RcodeRefused:
		// Server refused the update (policy or TSIG)
		return fmt.Errorf("%w: update refused (check server policy or TSIG configuration)", ErrUpdateFailed)

	case dns.RcodeNotZone:
		// Name not in zone
		return ErrZoneMismatch

	default:
		return fmt.Errorf("%w: %s", ErrUpdateFailed, dns.RcodeToString[resp.Rcode])
	}
}

// validateRecord validates a record before operations.
func (c *Client) validateRecord(record Record) error {
	if record.Name == "" {
		return errors.New("record name is required")
	}

	fqdn := c.ensureFQDN(record.Name)
	if !c.isInZone(fqdn) {
		return fmt.Errorf("%w: %s not in zone %s", ErrZoneMismatch, fqdn, c.config.Zone)
	}

	return nil
}

// ensureFQDN ensures the name ends with a dot.
func (c *Client) ensureFQDN(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// isInZone checks if a FQDN is within the configured zone.
func (c *Client) isInZone(fqdn string) bool {
	zone := c.config.Zone
	if !strings.HasSuffix(zone, ".") {
		zone += "."
	}
	return strings.HasSuffix(strings.ToLower(fqdn), strings.ToLower(zone))
}
