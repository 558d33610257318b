// Package dnsquery implements the production DNSQuery primitive the
// Monitor probes provider endpoints with: a plain DNS query against the
// canary record, timed and classified success/failure. Grounded on the
// exchange-with-context pattern used by the RFC 2136 update client.
package dnsquery

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// Querier implements monitor.DNSQuery using github.com/miekg/dns.
type Querier struct {
	client *dns.Client
}

// Option configures a Querier.
type Option func(*Querier)

// WithTimeout overrides the per-query timeout (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(q *Querier) { q.client.Timeout = d }
}

// WithTCP forces queries over TCP instead of UDP.
func WithTCP() Option {
	return func(q *Querier) { q.client.Net = "tcp" }
}

// New builds a Querier with sensible defaults.
func New(opts ...Option) *Querier {
	q := &Querier{client: &dns.Client{Timeout: 5 * time.Second, Net: "udp"}}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Query asks nameserverHost for the A record of domain (the canary
// record, by convention `_health-check.<zone>`), classifying any rcode
// other than NOERROR/NXDOMAIN as a failure. A context deadline or
// cancellation is honored by racing the synchronous Exchange call on a
// goroutine, matching the pattern used for RFC 2136 updates.
func (q *Querier) Query(ctx context.Context, nameserverHost, domain string) (bool, string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = false

	server := nameserverHost
	if !hasPort(server) {
		server = server + ":53"
	}

	type result struct {
		resp *dns.Msg
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, _, err := q.client.Exchange(msg, server)
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		return false, "query canceled: " + ctx.Err().Error(), ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return false, r.err.Error(), nil
		}
		if r.resp == nil {
			return false, "no response", nil
		}
		switch r.resp.Rcode {
		case dns.RcodeSuccess, dns.RcodeNameError:
			return true, "", nil
		default:
			return false, fmt.Sprintf("rcode %s", dns.RcodeToString[r.resp.Rcode]), nil
		}
	}
}

func hasPort(host string) bool {
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return true
		}
		if host[i] == ']' {
			return false
		}
	}
	return false
}
