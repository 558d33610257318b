package registrar

import (
	"context"
	"sort"
	"time"

	"github.com/miekg/dns"
)

// Resolver is the subset of github.com/miekg/dns's Client used to ask a
// single resolver for a domain's NS records. Narrowed so drivers can fake
// it in tests without standing up a UDP listener.
type Resolver interface {
	QueryNS(ctx context.Context, resolverAddr, domain string) ([]string, error)
}

// DNSResolver implements Resolver with github.com/miekg/dns.
type DNSResolver struct {
	client *dns.Client
}

// NewDNSResolver builds a DNSResolver with the given per-query timeout.
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSResolver{client: &dns.Client{Timeout: timeout, Net: "udp"}}
}

// QueryNS asks resolverAddr (host:port, default port 53) for domain's NS
// records and returns the target hostnames, lowercased with no trailing
// dot.
func (r *DNSResolver) QueryNS(ctx context.Context, resolverAddr, domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
	msg.RecursionDesired = true

	server := resolverAddr
	if !hasPort(server) {
		server = server + ":53"
	}

	type result struct {
		resp *dns.Msg
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, _, err := r.client.Exchange(msg, server)
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.resp == nil {
			return nil, nil
		}
		var hosts []string
		for _, rr := range res.resp.Answer {
			if ns, ok := rr.(*dns.NS); ok {
				hosts = append(hosts, normalizeHost(ns.Ns))
			}
		}
		return hosts, nil
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

func normalizeHost(s string) string {
	s = dns.Fqdn(s)
	return s[:len(s)-1]
}

// PropagationChecker polls a fixed set of public resolvers until every one
// reports the expected NS set for domain, or ctx's deadline/the internal
// timeout elapses first. Shared by every registrar driver so each one
// doesn't reimplement its own polling loop.
type PropagationChecker struct {
	Resolver  Resolver
	Resolvers []string
	Interval  time.Duration
	Timeout   time.Duration
}

// DefaultPublicResolvers are well-known recursive resolvers queried to
// gauge whether a registrar-level NS change has become globally visible.
var DefaultPublicResolvers = []string{
	"8.8.8.8",
	"1.1.1.1",
	"9.9.9.9",
}

// NewPropagationChecker builds a checker against DefaultPublicResolvers
// using a *DNSResolver, polling every 2 seconds with a 30 second overall
// timeout.
func NewPropagationChecker() *PropagationChecker {
	return &PropagationChecker{
		Resolver:  NewDNSResolver(5 * time.Second),
		Resolvers: DefaultPublicResolvers,
		Interval:  2 * time.Second,
		Timeout:   30 * time.Second,
	}
}

// Verify polls until every configured resolver's NS answer for domain
// matches expected (order-independent), or the timeout elapses.
func (c *PropagationChecker) Verify(ctx context.Context, domain string, expected []string) (bool, error) {
	want := normalizeSet(expected)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		if c.allResolversMatch(ctx, domain, want) {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ErrPropagationTimeout
		case <-ticker.C:
		}
	}
}

func (c *PropagationChecker) allResolversMatch(ctx context.Context, domain string, want []string) bool {
	for _, resolver := range c.Resolvers {
		got, err := c.Resolver.QueryNS(ctx, resolver, domain)
		if err != nil {
			return false
		}
		if !equalSets(normalizeSet(got), want) {
			return false
		}
	}
	return true
}

func normalizeSet(hosts []string) []string {
	out := make([]string, len(hosts))
	for i, h := range hosts {
		out[i] = normalizeHost(h)
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
