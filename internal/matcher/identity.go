package matcher

import "fmt"

// IdentityRule binds a provider identity label to the hostname patterns that
// identify it, e.g. {Identity: "route53", Patterns: []string{"*awsdns*"}}.
type IdentityRule struct {
	Identity string   `toml:"identity"`
	Patterns []string `toml:"patterns"`
}

// IdentityTable resolves an NS hostname to a configured provider identity,
// falling back to "unknown" when no rule matches. Rules are evaluated in
// the order they were configured; the first match wins.
type IdentityTable struct {
	rules []resolvedRule
}

type resolvedRule struct {
	identity string
	matcher  *DomainMatcher
}

// UnknownIdentity is returned by Resolve when no configured rule matches.
const UnknownIdentity = "unknown"

// DefaultIdentityRules recognizes the two vendors by NS hostname
// substring: "cloudflare" for cloudflare, and "awsdns" or "route53" for
// Route 53. It is used when no identity file is configured.
func DefaultIdentityRules() []IdentityRule {
	return []IdentityRule{
		{Identity: "cloudflare", Patterns: []string{"*cloudflare*"}},
		{Identity: "route53", Patterns: []string{"*awsdns*", "*route53*"}},
	}
}

// NewIdentityTable compiles an ordered list of identity rules.
func NewIdentityTable(rules []IdentityRule) (*IdentityTable, error) {
	t := &IdentityTable{rules: make([]resolvedRule, 0, len(rules))}

	for _, r := range rules {
		if r.Identity == "" {
			return nil, fmt.Errorf("identity rule missing identity label")
		}
		m, err := NewDomainMatcher(DomainMatcherConfig{Includes: r.Patterns})
		if err != nil {
			return nil, fmt.Errorf("identity rule %q: %w", r.Identity, err)
		}
		t.rules = append(t.rules, resolvedRule{identity: r.Identity, matcher: m})
	}

	return t, nil
}

// Resolve returns the provider identity for the given NS hostname, or
// UnknownIdentity if no configured rule matches.
func (t *IdentityTable) Resolve(nsHostname string) string {
	for _, r := range t.rules {
		if r.matcher.Matches(nsHostname) {
			return r.identity
		}
	}
	return UnknownIdentity
}
