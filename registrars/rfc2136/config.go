// Package rfc2136 implements the registrar driver for zones delegated to
// a self-managed authoritative server accepting RFC 2136 dynamic
// updates, built on pkg/dnsupdate the same way the teacher's original
// record-CRUD provider was.
package rfc2136

import (
	"fmt"

	"gitlab.bluewillows.net/root/failoverctl/pkg/dnsupdate"
)

// Config holds the settings the RFC 2136 registrar driver needs, pulled
// from a provider's RegistrarConfig map.
type Config struct {
	Server        string // host:port of the authoritative server accepting updates
	Zone          string
	TSIGKeyName   string
	TSIGSecret    string
	TSIGAlgorithm string
}

// ToDNSUpdateConfig converts to the pkg/dnsupdate client's Config shape.
func (c Config) ToDNSUpdateConfig() *dnsupdate.Config {
	return &dnsupdate.Config{
		Server:        c.Server,
		Zone:          dns1Fqdn(c.Zone),
		TSIGKeyName:   c.TSIGKeyName,
		TSIGSecret:    c.TSIGSecret,
		TSIGAlgorithm: c.TSIGAlgorithm,
	}
}

// Validate checks that all required configuration is present.
func (c Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("rfc2136 registrar: URL (server address) is required")
	}
	if c.Zone == "" {
		return fmt.Errorf("rfc2136 registrar: ZONE is required")
	}
	return nil
}

// ConfigFromMap builds a Config from the RegistrarConfig map assembled by
// internal/config, and the zone the controller is managing failover for.
func ConfigFromMap(m map[string]string, zone string) Config {
	return Config{
		Server:        m["URL"],
		Zone:          zone,
		TSIGKeyName:   m["TSIG_KEY_NAME"],
		TSIGSecret:    m["TSIG_SECRET"],
		TSIGAlgorithm: m["TSIG_ALGORITHM"],
	}
}

func dns1Fqdn(s string) string {
	if len(s) == 0 || s[len(s)-1] != '.' {
		return s + "."
	}
	return s
}
