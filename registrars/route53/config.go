// Package route53 implements the registrar driver for zones whose NS
// delegation is held in an AWS Route 53 hosted zone, grounded on the
// session/credentials wiring used across the aws-sdk-go v1 examples in
// the corpus.
package route53

import "fmt"

// Config holds the settings the Route 53 registrar driver needs, pulled
// from a provider's RegistrarConfig map.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string // optional, for temporary credentials
	Region          string
	HostedZoneID    string
}

// Validate checks that all required configuration is present.
func (c Config) Validate() error {
	if c.AccessKeyID == "" {
		return fmt.Errorf("route53 registrar: ACCESS_KEY_ID is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("route53 registrar: SECRET_ACCESS_KEY is required")
	}
	if c.HostedZoneID == "" {
		return fmt.Errorf("route53 registrar: HOSTED_ZONE_ID is required")
	}
	return nil
}

// ConfigFromMap builds a Config from the RegistrarConfig map assembled by
// internal/config.
func ConfigFromMap(m map[string]string) Config {
	return Config{
		AccessKeyID:     m["ACCESS_KEY_ID"],
		SecretAccessKey: m["SECRET_ACCESS_KEY"],
		SessionToken:    m["SESSION_TOKEN"],
		Region:          m["REGION"],
		HostedZoneID:    m["HOSTED_ZONE_ID"],
	}
}
