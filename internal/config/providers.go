package config

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

// ProviderInstanceConfig holds configuration for a single authoritative-DNS
// provider: its probe endpoints, its role in the failover relationship,
// and the settings its registrar driver needs to update nameservers.
type ProviderInstanceConfig struct {
	// Name is the user-provided instance name (e.g., "cloudflare-primary").
	Name string

	// Role is "primary" or "secondary".
	Role provider.Role

	// Endpoints are the nameserver hosts the monitor probes.
	Endpoints []string

	// Nameservers are the delegation NS hostnames this provider answers
	// for, installed at the registrar on failover/recovery.
	Nameservers []string

	// RegistrarType selects the driver: cloudflare, route53, rfc2136, or
	// selfhosted.
	RegistrarType string

	// RegistrarConfig holds driver-specific settings. Keys are setting
	// names (e.g., "TOKEN", "ZONE_ID", "TSIG_SECRET").
	RegistrarConfig map[string]string
}

// ToProvider converts this config to the provider package's runtime type.
func (c *ProviderInstanceConfig) ToProvider() provider.Provider {
	return provider.Provider{
		ID:          c.Name,
		Name:        c.Name,
		Endpoints:   c.Endpoints,
		Role:        c.Role,
		Nameservers: c.Nameservers,
	}
}

// parseInstances parses the FAILOVERCTL_PROVIDERS environment variable,
// a comma-separated list of instance names in order.
func parseInstances() []string {
	instancesStr := getEnv("FAILOVERCTL_PROVIDERS")
	if instancesStr == "" {
		return nil
	}

	var instances []string
	for _, p := range strings.Split(instancesStr, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			instances = append(instances, p)
		}
	}
	return instances
}

// registrarConfigFields defines all registrar-specific configuration
// fields, shared between env var loading and file config merging. Fields
// marked as secrets support the _FILE suffix pattern for Docker secrets.
var registrarConfigFields = []struct {
	name     string
	isSecret bool
}{
	{"URL", false},
	{"TOKEN", true},             // Cloudflare API token
	{"ACCOUNT_ID", false},        // Cloudflare account id (registrar API)
	{"ZONE", false},              // zone name
	{"ZONE_ID", false},            // Cloudflare zone id
	{"API_KEY", true},             // Cloudflare legacy key auth
	{"API_EMAIL", false},
	{"ACCESS_KEY_ID", false},       // Route53
	{"SECRET_ACCESS_KEY", true},    // Route53
	{"SESSION_TOKEN", true},        // Route53
	{"REGION", false},              // Route53
	{"HOSTED_ZONE_ID", false},      // Route53
	{"TSIG_KEY_NAME", false},       // RFC 2136
	{"TSIG_SECRET", true},          // RFC 2136
	{"TSIG_ALGORITHM", false},      // RFC 2136
	{"SSH_HOST", false},            // self-hosted
	{"SSH_USER", false},            // self-hosted
	{"SSH_PORT", false},            // self-hosted
	{"SSH_TIMEOUT", false},         // self-hosted
	{"SSH_KEY_PATH", false},        // self-hosted
	{"SSH_PASSWORD", true},         // self-hosted
	{"ZONE_FILE_PATH", false},      // self-hosted
	{"RELOAD_COMMAND", false},      // self-hosted
	{"INSECURE_SKIP_VERIFY", false},
}

// loadInstanceConfig loads configuration for a single provider instance.
// It reads all FAILOVERCTL_{INSTANCE_NAME}_* environment variables.
func loadInstanceConfig(instanceName string) (*ProviderInstanceConfig, []string) {
	var errs []string
	prefix := envPrefix(instanceName)

	cfg := &ProviderInstanceConfig{
		Name:            instanceName,
		RegistrarConfig: make(map[string]string),
	}

	roleStr := strings.ToLower(getEnv(prefix + "ROLE"))
	switch roleStr {
	case "":
		errs = append(errs, fmt.Sprintf("%sROLE: required but not set", prefix))
	case "primary":
		cfg.Role = provider.RolePrimary
	case "secondary":
		cfg.Role = provider.RoleSecondary
	default:
		errs = append(errs, fmt.Sprintf("%sROLE: invalid value %q (must be primary or secondary)", prefix, roleStr))
	}

	if endpointsStr := getEnv(prefix + "ENDPOINTS"); endpointsStr != "" {
		cfg.Endpoints = splitPatterns(endpointsStr)
	} else {
		errs = append(errs, fmt.Sprintf("%sENDPOINTS: required but not set", prefix))
	}

	if nsStr := getEnv(prefix + "NAMESERVERS"); nsStr != "" {
		cfg.Nameservers = splitPatterns(nsStr)
	} else {
		errs = append(errs, fmt.Sprintf("%sNAMESERVERS: required but not set", prefix))
	}

	cfg.RegistrarType = strings.ToLower(getEnv(prefix + "REGISTRAR_TYPE"))
	if cfg.RegistrarType == "" {
		errs = append(errs, fmt.Sprintf("%sREGISTRAR_TYPE: required but not set", prefix))
	}

	for _, field := range registrarConfigFields {
		var value string
		if field.isSecret {
			value = getEnvWithFileFallback(prefix, field.name)
		} else {
			value = getEnv(prefix + field.name)
		}
		if value != "" {
			cfg.RegistrarConfig[field.name] = value
		}
	}

	return cfg, errs
}

// mergeProviderEnvOverrides applies environment variable overrides to a
// file-based provider configuration, allowing YAML for readability and
// env vars (including the _FILE secrets pattern) for overrides.
func mergeProviderEnvOverrides(cfg *ProviderInstanceConfig) {
	prefix := envPrefix(cfg.Name)

	if cfg.RegistrarConfig == nil {
		cfg.RegistrarConfig = make(map[string]string)
	}

	for _, field := range registrarConfigFields {
		var value string
		if field.isSecret {
			value = getEnvWithFileFallback(prefix, field.name)
		} else {
			value = getEnv(prefix + field.name)
		}
		if value != "" {
			slog.Debug("env override applied to registrar config",
				slog.String("provider", cfg.Name),
				slog.String("field", field.name),
			)
			cfg.RegistrarConfig[field.name] = value
		}
	}

	if endpointsStr := getEnv(prefix + "ENDPOINTS"); endpointsStr != "" {
		cfg.Endpoints = splitPatterns(endpointsStr)
	}
	if nsStr := getEnv(prefix + "NAMESERVERS"); nsStr != "" {
		cfg.Nameservers = splitPatterns(nsStr)
	}
	if roleStr := getEnv(prefix + "ROLE"); roleStr != "" {
		switch strings.ToLower(roleStr) {
		case "primary":
			cfg.Role = provider.RolePrimary
		case "secondary":
			cfg.Role = provider.RoleSecondary
		}
	}
}

// splitPatterns splits a comma-separated string into individual trimmed
// entries.
func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
