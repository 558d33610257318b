package config

import (
	"fmt"
	"strings"

	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// knownRegistrarTypes lists the registrar drivers the controller ships.
var knownRegistrarTypes = []string{"cloudflare", "route53", "rfc2136", "selfhosted"}

// validateConfig performs cross-field validation on the complete
// configuration.
func validateConfig(cfg *Config) []string {
	var errs []string

	seen := make(map[string]bool)
	primaries, secondaries := 0, 0
	for _, inst := range cfg.ProviderInstances {
		if seen[inst.Name] {
			errs = append(errs, fmt.Sprintf("duplicate provider instance name: %q", inst.Name))
		}
		seen[inst.Name] = true

		switch inst.Role {
		case provider.RolePrimary:
			primaries++
		case provider.RoleSecondary:
			secondaries++
		}

		errs = append(errs, validateRegistrarType(inst)...)
	}

	if len(cfg.ProviderInstances) > 0 {
		if primaries != 1 {
			errs = append(errs, fmt.Sprintf("exactly one provider must have role=primary, found %d", primaries))
		}
		if secondaries != 1 {
			errs = append(errs, fmt.Sprintf("exactly one provider must have role=secondary, found %d", secondaries))
		}
	}

	return errs
}

// validateRegistrarType ensures the registrar type is one this build ships.
func validateRegistrarType(inst *ProviderInstanceConfig) []string {
	var errs []string
	prefix := envPrefix(inst.Name)

	if inst.RegistrarType == "" {
		return errs
	}

	known := false
	for _, t := range knownRegistrarTypes {
		if inst.RegistrarType == t {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Sprintf("%sREGISTRAR_TYPE: unknown registrar type %q (known types: %s)",
			prefix, inst.RegistrarType, strings.Join(knownRegistrarTypes, ", ")))
	}

	return errs
}
