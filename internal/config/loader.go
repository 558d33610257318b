// Package config handles loading and validation of failoverctl
// configuration.
package config

import (
	"log/slog"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

// loadFromFile loads configuration from a YAML file and converts it to
// runtime types. Returns nil values if no file is configured.
func loadFromFile(path string) (*GlobalConfig, []*ProviderInstanceConfig, []string) {
	if path == "" {
		return nil, nil, nil
	}

	fileCfg, err := LoadFile(path)
	if err != nil {
		return nil, nil, []string{"config file: " + err.Error()}
	}

	slog.Info("loaded configuration from file", slog.String("path", path))

	var errs []string

	global := fileCfg.ToGlobalConfig()

	var providers []*ProviderInstanceConfig
	for _, fp := range fileCfg.Providers {
		p, pErrs := convertFileProvider(fp)
		providers = append(providers, p)
		errs = append(errs, pErrs...)
	}

	return global, providers, errs
}

// convertFileProvider converts a FileProviderConfig to
// ProviderInstanceConfig.
func convertFileProvider(fp FileProviderConfig) (*ProviderInstanceConfig, []string) {
	var errs []string

	cfg := &ProviderInstanceConfig{
		Name:            fp.Name,
		Endpoints:       fp.Endpoints,
		Nameservers:     fp.Nameservers,
		RegistrarType:   strings.ToLower(fp.RegistrarType),
		RegistrarConfig: make(map[string]string),
	}

	if cfg.Name == "" {
		errs = append(errs, "provider: name is required")
	}

	switch strings.ToLower(fp.Role) {
	case "primary":
		cfg.Role = provider.RolePrimary
	case "secondary":
		cfg.Role = provider.RoleSecondary
	default:
		errs = append(errs, "provider "+cfg.Name+": role must be primary or secondary")
	}

	if len(fp.Endpoints) == 0 {
		errs = append(errs, "provider "+cfg.Name+": endpoints is required")
	}
	if len(fp.Nameservers) == 0 {
		errs = append(errs, "provider "+cfg.Name+": nameservers is required")
	}
	if cfg.RegistrarType == "" {
		errs = append(errs, "provider "+cfg.Name+": registrar_type is required")
	}

	for k, v := range fp.Registrar {
		cfg.RegistrarConfig[strings.ToUpper(k)] = v
	}

	return cfg, errs
}

// mergeGlobalConfig merges environment variable overrides into a
// GlobalConfig loaded from file. Environment variables always take
// precedence.
func mergeGlobalConfig(base *GlobalConfig) (*GlobalConfig, []string) {
	if base == nil {
		return loadGlobalConfig()
	}

	var errs []string
	cfg := *base

	if v := getEnv("FAILOVERCTL_DOMAIN"); v != "" {
		cfg.Domain = v
	}
	if cfg.Domain == "" {
		errs = append(errs, "FAILOVERCTL_DOMAIN: required but not set")
	}

	if v := getEnv("FAILOVERCTL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
		switch cfg.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			errs = append(errs, "FAILOVERCTL_LOG_LEVEL: invalid value (must be debug, info, warn, or error)")
		}
	}

	if v := getEnv("FAILOVERCTL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
		switch cfg.LogFormat {
		case "json", "text":
		default:
			errs = append(errs, "FAILOVERCTL_LOG_FORMAT: invalid value (must be json or text)")
		}
	}

	if v := getEnv("FAILOVERCTL_PROFILE"); v != "" {
		cfg.Profile = strings.ToLower(v)
		switch cfg.Profile {
		case "production", "simplified":
		default:
			errs = append(errs, "FAILOVERCTL_PROFILE: invalid value (must be production or simplified)")
		}
	}

	if v := getEnv("FAILOVERCTL_REQUIRE_MANUAL_AUTH"); v != "" {
		cfg.RequireManualAuth = parseBool(v, cfg.RequireManualAuth)
		cfg.RequireManualAuthSet = true
	}

	if v := getEnv("FAILOVERCTL_DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, cfg.DryRun)
	}

	if v := getEnv("FAILOVERCTL_POLL_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil && interval >= time.Second {
			cfg.PollInterval = interval
		} else {
			errs = append(errs, "FAILOVERCTL_POLL_INTERVAL: invalid duration")
		}
	}

	if v := getEnv("FAILOVERCTL_HEALTH_PORT"); v != "" {
		if port, err := parseIntEnv(v); err == nil && port >= 1 && port <= 65535 {
			cfg.HealthPort = port
		} else {
			errs = append(errs, "FAILOVERCTL_HEALTH_PORT: invalid port number")
		}
	}

	if v := getEnv("FAILOVERCTL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := getEnv("FAILOVERCTL_IDENTITY_FILE"); v != "" {
		cfg.IdentityFile = v
	}

	return &cfg, errs
}

// parseIntEnv parses an integer from string.
func parseIntEnv(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	var n int
	neg := false
	for i, c := range s {
		if c == '-' && i == 0 {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, errInvalidInt
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

var errInvalidInt = &ValidationError{Errors: []string{"invalid integer"}}
