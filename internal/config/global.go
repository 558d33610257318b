package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Global configuration defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultDryRun      = false
	DefaultPollInterval = 30 * time.Second
	DefaultHealthPort  = 8080
	DefaultProfile     = "production"
	DefaultDataDir     = "/var/lib/failoverctl"
)

// GlobalConfig holds application-wide settings, parsed from
// FAILOVERCTL_* environment variables.
type GlobalConfig struct {
	// Logging configuration
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Domain is the authoritative zone the controller monitors and fails
	// over.
	Domain string

	// Profile selects the threshold/timer set: "production" or
	// "simplified".
	Profile string

	// RequireManualAuth overrides the chosen profile's manual
	// authorization gate, if set explicitly.
	RequireManualAuth    bool
	RequireManualAuthSet bool

	// Behavior
	DryRun       bool          // If true, evaluate transitions but never call the registrar
	PollInterval time.Duration // How often the monitor probes every provider endpoint
	HealthPort   int           // Port for health/metrics endpoints

	// DataDir is the directory the bbolt database and any on-disk state
	// live in.
	DataDir string

	// IdentityFile is the path to the TOML provider-identity pattern
	// table. Empty selects the built-in matcher.DefaultIdentityRules table.
	IdentityFile string
}

// loadGlobalConfig loads global configuration from environment variables.
// Returns a list of validation errors (may be empty).
func loadGlobalConfig() (*GlobalConfig, []string) {
	var errs []string

	cfg := &GlobalConfig{
		LogLevel:     getEnv("FAILOVERCTL_LOG_LEVEL"),
		LogFormat:    getEnv("FAILOVERCTL_LOG_FORMAT"),
		Domain:       getEnv("FAILOVERCTL_DOMAIN"),
		Profile:      getEnv("FAILOVERCTL_PROFILE"),
		DataDir:      getEnv("FAILOVERCTL_DATA_DIR"),
		IdentityFile: getEnv("FAILOVERCTL_IDENTITY_FILE"),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	if cfg.Domain == "" {
		errs = append(errs, "FAILOVERCTL_DOMAIN: required but not set")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("FAILOVERCTL_LOG_LEVEL: invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel))
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("FAILOVERCTL_LOG_FORMAT: invalid value %q (must be json or text)", cfg.LogFormat))
	}

	cfg.Profile = strings.ToLower(cfg.Profile)
	switch cfg.Profile {
	case "production", "simplified":
	default:
		errs = append(errs, fmt.Sprintf("FAILOVERCTL_PROFILE: invalid value %q (must be production or simplified)", cfg.Profile))
	}

	if v := getEnv("FAILOVERCTL_DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, DefaultDryRun)
	} else {
		cfg.DryRun = DefaultDryRun
	}

	if v := getEnv("FAILOVERCTL_REQUIRE_MANUAL_AUTH"); v != "" {
		cfg.RequireManualAuth = parseBool(v, false)
		cfg.RequireManualAuthSet = true
	}

	if v := getEnv("FAILOVERCTL_POLL_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("FAILOVERCTL_POLL_INTERVAL: invalid duration %q (use format like 30s, 1m)", v))
		} else if interval < time.Second {
			errs = append(errs, "FAILOVERCTL_POLL_INTERVAL: must be at least 1s")
		} else {
			cfg.PollInterval = interval
		}
	} else {
		cfg.PollInterval = DefaultPollInterval
	}

	if v := getEnv("FAILOVERCTL_HEALTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("FAILOVERCTL_HEALTH_PORT: invalid integer %q", v))
		} else if port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("FAILOVERCTL_HEALTH_PORT: must be between 1 and 65535, got %d", port))
		} else {
			cfg.HealthPort = port
		}
	} else {
		cfg.HealthPort = DefaultHealthPort
	}

	return cfg, errs
}
