// Package config handles loading and validation of failoverctl
// configuration from environment variables and optional YAML and TOML
// configuration files.
//
// Configuration follows a fixed set of conventions:
//   - All env vars use the FAILOVERCTL_ prefix
//   - _FILE suffix for Docker secrets (e.g., TOKEN_FILE)
//   - YAML config file via FAILOVERCTL_CONFIG env var
//   - Priority: env vars > config file > defaults
//   - Fail fast on any configuration error
package config

import (
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/failoverctl/internal/matcher"
)

// Config holds the complete application configuration.
type Config struct {
	// Global contains application-wide settings.
	Global *GlobalConfig

	// ProviderNames is the ordered list of instance names from
	// FAILOVERCTL_PROVIDERS. Order determines matching priority.
	ProviderNames []string

	// ProviderInstances contains configuration for each provider. The
	// order matches ProviderNames.
	ProviderInstances []*ProviderInstanceConfig

	// Identity resolves NS hostnames to provider identities, loaded from
	// the identity file, or the built-in default table when none is
	// configured.
	Identity *matcher.IdentityTable

	// ConfigFile is the path to the config file used, if any.
	ConfigFile string
}

// Load reads configuration from environment variables and an optional
// YAML file.
//
// Configuration priority (highest to lowest):
//  1. Environment variables
//  2. Config file values (if FAILOVERCTL_CONFIG is set)
//  3. Default values
//
// Fails fast with clear error messages; does not start with partial
// configuration.
func Load() (*Config, error) {
	var allErrors []string

	configPath := GetConfigFilePath()

	var fileGlobal *GlobalConfig
	var fileProviders []*ProviderInstanceConfig

	if configPath != "" {
		var fileErrs []string
		fileGlobal, fileProviders, fileErrs = loadFromFile(configPath)
		allErrors = append(allErrors, fileErrs...)

		if len(fileErrs) == 0 && fileGlobal != nil {
			slog.Debug("config file loaded, applying environment overrides")
		}
	}

	var global *GlobalConfig
	var globalErrs []string
	if fileGlobal != nil {
		global, globalErrs = mergeGlobalConfig(fileGlobal)
	} else {
		global, globalErrs = loadGlobalConfig()
	}
	allErrors = append(allErrors, globalErrs...)

	var providerNames []string
	var instances []*ProviderInstanceConfig

	envProviderNames := parseInstances()
	if len(envProviderNames) > 0 {
		providerNames = envProviderNames
		for _, name := range providerNames {
			inst, instErrs := loadInstanceConfig(name)
			allErrors = append(allErrors, instErrs...)
			instances = append(instances, inst)
		}
	} else if len(fileProviders) > 0 {
		for _, fp := range fileProviders {
			providerNames = append(providerNames, fp.Name)
			mergeProviderEnvOverrides(fp)
			instances = append(instances, fp)
		}
	} else {
		allErrors = append(allErrors, "no providers configured: set FAILOVERCTL_PROVIDERS or configure providers in config file")
	}

	var identity *matcher.IdentityTable
	if global != nil && global.IdentityFile != "" {
		table, err := LoadIdentityTable(global.IdentityFile)
		if err != nil {
			allErrors = append(allErrors, fmt.Sprintf("identity file %q: %s", global.IdentityFile, err.Error()))
		} else {
			identity = table
		}
	} else if table, err := matcher.NewIdentityTable(matcher.DefaultIdentityRules()); err == nil {
		identity = table
	}

	cfg := &Config{
		Global:            global,
		ProviderNames:     providerNames,
		ProviderInstances: instances,
		Identity:          identity,
		ConfigFile:        configPath,
	}

	allErrors = append(allErrors, validateConfig(cfg)...)

	if len(allErrors) > 0 {
		return nil, &ValidationError{Errors: allErrors}
	}

	return cfg, nil
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string { return c.Global.LogLevel }

// LogFormat returns the configured log format.
func (c *Config) LogFormat() string { return c.Global.LogFormat }

// DryRun returns whether dry-run mode is enabled.
func (c *Config) DryRun() bool { return c.Global.DryRun }

// Domain returns the monitored zone.
func (c *Config) Domain() string { return c.Global.Domain }

// Profile returns the configured threshold/timer profile name.
func (c *Config) Profile() string { return c.Global.Profile }

// HealthPort returns the health server port.
func (c *Config) HealthPort() int { return c.Global.HealthPort }

// GetProviderInstance returns the configuration for a specific provider
// instance.
func (c *Config) GetProviderInstance(name string) (*ProviderInstanceConfig, bool) {
	for _, inst := range c.ProviderInstances {
		if inst.Name == name {
			return inst, true
		}
	}
	return nil, false
}

// String returns a summary of the configuration (without secrets).
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Domain=%s, LogLevel=%s, Profile=%s, DryRun=%v, Providers=%v}",
		c.Global.Domain,
		c.Global.LogLevel,
		c.Global.Profile,
		c.Global.DryRun,
		c.ProviderNames,
	)
}
