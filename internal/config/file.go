// Package config handles loading and validation of failoverctl
// configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the YAML configuration file structure. It mirrors
// the runtime Config but uses YAML-friendly types.
type FileConfig struct {
	Logging    *FileLoggingConfig   `yaml:"logging,omitempty"`
	Controller *FileControllerConfig `yaml:"controller,omitempty"`
	Server     *FileServerConfig    `yaml:"server,omitempty"`
	Providers  []FileProviderConfig `yaml:"providers,omitempty"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// FileControllerConfig holds failover controller settings.
type FileControllerConfig struct {
	Domain            string `yaml:"domain"`
	Profile           string `yaml:"profile,omitempty"`           // production, simplified
	RequireManualAuth *bool  `yaml:"require_manual_auth,omitempty"`
	DryRun            *bool  `yaml:"dry_run,omitempty"`
	PollInterval      string `yaml:"poll_interval,omitempty"` // Go duration format
	DataDir           string `yaml:"data_dir,omitempty"`
	IdentityFile      string `yaml:"identity_file,omitempty"`
}

// FileServerConfig holds health/metrics server settings.
type FileServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// FileProviderConfig holds configuration for an authoritative-DNS
// provider instance.
type FileProviderConfig struct {
	Name          string            `yaml:"name"`
	Role          string            `yaml:"role"` // primary, secondary
	Endpoints     []string          `yaml:"endpoints"`
	Nameservers   []string          `yaml:"nameservers"`
	RegistrarType string            `yaml:"registrar_type"`
	Registrar     map[string]string `yaml:"registrar,omitempty"`
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable
// values. Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars recursively interpolates environment variables in
// all string fields of the config structure.
func (c *FileConfig) interpolateEnvVars() {
	if c.Logging != nil {
		c.Logging.Level = InterpolateEnvVars(c.Logging.Level)
		c.Logging.Format = InterpolateEnvVars(c.Logging.Format)
	}

	if c.Controller != nil {
		c.Controller.Domain = InterpolateEnvVars(c.Controller.Domain)
		c.Controller.Profile = InterpolateEnvVars(c.Controller.Profile)
		c.Controller.PollInterval = InterpolateEnvVars(c.Controller.PollInterval)
		c.Controller.DataDir = InterpolateEnvVars(c.Controller.DataDir)
		c.Controller.IdentityFile = InterpolateEnvVars(c.Controller.IdentityFile)
	}

	for i := range c.Providers {
		p := &c.Providers[i]
		p.Name = InterpolateEnvVars(p.Name)
		p.Role = InterpolateEnvVars(p.Role)
		p.RegistrarType = InterpolateEnvVars(p.RegistrarType)
		for j := range p.Endpoints {
			p.Endpoints[j] = InterpolateEnvVars(p.Endpoints[j])
		}
		for j := range p.Nameservers {
			p.Nameservers[j] = InterpolateEnvVars(p.Nameservers[j])
		}
		for k, v := range p.Registrar {
			p.Registrar[k] = InterpolateEnvVars(v)
		}
	}
}

// LoadFile reads and parses a YAML configuration file. Environment
// variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}

// ToGlobalConfig converts file config to GlobalConfig, applying defaults.
// Values from the file take precedence over defaults; env vars override
// later.
func (c *FileConfig) ToGlobalConfig() *GlobalConfig {
	cfg := &GlobalConfig{
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		Profile:      DefaultProfile,
		DryRun:       DefaultDryRun,
		PollInterval: DefaultPollInterval,
		HealthPort:   DefaultHealthPort,
		DataDir:      DefaultDataDir,
	}

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}

	if c.Controller != nil {
		if c.Controller.Domain != "" {
			cfg.Domain = c.Controller.Domain
		}
		if c.Controller.Profile != "" {
			cfg.Profile = strings.ToLower(c.Controller.Profile)
		}
		if c.Controller.RequireManualAuth != nil {
			cfg.RequireManualAuth = *c.Controller.RequireManualAuth
			cfg.RequireManualAuthSet = true
		}
		if c.Controller.DryRun != nil {
			cfg.DryRun = *c.Controller.DryRun
		}
		if c.Controller.PollInterval != "" {
			if interval, err := time.ParseDuration(c.Controller.PollInterval); err == nil && interval >= time.Second {
				cfg.PollInterval = interval
			}
		}
		if c.Controller.DataDir != "" {
			cfg.DataDir = c.Controller.DataDir
		}
		if c.Controller.IdentityFile != "" {
			cfg.IdentityFile = c.Controller.IdentityFile
		}
	}

	if c.Server != nil {
		if c.Server.Port > 0 && c.Server.Port <= 65535 {
			cfg.HealthPort = c.Server.Port
		}
	}

	return cfg
}

// GetConfigFilePath returns the config file path from the environment.
// Returns empty string if no config file is specified.
func GetConfigFilePath() string {
	return os.Getenv("FAILOVERCTL_CONFIG")
}
