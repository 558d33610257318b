package config

import (
	"os"
	"testing"
	"time"
)

// clearGlobalEnv removes all FAILOVERCTL_ global environment variables.
func clearGlobalEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"FAILOVERCTL_LOG_LEVEL",
		"FAILOVERCTL_LOG_FORMAT",
		"FAILOVERCTL_DOMAIN",
		"FAILOVERCTL_PROFILE",
		"FAILOVERCTL_REQUIRE_MANUAL_AUTH",
		"FAILOVERCTL_DRY_RUN",
		"FAILOVERCTL_POLL_INTERVAL",
		"FAILOVERCTL_HEALTH_PORT",
		"FAILOVERCTL_DATA_DIR",
		"FAILOVERCTL_IDENTITY_FILE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoadGlobalConfig_Defaults(t *testing.T) {
	clearGlobalEnv(t)
	defer clearGlobalEnv(t)
	os.Setenv("FAILOVERCTL_DOMAIN", "example.com")

	cfg, errs := loadGlobalConfig()
	if len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
	if cfg.DryRun != DefaultDryRun {
		t.Errorf("DryRun = %v, want %v", cfg.DryRun, DefaultDryRun)
	}
	if cfg.Profile != DefaultProfile {
		t.Errorf("Profile = %q, want %q", cfg.Profile, DefaultProfile)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.HealthPort != DefaultHealthPort {
		t.Errorf("HealthPort = %d, want %d", cfg.HealthPort, DefaultHealthPort)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, DefaultDataDir)
	}
}

func TestLoadGlobalConfig_MissingDomain(t *testing.T) {
	clearGlobalEnv(t)
	defer clearGlobalEnv(t)

	_, errs := loadGlobalConfig()
	if len(errs) == 0 {
		t.Fatal("expected error for missing domain, got none")
	}
	if !contains(errs[0], "DOMAIN") {
		t.Errorf("expected DOMAIN error, got %v", errs)
	}
}

func TestLoadGlobalConfig_CustomValues(t *testing.T) {
	clearGlobalEnv(t)
	defer clearGlobalEnv(t)

	os.Setenv("FAILOVERCTL_DOMAIN", "example.com")
	os.Setenv("FAILOVERCTL_LOG_LEVEL", "debug")
	os.Setenv("FAILOVERCTL_LOG_FORMAT", "text")
	os.Setenv("FAILOVERCTL_PROFILE", "simplified")
	os.Setenv("FAILOVERCTL_DRY_RUN", "true")
	os.Setenv("FAILOVERCTL_POLL_INTERVAL", "5m")
	os.Setenv("FAILOVERCTL_HEALTH_PORT", "9090")

	cfg, errs := loadGlobalConfig()
	if len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if cfg.Profile != "simplified" {
		t.Errorf("Profile = %q, want simplified", cfg.Profile)
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true")
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, 5*time.Minute)
	}
	if cfg.HealthPort != 9090 {
		t.Errorf("HealthPort = %d, want 9090", cfg.HealthPort)
	}
}

func TestLoadGlobalConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		value    string
		errMatch string
	}{
		{"invalid log level", "FAILOVERCTL_LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"invalid log format", "FAILOVERCTL_LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"invalid profile", "FAILOVERCTL_PROFILE", "custom", "PROFILE"},
		{"invalid poll interval", "FAILOVERCTL_POLL_INTERVAL", "not-a-duration", "POLL_INTERVAL"},
		{"poll interval too short", "FAILOVERCTL_POLL_INTERVAL", "500ms", "POLL_INTERVAL"},
		{"invalid health port", "FAILOVERCTL_HEALTH_PORT", "abc", "HEALTH_PORT"},
		{"health port out of range", "FAILOVERCTL_HEALTH_PORT", "70000", "HEALTH_PORT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearGlobalEnv(t)
			defer clearGlobalEnv(t)

			os.Setenv("FAILOVERCTL_DOMAIN", "example.com")
			os.Setenv(tc.envVar, tc.value)

			_, errs := loadGlobalConfig()
			if len(errs) == 0 {
				t.Error("expected validation error, got none")
				return
			}

			found := false
			for _, err := range errs {
				if contains(err, tc.errMatch) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error containing %q, got %v", tc.errMatch, errs)
			}
		})
	}
}

func TestLoadGlobalConfig_CaseInsensitive(t *testing.T) {
	clearGlobalEnv(t)
	defer clearGlobalEnv(t)

	os.Setenv("FAILOVERCTL_DOMAIN", "example.com")
	os.Setenv("FAILOVERCTL_LOG_LEVEL", "DEBUG")
	os.Setenv("FAILOVERCTL_LOG_FORMAT", "JSON")
	os.Setenv("FAILOVERCTL_PROFILE", "SIMPLIFIED")

	cfg, errs := loadGlobalConfig()
	if len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (lowercased)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json (lowercased)", cfg.LogFormat)
	}
	if cfg.Profile != "simplified" {
		t.Errorf("Profile = %q, want simplified (lowercased)", cfg.Profile)
	}
}

// contains checks if s contains substr.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstring(s, substr)))
}

func containsSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
