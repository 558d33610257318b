package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInterpolateEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	os.Setenv("API_TOKEN", "secret123")
	defer os.Unsetenv("TEST_VAR")
	defer os.Unsetenv("API_TOKEN")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple variable", "${TEST_VAR}", "test-value"},
		{"variable in string", "prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"multiple variables", "${TEST_VAR}:${API_TOKEN}", "test-value:secret123"},
		{"unset variable", "${NONEXISTENT_VAR}", ""},
		{"default value", "${NONEXISTENT_VAR:-default}", "default"},
		{"default value not used when set", "${TEST_VAR:-default}", "test-value"},
		{"no variables", "plain string", "plain string"},
		{"empty default", "${NONEXISTENT:-}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InterpolateEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("InterpolateEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	os.Setenv("TEST_TOKEN", "secret-from-env")
	defer os.Unsetenv("TEST_TOKEN")

	configContent := `
logging:
  level: debug
  format: text

controller:
  domain: example.com
  profile: production
  dry_run: true
  poll_interval: 30s
  data_dir: /var/lib/failoverctl

providers:
  - name: cf-primary
    role: primary
    endpoints:
      - ns1.cloudflare.com
    nameservers:
      - ns1.cloudflare.com
    registrar_type: cloudflare
    registrar:
      zone_id: zone123
      token: ${TEST_TOKEN}

server:
  port: 9090
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Logging == nil {
		t.Fatal("logging config is nil")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want %q", cfg.Logging.Level, "debug")
	}

	if cfg.Controller == nil {
		t.Fatal("controller config is nil")
	}
	if cfg.Controller.Domain != "example.com" {
		t.Errorf("controller.domain = %q, want %q", cfg.Controller.Domain, "example.com")
	}
	if cfg.Controller.DryRun == nil || !*cfg.Controller.DryRun {
		t.Error("controller.dry_run should be true")
	}

	if len(cfg.Providers) != 1 {
		t.Fatalf("providers count = %d, want 1", len(cfg.Providers))
	}
	p := cfg.Providers[0]
	if p.Name != "cf-primary" {
		t.Errorf("providers[0].name = %q, want %q", p.Name, "cf-primary")
	}
	if p.RegistrarType != "cloudflare" {
		t.Errorf("providers[0].registrar_type = %q, want %q", p.RegistrarType, "cloudflare")
	}
	if p.Registrar["token"] != "secret-from-env" {
		t.Errorf("providers[0].registrar[token] = %q, want %q", p.Registrar["token"], "secret-from-env")
	}

	if cfg.Server == nil {
		t.Fatal("server config is nil")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
}

func TestToGlobalConfig(t *testing.T) {
	dryRun := true
	manualAuth := true

	fileCfg := &FileConfig{
		Logging: &FileLoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Controller: &FileControllerConfig{
			Domain:            "example.com",
			Profile:           "simplified",
			RequireManualAuth: &manualAuth,
			DryRun:            &dryRun,
			PollInterval:      "5m",
		},
		Server: &FileServerConfig{
			Port: 8081,
		},
	}

	global := fileCfg.ToGlobalConfig()

	if global.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", global.LogLevel, "warn")
	}
	if global.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", global.LogFormat, "json")
	}
	if global.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", global.Domain, "example.com")
	}
	if global.Profile != "simplified" {
		t.Errorf("Profile = %q, want %q", global.Profile, "simplified")
	}
	if !global.DryRun {
		t.Error("DryRun should be true")
	}
	if !global.RequireManualAuth || !global.RequireManualAuthSet {
		t.Error("RequireManualAuth should be true and set")
	}
	if global.PollInterval.String() != "5m0s" {
		t.Errorf("PollInterval = %s, want 5m0s", global.PollInterval)
	}
	if global.HealthPort != 8081 {
		t.Errorf("HealthPort = %d, want %d", global.HealthPort, 8081)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yml")
	if err == nil {
		t.Error("LoadFile should fail for nonexistent file")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yml")
	if err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Error("LoadFile should fail for invalid YAML")
	}
}

func TestGetConfigFilePath(t *testing.T) {
	os.Unsetenv("FAILOVERCTL_CONFIG")
	path := GetConfigFilePath()
	if path != "" {
		t.Errorf("GetConfigFilePath() = %q, want empty string", path)
	}

	os.Setenv("FAILOVERCTL_CONFIG", "/path/to/config.yml")
	defer os.Unsetenv("FAILOVERCTL_CONFIG")
	path = GetConfigFilePath()
	if path != "/path/to/config.yml" {
		t.Errorf("GetConfigFilePath() = %q, want %q", path, "/path/to/config.yml")
	}
}
