package config

import (
	"testing"

	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

func TestValidateRegistrarType(t *testing.T) {
	tests := []struct {
		name          string
		registrarType string
		wantErr       bool
	}{
		{"cloudflare is known", "cloudflare", false},
		{"route53 is known", "route53", false},
		{"rfc2136 is known", "rfc2136", false},
		{"selfhosted is known", "selfhosted", false},
		{"empty is skipped", "", false},
		{"unknown type rejected", "bind9", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inst := &ProviderInstanceConfig{Name: "test", RegistrarType: tc.registrarType}
			errs := validateRegistrarType(inst)

			if tc.wantErr && len(errs) == 0 {
				t.Error("expected validation error, got none")
			}
			if !tc.wantErr && len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidateConfig_DuplicateProviderNames(t *testing.T) {
	cfg := &Config{
		Global: &GlobalConfig{},
		ProviderInstances: []*ProviderInstanceConfig{
			{Name: "dns1", Role: provider.RolePrimary, RegistrarType: "cloudflare"},
			{Name: "dns1", Role: provider.RoleSecondary, RegistrarType: "route53"},
		},
	}

	errs := validateConfig(cfg)

	found := false
	for _, err := range errs {
		if containsSubstring(err, "duplicate") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error about duplicate names, got %v", errs)
	}
}

func TestValidateConfig_RequiresOnePrimaryOneSecondary(t *testing.T) {
	cfg := &Config{
		Global: &GlobalConfig{},
		ProviderInstances: []*ProviderInstanceConfig{
			{Name: "dns1", Role: provider.RolePrimary, RegistrarType: "cloudflare"},
			{Name: "dns2", Role: provider.RolePrimary, RegistrarType: "route53"},
		},
	}

	errs := validateConfig(cfg)

	found := false
	for _, err := range errs {
		if containsSubstring(err, "exactly one provider must have role=secondary") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected missing-secondary error, got %v", errs)
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := &ValidationError{Errors: []string{"single error message"}}
	got := err.Error()
	want := "configuration error: single error message"

	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError_MultipleErrors(t *testing.T) {
	err := &ValidationError{Errors: []string{"error 1", "error 2", "error 3"}}
	got := err.Error()

	if !containsSubstring(got, "error 1") {
		t.Errorf("Error() should contain 'error 1', got %q", got)
	}
	if !containsSubstring(got, "error 2") {
		t.Errorf("Error() should contain 'error 2', got %q", got)
	}
	if !containsSubstring(got, "error 3") {
		t.Errorf("Error() should contain 'error 3', got %q", got)
	}
}
