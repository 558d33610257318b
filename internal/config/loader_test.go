package config

import (
	"testing"

	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

func TestConvertFileProvider(t *testing.T) {
	tests := []struct {
		name          string
		input         FileProviderConfig
		wantName      string
		wantRole      provider.Role
		wantRegistrar string
		wantErrCnt    int
	}{
		{
			name: "valid minimal config",
			input: FileProviderConfig{
				Name:          "cf-primary",
				Role:          "primary",
				Endpoints:     []string{"ns1.cloudflare.com"},
				Nameservers:   []string{"ns1.cloudflare.com"},
				RegistrarType: "cloudflare",
			},
			wantName:      "cf-primary",
			wantRole:      provider.RolePrimary,
			wantRegistrar: "cloudflare",
			wantErrCnt:    0,
		},
		{
			name: "missing name",
			input: FileProviderConfig{
				Role:          "primary",
				Endpoints:     []string{"ns1.cloudflare.com"},
				Nameservers:   []string{"ns1.cloudflare.com"},
				RegistrarType: "cloudflare",
			},
			wantErrCnt: 1,
		},
		{
			name: "missing role",
			input: FileProviderConfig{
				Name:          "test",
				Endpoints:     []string{"ns1.cloudflare.com"},
				Nameservers:   []string{"ns1.cloudflare.com"},
				RegistrarType: "cloudflare",
			},
			wantErrCnt: 1,
		},
		{
			name: "missing endpoints",
			input: FileProviderConfig{
				Name:          "test",
				Role:          "primary",
				Nameservers:   []string{"ns1.cloudflare.com"},
				RegistrarType: "cloudflare",
			},
			wantErrCnt: 1,
		},
		{
			name: "missing nameservers",
			input: FileProviderConfig{
				Name:          "test",
				Role:          "primary",
				Endpoints:     []string{"ns1.cloudflare.com"},
				RegistrarType: "cloudflare",
			},
			wantErrCnt: 1,
		},
		{
			name: "missing registrar type",
			input: FileProviderConfig{
				Name:        "test",
				Role:        "primary",
				Endpoints:   []string{"ns1.cloudflare.com"},
				Nameservers: []string{"ns1.cloudflare.com"},
			},
			wantErrCnt: 1,
		},
		{
			name: "registrar config normalization",
			input: FileProviderConfig{
				Name:          "test",
				Role:          "secondary",
				Endpoints:     []string{"ns-1.awsdns-01.com"},
				Nameservers:   []string{"ns-1.awsdns-01.com"},
				RegistrarType: "route53",
				Registrar: map[string]string{
					"region":         "us-east-1",
					"hosted_zone_id": "Z123",
				},
			},
			wantName:      "test",
			wantRole:      provider.RoleSecondary,
			wantRegistrar: "route53",
			wantErrCnt:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, errs := convertFileProvider(tt.input)

			if len(errs) != tt.wantErrCnt {
				t.Errorf("error count = %d, want %d; errors: %v", len(errs), tt.wantErrCnt, errs)
			}

			if tt.wantErrCnt == 0 {
				if cfg.Name != tt.wantName {
					t.Errorf("Name = %q, want %q", cfg.Name, tt.wantName)
				}
				if cfg.Role != tt.wantRole {
					t.Errorf("Role = %q, want %q", cfg.Role, tt.wantRole)
				}
				if cfg.RegistrarType != tt.wantRegistrar {
					t.Errorf("RegistrarType = %q, want %q", cfg.RegistrarType, tt.wantRegistrar)
				}
			}
		})
	}
}

func TestConvertFileProvider_RegistrarConfigUppercased(t *testing.T) {
	cfg, errs := convertFileProvider(FileProviderConfig{
		Name:          "cf-primary",
		Role:          "primary",
		Endpoints:     []string{"ns1.cloudflare.com"},
		Nameservers:   []string{"ns1.cloudflare.com"},
		RegistrarType: "cloudflare",
		Registrar: map[string]string{
			"zone_id": "zone123",
			"token":   "secret",
		},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if cfg.RegistrarConfig["ZONE_ID"] != "zone123" {
		t.Errorf("ZONE_ID = %q, want %q", cfg.RegistrarConfig["ZONE_ID"], "zone123")
	}
	if cfg.RegistrarConfig["TOKEN"] != "secret" {
		t.Errorf("TOKEN = %q, want %q", cfg.RegistrarConfig["TOKEN"], "secret")
	}
}
