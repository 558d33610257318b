package rfc2136

import (
	"context"
	"testing"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Server: "ns1.example.com:53", Zone: "example.com."}, false},
		{"missing server", Config{Zone: "example.com."}, true},
		{"missing zone", Config{Server: "ns1.example.com:53"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigFromMap(t *testing.T) {
	m := map[string]string{
		"URL":            "ns1.example.com:53",
		"TSIG_KEY_NAME":  "failoverctl.",
		"TSIG_SECRET":    "c2VjcmV0",
		"TSIG_ALGORITHM": "hmac-sha256",
	}
	cfg := ConfigFromMap(m, "example.com")

	if cfg.Server != "ns1.example.com:53" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Zone != "example.com" {
		t.Errorf("Zone = %q", cfg.Zone)
	}
	if cfg.TSIGKeyName != "failoverctl." {
		t.Errorf("TSIGKeyName = %q", cfg.TSIGKeyName)
	}
}

func TestDNS1FqdnAndTrimDot(t *testing.T) {
	if got := dns1Fqdn("example.com"); got != "example.com." {
		t.Errorf("dns1Fqdn = %q", got)
	}
	if got := dns1Fqdn("example.com."); got != "example.com." {
		t.Errorf("dns1Fqdn (already fqdn) = %q", got)
	}
	if got := trimDot("ns1.example.com."); got != "ns1.example.com" {
		t.Errorf("trimDot = %q", got)
	}
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}

// TestUnreachableServer exercises GetNameservers/UpdateNameservers against
// an address that will never respond (RFC 5737 TEST-NET-1), confirming
// the context deadline is honored rather than hanging.
func TestUnreachableServer(t *testing.T) {
	r, err := New(Config{
		Server: "192.0.2.1:53",
		Zone:   "example.com.",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := r.GetNameservers(ctx, "example.com"); err == nil {
		t.Error("expected error querying unreachable server, got nil")
	}

	if err := r.UpdateNameservers(ctx, "example.com", []string{"ns1.secondary.net"}, "test"); err == nil {
		t.Error("expected error updating against unreachable server, got nil")
	}
}

// fakeResolver always reports nameServers for every resolver it's asked.
type fakeResolver struct {
	nameServers []string
	err         error
}

func (f *fakeResolver) QueryNS(_ context.Context, _, _ string) ([]string, error) {
	return f.nameServers, f.err
}

func TestRegistrar_VerifyPropagation_UsesGetNameserversFailure(t *testing.T) {
	r, err := New(Config{
		Server: "192.0.2.1:53",
		Zone:   "example.com.",
	}, WithPropagationChecker(&registrar.PropagationChecker{
		Resolver:  &fakeResolver{nameServers: []string{"ns1.example.com"}},
		Resolvers: []string{"resolver-a"},
		Interval:  5 * time.Millisecond,
		Timeout:   50 * time.Millisecond,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := r.VerifyPropagation(ctx, "example.com"); err == nil {
		t.Error("expected error since GetNameservers cannot reach the server")
	}
}
