package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
		{"valid", Config{Token: "t", AccountID: "a"}, false},
		{"missing token", Config{AccountID: "a"}, true},
		{"missing account id", Config{Token: "t"}, true},
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

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}

// fakeResolver always reports nameServers for every resolver it's asked.
type fakeResolver struct {
	nameServers []string
}

func (f *fakeResolver) QueryNS(_ context.Context, _, _ string) ([]string, error) {
	return f.nameServers, nil
}

func newTestServer(t *testing.T, nameServers []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successResponse(map[string]interface{}{
			"id":           "domain-1",
			"name":         "example.com",
			"name_servers": nameServers,
		}))
	}))
}

func TestRegistrar_GetNameservers(t *testing.T) {
	server := newTestServer(t, []string{"ns1.cloudflare.com", "ns2.cloudflare.com"})
	defer server.Close()

	r, err := New(Config{Token: "t", AccountID: "a"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.client = NewClient("t", "a", WithAPIEndpoint(server.URL))

	ns, err := r.GetNameservers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("GetNameservers: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("got %d nameservers, want 2", len(ns))
	}
}

func TestRegistrar_VerifyPropagation_Matches(t *testing.T) {
	nameServers := []string{"ns1.cloudflare.com", "ns2.cloudflare.com"}
	server := newTestServer(t, nameServers)
	defer server.Close()

	r, err := New(Config{Token: "t", AccountID: "a"}, WithPropagationChecker(&registrar.PropagationChecker{
		Resolver:  &fakeResolver{nameServers: nameServers},
		Resolvers: []string{"resolver-a", "resolver-b"},
		Interval:  10 * time.Millisecond,
		Timeout:   time.Second,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.client = NewClient("t", "a", WithAPIEndpoint(server.URL))

	ok, err := r.VerifyPropagation(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("VerifyPropagation: %v", err)
	}
	if !ok {
		t.Error("expected propagation verified, got false")
	}
}

func TestRegistrar_VerifyPropagation_TimesOut(t *testing.T) {
	server := newTestServer(t, []string{"ns1.cloudflare.com"})
	defer server.Close()

	r, err := New(Config{Token: "t", AccountID: "a"}, WithPropagationChecker(&registrar.PropagationChecker{
		Resolver:  &fakeResolver{nameServers: []string{"stale-ns.example.com"}},
		Resolvers: []string{"resolver-a"},
		Interval:  5 * time.Millisecond,
		Timeout:   30 * time.Millisecond,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.client = NewClient("t", "a", WithAPIEndpoint(server.URL))

	_, err = r.VerifyPropagation(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
