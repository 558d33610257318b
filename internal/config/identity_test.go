package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadIdentityTable(t *testing.T) {
	content := `
[[rule]]
identity = "cloudflare"
patterns = ["*.ns.cloudflare.com"]

[[rule]]
identity = "route53"
patterns = ["*.awsdns-*.com", "*.awsdns-*.org"]
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "identity.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadIdentityTable(path)
	if err != nil {
		t.Fatalf("LoadIdentityTable returned error: %v", err)
	}

	if got := table.Resolve("ns1.ns.cloudflare.com"); got != "cloudflare" {
		t.Errorf("Resolve(cloudflare ns) = %q, want cloudflare", got)
	}
	if got := table.Resolve("ns-1.awsdns-01.com"); got != "route53" {
		t.Errorf("Resolve(route53 ns) = %q, want route53", got)
	}
	if got := table.Resolve("ns.example.net"); got != "unknown" {
		t.Errorf("Resolve(unmatched) = %q, want unknown", got)
	}
}

func TestLoadIdentityTable_NotFound(t *testing.T) {
	_, err := LoadIdentityTable("/nonexistent/identity.toml")
	if err == nil {
		t.Error("expected error for missing identity file")
	}
}
