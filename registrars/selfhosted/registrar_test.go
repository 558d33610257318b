package selfhosted

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
	"gitlab.bluewillows.net/root/failoverctl/pkg/sshutil"
)

// mockFileSystem implements sshutil.FileSystem for testing.
type mockFileSystem struct {
	files map[string][]byte
}

func newMockFileSystem() *mockFileSystem {
	return &mockFileSystem{files: make(map[string][]byte)}
}

func (m *mockFileSystem) ReadFile(path string) ([]byte, error) {
	if content, ok := m.files[path]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	m.files[path] = data
	return nil
}

type mockFileInfo struct{ name string }

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return 0 }
func (m mockFileInfo) Mode() fs.FileMode  { return 0644 }
func (m mockFileInfo) ModTime() time.Time { return time.Now() }
func (m mockFileInfo) IsDir() bool        { return false }
func (m mockFileInfo) Sys() interface{}   { return nil }

func (m *mockFileSystem) Stat(path string) (os.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return mockFileInfo{name: path}, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) MkdirAll(string, os.FileMode) error { return nil }

// mockCommandRunner records every command it's asked to run.
type mockCommandRunner struct {
	commands []string
	err      error
}

func (m *mockCommandRunner) Run(_ context.Context, command string) error {
	m.commands = append(m.commands, command)
	return m.err
}

func newTestRegistrar(fs *mockFileSystem, runner *mockCommandRunner, opts ...Option) *Registrar {
	opts = append([]Option{WithFileSystemAndRunner(fs, runner)}, opts...)
	r, _ := New(context.Background(), Config{
		SSH:           minimalSSHConfig(),
		ZoneFilePath:  "/etc/bind/zones/example.com.zone",
		ReloadCommand: "rndc reload example.com",
	}, opts...)
	return r
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{SSH: minimalSSHConfig(), ZoneFilePath: "/z", ReloadCommand: "reload"}, false},
		{"missing zone file", Config{SSH: minimalSSHConfig(), ReloadCommand: "reload"}, true},
		{"missing reload command", Config{SSH: minimalSSHConfig(), ZoneFilePath: "/z"}, true},
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

func TestParseManagedBlock(t *testing.T) {
	content := `$TTL 300
@ IN SOA ns1.example.com. admin.example.com. 1 7200 3600 1209600 300

; BEGIN FAILOVERCTL MANAGED NS
@ 300 IN NS ns1.primary.com.
@ 300 IN NS ns2.primary.com.
; END FAILOVERCTL MANAGED NS

www IN A 203.0.113.10
`
	hosts := parseManagedBlock(content)
	if len(hosts) != 2 || hosts[0] != "ns1.primary.com" || hosts[1] != "ns2.primary.com" {
		t.Errorf("parseManagedBlock = %v", hosts)
	}
}

func TestReplaceManagedBlock_ExistingBlock(t *testing.T) {
	content := `$TTL 300
; BEGIN FAILOVERCTL MANAGED NS
@ 300 IN NS ns1.primary.com.
; END FAILOVERCTL MANAGED NS
www IN A 203.0.113.10
`
	updated := replaceManagedBlock(content, 300, []string{"ns1.secondary.net", "ns2.secondary.net"})

	hosts := parseManagedBlock(updated)
	if len(hosts) != 2 || hosts[0] != "ns1.secondary.net" {
		t.Errorf("hosts after replace = %v", hosts)
	}
	if !contains(updated, "www IN A 203.0.113.10") {
		t.Error("replaceManagedBlock should preserve content outside the managed block")
	}
}

func TestReplaceManagedBlock_NoExistingBlock(t *testing.T) {
	updated := replaceManagedBlock("$TTL 300\n", 300, []string{"ns1.primary.com"})

	hosts := parseManagedBlock(updated)
	if len(hosts) != 1 || hosts[0] != "ns1.primary.com" {
		t.Errorf("hosts after initial write = %v", hosts)
	}
}

func TestRegistrar_GetNameservers(t *testing.T) {
	fs := newMockFileSystem()
	fs.files["/etc/bind/zones/example.com.zone"] = []byte(
		"; BEGIN FAILOVERCTL MANAGED NS\n@ 300 IN NS ns1.primary.com.\n; END FAILOVERCTL MANAGED NS\n",
	)
	runner := &mockCommandRunner{}

	r := newTestRegistrar(fs, runner)
	if r == nil {
		t.Fatal("New returned nil registrar")
	}

	ns, err := r.GetNameservers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("GetNameservers: %v", err)
	}
	if len(ns) != 1 || ns[0] != "ns1.primary.com" {
		t.Errorf("GetNameservers = %v", ns)
	}
}

func TestRegistrar_UpdateNameservers(t *testing.T) {
	fs := newMockFileSystem()
	runner := &mockCommandRunner{}

	r := newTestRegistrar(fs, runner)
	err := r.UpdateNameservers(context.Background(), "example.com", []string{"ns1.secondary.net"}, "failover")
	if err != nil {
		t.Fatalf("UpdateNameservers: %v", err)
	}

	if len(runner.commands) != 1 || runner.commands[0] != "rndc reload example.com" {
		t.Errorf("reload commands = %v", runner.commands)
	}

	ns, err := r.GetNameservers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("GetNameservers after update: %v", err)
	}
	if len(ns) != 1 || ns[0] != "ns1.secondary.net" {
		t.Errorf("GetNameservers after update = %v", ns)
	}
}

func TestRegistrar_UpdateNameservers_ReloadFails(t *testing.T) {
	fs := newMockFileSystem()
	runner := &mockCommandRunner{err: errReloadFailed}

	r := newTestRegistrar(fs, runner)
	err := r.UpdateNameservers(context.Background(), "example.com", []string{"ns1.secondary.net"}, "failover")
	if err == nil {
		t.Fatal("expected error when reload command fails")
	}
}

func TestRegistrar_VerifyPropagation(t *testing.T) {
	fs := newMockFileSystem()
	fs.files["/etc/bind/zones/example.com.zone"] = []byte(
		"; BEGIN FAILOVERCTL MANAGED NS\n@ 300 IN NS ns1.primary.com.\n; END FAILOVERCTL MANAGED NS\n",
	)
	runner := &mockCommandRunner{}

	r := newTestRegistrar(fs, runner, WithPropagationChecker(&registrar.PropagationChecker{
		Resolver:  &fakeResolver{nameServers: []string{"ns1.primary.com"}},
		Resolvers: []string{"resolver-a"},
		Interval:  5 * time.Millisecond,
		Timeout:   time.Second,
	}))

	ok, err := r.VerifyPropagation(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("VerifyPropagation: %v", err)
	}
	if !ok {
		t.Error("expected propagation verified, got false")
	}
}

// fakeResolver always reports nameServers for every resolver it's asked.
type fakeResolver struct {
	nameServers []string
}

func (f *fakeResolver) QueryNS(_ context.Context, _, _ string) ([]string, error) {
	return f.nameServers, nil
}

func minimalSSHConfig() sshutil.Config {
	return sshutil.Config{Host: "bastion.example.net", User: "deploy", Password: "hunter2"}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}

var errReloadFailed = &reloadError{"reload command exited non-zero"}

type reloadError struct{ msg string }

func (e *reloadError) Error() string { return e.msg }
