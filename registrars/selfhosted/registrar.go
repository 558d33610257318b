package selfhosted

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
	"gitlab.bluewillows.net/root/failoverctl/pkg/sshutil"
)

const (
	blockBegin = "; BEGIN FAILOVERCTL MANAGED NS"
	blockEnd   = "; END FAILOVERCTL MANAGED NS"
)

// Registrar implements registrar.Registrar by editing a zone file's
// managed NS block over SFTP and reloading the authoritative server over
// an SSH exec command.
type Registrar struct {
	fs            sshutil.FileSystem
	runner        sshutil.CommandRunner
	zoneFilePath  string
	reloadCommand string
	ttl           int
	propagation   *registrar.PropagationChecker
	logger        *slog.Logger
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTTL overrides the NS record TTL written into the zone file (default 300s).
func WithTTL(ttl int) Option {
	return func(r *Registrar) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPropagationChecker overrides the default public-resolver propagation
// checker, primarily for tests.
func WithPropagationChecker(c *registrar.PropagationChecker) Option {
	return func(r *Registrar) { r.propagation = c }
}

// WithFileSystemAndRunner substitutes the SFTP/SSH backends, used by
// tests to avoid a live SSH server.
func WithFileSystemAndRunner(fs sshutil.FileSystem, runner sshutil.CommandRunner) Option {
	return func(r *Registrar) {
		r.fs = fs
		r.runner = runner
	}
}

// New builds a self-hosted Registrar from cfg, opening an SSH connection
// used for both the SFTP file edits and the reload command.
func New(ctx context.Context, cfg Config, opts ...Option) (*Registrar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registrar{
		zoneFilePath:  cfg.ZoneFilePath,
		reloadCommand: cfg.ReloadCommand,
		ttl:           300,
		propagation:   registrar.NewPropagationChecker(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.fs == nil || r.runner == nil {
		client, err := sshutil.NewClient(&cfg.SSH, sshutil.WithLogger(r.logger))
		if err != nil {
			return nil, fmt.Errorf("selfhosted registrar: building ssh client: %w", err)
		}
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("selfhosted registrar: connecting: %w", err)
		}
		sftpFS := sshutil.NewSFTPFileSystem(client)
		if err := sftpFS.Connect(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("selfhosted registrar: opening sftp session: %w", err)
		}
		r.fs = sftpFS
		r.runner = sshutil.NewSSHCommandRunner(client)
	}

	return r, nil
}

// GetNameservers parses the zone file's managed NS block and returns the
// nameserver hostnames it currently lists.
func (r *Registrar) GetNameservers(_ context.Context, domain string) ([]string, error) {
	content, err := r.fs.ReadFile(r.zoneFilePath)
	if err != nil {
		return nil, registrar.Wrap("selfhosted", domain, "get_nameservers", err)
	}

	return parseManagedBlock(string(content)), nil
}

// UpdateNameservers rewrites the zone file's managed NS block with newNS
// and reloads the authoritative server.
func (r *Registrar) UpdateNameservers(ctx context.Context, domain string, newNS []string, reason string) error {
	r.logger.Info("updating self-hosted zone file NS block",
		slog.String("domain", domain),
		slog.Any("name_servers", newNS),
		slog.String("reason", reason),
	)

	existing, err := r.fs.ReadFile(r.zoneFilePath)
	if err != nil && !os.IsNotExist(err) {
		return registrar.Wrap("selfhosted", domain, "update_nameservers", err)
	}

	updated := replaceManagedBlock(string(existing), r.ttl, newNS)

	if err := r.fs.WriteFile(r.zoneFilePath, []byte(updated), 0644); err != nil {
		return registrar.Wrap("selfhosted", domain, "update_nameservers", err)
	}

	if err := r.runner.Run(ctx, r.reloadCommand); err != nil {
		return registrar.Wrap("selfhosted", domain, "update_nameservers", fmt.Errorf("reload: %w", err))
	}

	return nil
}

// VerifyPropagation polls public resolvers until they observe the zone
// file's currently configured NS set for domain.
func (r *Registrar) VerifyPropagation(ctx context.Context, domain string) (bool, error) {
	expected, err := r.GetNameservers(ctx, domain)
	if err != nil {
		return false, registrar.Wrap("selfhosted", domain, "verify_propagation", err)
	}

	ok, err := r.propagation.Verify(ctx, domain, expected)
	if err != nil {
		return false, registrar.Wrap("selfhosted", domain, "verify_propagation", err)
	}
	return ok, nil
}

// parseManagedBlock extracts nameserver hostnames from the managed NS
// block in content, ignoring everything outside it.
func parseManagedBlock(content string) []string {
	var hosts []string
	inBlock := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == blockBegin:
			inBlock = true
		case line == blockEnd:
			inBlock = false
		case inBlock && line != "":
			fields := strings.Fields(line)
			// Expected shape: "@ <ttl> IN NS <host>"
			if len(fields) >= 5 && strings.EqualFold(fields[3], "NS") {
				hosts = append(hosts, strings.TrimSuffix(fields[4], "."))
			}
		}
	}

	return hosts
}

// replaceManagedBlock returns content with its managed NS block replaced
// by one built from newNS, appending the block if none existed yet.
func replaceManagedBlock(content string, ttl int, newNS []string) string {
	var block strings.Builder
	block.WriteString(blockBegin + "\n")
	for _, ns := range newNS {
		fmt.Fprintf(&block, "@ %d IN NS %s.\n", ttl, strings.TrimSuffix(ns, "."))
	}
	block.WriteString(blockEnd)

	start := strings.Index(content, blockBegin)
	end := strings.Index(content, blockEnd)
	if start == -1 || end == -1 || end < start {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + block.String() + "\n"
	}

	return content[:start] + block.String() + content[end+len(blockEnd):]
}

// Ensure Registrar implements registrar.Registrar at compile time.
var _ registrar.Registrar = (*Registrar)(nil)
