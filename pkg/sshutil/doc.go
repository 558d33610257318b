// Package sshutil provides the SSH/SFTP connection the selfhosted registrar
// driver uses to edit a zone file's managed NS block and reload the
// authoritative server.
//
// # Overview
//
// The package provides three main components:
//
//   - [Client]: Manages the SSH connection with keepalive
//   - [SFTPFileSystem]: Implements [FileSystem] over SFTP, used to read/write the zone file
//   - [SSHCommandRunner]: Implements [CommandRunner] over SSH exec, used to run the reload command
//
// # Basic Usage
//
//	// Configure SSH connection
//	config := &sshutil.Config{
//		Host:    "ns1.internal",
//		Port:    22,
//		User:    "failoverctl",
//		KeyFile: "/path/to/key",
//	}
//
//	// Create client
//	client, err := sshutil.NewClient(config)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	// Connect
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//
//	// Use SFTP filesystem to edit the zone file
//	fs := sshutil.NewSFTPFileSystem(client)
//	if err := fs.Connect(ctx); err != nil {
//		return err
//	}
//	defer fs.Close()
//
//	data, err := fs.ReadFile("/etc/bind/zones/example.com.zone")
//
//	// Use command runner to reload the authoritative server
//	runner := sshutil.NewSSHCommandRunner(client)
//	if err := runner.Run(ctx, "rndc reload example.com"); err != nil {
//		return err
//	}
//
// # Configuration from Environment
//
// The package supports loading configuration from environment variables using
// the Docker/Kubernetes secrets pattern (values can be in files via _FILE suffix):
//
//	config, err := sshutil.LoadConfig("FAILOVERCTL_SELFHOSTED_SSH_")
//
// This will look for environment variables like:
//   - FAILOVERCTL_SELFHOSTED_SSH_HOST
//   - FAILOVERCTL_SELFHOSTED_SSH_USER
//   - FAILOVERCTL_SELFHOSTED_SSH_KEY_FILE (or FAILOVERCTL_SELFHOSTED_SSH_KEY_FILE_FILE for secrets)
//
// # Interface Origin
//
// The [FileSystem] and [CommandRunner] interfaces match the shape of the
// dnsmasq SSH-management client this package's predecessor was modeled on,
// so the same fetch/edit/write/reload-command sequence carries over to a
// plain zone file instead of a dnsmasq config file:
//
//	// FileSystem can be used anywhere os file operations are needed
//	type FileSystem interface {
//		ReadFile(path string) ([]byte, error)
//		WriteFile(path string, data []byte, perm os.FileMode) error
//		Stat(path string) (os.FileInfo, error)
//		MkdirAll(path string, perm os.FileMode) error
//	}
//
//	// CommandRunner can be used for reload commands
//	type CommandRunner interface {
//		Run(ctx context.Context, command string) error
//	}
//
// # Security Considerations
//
// The package does not verify host keys: with StrictHostKeyChecking false
// (the default) any host key is accepted, and with it true Connect fails
// because known_hosts loading is not implemented.
//
// SSH key-based authentication is strongly recommended over password authentication.
// When using Docker/Kubernetes secrets, store keys in mounted secret files rather
// than environment variables.
package sshutil
