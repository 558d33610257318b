// Package selfhosted implements the registrar driver for zones served by
// a self-managed authoritative server reachable over SSH: the NS RRset
// lives in a zone file edited in place and the server is reloaded with a
// configured command, grounded on the teacher's dnsmasq file/command
// abstraction generalized into pkg/sshutil.
package selfhosted

import (
	"fmt"

	"gitlab.bluewillows.net/root/failoverctl/pkg/sshutil"
)

// Config holds the settings the self-hosted registrar driver needs,
// pulled from a provider's RegistrarConfig map.
type Config struct {
	SSH           sshutil.Config
	ZoneFilePath  string
	ReloadCommand string
}

// Validate checks that all required configuration is present.
func (c Config) Validate() error {
	if err := c.SSH.Validate(); err != nil {
		return fmt.Errorf("selfhosted registrar: %w", err)
	}
	if c.ZoneFilePath == "" {
		return fmt.Errorf("selfhosted registrar: ZONE_FILE_PATH is required")
	}
	if c.ReloadCommand == "" {
		return fmt.Errorf("selfhosted registrar: RELOAD_COMMAND is required")
	}
	return nil
}

// ConfigFromMap builds a Config from the RegistrarConfig map assembled by
// internal/config, translating the SSH_* field names into the shape
// pkg/sshutil.LoadConfigFromMap expects.
func ConfigFromMap(m map[string]string) (Config, error) {
	sshMap := map[string]string{
		"HOST":     m["SSH_HOST"],
		"USER":     m["SSH_USER"],
		"KEY_FILE": m["SSH_KEY_PATH"],
		"PASSWORD": m["SSH_PASSWORD"],
		"PORT":     m["SSH_PORT"],
		"TIMEOUT":  m["SSH_TIMEOUT"],
	}

	sshCfg, err := sshutil.LoadConfigFromMap(sshMap)
	if err != nil {
		return Config{}, fmt.Errorf("selfhosted registrar: %w", err)
	}

	return Config{
		SSH:           *sshCfg,
		ZoneFilePath:  m["ZONE_FILE_PATH"],
		ReloadCommand: m["RELOAD_COMMAND"],
	}, nil
}
