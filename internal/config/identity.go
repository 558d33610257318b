package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"gitlab.bluewillows.net/root/failoverctl/internal/matcher"
)

// identityFile is the on-disk TOML shape for the provider-identity
// pattern table, e.g.:
//
//	[[rule]]
//	identity = "cloudflare"
//	patterns = ["*.ns.cloudflare.com"]
type identityFile struct {
	Rule []matcher.IdentityRule `toml:"rule"`
}

// LoadIdentityTable reads and compiles the TOML identity pattern table at
// path.
func LoadIdentityTable(path string) (*matcher.IdentityTable, error) {
	var parsed identityFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, fmt.Errorf("decoding identity file: %w", err)
	}

	table, err := matcher.NewIdentityTable(parsed.Rule)
	if err != nil {
		return nil, fmt.Errorf("compiling identity rules: %w", err)
	}

	return table, nil
}
