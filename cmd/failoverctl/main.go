// failoverctl is the multi-provider authoritative-DNS failover controller.
// It continuously scores each configured provider's health, drives a
// guarded state machine that decides when to move the zone's delegation
// from one provider to another, and executes that move through the
// configured registrar driver.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-01-03"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitGenericError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "failoverctl",
	Short: "Multi-provider authoritative-DNS failover controller",
	Long: `failoverctl scores the health of two or more DNS providers serving
the same zone, drives a guarded state machine, and moves the zone's
authoritative nameservers between providers when a provider has failed
badly enough to justify it.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("failoverctl version %s (built %s)\n", Version, BuildDate))

	rootCmd.PersistentFlags().String("config", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().Int("health-port", 0, "admin/health port of a running failoverctl serve process (defaults to FAILOVERCTL_HEALTH_PORT or 8080)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(forceFailoverCmd)
	rootCmd.AddCommand(authorizeCmd)
}

// resolveHealthPort returns the --health-port flag if set, otherwise falls
// back to loading the full configuration to read FAILOVERCTL_HEALTH_PORT
// (or its default), since the admin client and the daemon must agree on
// which port the admin API is reachable on.
func resolveHealthPort(cmd *cobra.Command) (int, error) {
	port, err := cmd.Flags().GetInt("health-port")
	if err != nil {
		return 0, err
	}
	if port != 0 {
		return port, nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, err
	}
	return cfg.HealthPort(), nil
}
