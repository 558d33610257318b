package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/failoverctl/internal/health"
)

var statusOutputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current controller state, provider scores, and recent transitions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, err := resolveHealthPort(cmd)
		if err != nil {
			os.Exit(exitGenericError)
		}

		info, err := newAdminClient(port).status()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(exitCodeFor(err))
		}

		if statusOutputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		printStatus(info)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusOutputJSON, "json", false, "print the full status snapshot as JSON")
}

func printStatus(info health.StatusInfo) {
	fmt.Printf("state:        %s (since %s)\n", info.State, info.EnteredAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Println("scores:")
	for provider, score := range info.Scores {
		fmt.Printf("  %-20s %.1f\n", provider, score)
	}
	fmt.Printf("binding:      %s -> %s %v (propagation verified: %v)\n",
		info.Binding.Domain, info.Binding.ActiveProvider, info.Binding.Nameservers, info.Binding.PropagationVerified)
	fmt.Printf("failovers today: %d\n", info.LedgerCountToday)
	fmt.Println("recent transitions:")
	for _, t := range info.Transitions {
		fmt.Printf("  %s  %s -> %s  (%s)\n", t.Timestamp.Format("2006-01-02T15:04:05Z07:00"), t.From, t.To, t.Reason)
	}
}
