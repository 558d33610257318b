package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Grant the single-use manual authorization a profile may require before a failover",
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, err := resolveHealthPort(cmd)
		if err != nil {
			os.Exit(exitGenericError)
		}

		if err := newAdminClient(port).authorize(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(exitCodeFor(err))
		}

		fmt.Println("authorization granted")
		return nil
	},
}
