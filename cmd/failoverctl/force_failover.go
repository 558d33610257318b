package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var forceFailoverOperator string

var forceFailoverCmd = &cobra.Command{
	Use:   "force-failover",
	Short: "Request an operator-initiated move to FAILING_OVER (still subject to every safety gate)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, err := resolveHealthPort(cmd)
		if err != nil {
			os.Exit(exitGenericError)
		}

		if err := newAdminClient(port).forceFailover(forceFailoverOperator); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(exitCodeFor(err))
		}

		fmt.Println("failover accepted")
		return nil
	},
}

func init() {
	forceFailoverCmd.Flags().StringVar(&forceFailoverOperator, "operator", "", "operator id recorded against the forced transition")
}
