package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/mutker/r730fanctl/internal/config"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r730fanctl",
		Short: "Fan curve controller for Dell PowerEdge R730xd",
		Long: "r730fanctl reads the BMC sensors once, sets a fan duty cycle from the configured curve " +
			"or hands control back to the BMC when a temperature ceiling is exceeded, and exits. " +
			"Run it periodically from cron or a systemd timer.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCycle(cmd)
		},
	}

	config.DefineFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSensorsCmd())
	rootCmd.AddCommand(newAutoCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
