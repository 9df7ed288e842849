package main

import (
	"github.com/spf13/cobra"
)

func newAutoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Hand fan control back to the BMC and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info().Msg("Turning on auto fan control")
			return a.fans.EnableAuto(commandContext(cmd))
		},
	}
}
