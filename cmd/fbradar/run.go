package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collects every configured player, then renders the season charts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		rep, res, err := svc.Run(cmd.Context())
		if rep != nil {
			printReport(cmd.OutOrStdout(), rep)
		}
		if err != nil {
			return err
		}
		printComparison(cmd.OutOrStdout(), res)
		return nil
	},
}
