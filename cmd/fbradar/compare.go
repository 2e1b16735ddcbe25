package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Renders one radar chart per season from the merged player files.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		res, err := svc.CompareAll(cmd.Context())
		if err != nil {
			return err
		}
		printComparison(cmd.OutOrStdout(), res)
		return nil
	},
}
