package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/logger"
)

func init() {
	rootCmd.AddCommand(betweenCmd)
}

var betweenCmd = &cobra.Command{
	Use:     "between PLAYER:SEASON PLAYER:SEASON",
	Short:   "Renders one radar chart comparing two player seasons.",
	Example: "  fbradar between Vitinha:2022-2023 Verratti:2021-2022",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := model.ParsePlayerSeason(args[0])
		if err != nil {
			return err
		}
		b, err := model.ParsePlayerSeason(args[1])
		if err != nil {
			return err
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		res, err := svc.CompareBetween(cmd.Context(), a, b)
		if errors.Is(err, model.ErrNoComparisonData) {
			logger.Get().Warn(cmd.Context(), "no data for comparison",
				logger.String("first", a.String()),
				logger.String("second", b.String()),
				logger.Error(err))
			return nil
		}
		if err != nil {
			return err
		}
		printComparison(cmd.OutOrStdout(), res)
		return nil
	},
}
