package main

import (
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/fbradar/internal/app"
	"github.com/okian/fbradar/internal/config"
	"github.com/okian/fbradar/pkg/logger"
)

var (
	configPath string
	logLevel   string
	logJSON    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "fbradar",
	Short:         "fbradar scrapes player stats and renders season radar charts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv(config.EnvConfigFile)
		}
		loaded, err := config.LoadFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			loaded.LogJSON = logJSON
		}

		if err := logger.Init(logger.WithWriter(cmd.OutOrStdout()), logger.WithJSON(loaded.LogJSON)); err != nil {
			return err
		}
		if err := logger.SetLevelString(loaded.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", loaded.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (default $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON log lines")
}

func newService() (*service.Service, error) {
	return service.New(cfg, service.WithLogger(logger.Get()))
}
