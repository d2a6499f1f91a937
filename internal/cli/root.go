// Package cli holds the marketplace command tree.
package cli

import (
	"github.com/spf13/cobra"

	"marketplace-service/internal/config"
	"marketplace-service/internal/logging"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "marketplace",
	Short:         "Marketplace listing service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads dotenv files, then the environment. A missing dotenv
// file is not an error.
func loadConfig() (config.Config, *logging.Logger, error) {
	dotenvErr := config.LoadDotEnv(envFiles...)

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	if dotenvErr != nil {
		logger.Debugw("dotenv not loaded", "files", envFiles, "error", dotenvErr)
	}
	return cfg, logger, nil
}

// newLogger picks the console logger for LOG_DEV, JSON otherwise.
func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	if cfg.Dev {
		return logging.NewDevelopmentLogger()
	}
	return logging.NewProductionLogger(cfg.Level)
}
