// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "authgate",
		Short: "authgate is the authorization gate of the enterprise suite",
		Long: `authgate authenticates users of the enterprise suite and authorizes
every request against tenant state, subscription status and role permissions.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory holding main.toml")
}

// loadConfig reads the config and initializes the global logger.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
