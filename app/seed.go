package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enterprise-suite/authgate/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the database and create the catalog, system roles and bootstrap super admin",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := daemon.Prepare(cmd.Context(), &cfg); err != nil {
			return err
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), "seed complete")

		return err //nolint: wrapcheck
	},
}
