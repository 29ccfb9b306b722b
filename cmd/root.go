// Package cmd holds the finreport command line.
package cmd

import (
	"finreport/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "finreport",
		Short: "Category-aware financial operations reports.",
		Long: `finreport serves paginated reports of a user's income and consumption
operations, filtered by category subtree and date window.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
