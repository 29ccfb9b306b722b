package cmd

import (
	"errors"
	"fmt"

	"finreport/storage"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	downSteps int

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if cfg.DBConnectionString == "" {
				return errors.New("DB_CONNECTION_STRING is required")
			}
			return nil
		},
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.MigrateUp(cfg.DBConnectionString); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.MigrateDown(cfg.DBConnectionString, downSteps); err != nil {
				return err
			}
			log.WithField("steps", downSteps).Info("migrations rolled back")
			return nil
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := storage.MigrationVersion(cfg.DBConnectionString)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty %t\n", version, dirty)
			return nil
		},
	}
)

func init() {
	migrateDownCmd.Flags().IntVarP(&downSteps, "steps", "n", 1, "number of migrations to roll back, 0 for all")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}
