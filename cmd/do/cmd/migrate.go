package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/sneakerbase/internal/config"
	"github.com/templui/sneakerbase/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					err := db.RunMigrations(database.DB, driver)
					if err != nil {
						return err
					}
					return printVersion(cmd, database, driver)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					err := db.MigrateDown(database.DB, driver)
					if err != nil {
						return err
					}
					return printVersion(cmd, database, driver)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					return printVersion(cmd, database, driver)
				})
			},
		},
	)

	return cmd
}

func withDB(fn func(database *sqlx.DB, driver string) error) error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	return fn(database, cfg.DBDriver)
}

func printVersion(cmd *cobra.Command, database *sqlx.DB, driver string) error {
	version, err := db.Version(database.DB, driver)
	if err != nil {
		return err
	}
	cmd.Printf("schema version: %d\n", version)
	return nil
}
