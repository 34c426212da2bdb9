package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/bizdesk/internal/db"
)

var errNoSQLMigrations = errors.New("database.migrations must point to a SQL directory and database.driver must be postgres")

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(a.migrateUpCmd())
	cmd.AddCommand(a.migrateDownCmd())
	cmd.AddCommand(a.migrateVersionCmd())
	return cmd
}

func (a *app) sqlMigrations() bool {
	return a.cfg.Database.Migrations != "" && a.cfg.Database.Driver == "postgres"
}

func (a *app) migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long:  `Apply the SQL migrations in database.migrations, or AutoMigrate the models when no directory is configured.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.dbOptions()
			gdb, err := db.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb, opts); err != nil {
				return err
			}
			a.log.Info("migrations applied", zap.Bool("sql", a.sqlMigrations()))
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func (a *app) migrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sqlMigrations() {
				return errNoSQLMigrations
			}
			if err := db.RollbackSQLMigrations(a.cfg.Database.DSN, a.cfg.Database.Migrations, steps); err != nil {
				return err
			}
			a.log.Info("migrations reverted", zap.Int("steps", steps))
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	return cmd
}

func (a *app) migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sqlMigrations() {
				return errNoSQLMigrations
			}
			v, dirty, err := db.MigrationVersion(a.cfg.Database.DSN, a.cfg.Database.Migrations)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%v\n", v, dirty)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the reference plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.dbOptions()
			gdb, err := db.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb, opts); err != nil {
				return err
			}
			if err := db.Seed(gdb); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "plans seeded")
			return nil
		},
	}
}
