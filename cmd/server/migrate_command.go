package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.RunMigrations(ctx.config.Database.MigrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.MigrateDown(ctx.config.Database.MigrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.MigrateToVersion(ctx.config.Database.MigrationsPath, uint(version))
		},
	})

	return cmd
}
