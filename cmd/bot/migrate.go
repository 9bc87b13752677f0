package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Proton-105/cocktail-bot/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()

		db, err := openDatabase(ctx, rt.cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.NewMigrator(db, rt.log).ApplyEmbedded(ctx)
		if err != nil {
			return err
		}

		rt.log.Info("database migrations applied", slog.Int("count", len(applied)), slog.Any("versions", applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
