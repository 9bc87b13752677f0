package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Proton-105/cocktail-bot/internal/catalog"
	"github.com/Proton-105/cocktail-bot/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML catalog into PostgreSQL",
	Long:  `Validates a YAML catalog file and upserts its cocktails by name. Schema migrations run first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = rt.cfg.Catalog.File
		}
		if path == "" {
			return fmt.Errorf("seed: no catalog file given, set --file or catalog.file")
		}

		items, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		db, err := openDatabase(ctx, rt.cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := database.NewMigrator(db, rt.log).ApplyEmbedded(ctx); err != nil {
			return err
		}

		count, err := catalog.NewPostgres(db, rt.log).Upsert(ctx, items)
		if err != nil {
			return err
		}

		rt.log.Info("catalog seeded", slog.String("file", path), slog.Int("cocktails", count))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringP("file", "f", "", "Catalog YAML file (default catalog.file)")
}
