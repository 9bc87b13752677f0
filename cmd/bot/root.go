package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Proton-105/cocktail-bot/pkg/config"
	"github.com/Proton-105/cocktail-bot/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "cocktail-bot",
	Short:         "Telegram bot for browsing a cocktail catalog",
	Long:          `cocktail-bot answers name, ingredient and tag searches over a cocktail catalog in Telegram chats.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config (default ./configs/$APP_ENV.yaml)")
}

// app bundles what every subcommand needs before doing its own work.
type app struct {
	cfg    *config.Config
	viper  *viper.Viper
	log    *slog.Logger
	closer io.Closer
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, v, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, closer := logger.New(*cfg)
	slog.SetDefault(log)

	return &app{cfg: cfg, viper: v, log: log, closer: closer}, nil
}

func (r *app) Close() error {
	return r.closer.Close()
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
