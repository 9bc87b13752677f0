// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath returns the config file for the APP_ENV environment.
func DefaultPath() (string, string) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	return fmt.Sprintf("./configs/%s.yaml", env), env
}

// Load reads configuration from the YAML file at path (or the APP_ENV default
// when empty) and environment variables, validates it, and returns the result.
func Load(path string) (*Config, *viper.Viper, error) {
	// .env files are optional
	_ = godotenv.Load(".env.local", ".env")

	defaultPath, env := DefaultPath()
	if path == "" {
		path = defaultPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecrets(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = env
	}

	return cfg, v, nil
}

// Watch re-reads the file behind v whenever it changes and passes every
// valid revision to onChange. Invalid revisions are logged and skipped.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}

		cfg, err := decode(v)
		if err != nil {
			log.Warn("ignoring invalid config revision", slog.String("file", event.Name), slog.Any("error", err))
			return
		}

		log.Info("config reloaded", slog.String("file", event.Name))
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// bindSecrets maps the conventional secret variables, which are usually kept
// out of the YAML files.
func bindSecrets(v *viper.Viper) {
	_ = v.BindEnv("bot.token", "BOT_TOKEN")
	_ = v.BindEnv("sentry.dsn", "SENTRY_DSN")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 28)

	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.poll_timeout", 10*time.Second)
	v.SetDefault("bot.language", "en")
	v.SetDefault("bot.shuffle_results", true)
	v.SetDefault("bot.send_rate", 25)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("catalog.source", "postgres")
	v.SetDefault("catalog.cache_ttl", 5*time.Minute)

	v.SetDefault("search.suggestion_threshold", 0.6)
	v.SetDefault("search.max_suggestions", 5)
	v.SetDefault("search.fuzzy_candidates", 20)

	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("idempotency.ttl", 24*time.Hour)
}
