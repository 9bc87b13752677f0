package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/cocktail-bot/internal/bot"
	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	"github.com/Proton-105/cocktail-bot/internal/catalog"
	"github.com/Proton-105/cocktail-bot/internal/conversation"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/health"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
	"github.com/Proton-105/cocktail-bot/internal/idempotency"
	"github.com/Proton-105/cocktail-bot/internal/lifecycle"
	"github.com/Proton-105/cocktail-bot/internal/middleware"
	"github.com/Proton-105/cocktail-bot/internal/ratelimit"
	"github.com/Proton-105/cocktail-bot/internal/search"
	"github.com/Proton-105/cocktail-bot/internal/session"
	"github.com/Proton-105/cocktail-bot/pkg/config"
	"github.com/Proton-105/cocktail-bot/pkg/graceful"
	"github.com/Proton-105/cocktail-bot/pkg/logger"
	"github.com/Proton-105/cocktail-bot/pkg/metrics"
	"github.com/Proton-105/cocktail-bot/pkg/redis"
)

const (
	sessionMetricsInterval = 15 * time.Second
	limiterSweepInterval   = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long:  `Starts the bot together with the ops HTTP server exposing /healthz, /readyz and /metrics.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		return serve(cmd.Context(), rt)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, rt *app) error {
	cfg, log := rt.cfg, rt.log

	log.Info("starting cocktail bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("catalog", cfg.Catalog.Source),
	)

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	err := run(ctx, rt, shutdown, checker)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return errors.Join(err, shutdown.Execute(shutdownCtx))
}

func run(ctx context.Context, rt *app, shutdown *lifecycle.Shutdown, checker *health.Checker) error {
	cfg, log := rt.cfg, rt.log

	var rdb *redis.MetricsClient
	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		rdb = redis.NewMetricsClient(client)
		shutdown.RegisterCloser("redis", rdb)
		checker.AddCheck("redis", health.NewRedisChecker(rdb))
	}

	items, err := openCatalog(ctx, cfg, log, shutdown, checker)
	if err != nil {
		return err
	}

	engine := search.NewEngine(items, searchOptions(cfg.Search), log)
	sessions := session.NewMemoryStore(log)

	locales, err := i18n.Load(cfg.Bot.Language)
	if err != nil {
		return err
	}
	tr := locales.Translator(cfg.Bot.Language)

	b, err := bot.New(cfg.Bot, log)
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	dispatcher := conversation.NewDispatcher(
		sessions,
		engine,
		b.NewSender(tr, cfg.Bot.SendRate),
		tr,
		conversation.WithShuffle(cfg.Bot.ShuffleResults),
		conversation.WithLogger(log),
	)

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)
	memLimiter := ratelimit.NewMemoryLimiter(log)

	b.Mount(
		handlers.NewUpdateHandler(dispatcher, tr, log),
		bot.RecoveryMiddleware(log, errHandler, tr),
		middleware.Logging(log),
		bot.ErrorHandlingMiddleware(errHandler, tr),
		middleware.Metrics,
		idempotencyMiddleware(cfg.Idempotency, rdb, b.ID(), log),
		rateLimitMiddleware(cfg.RateLimit, rdb, memLimiter, tr, log),
	)

	if err := b.SetCommands(tr); err != nil {
		log.Warn("failed to publish bot commands", slog.Any("error", err))
	}

	config.Watch(rt.viper, log, reloader(log, items, engine, dispatcher))

	ops := graceful.NewServer(log, &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           opsRouter(checker, log),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	collector := metrics.NewSessionCollector(sessions, sessionMetricsInterval)
	cleaner := ratelimit.NewCleaner(memLimiter, log, limiterSweepInterval, max(cfg.RateLimit.Window, limiterSweepInterval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ops.ListenAndServe(gctx)
	})
	g.Go(func() error {
		collector.Run(gctx)
		return nil
	})
	g.Go(func() error {
		cleaner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		b.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		b.Stop()
		return nil
	})

	return g.Wait()
}

// reloader applies the settings that can change without a restart. The
// catalog cache is dropped so edited records show up on the next lookup.
func reloader(log *slog.Logger, items catalog.Catalog, engine *search.Engine, dispatcher *conversation.Dispatcher) func(*config.Config) {
	return func(next *config.Config) {
		if err := logger.SetLevel(next.Logger.Level); err != nil {
			log.Warn("ignoring log level", slog.Any("error", err))
		}
		engine.SetOptions(searchOptions(next.Search))
		dispatcher.SetShuffle(next.Bot.ShuffleResults)

		if cached, ok := items.(*catalog.Cached); ok {
			cached.Flush()
		}

		log.Info("runtime settings applied",
			slog.String("log_level", logger.Level().String()),
			slog.Bool("shuffle_results", next.Bot.ShuffleResults),
		)
	}
}

func openCatalog(ctx context.Context, cfg *config.Config, log *slog.Logger, shutdown *lifecycle.Shutdown, checker *health.Checker) (catalog.Catalog, error) {
	if cfg.Catalog.Source == "file" {
		items, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		log.Info("catalog loaded from file", slog.String("file", cfg.Catalog.File), slog.Int("cocktails", len(items)))
		return catalog.NewMemory(items), nil
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	shutdown.RegisterCloser("database", db)
	checker.AddCheck("database", health.NewDBChecker(db))

	resilient := catalog.NewResilient(
		catalog.NewPostgres(db, log),
		apperrors.DefaultRetrier(),
		apperrors.DefaultBreakerSettings(),
		log,
	)
	checker.AddCheck("catalog", health.CheckFunc(func(context.Context) error {
		if resilient.BreakerState() == apperrors.StateOpen {
			return apperrors.ErrCircuitOpen
		}
		return nil
	}))

	if cfg.Catalog.CacheTTL <= 0 {
		return resilient, nil
	}
	return catalog.NewCached(resilient, cfg.Catalog.CacheTTL), nil
}

func searchOptions(cfg config.SearchConfig) search.Options {
	opts := search.DefaultOptions()
	if cfg.SuggestionThreshold > 0 {
		opts.SuggestionThreshold = cfg.SuggestionThreshold
	}
	if cfg.MaxSuggestions > 0 {
		opts.MaxSuggestions = cfg.MaxSuggestions
	}
	if cfg.FuzzyCandidates > 0 {
		opts.FuzzyCandidates = cfg.FuzzyCandidates
	}
	return opts
}

func idempotencyMiddleware(cfg config.IdempotencyConfig, rdb *redis.MetricsClient, botID int64, log *slog.Logger) handlers.Middleware {
	if !cfg.Enabled {
		return nil
	}

	var store idempotency.Store = idempotency.NewMemoryStore(time.Minute)
	if rdb != nil {
		store = idempotency.NewRedisStore(rdb, log)
	}

	return middleware.Idempotency(idempotency.NewManager(store, cfg.TTL, log), botID, log)
}

func rateLimitMiddleware(cfg config.RateLimitConfig, rdb *redis.MetricsClient, fallback *ratelimit.MemoryLimiter, tr i18n.Translator, log *slog.Logger) handlers.Middleware {
	rules := ratelimit.NewRules(cfg)
	if !rules.Enabled() {
		return nil
	}

	var limiter ratelimit.Limiter = fallback
	if rdb != nil {
		limiter = ratelimit.NewAdaptiveLimiter(ratelimit.NewRedisLimiter(rdb, log), fallback, log)
	}

	return middleware.NewRateLimitMiddleware(limiter, rules, tr, log).Handle
}

func opsRouter(checker *health.Checker, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.Middleware)
	r.Use(middleware.AccessLog(log))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(checker))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
