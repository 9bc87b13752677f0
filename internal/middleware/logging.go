// Package middleware holds the cross-cutting wrappers of bot updates and ops HTTP requests.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/getsentry/sentry-go"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	"github.com/Proton-105/cocktail-bot/pkg/logger"
)

// Logging gives every update a correlation id and its own Sentry hub, then
// logs the outcome.
func Logging(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			start := time.Now()

			ctx := logger.WithCorrelationID(handlers.Context(c), "")
			ctx = sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
			handlers.WithContext(c, ctx)

			userID := handlers.SenderID(c)
			kind := handlers.UpdateKind(c)
			log.DebugContext(ctx, "handling update", slog.Int64("user_id", userID), slog.String("kind", kind))

			err := next(c)

			attrs := []any{
				slog.Int64("user_id", userID),
				slog.String("kind", kind),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			log.InfoContext(ctx, "handled update", attrs...)

			return err
		}
	}
}

// AccessLog creates an HTTP middleware that logs request and response details.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log.InfoContext(
				r.Context(),
				"handled http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
