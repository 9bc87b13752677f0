package middleware

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	"github.com/Proton-105/cocktail-bot/internal/idempotency"
)

// Idempotency ensures handlers execute at most once per Telegram update id.
func Idempotency(manager idempotency.Manager, botID int64, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			updateID := c.Update().ID
			if updateID == 0 {
				return next(c)
			}

			ctx := handlers.Context(c)
			key := idempotency.UpdateKey(botID, updateID)

			err := manager.Execute(ctx, key, func(_ context.Context) error {
				return next(c)
			})
			if errors.Is(err, idempotency.ErrAlreadyProcessed) || errors.Is(err, idempotency.ErrRequestInProgress) {
				log.InfoContext(ctx, "skipping duplicate update", slog.Int("update_id", updateID), slog.Any("reason", err))
				return nil
			}

			return err
		}
	}
}
