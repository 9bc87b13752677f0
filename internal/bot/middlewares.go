package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	errors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
	"github.com/Proton-105/cocktail-bot/pkg/metrics"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler, tr i18n.Translator) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				ctx := handlers.Context(c)
				log.ErrorContext(ctx, "panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

				appErr := errors.NewInternalError(fmt.Errorf("panic recovered: %v", r))
				if errHandler != nil {
					appErr = errHandler.Handle(ctx, appErr)
				}
				metrics.RecordError(appErr.Code, string(appErr.Severity))

				if c != nil {
					if sendErr := c.Send(tr.T(appErr.UserKey)); sendErr != nil {
						log.ErrorContext(ctx, "failed to notify user about panic", slog.Any("error", sendErr))
					}
				}

				err = nil
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting. The conversation has
// already answered the user for every classified failure, so only internal
// errors get a generic reply here.
func ErrorHandlingMiddleware(errHandler *errors.Handler, tr i18n.Translator) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			appErr := errHandler.Handle(handlers.Context(c), err)
			metrics.RecordError(appErr.Code, string(appErr.Severity))

			if appErr.Code == errors.CodeInternal && c != nil {
				_ = c.Send(tr.T(appErr.UserKey))
			}

			return nil
		}
	}
}
