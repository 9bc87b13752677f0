package middleware

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
	"github.com/Proton-105/cocktail-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	tr      i18n.Translator
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, tr i18n.Translator, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		tr:      tr,
		log:     log,
	}
}

// Handle rejects updates from users over their budget. Limiter failures let
// the update through.
func (m *RateLimitMiddleware) Handle(next handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		if m.limiter == nil || !m.rules.Enabled() {
			return next(c)
		}

		userID := handlers.SenderID(c)
		if userID == 0 || m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		ctx := handlers.Context(c)
		limit, window := m.rules.PerUser()
		result, err := m.limiter.Check(ctx, "user:"+strconv.FormatInt(userID, 10), limit, window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			m.log.WarnContext(ctx, "rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if errors.Is(err, ratelimit.ErrLimitExceeded) || (result != nil && !result.Allowed) {
			retryAfter := window
			if result != nil {
				retryAfter = result.RetryAfter(time.Now())
			}

			m.log.WarnContext(ctx, "rate limit exceeded", slog.Int64("user_id", userID), slog.Duration("retry_after", retryAfter))
			if sendErr := c.Send(m.tr.T("error.rate_limited")); sendErr != nil {
				m.log.WarnContext(ctx, "failed to notify throttled user", slog.Int64("user_id", userID), slog.Any("error", sendErr))
			}

			return apperrors.NewRateLimitError(int(math.Ceil(retryAfter.Seconds())))
		}

		return next(c)
	}
}
