package ratelimit

import (
	"time"

	"github.com/samber/lo"

	"github.com/Proton-105/cocktail-bot/pkg/config"
)

// Rules encapsulates the configured per-user limit and whitelist.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether limiting applies at all.
func (r *Rules) Enabled() bool {
	return r != nil && r.config.Enabled && r.config.Limit > 0 && r.config.Window > 0
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	return lo.Contains(r.config.Whitelist, userID)
}

// PerUser returns the number of updates a user may send per window.
func (r *Rules) PerUser() (int, time.Duration) {
	return r.config.Limit, r.config.Window
}
