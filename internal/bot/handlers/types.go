// Package handlers adapts telebot updates to the conversation dispatcher.
package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"
)

// Handler processes one Telegram update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Chain wraps h so that the first middleware runs outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

const contextKey = "request_ctx"

// WithContext attaches ctx to the update so later handlers share it.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// Context returns the context attached to the update or context.Background.
func Context(c telebot.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

// SenderID returns the Telegram user id of the update, or 0.
func SenderID(c telebot.Context) int64 {
	if c == nil || c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}

// UpdateKind labels an update for logs and metrics.
func UpdateKind(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}
	if c.Callback() != nil {
		return "callback"
	}
	if text := c.Text(); len(text) > 0 && text[0] == '/' {
		return "command"
	}
	return "text"
}
