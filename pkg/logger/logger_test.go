package logger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	slogmulti "github.com/samber/slog-multi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/pkg/config"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.With(slog.String("bot_token", "123:abc")).Info("starting",
		slog.String("password", "hunter2"),
		slog.Group("database", slog.String("dsn", "postgres://u:p@h/db")),
		slog.String("user", "visible"),
	)

	out := buf.String()
	assert.NotContains(t, out, "123:abc")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "postgres://")
	assert.Contains(t, out, "user=visible")
	assert.Contains(t, out, "password=***")
}

func TestMaskingHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithCorrelationID(context.Background(), "req-1")
	log.InfoContext(ctx, "handled")

	assert.Contains(t, buf.String(), "correlation_id=req-1")
}

func TestWithCorrelationID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.Len(t, CorrelationIDFromContext(ctx), 36)
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestNewHandler_SentryFanout(t *testing.T) {
	testCases := []struct {
		name   string
		sentry bool
		format string
	}{
		{name: "text only", format: "text"},
		{name: "json only", format: "json"},
		{name: "text with sentry", format: "text", sentry: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := config.Config{
				Logger: config.LoggerConfig{Format: tc.format},
				Sentry: config.SentryConfig{Enabled: tc.sentry},
			}

			handler := newHandler(&buf, cfg)
			if tc.sentry {
				assert.IsType(t, &slogmulti.FanoutHandler{}, handler)
			} else {
				assert.NotContains(t, fmt.Sprintf("%T", handler), "FanoutHandler")
			}

			slog.New(handler).Info("catalog loaded", slog.Int("cocktails", 12))
			assert.Contains(t, buf.String(), "catalog loaded")
			assert.Contains(t, buf.String(), "12")
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, slog.LevelDebug, Level())
	require.NoError(t, SetLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, Level())
	assert.Error(t, SetLevel("verbose"))
	assert.Equal(t, slog.LevelWarn, Level())
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}
