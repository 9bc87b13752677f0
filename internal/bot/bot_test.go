package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/testutil"
)

func TestRouter_AppliesMiddlewares(t *testing.T) {
	var trace []string
	router := NewRouter(func(telebot.Context) error {
		trace = append(trace, "handler")
		return nil
	}, testutil.DiscardLogger())

	for _, name := range []string{"first", "second"} {
		router.Use(func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				trace = append(trace, name)
				return next(c)
			}
		})
	}

	require.NoError(t, router.Route(testutil.TextContext(1, "hi")))
	assert.Equal(t, []string{"first", "second", "handler"}, trace)
}

func TestRouter_WithoutHandler(t *testing.T) {
	assert.NoError(t, NewRouter(nil, nil).Route(testutil.TextContext(1, "hi")))
}

func TestRecoveryMiddleware(t *testing.T) {
	tr := testTranslator(t)
	errHandler := apperrors.NewHandler(testutil.DiscardLogger(), false)

	handler := RecoveryMiddleware(testutil.DiscardLogger(), errHandler, tr)(func(telebot.Context) error {
		panic("nil map write")
	})

	c := testutil.TextContext(1, "mojito")
	require.NotPanics(t, func() {
		assert.NoError(t, handler(c))
	})
	assert.Equal(t, []interface{}{tr.T("error.try_later")}, c.Sent)
}

func TestErrorHandlingMiddleware(t *testing.T) {
	tr := testTranslator(t)
	errHandler := apperrors.NewHandler(testutil.DiscardLogger(), false)

	testCases := []struct {
		name     string
		err      error
		wantSent []interface{}
	}{
		{name: "success", err: nil},
		{name: "classified errors are not answered twice", err: apperrors.NewCatalogUnavailableError("find", errors.New("timeout"))},
		{name: "rate limit", err: apperrors.NewRateLimitError(30)},
		{name: "unknown error gets a generic reply", err: errors.New("boom"), wantSent: []interface{}{tr.T("error.try_later")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := ErrorHandlingMiddleware(errHandler, tr)(func(telebot.Context) error {
				return tc.err
			})

			c := testutil.TextContext(1, "x")
			assert.NoError(t, handler(c))
			assert.Equal(t, tc.wantSent, c.Sent)
		})
	}
}

func TestCommands(t *testing.T) {
	commands := Commands(testTranslator(t))

	require.Len(t, commands, 2)
	assert.Equal(t, telebot.Command{Text: "start", Description: "Main menu"}, commands[0])
	assert.Equal(t, telebot.Command{Text: "tags", Description: "List all tags"}, commands[1])
}
