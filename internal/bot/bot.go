// Package bot connects the conversation dispatcher to Telegram through telebot.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
	"github.com/Proton-105/cocktail-bot/internal/bot/keyboard"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
	"github.com/Proton-105/cocktail-bot/pkg/config"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Bot wraps telebot.Bot with the router every update goes through.
type Bot struct {
	telebot *telebot.Bot
	log     *slog.Logger
	router  *Router
}

// New builds a telegram bot instance configured according to the application settings.
func New(cfg config.BotConfig, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:  cfg.Token,
		Poller: newPoller(cfg),
		OnError: func(err error, c telebot.Context) {
			log.ErrorContext(handlers.Context(c), "telebot error", slog.Any("error", err))
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	return &Bot{
		telebot: tb,
		log:     log,
	}, nil
}

func newPoller(cfg config.BotConfig) telebot.Poller {
	if cfg.Mode == ModeWebhook {
		return &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	}

	return &telebot.LongPoller{
		Timeout:        cfg.PollTimeout,
		AllowedUpdates: []string{"message", "callback_query"},
	}
}

// NewSender builds the outbound adapter bound to this bot.
func (b *Bot) NewSender(tr i18n.Translator, perSecond float64) *Sender {
	return NewSender(b.telebot, keyboard.NewBuilder(b.log), tr, perSecond, b.log)
}

// Mount routes text messages and button presses through handler wrapped in middlewares.
func (b *Bot) Mount(handler handlers.Handler, middlewares ...handlers.Middleware) {
	b.router = NewRouter(handler, b.log)
	for _, mw := range middlewares {
		b.router.Use(mw)
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

// SetCommands publishes the command menu in the translator's language.
func (b *Bot) SetCommands(tr i18n.Translator) error {
	return b.telebot.SetCommands(Commands(tr))
}

// ID returns the bot's own Telegram user id.
func (b *Bot) ID() int64 {
	if b.telebot.Me == nil {
		return 0
	}
	return b.telebot.Me.ID
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("starting telegram bot", slog.String("username", b.telebot.Me.Username))
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
