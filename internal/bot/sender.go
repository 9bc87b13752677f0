package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/keyboard"
	"github.com/Proton-105/cocktail-bot/internal/conversation"
	"github.com/Proton-105/cocktail-bot/internal/domain"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
)

// messenger is the slice of *telebot.Bot the sender uses.
type messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Sender delivers dispatcher output to Telegram. Private chats share the
// user's id, so every message goes to telebot.ChatID(userID).
type Sender struct {
	api     messenger
	kb      *keyboard.Builder
	tr      i18n.Translator
	limiter *rate.Limiter
	log     *slog.Logger
}

var _ conversation.Outbound = (*Sender)(nil)

// NewSender builds a Sender that emits at most perSecond messages per second.
// A non-positive rate disables throttling.
func NewSender(api messenger, kb *keyboard.Builder, tr i18n.Translator, perSecond float64, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}

	limit, burst := rate.Inf, 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}

	return &Sender{
		api:     api,
		kb:      kb,
		tr:      tr,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

func (s *Sender) SendText(ctx context.Context, userID int64, text string) error {
	return s.send(ctx, userID, text)
}

func (s *Sender) SendSelectableList(ctx context.Context, userID int64, text string, choices []conversation.Choice) error {
	markup, err := s.kb.Choices(choices)
	if err != nil {
		return err
	}

	return s.send(ctx, userID, text, markup)
}

func (s *Sender) SendDetail(ctx context.Context, userID int64, item domain.Cocktail) error {
	markup, err := s.kb.MainMenuButton(s.tr.T("menu.main"))
	if err != nil {
		return err
	}

	return s.send(ctx, userID, FormatDetail(s.tr, item), markup, telebot.NoPreview)
}

func (s *Sender) send(ctx context.Context, userID int64, what interface{}, opts ...interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.api.Send(telebot.ChatID(userID), what, opts...)

	var flood telebot.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		s.log.WarnContext(ctx, "telegram flood limit hit, retrying once", slog.Int64("user_id", userID), slog.Int("retry_after", flood.RetryAfter))

		timer := time.NewTimer(time.Duration(flood.RetryAfter) * time.Second)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		_, err = s.api.Send(telebot.ChatID(userID), what, opts...)
	}

	return err
}

// FormatDetail renders the full card of a cocktail as plain text.
func FormatDetail(tr i18n.Translator, item domain.Cocktail) string {
	var b strings.Builder

	b.WriteString(item.Name)

	if description := strings.TrimSpace(item.Description); description != "" {
		b.WriteString("\n\n")
		b.WriteString(description)
	}

	b.WriteString("\n\n")
	b.WriteString(tr.T("detail.ingredients"))
	b.WriteString(": ")
	b.WriteString(strings.Join(item.Ingredients, ", "))

	if len(item.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(tr.T("detail.tags"))
		b.WriteString(": ")
		b.WriteString(strings.Join(item.Tags, ", "))
	}

	return b.String()
}
