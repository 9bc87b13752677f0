package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/conversation"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
)

// ErrNoSender is returned for updates that do not come from a user, such as channel posts.
var ErrNoSender = errors.New("update has no sender")

// EventDispatcher consumes parsed conversation events.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev conversation.Event) error
}

// ParseEvent converts a telebot update into a conversation event. Commands
// addressed to a bot ("/start@cocktail_bot") lose the suffix; words after the
// command become its arguments.
func ParseEvent(c telebot.Context) (conversation.Event, error) {
	userID := SenderID(c)
	if userID == 0 {
		return conversation.Event{}, ErrNoSender
	}

	if cb := c.Callback(); cb != nil {
		return conversation.NewCallbackEvent(userID, cb.Data)
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
		if name != "" {
			return conversation.NewCommandEvent(userID, conversation.Command(name), fields[1:]...), nil
		}
	}

	return conversation.NewFreeTextEvent(userID, text), nil
}

// NewUpdateHandler routes every text and callback update through dispatcher.
func NewUpdateHandler(dispatcher EventDispatcher, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		ctx := Context(c)

		if c.Callback() != nil {
			if err := c.Respond(); err != nil {
				log.DebugContext(ctx, "failed to acknowledge callback", slog.Any("error", err))
			}
		}

		ev, err := ParseEvent(c)
		switch {
		case errors.Is(err, ErrNoSender):
			log.DebugContext(ctx, "skipping update without sender")
			return nil
		case err != nil:
			log.InfoContext(ctx, "rejecting callback", slog.Int64("user_id", SenderID(c)), slog.Any("error", err))
			return c.Send(tr.T("error.invalid_action"))
		}

		return dispatcher.Dispatch(ctx, ev)
	}
}
