// Package keyboard renders conversation choices as Telegram inline keyboards.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/conversation"
)

// MaxChoices caps how many list entries become buttons.
const MaxChoices = 100

// Builder creates inline keyboards for dispatcher output.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Choices lays out one button per row. Entries past MaxChoices are dropped.
func (b *Builder) Choices(choices []conversation.Choice) (*telebot.ReplyMarkup, error) {
	if len(choices) > MaxChoices {
		b.log.Warn("truncating selectable list", slog.Int("choices", len(choices)), slog.Int("max", MaxChoices))
		choices = choices[:MaxChoices]
	}

	kb := NewInlineKeyboard()
	for _, choice := range choices {
		kb.AddRow(InlineButton{Text: choice.Label, Data: choice.Data})
	}

	return kb.Build()
}

// MainMenuButton builds a single button that returns the user to the main menu.
func (b *Builder) MainMenuButton(label string) (*telebot.ReplyMarkup, error) {
	data, err := conversation.MainMenuCallback().Encode()
	if err != nil {
		return nil, err
	}

	return NewInlineKeyboard().AddRow(InlineButton{Text: label, Data: data}).Build()
}
