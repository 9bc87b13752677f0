package keyboard

import (
	"errors"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/conversation"
)

// ErrEmptyCallbackData is returned when a button carries no payload.
var ErrEmptyCallbackData = errors.New("keyboard: button has no callback data")

// InlineButton represents a lightweight inline keyboard button definition used by the builder.
type InlineButton struct {
	Text string
	Data string // Encoded conversation.Callback, sent back verbatim on tap.
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions before rendering telebot markup.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

// NewInlineKeyboard creates an empty builder.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: make([][]InlineButton, 0)}
}

// AddRow appends a new row made of custom InlineButton definitions.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Rows returns the number of rows added so far.
func (b *InlineKeyboardBuilder) Rows() int {
	return len(b.rows)
}

// Build renders telebot markup. Buttons leave Unique empty so telebot hands
// the raw payload to the OnCallback endpoint.
func (b *InlineKeyboardBuilder) Build() (*telebot.ReplyMarkup, error) {
	inlineKeyboard := make([][]telebot.InlineButton, len(b.rows))
	for i, row := range b.rows {
		inlineKeyboard[i] = make([]telebot.InlineButton, len(row))
		for j, btn := range row {
			if btn.Data == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyCallbackData, btn.Text)
			}
			if len(btn.Data) > conversation.CallbackDataLimitBytes {
				return nil, fmt.Errorf("callback data exceeds %d byte limit: got %d", conversation.CallbackDataLimitBytes, len(btn.Data))
			}

			inlineKeyboard[i][j] = telebot.InlineButton{
				Text: btn.Text,
				Data: btn.Data,
			}
		}
	}

	return &telebot.ReplyMarkup{InlineKeyboard: inlineKeyboard}, nil
}
