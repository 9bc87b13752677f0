package bot

import (
	"github.com/samber/lo"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/conversation"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
)

// Commands returns the command menu Telegram shows next to the input field.
func Commands(tr i18n.Translator) []telebot.Command {
	return lo.Map(conversation.Commands, func(cmd conversation.Command, _ int) telebot.Command {
		return telebot.Command{
			Text:        string(cmd),
			Description: tr.T("commands." + string(cmd)),
		}
	})
}
