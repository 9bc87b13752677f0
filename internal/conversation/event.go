// Package conversation turns inbound chat events into searches and outbound
// actions, tracking each user's pending search mode between turns.
package conversation

import (
	"context"
	"strings"

	"github.com/Proton-105/cocktail-bot/internal/domain"
)

// Kind tags the variant held by an Event.
type Kind int

const (
	KindCommand Kind = iota + 1
	KindFreeText
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindFreeText:
		return "free_text"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Command names an explicit slash command without the leading slash.
type Command string

const (
	CommandMainMenu Command = "start"
	CommandListTags Command = "tags"
)

// Commands lists the commands the dispatcher understands.
var Commands = []Command{CommandMainMenu, CommandListTags}

// Event is one inbound turn. Only the fields matching Kind are meaningful.
type Event struct {
	Kind    Kind
	UserID  int64
	Command Command
	// Args holds the text following a command, e.g. the deep-link payload of /start.
	Args     string
	Text     string
	Callback Callback
}

func NewCommandEvent(userID int64, command Command, args ...string) Event {
	return Event{
		Kind:    KindCommand,
		UserID:  userID,
		Command: Command(strings.ToLower(strings.TrimSpace(string(command)))),
		Args:    strings.TrimSpace(strings.Join(args, " ")),
	}
}

func NewFreeTextEvent(userID int64, text string) Event {
	return Event{Kind: KindFreeText, UserID: userID, Text: text}
}

// NewCallbackEvent parses raw button data; malformed payloads are rejected here.
func NewCallbackEvent(userID int64, data string) (Event, error) {
	cb, err := ParseCallback(data)
	if err != nil {
		return Event{}, err
	}

	return Event{Kind: KindCallback, UserID: userID, Callback: cb}, nil
}

// Choice is one selectable entry of a list; Data is an encoded Callback.
type Choice struct {
	Label string
	Data  string
}

// Outbound delivers dispatcher actions to the user. Each call may fail with
// a delivery error; the dispatcher never retries.
type Outbound interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendSelectableList(ctx context.Context, userID int64, text string, choices []Choice) error
	SendDetail(ctx context.Context, userID int64, item domain.Cocktail) error
}
