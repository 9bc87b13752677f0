package conversation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Proton-105/cocktail-bot/internal/session"
)

const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64
)

// Action is the verb carried by a button press.
type Action string

const (
	ActionMainMenu Action = "menu"
	ActionSearch   Action = "search"
	ActionItem     Action = "item"
)

var (
	ErrEmptyCallback   = errors.New("callback data is empty")
	ErrUnknownCallback = errors.New("unknown callback action")
)

// Callback is a decoded button payload.
type Callback struct {
	Action Action
	Mode   session.Mode
	ItemID int64
}

func MainMenuCallback() Callback {
	return Callback{Action: ActionMainMenu}
}

func SearchCallback(mode session.Mode) Callback {
	return Callback{Action: ActionSearch, Mode: mode}
}

func ItemCallback(id int64) Callback {
	return Callback{Action: ActionItem, ItemID: id}
}

// Encode renders the payload, e.g. "menu", "search:by_name" or "item:42".
func (c Callback) Encode() (string, error) {
	switch c.Action {
	case ActionMainMenu:
		return encodeCallback(string(c.Action), "")
	case ActionSearch:
		if c.Mode == session.ModeNone || !c.Mode.Valid() {
			return "", fmt.Errorf("encode callback: invalid search mode %q", c.Mode)
		}
		return encodeCallback(string(c.Action), string(c.Mode))
	case ActionItem:
		if c.ItemID <= 0 {
			return "", fmt.Errorf("encode callback: invalid item id %d", c.ItemID)
		}
		return encodeCallback(string(c.Action), strconv.FormatInt(c.ItemID, 10))
	default:
		return "", fmt.Errorf("encode callback: %w: %q", ErrUnknownCallback, c.Action)
	}
}

// ParseCallback validates raw button data and decodes it.
func ParseCallback(raw string) (Callback, error) {
	unique, data, err := decodeCallback(raw)
	if err != nil {
		return Callback{}, err
	}

	switch Action(unique) {
	case ActionMainMenu:
		if data != "" {
			return Callback{}, fmt.Errorf("parse callback %q: unexpected payload", raw)
		}
		return MainMenuCallback(), nil
	case ActionSearch:
		mode := session.Mode(data)
		if mode == session.ModeNone || !mode.Valid() {
			return Callback{}, fmt.Errorf("parse callback %q: invalid search mode", raw)
		}
		return SearchCallback(mode), nil
	case ActionItem:
		id, err := strconv.ParseInt(data, 10, 64)
		if err != nil || id <= 0 {
			return Callback{}, fmt.Errorf("parse callback %q: invalid item id", raw)
		}
		return ItemCallback(id), nil
	default:
		return Callback{}, fmt.Errorf("parse callback %q: %w", raw, ErrUnknownCallback)
	}
}

func encodeCallback(unique, data string) (string, error) {
	payload := unique
	if data != "" {
		payload = unique + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

func decodeCallback(callbackData string) (unique, data string, err error) {
	callbackData = strings.TrimSpace(callbackData)
	if callbackData == "" {
		return "", "", ErrEmptyCallback
	}

	if len(callbackData) > CallbackDataLimitBytes {
		return "", "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(callbackData))
	}

	unique, data, _ = strings.Cut(callbackData, CallbackDataSeparator)
	return unique, data, nil
}
