package testutil

import (
	"sync"

	telebot "gopkg.in/telebot.v3"
)

// TelebotContext implements the parts of telebot.Context the bot touches.
// Calling anything else panics through the nil embedded interface.
type TelebotContext struct {
	telebot.Context

	mu        sync.Mutex
	User      *telebot.User
	Msg       *telebot.Message
	Cb        *telebot.Callback
	UpdateID  int
	Sent      []interface{}
	Responded bool
	SendErr   error
	store     map[string]interface{}
}

// TextContext builds a message update from userID.
func TextContext(userID int64, text string) *TelebotContext {
	return &TelebotContext{
		User:    &telebot.User{ID: userID},
		Msg: &telebot.Message{Text: text, Chat: &telebot.Chat{ID: userID}},
	}
}

// CallbackContext builds a button press from userID.
func CallbackContext(userID int64, data string) *TelebotContext {
	return &TelebotContext{
		User:  &telebot.User{ID: userID},
		Cb:    &telebot.Callback{ID: "cb", Data: data},
	}
}

func (f *TelebotContext) Sender() *telebot.User { return f.User }

func (f *TelebotContext) Callback() *telebot.Callback { return f.Cb }

func (f *TelebotContext) Text() string {
	if f.Msg == nil {
		return ""
	}
	return f.Msg.Text
}

func (f *TelebotContext) Update() telebot.Update {
	return telebot.Update{ID: f.UpdateID, Message: f.Msg, Callback: f.Cb}
}

func (f *TelebotContext) Respond(...*telebot.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responded = true
	return nil
}

func (f *TelebotContext) Send(what interface{}, _ ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, what)
	return f.SendErr
}

func (f *TelebotContext) Get(key string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

func (f *TelebotContext) Set(key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store == nil {
		f.store = make(map[string]interface{})
	}
	f.store[key] = value
}
