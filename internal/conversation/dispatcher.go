package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/i18n"
	"github.com/Proton-105/cocktail-bot/internal/search"
	"github.com/Proton-105/cocktail-bot/internal/session"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

// Searcher is the search surface the dispatcher needs.
type Searcher interface {
	FindExactByName(ctx context.Context, name string) (*domain.Cocktail, error)
	FindByID(ctx context.Context, id int64) (*domain.Cocktail, error)
	FindAllByName(ctx context.Context, text string) ([]domain.Cocktail, error)
	SuggestIfNotFound(ctx context.Context, text string) ([]domain.Cocktail, error)
	FindByIngredientsAll(ctx context.Context, ingredients []string) ([]domain.Cocktail, error)
	FindByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error)
	ListAllTags(ctx context.Context) ([]string, error)
}

// Search outcomes reported to the search recorder.
const (
	OutcomeDetail       = "detail"
	OutcomeList         = "list"
	OutcomeSuggestions  = "suggestions"
	OutcomeNothingFound = "nothing_found"
	OutcomeMalformed    = "malformed"
	OutcomeError        = "error"
)

var searchRecorder = func(mode session.Mode, outcome string) {}

// RegisterSearchRecorder allows external packages to observe search outcomes.
func RegisterSearchRecorder(recorder func(mode session.Mode, outcome string)) {
	if recorder == nil {
		searchRecorder = func(session.Mode, string) {}
		return
	}

	searchRecorder = recorder
}

type (
	commandHandler  func(ctx context.Context, userID int64, args string) error
	callbackHandler func(ctx context.Context, userID int64, cb Callback) error
	freeTextHandler func(ctx context.Context, userID int64, text string) error
)

// Dispatcher is the conversation state machine. It is the only writer of
// the session store.
type Dispatcher struct {
	sessions session.Store
	search   Searcher
	out      Outbound
	tr       i18n.Translator
	log      *slog.Logger
	shuffle  atomic.Bool

	commands  map[Command]commandHandler
	callbacks map[Action]callbackHandler
	freeText  map[session.Mode]freeTextHandler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithShuffle presents multi-result lists in random order.
func WithShuffle(enabled bool) Option {
	return func(d *Dispatcher) {
		d.shuffle.Store(enabled)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

func NewDispatcher(sessions session.Store, searcher Searcher, out Outbound, tr i18n.Translator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sessions: sessions,
		search:   searcher,
		out:      out,
		tr:       tr,
		log:      slog.Default(),
	}

	d.commands = map[Command]commandHandler{
		CommandMainMenu: d.start,
		CommandListTags: func(ctx context.Context, userID int64, _ string) error {
			return d.listTags(ctx, userID)
		},
	}
	d.callbacks = map[Action]callbackHandler{
		ActionMainMenu: func(ctx context.Context, userID int64, _ Callback) error {
			return d.showMainMenu(ctx, userID)
		},
		ActionSearch: d.selectSearch,
		ActionItem:   d.showItem,
	}
	d.freeText = map[session.Mode]freeTextHandler{
		session.ModeByName:        d.searchByName,
		session.ModeByIngredients: d.searchByIngredients,
		session.ModeByTags:        d.searchByTags,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// SetShuffle toggles list shuffling at runtime.
func (d *Dispatcher) SetShuffle(enabled bool) {
	d.shuffle.Store(enabled)
}

// Dispatch handles one inbound event to completion. The returned error is
// informational: the user has already been answered where possible.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev.UserID == 0 {
		return apperrors.NewStateError("event without user id")
	}

	switch ev.Kind {
	case KindCommand:
		if handler, ok := d.commands[ev.Command]; ok {
			return handler(ctx, ev.UserID, ev.Args)
		}
		return d.handleFreeText(ctx, ev.UserID, strings.TrimSpace("/"+string(ev.Command)+" "+ev.Args))
	case KindCallback:
		handler, ok := d.callbacks[ev.Callback.Action]
		if !ok {
			return apperrors.NewStateError(fmt.Sprintf("no handler for callback action %q", ev.Callback.Action))
		}
		return handler(ctx, ev.UserID, ev.Callback)
	case KindFreeText:
		return d.handleFreeText(ctx, ev.UserID, ev.Text)
	default:
		return apperrors.NewStateError(fmt.Sprintf("unknown event kind %d", ev.Kind))
	}
}

func (d *Dispatcher) handleFreeText(ctx context.Context, userID int64, text string) error {
	mode := d.sessions.Get(userID)
	handler, ok := d.freeText[mode]
	if !ok {
		d.log.DebugContext(ctx, "ignoring free text without pending search", slog.Int64("user_id", userID))
		return nil
	}

	return handler(ctx, userID, text)
}

// start opens the main menu, or the detail view of the cocktail named by a
// deep-link payload ("/start frozen_daiquiri"). Unknown names fall back to the menu.
func (d *Dispatcher) start(ctx context.Context, userID int64, payload string) error {
	if payload == "" {
		return d.showMainMenu(ctx, userID)
	}

	item, err := d.search.FindExactByName(ctx, deepLinkName(payload))
	switch {
	case errors.Is(err, search.ErrNotFound), errors.Is(err, search.ErrEmptyQuery):
		d.log.DebugContext(ctx, "unknown deep link", slog.Int64("user_id", userID), slog.String("payload", payload))
		return d.showMainMenu(ctx, userID)
	case err != nil:
		return d.catalogFailure(ctx, userID, session.ModeNone, err)
	}

	d.sessions.Clear(userID)
	return d.sendDetail(ctx, userID, *item)
}

// deepLinkName decodes a payload; deep links only carry [A-Za-z0-9_-].
func deepLinkName(payload string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(payload)
}

func (d *Dispatcher) showMainMenu(ctx context.Context, userID int64) error {
	d.sessions.Clear(userID)

	choices := make([]Choice, 0, len(session.SearchModes))
	for _, mode := range session.SearchModes {
		data, err := SearchCallback(mode).Encode()
		if err != nil {
			return err
		}
		choices = append(choices, Choice{Label: d.tr.T("menu." + string(mode)), Data: data})
	}

	return d.sendList(ctx, userID, d.tr.T("menu.greeting"), choices)
}

func (d *Dispatcher) listTags(ctx context.Context, userID int64) error {
	tags, err := d.search.ListAllTags(ctx)
	if err != nil {
		return d.catalogFailure(ctx, userID, session.ModeNone, err)
	}

	if len(tags) == 0 {
		return d.sendText(ctx, userID, d.tr.T("tags.empty"))
	}

	return d.sendText(ctx, userID, d.tr.T("tags.header")+"\n"+strings.Join(tags, "\n"))
}

func (d *Dispatcher) selectSearch(ctx context.Context, userID int64, cb Callback) error {
	d.sessions.Set(userID, cb.Mode)
	return d.sendText(ctx, userID, d.tr.T("prompt."+string(cb.Mode)))
}

func (d *Dispatcher) showItem(ctx context.Context, userID int64, cb Callback) error {
	item, err := d.search.FindByID(ctx, cb.ItemID)
	if errors.Is(err, search.ErrNotFound) {
		return d.sendText(ctx, userID, d.tr.T("item.not_found"))
	}
	if err != nil {
		return d.catalogFailure(ctx, userID, session.ModeNone, err)
	}

	return d.sendDetail(ctx, userID, *item)
}

func (d *Dispatcher) searchByName(ctx context.Context, userID int64, text string) error {
	const mode = session.ModeByName

	query := textmatch.Normalize(text)
	if query == "" {
		return d.reprompt(ctx, userID, mode)
	}

	items, err := d.search.FindAllByName(ctx, query)
	if err != nil {
		return d.catalogFailure(ctx, userID, mode, err)
	}

	if len(items) > 0 {
		return d.presentResults(ctx, userID, mode, items)
	}

	suggestions, err := d.search.SuggestIfNotFound(ctx, query)
	if err != nil {
		return d.catalogFailure(ctx, userID, mode, err)
	}

	// The user stays in name search after a miss so they can retype.
	d.sessions.Set(userID, mode)

	if len(suggestions) == 0 {
		searchRecorder(mode, OutcomeNothingFound)
		return d.sendText(ctx, userID, d.tr.T("prompt.retry_name"))
	}

	searchRecorder(mode, OutcomeSuggestions)
	return d.sendList(ctx, userID, d.tr.T("result.did_you_mean"), itemChoices(suggestions))
}

func (d *Dispatcher) searchByIngredients(ctx context.Context, userID int64, text string) error {
	const mode = session.ModeByIngredients

	ingredients := textmatch.SplitList(text)
	if len(ingredients) == 0 {
		return d.reprompt(ctx, userID, mode)
	}

	items, err := d.search.FindByIngredientsAll(ctx, ingredients)
	if err != nil {
		return d.catalogFailure(ctx, userID, mode, err)
	}

	return d.presentResults(ctx, userID, mode, items)
}

func (d *Dispatcher) searchByTags(ctx context.Context, userID int64, text string) error {
	const mode = session.ModeByTags

	tags := textmatch.SplitList(text)
	if len(tags) == 0 {
		return d.reprompt(ctx, userID, mode)
	}

	items, err := d.search.FindByTags(ctx, tags)
	if err != nil {
		return d.catalogFailure(ctx, userID, mode, err)
	}

	return d.presentResults(ctx, userID, mode, items)
}

// presentResults clears the mode, then renders 0, 1 or many items.
func (d *Dispatcher) presentResults(ctx context.Context, userID int64, mode session.Mode, items []domain.Cocktail) error {
	d.sessions.Clear(userID)

	switch len(items) {
	case 0:
		searchRecorder(mode, OutcomeNothingFound)
		return d.sendText(ctx, userID, d.tr.T("result.nothing_found"))
	case 1:
		searchRecorder(mode, OutcomeDetail)
		return d.sendDetail(ctx, userID, items[0])
	default:
		searchRecorder(mode, OutcomeList)
		if d.shuffle.Load() {
			items = lo.Shuffle(append([]domain.Cocktail(nil), items...))
		}
		return d.sendList(ctx, userID, d.tr.T("result.choose"), itemChoices(items))
	}
}

// reprompt keeps the mode and asks again; empty constraints never reach search.
// The returned MalformedInput error is reported after the user has been answered.
func (d *Dispatcher) reprompt(ctx context.Context, userID int64, mode session.Mode) error {
	searchRecorder(mode, OutcomeMalformed)

	rejected := apperrors.NewMalformedInputError(fmt.Sprintf("empty %s search input", mode.Label()))
	if err := d.sendText(ctx, userID, d.tr.T(rejected.UserKey)+"\n"+d.tr.T("prompt."+string(mode))); err != nil {
		return errors.Join(rejected, err)
	}

	return rejected
}

// catalogFailure answers with a generic retry text and leaves the mode untouched.
func (d *Dispatcher) catalogFailure(ctx context.Context, userID int64, mode session.Mode, err error) error {
	if mode != session.ModeNone {
		searchRecorder(mode, OutcomeError)
	}

	if _, ok := apperrors.As(err); !ok {
		err = apperrors.NewCatalogUnavailableError("search", err)
	}

	if sendErr := d.sendText(ctx, userID, d.tr.T("error.try_later")); sendErr != nil {
		return errors.Join(err, sendErr)
	}

	return err
}

func (d *Dispatcher) sendText(ctx context.Context, userID int64, text string) error {
	if err := d.out.SendText(ctx, userID, text); err != nil {
		return apperrors.NewDeliveryFailedError("send_text", err)
	}
	return nil
}

func (d *Dispatcher) sendList(ctx context.Context, userID int64, text string, choices []Choice) error {
	if err := d.out.SendSelectableList(ctx, userID, text, choices); err != nil {
		return apperrors.NewDeliveryFailedError("send_list", err)
	}
	return nil
}

func (d *Dispatcher) sendDetail(ctx context.Context, userID int64, item domain.Cocktail) error {
	if err := d.out.SendDetail(ctx, userID, item); err != nil {
		return apperrors.NewDeliveryFailedError("send_detail", err)
	}
	return nil
}

func itemChoices(items []domain.Cocktail) []Choice {
	return lo.FilterMap(items, func(item domain.Cocktail, _ int) (Choice, bool) {
		data, err := ItemCallback(item.ID).Encode()
		if err != nil {
			return Choice{}, false
		}
		return Choice{Label: item.Name, Data: data}, true
	})
}
