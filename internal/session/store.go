package session

import (
	"log/slog"
	"sync"
)

// Store describes the per-user pending search mode registry.
type Store interface {
	// Set records mode for the user, replacing any previous one.
	Set(userID int64, mode Mode)
	// Get returns the current mode or ModeNone when absent.
	Get(userID int64) Mode
	// Clear removes the user's entry. Clearing an absent entry is a no-op.
	Clear(userID int64)
}

var transitionRecorder = func(from, to Mode) {}

// RegisterTransitionRecorder allows external packages to observe mode changes.
func RegisterTransitionRecorder(recorder func(from, to Mode)) {
	if recorder == nil {
		transitionRecorder = func(Mode, Mode) {}
		return
	}

	transitionRecorder = recorder
}

// MemoryStore keeps sessions in process memory. Each user entry is an atomic
// map slot, so callers working on different users never contend on a lock.
type MemoryStore struct {
	modes sync.Map // int64 -> Mode
	log   *slog.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *slog.Logger) *MemoryStore {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryStore{log: log}
}

// Set stores mode for userID. Setting ModeNone is the same as Clear.
func (s *MemoryStore) Set(userID int64, mode Mode) {
	if mode == ModeNone {
		s.Clear(userID)
		return
	}

	if !mode.Valid() {
		s.log.Warn("ignoring unknown session mode", slog.Int64("user_id", userID), slog.String("mode", string(mode)))
		return
	}

	from := ModeNone
	if prev, loaded := s.modes.Swap(userID, mode); loaded {
		from = prev.(Mode)
	}

	transitionRecorder(from, mode)
	s.log.Debug("session mode set", slog.Int64("user_id", userID), slog.String("from", from.Label()), slog.String("to", mode.Label()))
}

// Get returns the stored mode or ModeNone.
func (s *MemoryStore) Get(userID int64) Mode {
	value, ok := s.modes.Load(userID)
	if !ok {
		return ModeNone
	}

	return value.(Mode)
}

// Clear removes the entry for userID.
func (s *MemoryStore) Clear(userID int64) {
	prev, loaded := s.modes.LoadAndDelete(userID)
	if !loaded {
		return
	}

	from := prev.(Mode)
	transitionRecorder(from, ModeNone)
	s.log.Debug("session cleared", slog.Int64("user_id", userID), slog.String("from", from.Label()))
}

// Range calls fn for every live session until fn returns false.
func (s *MemoryStore) Range(fn func(userID int64, mode Mode) bool) {
	s.modes.Range(func(key, value any) bool {
		return fn(key.(int64), value.(Mode))
	})
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	count := 0
	s.modes.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
