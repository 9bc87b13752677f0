package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore_SetThenGet(t *testing.T) {
	testCases := []struct {
		name string
		mode Mode
	}{
		{name: "by name", mode: ModeByName},
		{name: "by ingredients", mode: ModeByIngredients},
		{name: "by tags", mode: ModeByTags},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore(testLogger())
			store.Set(42, tc.mode)
			assert.Equal(t, tc.mode, store.Get(42))
		})
	}
}

func TestMemoryStore_GetAbsentIsNone(t *testing.T) {
	store := NewMemoryStore(testLogger())
	assert.Equal(t, ModeNone, store.Get(7))
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	store := NewMemoryStore(testLogger())
	store.Set(1, ModeByName)
	store.Set(1, ModeByTags)

	assert.Equal(t, ModeByTags, store.Get(1))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ClearIsIdempotent(t *testing.T) {
	store := NewMemoryStore(testLogger())
	store.Set(5, ModeByIngredients)

	store.Clear(5)
	assert.Equal(t, ModeNone, store.Get(5))

	store.Clear(5)
	assert.Equal(t, ModeNone, store.Get(5))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SetNoneClears(t *testing.T) {
	store := NewMemoryStore(testLogger())
	store.Set(9, ModeByName)
	store.Set(9, ModeNone)

	assert.Equal(t, ModeNone, store.Get(9))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_IgnoresUnknownMode(t *testing.T) {
	store := NewMemoryStore(testLogger())
	store.Set(3, Mode("by_colour"))

	assert.Equal(t, ModeNone, store.Get(3))
}

func TestMemoryStore_RecordsTransitions(t *testing.T) {
	type transition struct{ from, to Mode }

	var (
		mu   sync.Mutex
		seen []transition
	)
	RegisterTransitionRecorder(func(from, to Mode) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, transition{from: from, to: to})
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	store := NewMemoryStore(testLogger())
	store.Set(11, ModeByName)
	store.Set(11, ModeByTags)
	store.Clear(11)
	store.Clear(11)

	assert.Equal(t, []transition{
		{from: ModeNone, to: ModeByName},
		{from: ModeByName, to: ModeByTags},
		{from: ModeByTags, to: ModeNone},
	}, seen)
}

func TestMemoryStore_ConcurrentUsers(t *testing.T) {
	store := NewMemoryStore(testLogger())

	var wg sync.WaitGroup
	for i := int64(1); i <= 200; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			mode := SearchModes[userID%int64(len(SearchModes))]
			store.Set(userID, mode)
			assert.Equal(t, mode, store.Get(userID))
			if userID%2 == 0 {
				store.Clear(userID)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, store.Len())

	store.Range(func(userID int64, mode Mode) bool {
		assert.Equal(t, int64(1), userID%2)
		assert.Equal(t, SearchModes[userID%int64(len(SearchModes))], mode)
		return true
	})
}

func TestMode_Label(t *testing.T) {
	assert.Equal(t, "none", ModeNone.Label())
	assert.Equal(t, "by_name", ModeByName.Label())
	assert.False(t, Mode("other").Valid())
	assert.True(t, ModeNone.Valid())
}
