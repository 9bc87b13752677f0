// Package session tracks which kind of search each user is expected to type next.
package session

// Mode represents the pending search kind for a user.
type Mode string

const (
	// ModeNone means no search is pending; free text is ignored.
	ModeNone Mode = ""
	// ModeByName expects a cocktail name.
	ModeByName Mode = "by_name"
	// ModeByIngredients expects a comma separated ingredient list.
	ModeByIngredients Mode = "by_ingredients"
	// ModeByTags expects a comma separated tag list.
	ModeByTags Mode = "by_tags"
)

// SearchModes lists the selectable modes in menu order.
var SearchModes = []Mode{ModeByName, ModeByIngredients, ModeByTags}

// Valid reports whether m is one of the known modes, ModeNone included.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeByName, ModeByIngredients, ModeByTags:
		return true
	default:
		return false
	}
}

// Label returns a stable name for logs and metrics.
func (m Mode) Label() string {
	if m == ModeNone {
		return "none"
	}
	return string(m)
}
