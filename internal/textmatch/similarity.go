package textmatch

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Distance returns the edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	dmp := diffmatchpatch.New()
	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}

// Similarity scores a and b in [0, 1], where 1 means identical after normalization.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 1
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(longest)
}

// BestSimilarity scores query against the whole name and each word of it,
// so "collins" still finds "Tom Collins".
func BestSimilarity(query, name string) float64 {
	query = Normalize(query)
	name = Normalize(name)

	best := Similarity(query, name)
	if strings.Contains(query, " ") {
		return best
	}

	for _, word := range strings.Fields(name) {
		if score := Similarity(query, word); score > best {
			best = score
		}
	}

	return best
}
