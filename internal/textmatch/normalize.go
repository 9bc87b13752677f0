// Package textmatch implements the input normalization policy and the fuzzy
// name scoring used by search.
package textmatch

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses inner whitespace runs to one space.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	return whitespace.ReplaceAllString(strings.ToLower(text), " ")
}

// SplitList splits a comma separated list, normalizes every token and drops
// empty and repeated ones. Input with no usable tokens yields nil.
func SplitList(text string) []string {
	tokens := lo.FilterMap(strings.Split(text, ","), func(token string, _ int) (string, bool) {
		token = Normalize(token)
		return token, token != ""
	})
	if len(tokens) == 0 {
		return nil
	}

	return lo.Uniq(tokens)
}

// NormalizeAll normalizes a set of stored values the same way as user input.
func NormalizeAll(values []string) []string {
	return lo.Map(values, func(v string, _ int) string { return Normalize(v) })
}

// ContainsAll reports whether every wanted token is present in have.
// Both sides are compared after normalization. An empty want never matches.
func ContainsAll(have, want []string) bool {
	if len(want) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[Normalize(v)] = struct{}{}
	}

	for _, w := range want {
		if _, ok := set[Normalize(w)]; !ok {
			return false
		}
	}

	return true
}
