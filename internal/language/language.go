// Package language defines the vocabulary of panel languages.
package language

import (
	"sort"
	"strings"
)

// Language is a panel language tag, always lower case.
type Language string

// Known languages.
const (
	HTML         Language = "html"
	CSS          Language = "css"
	SCSS         Language = "scss"
	JavaScript   Language = "javascript"
	JavaScript17 Language = "javascript 1.7"
	CoffeeScript Language = "coffeescript"
)

// displayNames are the labels shown on panels.
var displayNames = map[Language]string{
	HTML:         "HTML",
	CSS:          "CSS",
	SCSS:         "SCSS",
	JavaScript:   "JavaScript",
	JavaScript17: "JavaScript 1.7",
	CoffeeScript: "CoffeeScript",
}

// Parse normalizes a user-facing language name such as "JavaScript 1.7".
func Parse(s string) Language {
	return Language(strings.ToLower(strings.Join(strings.Fields(s), " ")))
}

// DisplayName returns the panel label for l, or the tag itself for
// languages without a registered name.
func (l Language) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// Known reports whether l is part of the vocabulary.
func (l Language) Known() bool {
	_, ok := displayNames[l]
	return ok
}

// All returns every known language in sorted order.
func All() []Language {
	all := make([]Language, 0, len(displayNames))
	for l := range displayNames {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Set is an unordered set of languages.
type Set map[Language]struct{}

// NewSet creates a set from the given languages.
func NewSet(langs ...Language) Set {
	s := make(Set, len(langs))
	for _, l := range langs {
		s[l] = struct{}{}
	}
	return s
}

// ParseSet creates a set from user-facing names.
func ParseSet(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[Parse(n)] = struct{}{}
	}
	return s
}

// Contains reports whether l is in the set.
func (s Set) Contains(l Language) bool {
	_, ok := s[l]
	return ok
}

// Any reports whether any of langs is in the set.
func (s Set) Any(langs ...Language) bool {
	for _, l := range langs {
		if s.Contains(l) {
			return true
		}
	}
	return false
}
