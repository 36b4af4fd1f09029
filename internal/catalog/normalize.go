package catalog

import (
	"regexp"
	"strings"
)

// apostropheReplacer drops straight and curly apostrophes. Curly variants show up
// when checklist pages are edited in a word processor.
var apostropheReplacer = strings.NewReplacer(
	"'", "",
	"’", "", // right single quote
	"‘", "", // left single quote
)

// Normalize lowercases s, strips apostrophes, collapses every run of whitespace
// (tabs included) to a single space and trims the result. Catalog keys and input
// labels both go through this before any matching.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = apostropheReplacer.Replace(s)
	return CollapseSpaces(s)
}

// CollapseSpaces collapses whitespace runs to a single space and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// wordPattern builds the whole-word matcher for a normalized key: the key must
// be bounded by a non-word character or the string edge on both sides. Unlike
// \b this also holds for keys that start or end with punctuation ("s.p.").
// Submatch 1 is the key itself.
func wordPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\W)(` + regexp.QuoteMeta(key) + `)(?:\W|$)`)
}
