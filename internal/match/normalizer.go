// Package match implements the fuzzy product-matching engine: text
// normalization, alias resolution, multi-factor scoring, and candidate
// ranking. All functions are pure and safe for concurrent use.
package match

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	nonQueryCharsRegex = regexp.MustCompile(`[^a-z0-9%\s]+`)
	percentRegex       = regexp.MustCompile(`(\d+)%`)
)

// Plausible cacao-percentage band; figures outside it are label noise
// (serving sizes, daily values) rather than composition signals.
const (
	minPlausiblePercent = 30
	maxPlausiblePercent = 100
)

// minTokenLength is exclusive: tokens this short are discarded.
const minTokenLength = 2

// confusables maps digits that OCR commonly produces in place of visually
// similar letters. Applied only to tokens that contain at least one letter,
// so digit-only tokens and percent figures are left intact.
var confusables = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'5': 's',
	'8': 'b',
}

// NormalizedQuery is the engine's working representation of unstructured
// input. Building it is a pure function of the raw text: the same input
// always yields the same query.
type NormalizedQuery struct {
	Tokens    []string
	Percents  map[int]struct{}
	RawLength int // length of the original text, diagnostics only
}

// Normalize cleans raw noisy text (typically OCR output) into tokens and
// numeric signals. It never fails: malformed or empty input yields a query
// with empty token and percent sets.
func Normalize(raw string) NormalizedQuery {
	q := NormalizedQuery{
		Percents:  make(map[int]struct{}),
		RawLength: len(raw),
	}

	cleaned := nonQueryCharsRegex.ReplaceAllString(strings.ToLower(raw), " ")

	// Percent extraction runs before the confusable remap so figures like
	// "70%" are read from the text as printed.
	for _, m := range percentRegex.FindAllStringSubmatch(cleaned, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v >= minPlausiblePercent && v <= maxPlausiblePercent {
			q.Percents[v] = struct{}{}
		}
	}

	for _, word := range strings.Fields(cleaned) {
		if len(word) <= minTokenLength {
			continue
		}
		word = fixConfusables(word)
		word = strings.ReplaceAll(word, "%", "")
		if word == "" {
			continue
		}
		q.Tokens = append(q.Tokens, word)
	}

	return q
}

// fixConfusables remaps misread digits inside alphabetic tokens
// (e.g. "va1rh0na" -> "valrhona"). Digit-only tokens are untouched.
func fixConfusables(word string) string {
	hasLetter := false
	for _, r := range word {
		if r >= 'a' && r <= 'z' {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return word
	}

	return strings.Map(func(r rune) rune {
		if sub, ok := confusables[r]; ok {
			return sub
		}
		return r
	}, word)
}

// tokenSet builds a membership set over a token sequence.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
