package fourdevs

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Similarity tiers. The resolver branches on exact equality with these.
const (
	ScoreExact    = 1.0
	ScoreContains = 0.8
	ScoreToken    = 0.6
	ScoreNone     = 0.0
)

// minTokenLen is the exclusive lower bound on shared token length.
const minTokenLen = 2

// Normalize lower-cases, trims and strips diacritical marks, so that
// "São Paulo" and "sao paulo" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Similarity scores candidate against query on a coarse ladder:
// identical, containment, shared token, nothing.
func Similarity(query, candidate string) float64 {
	q := Normalize(query)
	c := Normalize(candidate)

	if q == c {
		return ScoreExact
	}
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return ScoreContains
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(c) {
		if utf8.RuneCountInString(tok) > minTokenLen {
			tokens[tok] = struct{}{}
		}
	}
	for _, tok := range strings.Fields(q) {
		if _, ok := tokens[tok]; ok {
			return ScoreToken
		}
	}
	return ScoreNone
}
