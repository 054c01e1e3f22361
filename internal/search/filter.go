package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gardonyia/basket/internal/models"
)

// Fold lowercases s and strips diacritics so "München" matches "munchen"
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// MatchesTeam reports whether query is a case- and accent-insensitive
// substring of name
func MatchesTeam(name, query string) bool {
	q := Fold(query)
	if q == "" {
		return false
	}
	return strings.Contains(Fold(name), q)
}

// Filter keeps candidates whose home or away team contains query
func Filter(candidates []models.MatchCandidate, query string) []models.MatchCandidate {
	out := make([]models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if MatchesTeam(c.Home, query) || MatchesTeam(c.Away, query) {
			out = append(out, c)
		}
	}
	return out
}
