// Package search implements the fuzzy clan-name lookup: a deterministic
// sequence of query variants tried in order against the upstream API
// until one of them returns results.
package search

import (
	"context"
	"strings"

	"clash-hub/internal/domain"

	"github.com/rs/zerolog"
)

type Searcher interface {
	SearchClans(ctx context.Context, name, locationID string) ([]domain.Clan, error)
}

// Attempt records one variant try. A failed call is a soft failure: the
// loop moves on to the next variant rather than aborting the search.
type Attempt struct {
	Query string
	Found int
	Err   error
}

// Run tries each variant in order and short-circuits on the first
// non-empty result list. Exhausting every variant yields an empty list,
// not an error; callers treat empty and "not found" identically.
func Run(ctx context.Context, s Searcher, name, locationID string) ([]domain.Clan, []Attempt) {
	logger := zerolog.Ctx(ctx)

	var attempts []Attempt
	for _, v := range Variants(name) {
		clans, err := s.SearchClans(ctx, v, locationID)
		attempts = append(attempts, Attempt{Query: v, Found: len(clans), Err: err})
		if err != nil {
			logger.Debug().Err(err).Str("variant", v).Msg("variant search failed, trying next")
			continue
		}
		if len(clans) > 0 {
			logger.Debug().Str("variant", v).Int("found", len(clans)).Msg("variant search hit")
			return clans, attempts
		}
	}
	return []domain.Clan{}, attempts
}

// Variants generates the ordered query sequence for a name search:
// the original text, case forms, a punctuation-stripped form, word
// prefixes and, for long names, rune-prefix truncations. Duplicates are
// dropped keeping first occurrence.
func Variants(name string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	addCased := func(s string) {
		add(s)
		add(strings.ToLower(s))
		add(strings.ToUpper(s))
	}

	addCased(name)

	if tc := titleCase(name); tc != name {
		add(tc)
	}

	cleaned := strings.TrimSpace(stripPunctuation(name))
	if cleaned != name {
		addCased(cleaned)
	}

	words := strings.Fields(name)
	if len(words) > 1 {
		addCased(words[0])
		addCased(words[0] + " " + words[1])
	}

	if runes := []rune(name); len(runes) > 8 {
		addCased(string(runes[:6]))
		addCased(string(runes[:4]))
	}

	return out
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// titleCase upper-cases the first word character after every word
// boundary, leaving the rest of each word untouched.
func titleCase(s string) string {
	var sb strings.Builder
	prevWord := false
	for _, r := range s {
		if isWordChar(r) && !prevWord {
			sb.WriteString(strings.ToUpper(string(r)))
		} else {
			sb.WriteRune(r)
		}
		prevWord = isWordChar(r)
	}
	return sb.String()
}

// stripPunctuation keeps ASCII letters, digits and whitespace only.
func stripPunctuation(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == ' ' || r == '\t' || r == '\n' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
