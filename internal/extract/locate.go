package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// LocationStrategy attempts to pull a place phrase out of a sentence.
type LocationStrategy func(sentence string) (string, bool)

// LocationResolver runs an ordered fallback chain of strategies. The first
// strategy to produce a non-empty phrase wins; later tiers are never
// consulted after a hit. The ordering is a behavioral contract, not an
// optimization.
type LocationResolver struct {
	strategies []LocationStrategy
}

// NewLocationResolver builds the standard three-tier chain: named entities,
// intersection pattern, title-cased-word heuristic.
func NewLocationResolver(entities EntityExtractor) *LocationResolver {
	return &LocationResolver{
		strategies: []LocationStrategy{
			entityStrategy(entities),
			IntersectionStrategy,
			TitleCaseStrategy,
		},
	}
}

// NewLocationResolverWith builds a resolver over an explicit strategy chain.
// Used by tests to instrument tier invocation.
func NewLocationResolverWith(strategies ...LocationStrategy) *LocationResolver {
	return &LocationResolver{strategies: strategies}
}

// Resolve walks the chain in order and short-circuits on the first hit.
func (r *LocationResolver) Resolve(sentence string) (string, bool) {
	for _, strategy := range r.strategies {
		if phrase, ok := strategy(sentence); ok {
			return phrase, true
		}
	}
	return "", false
}

func entityStrategy(entities EntityExtractor) LocationStrategy {
	return func(sentence string) (string, bool) {
		spans := entities.Entities(sentence)
		if len(spans) == 0 {
			return "", false
		}
		return spans[0], true
	}
}

// "<street> and/& <street>" with optional suffixes, case-insensitive.
// "and" must stand alone as a word; "&" may be flush against its neighbors.
var intersectionPattern = regexp.MustCompile(
	`(?i)\b[A-Za-z0-9]+(?:\s+(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard))?(?:\s+and\s+|\s*&\s*)[A-Za-z0-9]+(?:\s+(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard))?\b`)

// IntersectionStrategy matches cross-street references scanner traffic uses
// ("5th Ave and 42nd St") that entity recognition tends to miss.
func IntersectionStrategy(sentence string) (string, bool) {
	match := intersectionPattern.FindString(sentence)
	if match == "" {
		return "", false
	}
	return strings.TrimSpace(match), true
}

// TitleCaseStrategy is the last-resort guess: the last two title-cased
// tokens of the sentence, in original order, on the assumption that scanner
// chatter capitalizes proper nouns.
func TitleCaseStrategy(sentence string) (string, bool) {
	var titled []string
	for _, token := range strings.Fields(sentence) {
		trimmed := strings.TrimFunc(token, func(r rune) bool {
			return unicode.IsPunct(r)
		})
		if isTitleCased(trimmed) {
			titled = append(titled, trimmed)
		}
	}
	if len(titled) == 0 {
		return "", false
	}
	if len(titled) > 2 {
		titled = titled[len(titled)-2:]
	}
	return strings.Join(titled, " "), true
}

// isTitleCased reports whether the first cased rune is upper and every
// following cased rune is lower, mirroring classic istitle semantics for a
// single token.
func isTitleCased(token string) bool {
	sawCased := false
	for _, r := range token {
		if !unicode.IsLetter(r) {
			continue
		}
		if !sawCased {
			if !unicode.IsUpper(r) {
				return false
			}
			sawCased = true
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return sawCased
}
