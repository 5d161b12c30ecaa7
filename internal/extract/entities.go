package extract

import (
	"regexp"
	"sort"
	"strings"
)

// GazetteerExtractor recognizes place-like spans with a known-place list and
// a facility-suffix heuristic. It stands in for model-backed NER; anything
// implementing EntityExtractor can replace it.
type GazetteerExtractor struct {
	places []string
}

var defaultGazetteer = []string{
	"Manhattan", "Brooklyn", "Queens", "The Bronx", "Staten Island",
	"Harlem", "East Harlem", "Times Square", "Central Park", "Chinatown",
	"SoHo", "Tribeca", "Williamsburg", "Astoria", "Flushing", "Jamaica",
	"East Village", "Greenwich Village", "Lower East Side", "Upper West Side",
	"Upper East Side", "Midtown", "Coney Island", "Prospect Park",
	"Union Square", "Wall Street", "Battery Park", "Bryant Park",
	"Madison Square Garden", "Penn Station", "Grand Central Terminal",
	"Port Authority", "Rockefeller Center", "Washington Heights", "Inwood",
	"Bushwick", "Bedford-Stuyvesant", "Crown Heights", "Flatbush",
	"Long Island City", "Jackson Heights", "Ridgewood", "Sunset Park",
}

// Capitalized phrase ending in a facility/landmark word.
var facilityPattern = regexp.MustCompile(`\b((?:[A-Z][A-Za-z'’-]*\s+)+(?:Park|Hospital|School|Station|Bridge|Airport|Plaza|Center|Square|Mall|Stadium|Library|Church|Cemetery|Terminal|Market|Courthouse|Precinct))\b`)

// NewGazetteerExtractor combines the built-in place list with extra entries
// from configuration.
func NewGazetteerExtractor(extra []string) *GazetteerExtractor {
	places := append([]string{}, defaultGazetteer...)
	for _, p := range extra {
		if strings.TrimSpace(p) != "" {
			places = append(places, strings.TrimSpace(p))
		}
	}
	return &GazetteerExtractor{places: places}
}

type span struct {
	start int
	text  string
}

// Entities returns place-like spans in textual order. Gazetteer hits report
// their canonical casing; facility matches report the matched text.
func (g *GazetteerExtractor) Entities(text string) []string {
	lower := strings.ToLower(text)
	var spans []span
	for _, place := range g.places {
		idx := indexWord(lower, strings.ToLower(place))
		if idx >= 0 {
			spans = append(spans, span{start: idx, text: place})
		}
	}
	for _, loc := range facilityPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, span{start: loc[0], text: text[loc[0]:loc[1]]})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make([]string, 0, len(spans))
	seen := map[string]bool{}
	for _, s := range spans {
		key := strings.ToLower(s.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.text)
	}
	return out
}

// indexWord reports the offset of needle in haystack when it sits on word
// boundaries, or -1.
func indexWord(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(needle)
		beforeOK := idx == 0 || !isWordByte(haystack[idx-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
