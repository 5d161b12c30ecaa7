package extract

import (
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// SplitSentences splits transcript text into trimmed sentence units,
// preserving original order. The orchestrator relies on this order as its
// tie-break: the first sentence to yield a complete incident wins.
func SplitSentences(text string) []string {
	var out []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
