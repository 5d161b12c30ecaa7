package extract

import (
	"context"
	"regexp"
	"strings"
)

// LexicalClassifier scores labels by keyword evidence. It is the offline
// default backend: deterministic, no network, scores in [0,1].
type LexicalClassifier struct {
	lexicon map[string][]weightedTerm
}

type weightedTerm struct {
	term   string
	weight float64
}

// Built-in evidence terms per incident label. A label not listed here still
// scores when its own name appears in the sentence.
var defaultLexicon = map[string][]weightedTerm{
	"gunfire": {
		{"shots fired", 0.95},
		{"gunfire", 0.95},
		{"gunshot", 0.9},
		{"gunshots", 0.9},
		{"shooting", 0.9},
		{"shots", 0.85},
		{"firearm", 0.75},
	},
	"robbery": {
		{"robbery", 0.95},
		{"robbed", 0.9},
		{"armed robbery", 0.95},
		{"holdup", 0.85},
		{"hold up", 0.8},
		{"burglary", 0.75},
		{"theft", 0.7},
		{"stolen", 0.65},
	},
	"assault": {
		{"assault", 0.95},
		{"assaulted", 0.9},
		{"stabbing", 0.85},
		{"stabbed", 0.85},
		{"attacked", 0.8},
		{"beaten", 0.75},
		{"fight", 0.7},
	},
	"fire": {
		{"structure fire", 0.95},
		{"building fire", 0.9},
		{"flames", 0.85},
		{"fire", 0.85},
		{"burning", 0.8},
		{"smoke", 0.7},
	},
}

// NewLexicalClassifier builds a classifier from the built-in lexicon.
func NewLexicalClassifier() *LexicalClassifier {
	return &LexicalClassifier{lexicon: defaultLexicon}
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Classify returns one prediction per label. The score for a label is the
// highest weight among its evidence terms found in the sentence, on word
// boundaries.
func (c *LexicalClassifier) Classify(ctx context.Context, text string, labels []string) ([]Prediction, error) {
	padded := " " + nonWord.ReplaceAllString(strings.ToLower(text), " ") + " "
	preds := make([]Prediction, 0, len(labels))
	for _, label := range labels {
		score := 0.0
		if strings.Contains(padded, " "+strings.ToLower(label)+" ") {
			score = 0.9
		}
		for _, wt := range c.lexicon[label] {
			if wt.weight > score && strings.Contains(padded, " "+wt.term+" ") {
				score = wt.weight
			}
		}
		preds = append(preds, Prediction{Label: label, Score: score})
	}
	return preds, nil
}
