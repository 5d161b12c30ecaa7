// Package extract derives structured incident records from transcribed
// scanner audio: sentence segmentation, gated multi-label classification, a
// three-tier location fallback chain, and geocoding, chained per sentence
// with first-complete-record-wins semantics.
package extract

import (
	"context"
	"log"
	"strings"
)

// Pipeline drives the per-sentence extraction chain over a transcript.
type Pipeline struct {
	labels     []string
	threshold  float64
	classifier Classifier
	resolver   *LocationResolver
	geocoder   Geocoder
}

// NewPipeline wires a pipeline. labels is the closed category vocabulary;
// threshold is the minimum classification score to accept a label.
func NewPipeline(labels []string, threshold float64, classifier Classifier, resolver *LocationResolver, geocoder Geocoder) *Pipeline {
	return &Pipeline{
		labels:     append([]string{}, labels...),
		threshold:  threshold,
		classifier: classifier,
		resolver:   resolver,
		geocoder:   geocoder,
	}
}

// Extract evaluates sentences in transcript order. For each sentence:
// classify, resolve a location, geocode. Any absence moves on to the next
// sentence; the first sentence to complete all three stages produces the
// incident and remaining sentences are not evaluated. Exhausting the
// transcript is a normal negative result, not an error.
func (p *Pipeline) Extract(ctx context.Context, transcript string) (Incident, bool) {
	for _, sentence := range SplitSentences(transcript) {
		label, ok := p.classifySentence(ctx, sentence)
		if !ok {
			continue
		}
		phrase, ok := p.resolver.Resolve(sentence)
		if !ok {
			continue
		}
		point, ok := p.geocoder.Lookup(ctx, phrase)
		if !ok {
			continue
		}
		return Incident{Type: label, Location: phrase, Lat: point.Lat, Lon: point.Lon}, true
	}
	return Incident{}, false
}

// classifySentence applies the confidence gate. Ties at the top score go to
// the label that appears first in the vocabulary.
func (p *Pipeline) classifySentence(ctx context.Context, sentence string) (string, bool) {
	if strings.TrimSpace(sentence) == "" {
		return "", false
	}
	preds, err := p.classifier.Classify(ctx, sentence, p.labels)
	if err != nil {
		log.Printf("extract: classify failed: %v", err)
		return "", false
	}
	scores := make(map[string]float64, len(preds))
	for _, pred := range preds {
		if s, ok := scores[pred.Label]; !ok || pred.Score > s {
			scores[pred.Label] = pred.Score
		}
	}
	best := Prediction{Score: -1}
	for _, label := range p.labels {
		if s, ok := scores[label]; ok && s > best.Score {
			best = Prediction{Label: label, Score: s}
		}
	}
	if best.Score < p.threshold {
		return "", false
	}
	return best.Label, true
}
