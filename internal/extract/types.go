package extract

import (
	"context"

	"scanner_heatmap/internal/geocode"
)

// Incident is the terminal product of the extraction pipeline. A value is
// only ever constructed with all four fields populated.
type Incident struct {
	Type     string  `json:"type"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Prediction pairs a candidate label with its similarity score in [0,1].
type Prediction struct {
	Label string
	Score float64
}

// Classifier scores a sentence against a closed label vocabulary. The
// vocabulary is the complete candidate set; implementations return one
// Prediction per label they scored.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) ([]Prediction, error)
}

// EntityExtractor finds place-like spans in a sentence, in textual order.
type EntityExtractor interface {
	Entities(text string) []string
}

// Geocoder resolves a place phrase to coordinates. The boolean reports
// absence; implementations never surface transport failures to callers.
type Geocoder interface {
	Lookup(ctx context.Context, phrase string) (geocode.Point, bool)
}
