package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ZeroShotClassifier calls a hosted zero-shot classification endpoint
// (Hugging Face inference API shape, e.g. a bart-large-mnli deployment).
type ZeroShotClassifier struct {
	client *http.Client
	url    string
	token  string
}

// NewZeroShotClassifier builds a remote classifier for the given endpoint.
func NewZeroShotClassifier(client *http.Client, url, token string) *ZeroShotClassifier {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ZeroShotClassifier{client: client, url: strings.TrimSpace(url), token: strings.TrimSpace(token)}
}

// Classify posts the sentence with the candidate label set and zips the
// returned labels/scores arrays into predictions.
func (c *ZeroShotClassifier) Classify(ctx context.Context, text string, labels []string) ([]Prediction, error) {
	if c.url == "" {
		return nil, errors.New("zero-shot endpoint not configured")
	}
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": labels,
		},
	}
	buf, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("zero-shot status %d", resp.StatusCode)
	}

	var decoded struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if len(decoded.Labels) == 0 || len(decoded.Labels) != len(decoded.Scores) {
		return nil, errors.New("malformed zero-shot response")
	}

	preds := make([]Prediction, 0, len(decoded.Labels))
	for i, label := range decoded.Labels {
		preds = append(preds, Prediction{Label: label, Score: decoded.Scores[i]})
	}
	return preds, nil
}
