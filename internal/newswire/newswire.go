// Package newswire produces short AI-written news blurbs for stored
// incidents, throttled by a process-wide minimum-interval gate.
package newswire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"scanner_heatmap/internal/config"
	"scanner_heatmap/internal/metrics"
)

// Placeholder is the fixed user-visible text substituted for any failure in
// the generative path. Callers never see an error.
const Placeholder = "News unavailable at this time."

// Service is the rate-limited client for the generative-text collaborator.
type Service struct {
	client *http.Client
	cfg    config.NewsConfig
	apiKey string
	gate   *Gate
}

// New wires the service. The gate is created here and owned by the service;
// every enrichment request in the process funnels through it.
func New(client *http.Client, cfg config.NewsConfig, apiKey string) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		client: client,
		cfg:    cfg,
		apiKey: strings.TrimSpace(apiKey),
		gate:   NewGate(cfg.MinInterval()),
	}
}

// Gate exposes the shared limiter for status reporting and tests.
func (s *Service) Gate() *Gate { return s.gate }

// Article returns a short news blurb for the incident, or Placeholder on
// any failure (missing credentials, transport error, malformed response).
// The call blocks in the gate before dispatching.
func (s *Service) Article(ctx context.Context, eventType, location string) string {
	if s.apiKey == "" {
		return Placeholder
	}
	s.gate.Wait()
	metrics.IncNewsSent()
	text, err := s.generate(ctx, eventType, location)
	if err != nil {
		metrics.IncNewsFailed()
		log.Printf("newswire: %v", err)
		return Placeholder
	}
	return text
}

func (s *Service) generate(ctx context.Context, eventType, location string) (string, error) {
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/chat/completions"
	payload := map[string]interface{}{
		"model":       s.cfg.Model,
		"temperature": 0.7,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": fmt.Sprintf("Incident type: %s\nLocation: %s", eventType, location)},
		},
	}
	buf, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("news status %d: %s", resp.StatusCode, string(body))
	}

	var wrapper struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return "", err
	}
	if len(wrapper.Choices) == 0 {
		return "", errors.New("empty news response")
	}
	content := strings.TrimSpace(wrapper.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("blank news content")
	}
	return content, nil
}

const systemPrompt = `You write two-sentence breaking-news teasers about local
police-scanner incidents. Plain prose, no headline, no speculation beyond the
provided type and location, no invented names or casualties.`
