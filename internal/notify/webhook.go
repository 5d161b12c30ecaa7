// Package notify posts per-incident alerts to an optional bot webhook.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scanner_heatmap/internal/config"
)

// Alert describes one stored incident for the outbound post.
type Alert struct {
	Type     string
	Location string
	Lat      float64
	Lon      float64
	At       time.Time
}

// Send posts the alert if a webhook is configured; a blank URL is a no-op.
// Failures are the caller's to log, never to retry.
func Send(client *http.Client, cfg config.WebhookConfig, a Alert) error {
	if cfg.URL == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	text := fmt.Sprintf("🚨 %s at %s (%.4f, %.4f) — %s",
		a.Type, a.Location, a.Lat, a.Lon, a.At.Format("15:04:05 MST"))
	payload := map[string]string{"text": text}
	if cfg.BotID != "" {
		payload["bot_id"] = cfg.BotID
	}
	buf, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewBuffer(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
