// Package geocode resolves place phrases to coordinates through a
// Nominatim-shaped search endpoint, constrained to one metropolitan region.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scanner_heatmap/internal/config"
	"scanner_heatmap/internal/metrics"
)

// Point is a latitude/longitude pair in floating-point degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Client performs single-shot forward geocoding lookups.
type Client struct {
	client *http.Client
	cfg    config.GeocodeConfig
}

// New wires a client. The http.Client's own timeout is left alone; each
// lookup is bounded by the configured timeout instead.
func New(client *http.Client, cfg config.GeocodeConfig) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{client: client, cfg: cfg}
}

// Lookup resolves a phrase within the configured region. Absence covers
// every failure mode: transport error, timeout, non-2xx status, empty or
// malformed result set. It never retries; only the first candidate is used.
func (c *Client) Lookup(ctx context.Context, phrase string) (Point, bool) {
	point, err := c.lookup(ctx, phrase)
	if err != nil {
		metrics.IncGeocodeMiss()
		log.Printf("geocode: %q: %v", phrase, err)
		return Point{}, false
	}
	return point, true
}

func (c *Client) lookup(ctx context.Context, phrase string) (Point, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return Point{}, errors.New("empty phrase")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	form := url.Values{}
	form.Set("q", phrase+", "+c.cfg.Region)
	form.Set("format", "json")
	form.Set("limit", "1")
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Point{}, fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	// Nominatim serves lat/lon as strings; other deployments use floats.
	var results []struct {
		Lat json.RawMessage `json:"lat"`
		Lon json.RawMessage `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, err
	}
	if len(results) == 0 {
		return Point{}, errors.New("no results")
	}
	lat, err := coordinate(results[0].Lat)
	if err != nil {
		return Point{}, fmt.Errorf("bad lat: %w", err)
	}
	lon, err := coordinate(results[0].Lon)
	if err != nil {
		return Point{}, fmt.Errorf("bad lon: %w", err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// coordinate accepts a JSON number or a quoted decimal string.
func coordinate(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing value")
	}
	trimmed := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if trimmed == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(trimmed, 64)
}
