// Package transcribe turns a finite audio clip into plain text. An empty
// transcript is a valid "nothing happened" signal, not an error.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transcriber converts one audio clip into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// OpenAI uploads clips to an OpenAI-compatible /v1/audio/transcriptions
// endpoint.
type OpenAI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAI wires the transcription client. An empty baseURL defaults to
// the public API.
func NewOpenAI(client *http.Client, baseURL, apiKey, model string) *OpenAI {
	if client == nil {
		client = &http.Client{Timeout: 180 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.openai.com"
	}
	if strings.TrimSpace(model) == "" {
		model = "whisper-1"
	}
	return &OpenAI{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, model: model}
}

// Transcribe uploads the file as multipart form data and returns the
// transcript text.
func (o *OpenAI) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", o.model); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription status %d: %s", resp.StatusCode, string(payload))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return strings.TrimSpace(decoded.Text), nil
}
