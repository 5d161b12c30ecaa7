// Package ingest drives the audio path: watch the clips directory,
// transcribe each new clip, run extraction, persist the result. A single
// background worker serializes this path; the HTTP serving path never
// blocks on it.
package ingest

import (
	"context"
	"log"
	"net/http"

	"scanner_heatmap/internal/config"
	"scanner_heatmap/internal/events"
	"scanner_heatmap/internal/extract"
	"scanner_heatmap/internal/metrics"
	"scanner_heatmap/internal/notify"
	"scanner_heatmap/internal/store"
	"scanner_heatmap/internal/transcribe"
)

// Worker consumes clip paths from a bounded queue, one at a time.
type Worker struct {
	cfg         config.Config
	store       *store.Store
	pipeline    *extract.Pipeline
	transcriber transcribe.Transcriber
	bus         *events.Bus
	client      *http.Client
	queue       chan string
	done        chan struct{}
}

// NewWorker wires the ingestion worker.
func NewWorker(cfg config.Config, st *store.Store, pipeline *extract.Pipeline, tr transcribe.Transcriber, bus *events.Bus, client *http.Client) *Worker {
	return &Worker{
		cfg:         cfg,
		store:       st,
		pipeline:    pipeline,
		transcriber: tr,
		bus:         bus,
		client:      client,
		queue:       make(chan string, cfg.QueueSize),
		done:        make(chan struct{}),
	}
}

// Enqueue queues a clip path without blocking; false means the queue was
// full and the clip was dropped.
func (w *Worker) Enqueue(path string) bool {
	select {
	case w.queue <- path:
		return true
	default:
		log.Printf("ingest: queue full, dropping %s", path)
		return false
	}
}

// Start launches the single background worker goroutine.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-w.queue:
				w.Process(ctx, path)
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *Worker) Wait() { <-w.done }

// Process handles one clip end to end. Every failure mode degrades to "no
// new incident"; nothing here aborts the worker loop.
func (w *Worker) Process(ctx context.Context, path string) {
	text, err := w.transcriber.Transcribe(ctx, path)
	if err != nil {
		log.Printf("ingest: transcribe %s: %v", path, err)
		return
	}
	metrics.IncTranscripts()
	if text == "" {
		log.Printf("ingest: %s produced no speech", path)
		return
	}

	incident, ok := w.pipeline.Extract(ctx, text)
	if !ok {
		metrics.IncRejected()
		log.Printf("ingest: no actionable incident in %s", path)
		return
	}

	stored, err := w.store.Insert(ctx, incident.Type, incident.Location, incident.Lat, incident.Lon, config.Now())
	if err != nil {
		log.Printf("ingest: persist %s: %v", path, err)
		return
	}
	metrics.IncIncidents()
	log.Printf("ingest: stored incident %d %s at %s", stored.ID, stored.Type, stored.Location)

	if w.bus != nil {
		w.bus.Publish(events.IncidentEvent{
			ID:       stored.ID,
			Type:     stored.Type,
			Location: stored.Location,
			Lat:      stored.Lat,
			Lon:      stored.Lon,
		})
	}
	if err := notify.Send(w.client, w.cfg.Webhook, notify.Alert{
		Type:     stored.Type,
		Location: stored.Location,
		Lat:      stored.Lat,
		Lon:      stored.Lon,
		At:       stored.CreatedAt,
	}); err != nil {
		log.Printf("ingest: webhook: %v", err)
	}
}
