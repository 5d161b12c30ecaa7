// Package app wires the service components together.
package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"scanner_heatmap/internal/config"
	"scanner_heatmap/internal/events"
	"scanner_heatmap/internal/extract"
	"scanner_heatmap/internal/geocode"
	"scanner_heatmap/internal/httpapi"
	"scanner_heatmap/internal/ingest"
	"scanner_heatmap/internal/newswire"
	"scanner_heatmap/internal/store"
	"scanner_heatmap/internal/transcribe"
)

// App owns the wired components for one service process.
type App struct {
	cfg     config.Config
	store   *store.Store
	worker  *ingest.Worker
	watcher *ingest.Watcher
	mux     *http.ServeMux
}

// New builds the full dependency graph from configuration.
func New(cfg config.Config) (*App, error) {
	for _, dir := range []string{cfg.WorkDir, cfg.ClipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	classifier := buildClassifier(cfg)
	resolver := extract.NewLocationResolver(extract.NewGazetteerExtractor(cfg.Extract.Gazetteer))
	geocoder := geocode.New(&http.Client{}, cfg.Geocode)
	pipeline := extract.NewPipeline(cfg.Extract.Labels, cfg.Extract.ScoreThreshold, classifier, resolver, geocoder)

	transcriber := transcribe.NewOpenAI(nil, "", cfg.OpenAIKey, "")
	bus := events.NewBus()
	worker := ingest.NewWorker(cfg, st, pipeline, transcriber, bus, &http.Client{Timeout: 15 * time.Second})
	watcher := ingest.NewWatcher(cfg, worker)

	news := newswire.New(nil, cfg.News, cfg.OpenAIKey)
	mux := http.NewServeMux()
	router := httpapi.NewRouter(cfg, st, news, bus)
	router.Register(mux)

	return &App{cfg: cfg, store: st, worker: worker, watcher: watcher, mux: mux}, nil
}

// buildClassifier prefers the remote zero-shot backend when configured and
// falls back to the deterministic lexical scorer.
func buildClassifier(cfg config.Config) extract.Classifier {
	if cfg.Extract.ZeroShotURL != "" {
		log.Printf("classifier: zero-shot endpoint %s", cfg.Extract.ZeroShotURL)
		return extract.NewZeroShotClassifier(nil, cfg.Extract.ZeroShotURL, cfg.Extract.ZeroShotToken)
	}
	log.Printf("classifier: lexical (no zero-shot endpoint configured)")
	return extract.NewLexicalClassifier()
}

// Run starts the worker, watcher, and HTTP server, and blocks until the
// context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.worker.Start(ctx)
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	if err := a.watcher.Backfill(); err != nil {
		log.Printf("backfill: %v", err)
	}
	srv := &http.Server{Addr: a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("http listening on %s", a.cfg.HTTPPort)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *App) Store() *store.Store    { return a.store }
func (a *App) Mux() *http.ServeMux    { return a.mux }
func (a *App) Worker() *ingest.Worker { return a.worker }
