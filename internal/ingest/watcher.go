package ingest

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"scanner_heatmap/internal/config"
)

// Watcher monitors the clips directory for new audio files and feeds the
// ingestion worker.
type Watcher struct {
	cfg    config.Config
	worker *Worker
}

func NewWatcher(cfg config.Config, worker *Worker) *Watcher {
	return &Watcher{cfg: cfg, worker: worker}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		log.Println("watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isAudio(evt.Name) {
					w.worker.Enqueue(evt.Name)
				}
			case err := <-watcher.Errors:
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.cfg.ClipsDir)
}

// Backfill enqueues clips already present in the directory.
func (w *Watcher) Backfill() error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.ClipsDir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isAudio(e) {
			w.worker.Enqueue(e)
		}
	}
	return nil
}

func isAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg", ".webm":
		return true
	default:
		return false
	}
}
