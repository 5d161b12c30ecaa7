// Package httpapi serves the map frontend, the incident listing, the
// enrichment endpoint, and the ops surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"strings"

	"scanner_heatmap/internal/config"
	"scanner_heatmap/internal/events"
	"scanner_heatmap/internal/heatmap"
	"scanner_heatmap/internal/metrics"
	"scanner_heatmap/internal/store"
)

// Default page size for the incident listing.
const listLimit = 100

// Newsroom is the rate-limited generative-text collaborator. It always
// returns displayable text; failures surface as a placeholder string.
type Newsroom interface {
	Article(ctx context.Context, eventType, location string) string
}

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg   config.Config
	store *store.Store
	news  Newsroom
	bus   *events.Bus
}

func NewRouter(cfg config.Config, st *store.Store, news Newsroom, bus *events.Bus) *Router {
	return &Router{cfg: cfg, store: st, news: news, bus: bus}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/incidents", r.incidents)
	mux.HandleFunc("/api/incidents/", r.incidentNews)
	mux.HandleFunc("/api/heatmap.png", r.heatmapImage)
	mux.HandleFunc("/api/stream", r.stream)
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/status", r.status)
	mux.HandleFunc("/ops/metrics", r.opsMetrics)
	mux.Handle("/", http.FileServer(http.Dir(r.cfg.StaticDir)))
}

func (r *Router) incidents(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListRecent(req.Context(), listLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.Incident{}
	}
	respondJSON(w, list)
}

// incidentNews handles /api/incidents/{id}/news.
func (r *Router) incidentNews(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/api/incidents/")
	if !strings.HasSuffix(path, "/news") {
		http.NotFound(w, req)
		return
	}
	idStr := strings.TrimSuffix(path, "/news")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "bad incident id", http.StatusBadRequest)
		return
	}
	incident, err := r.store.Get(req.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	article := r.news.Article(req.Context(), incident.Type, incident.Location)
	respondJSON(w, map[string]any{"id": incident.ID, "article": article})
}

func (r *Router) heatmapImage(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListRecent(req.Context(), 500)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	samples := make([]heatmap.Sample, 0, len(list))
	for _, inc := range list {
		samples = append(samples, heatmap.Sample{Lat: inc.Lat, Lon: inc.Lon})
	}
	img := heatmap.Render(samples, r.cfg.Heatmap)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := png.Encode(w, img); err != nil {
		log.Printf("heatmap encode: %v", err)
	}
}

// stream pushes new incidents over server-sent events.
func (r *Router) stream(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := r.bus.Subscribe()
	defer r.bus.Unsubscribe(ch)
	flusher.Flush()

	for {
		select {
		case <-req.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	list, _ := r.store.ListRecent(req.Context(), 5)
	respondJSON(w, map[string]any{
		"recent":  list,
		"labels":  r.cfg.Extract.Labels,
		"region":  r.cfg.Geocode.Region,
		"metrics": metrics.Snapshot(),
	})
}

func (r *Router) opsMetrics(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, metrics.Snapshot())
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}
