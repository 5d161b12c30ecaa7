package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load consults so tests see only what
// they set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_PATH", "STRICT_CONFIG", "ENABLE_WATCHER", "OPENAI_API_KEY",
		"CLIPS_DIR", "WORK_DIR", "STATIC_DIR", "DB_PATH", "HTTP_PORT",
		"QUEUE_SIZE", "ZEROSHOT_URL", "ZEROSHOT_TOKEN", "SCORE_THRESHOLD",
		"GEOCODE_BASE_URL", "GEOCODE_REGION", "NEWS_BASE_URL",
		"OPENAI_BASE_URL", "NEWS_MODEL", "NEWS_MIN_INTERVAL_SEC",
		"WEBHOOK_URL", "WEBHOOK_BOT_ID",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
	// Point at a missing file so a developer's local config never leaks in.
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != ":8000" {
		t.Fatalf("port %q", cfg.HTTPPort)
	}
	if !reflect.DeepEqual(cfg.Extract.Labels, []string{"gunfire", "robbery", "assault", "fire"}) {
		t.Fatalf("labels %v", cfg.Extract.Labels)
	}
	if cfg.Extract.ScoreThreshold != 0.6 {
		t.Fatalf("threshold %v", cfg.Extract.ScoreThreshold)
	}
	if cfg.Geocode.Region != "New York, NY" {
		t.Fatalf("region %q", cfg.Geocode.Region)
	}
	if cfg.Geocode.Timeout() != 5*time.Second {
		t.Fatalf("geocode timeout %v", cfg.Geocode.Timeout())
	}
	if cfg.News.MinInterval() != 4*time.Second {
		t.Fatalf("news interval %v", cfg.News.MinInterval())
	}
	if len(cfg.Heatmap.BBox) != 4 {
		t.Fatalf("bbox %v", cfg.Heatmap.BBox)
	}
	if !cfg.EnableWatcher {
		t.Fatal("watcher should default on")
	}
	if cfg.DBPath != filepath.Join(cfg.WorkDir, "incidents.db") {
		t.Fatalf("db path %q", cfg.DBPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CLIPS_DIR", "/tmp/clips")
	t.Setenv("SCORE_THRESHOLD", "0.75")
	t.Setenv("GEOCODE_REGION", "Newark, NJ")
	t.Setenv("NEWS_MIN_INTERVAL_SEC", "2.5")
	t.Setenv("QUEUE_SIZE", "10")
	t.Setenv("ENABLE_WATCHER", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != ":9090" {
		t.Fatalf("port prefix not normalized: %q", cfg.HTTPPort)
	}
	if cfg.ClipsDir != "/tmp/clips" {
		t.Fatalf("clips dir %q", cfg.ClipsDir)
	}
	if cfg.Extract.ScoreThreshold != 0.75 {
		t.Fatalf("threshold %v", cfg.Extract.ScoreThreshold)
	}
	if cfg.Geocode.Region != "Newark, NJ" {
		t.Fatalf("region %q", cfg.Geocode.Region)
	}
	if cfg.News.MinIntervalSec != 2.5 {
		t.Fatalf("interval %v", cfg.News.MinIntervalSec)
	}
	if cfg.QueueSize != 10 {
		t.Fatalf("queue size %d", cfg.QueueSize)
	}
	if cfg.EnableWatcher {
		t.Fatal("watcher should be disabled")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := strings.Join([]string{
		"http_port: \"7070\"",
		"extract:",
		"  labels: [gunfire, pursuit]",
		"  score_threshold: 0.8",
		"  gazetteer: [Hoboken]",
		"geocode:",
		"  region: \"Jersey City, NJ\"",
		"news:",
		"  model: gpt-4o",
		"  min_interval_sec: 1.5",
		"heatmap:",
		"  bbox: [-74.1, 40.6, -73.9, 40.9]",
		"  width: 320",
		"  height: 240",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != ":7070" {
		t.Fatalf("port %q", cfg.HTTPPort)
	}
	if !reflect.DeepEqual(cfg.Extract.Labels, []string{"gunfire", "pursuit"}) {
		t.Fatalf("labels %v", cfg.Extract.Labels)
	}
	if cfg.Extract.ScoreThreshold != 0.8 {
		t.Fatalf("threshold %v", cfg.Extract.ScoreThreshold)
	}
	if !reflect.DeepEqual(cfg.Extract.Gazetteer, []string{"Hoboken"}) {
		t.Fatalf("gazetteer %v", cfg.Extract.Gazetteer)
	}
	if cfg.Geocode.Region != "Jersey City, NJ" {
		t.Fatalf("region %q", cfg.Geocode.Region)
	}
	if cfg.News.Model != "gpt-4o" || cfg.News.MinIntervalSec != 1.5 {
		t.Fatalf("news %+v", cfg.News)
	}
	if cfg.Heatmap.Width != 320 || cfg.Heatmap.Height != 240 {
		t.Fatalf("heatmap %+v", cfg.Heatmap)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("http_port: \"7070\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != ":6060" {
		t.Fatalf("env should win over file, got %q", cfg.HTTPPort)
	}
}

func TestLoadStrictRejectsMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRICT_CONFIG", "1")

	if _, err := Load(); err == nil {
		t.Fatal("expected strict mode to fail on a missing config file")
	}
}

func TestLoadStrictRejectsBadThreshold(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("http_port: \"7070\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("STRICT_CONFIG", "1")
	t.Setenv("SCORE_THRESHOLD", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected strict mode to reject an out-of-range threshold")
	}
}

func TestLoadBadQueueSizeFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUEUE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QueueSize != 100 {
		t.Fatalf("expected default queue size, got %d", cfg.QueueSize)
	}
}

func TestLoadQueueSizeClamped(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUEUE_SIZE", "100000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QueueSize != 1024 {
		t.Fatalf("expected clamped queue size, got %d", cfg.QueueSize)
	}
}
