package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration derived from a YAML file and
// environment overrides.
type Config struct {
	HTTPPort      string
	ClipsDir      string
	WorkDir       string
	DBPath        string
	StaticDir     string
	QueueSize     int
	StrictConfig  bool
	EnableWatcher bool

	Extract   ExtractConfig
	Geocode   GeocodeConfig
	News      NewsConfig
	Heatmap   HeatmapConfig
	Webhook   WebhookConfig
	OpenAIKey string
}

// ExtractConfig tunes the incident extraction pipeline.
type ExtractConfig struct {
	Labels         []string `json:"labels" yaml:"labels"`
	ScoreThreshold float64  `json:"score_threshold" yaml:"score_threshold"`
	ZeroShotURL    string   `json:"zeroshot_url" yaml:"zeroshot_url"`
	ZeroShotToken  string   `json:"-" yaml:"-"`
	Gazetteer      []string `json:"gazetteer" yaml:"gazetteer"`
}

// GeocodeConfig tunes the external place-name lookup.
type GeocodeConfig struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	Region     string `json:"region" yaml:"region"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
	UserAgent  string `json:"user_agent" yaml:"user_agent"`
}

// NewsConfig tunes the generative blurb path and its global gate.
type NewsConfig struct {
	Model          string  `json:"model" yaml:"model"`
	BaseURL        string  `json:"base_url" yaml:"base_url"`
	MinIntervalSec float64 `json:"min_interval_sec" yaml:"min_interval_sec"`
}

// HeatmapConfig describes the rendered density image.
type HeatmapConfig struct {
	BBox   []float64 `json:"bbox" yaml:"bbox"` // west, south, east, north
	Width  int       `json:"width" yaml:"width"`
	Height int       `json:"height" yaml:"height"`
}

// WebhookConfig describes the optional per-incident alert post.
type WebhookConfig struct {
	URL   string `json:"url" yaml:"url"`
	BotID string `json:"bot_id" yaml:"bot_id"`
}

type fileConfig struct {
	HTTPPort  string        `json:"http_port" yaml:"http_port"`
	ClipsDir  string        `json:"clips_dir" yaml:"clips_dir"`
	WorkDir   string        `json:"work_dir" yaml:"work_dir"`
	DBPath    string        `json:"db_path" yaml:"db_path"`
	StaticDir string        `json:"static_dir" yaml:"static_dir"`
	Extract   ExtractConfig `json:"extract" yaml:"extract"`
	Geocode   GeocodeConfig `json:"geocode" yaml:"geocode"`
	News      NewsConfig    `json:"news" yaml:"news"`
	Heatmap   HeatmapConfig `json:"heatmap" yaml:"heatmap"`
	Webhook   WebhookConfig `json:"webhook" yaml:"webhook"`
}

const (
	defaultPort           = ":8000"
	defaultClipsDir       = "runtime/clips"
	defaultWorkDir        = "runtime/work"
	defaultDBFile         = "incidents.db"
	defaultStaticDir      = "static"
	minQueueSize          = 1
	defaultQueueSize      = 100
	maxQueueSize          = 1024
	defaultScoreThreshold = 0.6
	defaultGeocodeTimeout = 5
	defaultNewsInterval   = 4.0
	defaultNewsModel      = "gpt-4o-mini"
	defaultNewsBaseURL    = "https://api.openai.com"
	defaultGeocodeURL     = "https://nominatim.openstreetmap.org"
	defaultRegion         = "New York, NY"
	defaultUserAgent      = "scanner-heatmap/1.0"
)

var defaultLabels = []string{"gunfire", "robbery", "assault", "fire"}

// NYC-ish extent: west, south, east, north.
var defaultBBox = []float64{-74.26, 40.49, -73.70, 40.92}

// DefaultExtractConfig returns the baked-in extraction defaults.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		Labels:         append([]string{}, defaultLabels...),
		ScoreThreshold: defaultScoreThreshold,
	}
}

// Load reads configuration from the optional YAML file and environment
// variables, applying sane defaults for everything else.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		QueueSize:     defaultQueueSize,
		StrictConfig:  parseBoolEnv("STRICT_CONFIG"),
		EnableWatcher: parseBoolEnvDefault("ENABLE_WATCHER", true),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.ClipsDir = firstNonEmpty(os.Getenv("CLIPS_DIR"), fileCfg.ClipsDir, defaultClipsDir)
	cfg.WorkDir = firstNonEmpty(os.Getenv("WORK_DIR"), fileCfg.WorkDir, defaultWorkDir)
	cfg.StaticDir = firstNonEmpty(os.Getenv("STATIC_DIR"), fileCfg.StaticDir, defaultStaticDir)
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	} else if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	} else {
		cfg.DBPath = filepath.Join(cfg.WorkDir, defaultDBFile)
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	if v := os.Getenv("QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid QUEUE_SIZE=%q, using default %d", v, defaultQueueSize)
			n = defaultQueueSize
		}
		if n < minQueueSize {
			n = minQueueSize
		}
		if n > maxQueueSize {
			n = maxQueueSize
		}
		cfg.QueueSize = n
	}

	cfg.Extract = mergeExtract(DefaultExtractConfig(), fileCfg.Extract)
	cfg.Extract.ZeroShotURL = firstNonEmpty(os.Getenv("ZEROSHOT_URL"), cfg.Extract.ZeroShotURL)
	cfg.Extract.ZeroShotToken = strings.TrimSpace(os.Getenv("ZEROSHOT_TOKEN"))
	if v := os.Getenv("SCORE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			if cfg.StrictConfig {
				return cfg, fmt.Errorf("invalid SCORE_THRESHOLD %q", v)
			}
			log.Printf("invalid SCORE_THRESHOLD=%q (keeping %.2f)", v, cfg.Extract.ScoreThreshold)
		} else {
			cfg.Extract.ScoreThreshold = f
		}
	}

	cfg.Geocode = mergeGeocode(defaultGeocodeConfig(), fileCfg.Geocode)
	cfg.Geocode.BaseURL = firstNonEmpty(os.Getenv("GEOCODE_BASE_URL"), cfg.Geocode.BaseURL)
	cfg.Geocode.Region = firstNonEmpty(os.Getenv("GEOCODE_REGION"), cfg.Geocode.Region)

	cfg.News = mergeNews(defaultNewsConfig(), fileCfg.News)
	cfg.News.BaseURL = firstNonEmpty(os.Getenv("NEWS_BASE_URL"), os.Getenv("OPENAI_BASE_URL"), cfg.News.BaseURL)
	if v := strings.TrimSpace(os.Getenv("NEWS_MODEL")); v != "" {
		cfg.News.Model = v
	}
	if v := os.Getenv("NEWS_MIN_INTERVAL_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			if cfg.StrictConfig {
				return cfg, fmt.Errorf("invalid NEWS_MIN_INTERVAL_SEC %q", v)
			}
			log.Printf("invalid NEWS_MIN_INTERVAL_SEC=%q (keeping %.1f)", v, cfg.News.MinIntervalSec)
		} else {
			cfg.News.MinIntervalSec = f
		}
	}

	cfg.Heatmap = mergeHeatmap(defaultHeatmapConfig(), fileCfg.Heatmap)

	cfg.Webhook = fileCfg.Webhook
	cfg.Webhook.URL = firstNonEmpty(os.Getenv("WEBHOOK_URL"), cfg.Webhook.URL)
	cfg.Webhook.BotID = firstNonEmpty(os.Getenv("WEBHOOK_BOT_ID"), cfg.Webhook.BotID)

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}

	log.Printf("config: clips_dir=%s db=%s labels=%v threshold=%.2f",
		cfg.ClipsDir, cfg.DBPath, cfg.Extract.Labels, cfg.Extract.ScoreThreshold)
	return cfg, nil
}

func defaultGeocodeConfig() GeocodeConfig {
	return GeocodeConfig{
		BaseURL:    defaultGeocodeURL,
		Region:     defaultRegion,
		TimeoutSec: defaultGeocodeTimeout,
		UserAgent:  defaultUserAgent,
	}
}

func defaultNewsConfig() NewsConfig {
	return NewsConfig{
		Model:          defaultNewsModel,
		BaseURL:        defaultNewsBaseURL,
		MinIntervalSec: defaultNewsInterval,
	}
}

func defaultHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{
		BBox:   append([]float64{}, defaultBBox...),
		Width:  640,
		Height: 480,
	}
}

func mergeExtract(base, override ExtractConfig) ExtractConfig {
	if len(override.Labels) > 0 {
		base.Labels = append([]string{}, override.Labels...)
	}
	if override.ScoreThreshold > 0 {
		base.ScoreThreshold = override.ScoreThreshold
	}
	if strings.TrimSpace(override.ZeroShotURL) != "" {
		base.ZeroShotURL = override.ZeroShotURL
	}
	if len(override.Gazetteer) > 0 {
		base.Gazetteer = append([]string{}, override.Gazetteer...)
	}
	return base
}

func mergeGeocode(base, override GeocodeConfig) GeocodeConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Region) != "" {
		base.Region = override.Region
	}
	if override.TimeoutSec > 0 {
		base.TimeoutSec = override.TimeoutSec
	}
	if strings.TrimSpace(override.UserAgent) != "" {
		base.UserAgent = override.UserAgent
	}
	return base
}

func mergeNews(base, override NewsConfig) NewsConfig {
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if override.MinIntervalSec > 0 {
		base.MinIntervalSec = override.MinIntervalSec
	}
	return base
}

func mergeHeatmap(base, override HeatmapConfig) HeatmapConfig {
	if len(override.BBox) == 4 {
		base.BBox = append([]float64{}, override.BBox...)
	}
	if override.Width > 0 {
		base.Width = override.Width
	}
	if override.Height > 0 {
		base.Height = override.Height
	}
	return base
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ClipsDir) == "" {
		return errors.New("CLIPS_DIR is required")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return errors.New("HTTP_PORT is required")
	}
	if len(cfg.Extract.Labels) == 0 {
		return errors.New("extract.labels must not be empty")
	}
	for _, l := range cfg.Extract.Labels {
		if strings.TrimSpace(l) == "" {
			return errors.New("extract.labels must not contain empty entries")
		}
	}
	if cfg.Extract.ScoreThreshold <= 0 || cfg.Extract.ScoreThreshold > 1 {
		return fmt.Errorf("extract.score_threshold must be in (0,1] (got %v)", cfg.Extract.ScoreThreshold)
	}
	if cfg.Geocode.TimeoutSec <= 0 {
		return errors.New("geocode.timeout_sec must be positive")
	}
	if cfg.News.MinIntervalSec <= 0 {
		return errors.New("news.min_interval_sec must be positive")
	}
	if len(cfg.Heatmap.BBox) != 4 {
		return fmt.Errorf("heatmap.bbox must have 4 floats (got %d)", len(cfg.Heatmap.BBox))
	}
	return nil
}

// Timeout returns the configured lookup timeout as a duration.
func (c GeocodeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// MinInterval returns the configured gate interval as a duration.
func (c NewsConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalSec * float64(time.Second))
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseBoolEnvDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return parseBoolEnv(key)
}

// Now returns a UTC time helper for deterministic timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
