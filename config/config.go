package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/soocke/predict-client/domain/inference"
)

// RelPath is the config file location below the XDG config home.
const RelPath = "predict-client/config.json"

// Defaults.
const (
	DefaultBaseURL          = "http://127.0.0.1:8000"
	DefaultMaxResponseBytes = 32 << 20
	DefaultTickMillis       = 50
	DefaultThumbnailCache   = 64
)

// Config holds runtime configuration for the client.
// Fields are loaded from a JSON file, then overridden by environment
// variables and finally by command-line flags.
type Config struct {
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`

	// Backend
	BaseURL               string `json:"base_url"`
	Mode                  string `json:"mode"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"` // 0 = no client-side limit
	MaxResponseBytes      int64  `json:"max_response_bytes"`

	// UI
	FileExtensions     []string `json:"file_extensions"`
	TickMillis         int      `json:"tick_millis"`
	ThumbnailCacheSize int      `json:"thumbnail_cache_size"`
	WindowWidth        int      `json:"window_width"`
	WindowHeight       int      `json:"window_height"`
	DarkMode           bool     `json:"dark_mode"`

	// MetricsAddr enables a Prometheus /metrics listener when non-empty.
	MetricsAddr string `json:"metrics_addr"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		LogLevel:              "info",
		BaseURL:               DefaultBaseURL,
		Mode:                  string(inference.ModeMulti),
		RequestTimeoutSeconds: 0,
		MaxResponseBytes:      DefaultMaxResponseBytes,
		FileExtensions:        []string{".txt"},
		TickMillis:            DefaultTickMillis,
		ThumbnailCacheSize:    DefaultThumbnailCache,
		WindowWidth:           960,
		WindowHeight:          720,
	}
}

// ErrBaseURL reports an unusable backend URL.
var ErrBaseURL = errors.New("base_url must be an absolute http(s) URL")

// Validate clamps/normalizes values to safe ranges. An unusable base URL is
// replaced by the default and reported as ErrBaseURL.
func (c *Config) Validate() error {
	var err error
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if !validURL(c.BaseURL) {
		err = fmt.Errorf("%w: %q", ErrBaseURL, c.BaseURL)
		c.BaseURL = DefaultBaseURL
	}
	if m, ok := inference.ParseMode(c.Mode); ok {
		c.Mode = string(m)
	} else {
		c.Mode = string(inference.ModeMulti)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.TickMillis < 10 || c.TickMillis > 1000 {
		c.TickMillis = DefaultTickMillis
	}
	if c.ThumbnailCacheSize <= 0 {
		c.ThumbnailCacheSize = DefaultThumbnailCache
	}
	if c.WindowWidth < 400 {
		c.WindowWidth = 400
	}
	if c.WindowHeight < 300 {
		c.WindowHeight = 300
	}
	c.FileExtensions = normalizeExtensions(c.FileExtensions)
	return err
}

// DefaultMode returns the configured mode.
func (c *Config) DefaultMode() inference.Mode {
	if m, ok := inference.ParseMode(c.Mode); ok {
		return m
	}
	return inference.ModeMulti
}

// DefaultPath returns the config file path under the XDG config home,
// creating the parent directory if needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(RelPath)
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return []string{".txt"}
	}
	return out
}
