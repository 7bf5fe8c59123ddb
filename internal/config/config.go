package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single schedule document to extract from.
// Exactly one of URL or Path should be set.
type SourceConfig struct {
	// ID is an internal identifier used for lookup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// URL is fetched over HTTP (or rendered, see Render).
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Path is a local HTML or text file.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// Render loads URL in headless Chromium instead of a plain GET, for
	// schedule tools that build the page with JavaScript.
	Render bool `yaml:"render,omitempty" json:"render,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Level is debug, info or error.
	Level string `yaml:"level" json:"level"`
	// Format is console or json.
	Format string `yaml:"format" json:"format"`
}

// CaptureConfig controls headless Chromium rendering.
type CaptureConfig struct {
	Width      int `yaml:"width" json:"width"`
	Height     int `yaml:"height" json:"height"`
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`

	// WaitSelector is a CSS selector that must be visible before the DOM is
	// read.
	WaitSelector string `yaml:"wait_selector" json:"wait_selector"`
}

// ExportConfig bounds the weekly recurrence of exported events. Dates are
// YYYY-MM-DD in Timezone; empty means "from today for HorizonWeeks".
type ExportConfig struct {
	TermStart    string `yaml:"term_start,omitempty" json:"term_start,omitempty"`
	TermEnd      string `yaml:"term_end,omitempty" json:"term_end,omitempty"`
	HorizonWeeks int    `yaml:"horizon_weeks" json:"horizon_weeks"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone extracted clock times are interpreted in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "0 */6 * * *")
	// for re-extracting all sources.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the HTTP page cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Log     LogConfig     `yaml:"log" json:"log"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`
	Export  ExportConfig  `yaml:"export" json:"export"`

	// Sources is the list of schedule documents refreshed by the server.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "America/New_York"
	defaultRefreshCron  = "0 */6 * * *"
	defaultCacheDir     = "./var/page-cache"
	defaultWidth        = 1280
	defaultHeight       = 2000
	defaultTimeoutSec   = 30
	defaultWaitSelector = "body"
	defaultHorizonWeeks = 16
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		RefreshCron: defaultRefreshCron,
		CacheDir:    defaultCacheDir,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Capture: CaptureConfig{
			Width:        defaultWidth,
			Height:       defaultHeight,
			TimeoutSec:   defaultTimeoutSec,
			WaitSelector: defaultWaitSelector,
		},
		Export: ExportConfig{
			HorizonWeeks: defaultHorizonWeeks,
		},
		Sources:   []SourceConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}

	switch c.Log.Level {
	case "debug", "info", "error":
		// ok
	default:
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "console", "json":
		// ok
	default:
		c.Log.Format = "console"
	}

	if c.Capture.Width <= 0 {
		c.Capture.Width = defaultWidth
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = defaultHeight
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = defaultTimeoutSec
	}
	if c.Capture.WaitSelector == "" {
		c.Capture.WaitSelector = defaultWaitSelector
	}
	if c.Export.HorizonWeeks <= 0 {
		c.Export.HorizonWeeks = defaultHorizonWeeks
	}

	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	// Derive missing source IDs the same way the API looks them up.
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.ID != "" {
			continue
		}
		switch {
		case s.Name != "":
			s.ID = s.Name
		case s.URL != "":
			s.ID = s.URL
		default:
			s.ID = s.Path
		}
	}
}

// Validate reports configuration errors that Normalize cannot repair.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if (s.URL == "") == (s.Path == "") {
			return eris.Errorf("config: source %q must set exactly one of url or path", s.ID)
		}
		if s.Render && s.URL == "" {
			return eris.Errorf("config: source %q sets render without url", s.ID)
		}
		if seen[s.ID] {
			return eris.Errorf("config: duplicate source id %q", s.ID)
		}
		seen[s.ID] = true
	}
	if c.Export.TermStart != "" || c.Export.TermEnd != "" {
		if _, _, err := c.Export.Term(c.Location()); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the YAML config at path, filling defaults and validating it.
// A missing file is created with the defaults, which are then returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, eris.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg := DefaultConfig()
		// The defaults are usable even when they could not be persisted.
		return cfg, Save(path, cfg)
	case err != nil:
		return nil, eris.Wrap(err, "config: read")
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrap(err, "config: parse yaml")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save normalizes cfg and writes it to path with 0600 permissions. The file
// is replaced by rename so readers never observe a partial write.
func Save(path string, cfg *Config) error {
	if path == "" {
		return eris.New("config: path is empty")
	}
	if cfg == nil {
		return eris.New("config: config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return eris.Wrap(err, "config: create dir")
	}

	f, err := os.CreateTemp(dir, ".schedscan-config-*.tmp")
	if err != nil {
		return eris.Wrap(err, "config: create temp file")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0o600); err != nil {
		return eris.Wrap(err, "config: chmod temp file")
	}
	if _, err = f.Write(data); err != nil {
		return eris.Wrap(err, "config: write temp file")
	}
	if err = f.Sync(); err != nil {
		return eris.Wrap(err, "config: sync temp file")
	}
	if err = f.Close(); err != nil {
		return eris.Wrap(err, "config: close temp file")
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return eris.Wrap(err, "config: rename temp file")
	}
	return nil
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Source looks up a configured source by ID.
func (c *Config) Source(id string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}
