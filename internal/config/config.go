// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// DefaultEditorialCollectionID is the Unsplash editorial collection shown
// before any search.
const DefaultEditorialCollectionID = "317099"

// Config is the top-level application configuration.
type Config struct {
	Unsplash      UnsplashConfig      `yaml:"unsplash"`
	Picker        PickerConfig        `yaml:"picker"`
	Cache         CacheConfig         `yaml:"cache"`
	Server        ServerConfig        `yaml:"server"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// UnsplashConfig defines Unsplash API settings.
type UnsplashConfig struct {
	AccessKey string          `yaml:"access_key"`
	SecretKey string          `yaml:"secret_key"`
	APIURL    string          `yaml:"api_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines client-side Unsplash rate limiting.
type RateLimitConfig struct {
	PerSecond   float64 `yaml:"per_second"`
	Burst       int     `yaml:"burst"`
	HourlyLimit int64   `yaml:"hourly_limit"`
}

// PickerConfig defines picker behavior.
type PickerConfig struct {
	// Query, when set, starts the picker on search results instead of the
	// editorial collection.
	Query                   string `yaml:"query"`
	EditorialCollectionID   string `yaml:"editorial_collection_id"`
	PerPage                 int    `yaml:"per_page"`
	ContentFilter           string `yaml:"content_filter"` // low, high
	AllowsMultipleSelection bool   `yaml:"allows_multiple_selection"`
}

// Filter returns the parsed content filter. Validation guarantees it parses.
func (p *PickerConfig) Filter() domain.ContentFilter {
	f, err := domain.ParseContentFilter(p.ContentFilter)
	if err != nil {
		return domain.ContentFilterLow
	}
	return f
}

// CacheConfig defines the API response cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// MemoryCapacity is the number of responses kept in memory.
	MemoryCapacity int `yaml:"memory_capacity"`
	// DiskCapacity is the byte budget of the on-disk cache. Zero disables it.
	DiskCapacity  int64         `yaml:"disk_capacity"`
	DiskPath      string        `yaml:"disk_path"`
	TTL           time.Duration `yaml:"ttl"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// NotificationsConfig defines where selections are delivered.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, console
}

// TracingConfig defines OTLP trace export. Tracing is off unless enabled.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // host:port of an OTLP gRPC collector
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Override adjusts a parsed config before defaults and validation run.
// The CLI uses it to layer flags and UNSPLASH_PICKER_* variables on top of
// the file.
type Override func(*Config)

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string, overrides ...Override) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, overrides...)
}

// Parse parses YAML config content, performing environment variable
// substitution, defaulting, and validation.
func Parse(data []byte, overrides ...Override) (*Config, error) {
	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	for _, o := range overrides {
		o(cfg)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyUnsplashDefaults(&cfg.Unsplash)
	applyPickerDefaults(&cfg.Picker)
	applyCacheDefaults(&cfg.Cache)
	applyServerDefaults(&cfg.Server)
	applyWebhookDefaults(&cfg.Notifications.Webhook)
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyUnsplashDefaults(u *UnsplashConfig) {
	if u.APIURL == "" {
		u.APIURL = "https://api.unsplash.com/"
	}
	if u.Timeout == 0 {
		u.Timeout = 30 * time.Second
	}
	applyRateLimitDefaults(&u.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 4
	}
	if r.HourlyLimit == 0 {
		// Unsplash demo applications are capped at 50 requests per hour.
		r.HourlyLimit = 50
	}
}

func applyPickerDefaults(p *PickerConfig) {
	p.Query = strings.TrimSpace(p.Query)
	if p.EditorialCollectionID == "" {
		p.EditorialCollectionID = DefaultEditorialCollectionID
	}
	if p.PerPage == 0 {
		p.PerPage = 20
	}
	if p.ContentFilter == "" {
		p.ContentFilter = string(domain.ContentFilterLow)
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.MemoryCapacity == 0 {
		c.MemoryCapacity = 128
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
	if c.PurgeInterval == 0 {
		c.PurgeInterval = 15 * time.Minute
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyWebhookDefaults(w *WebhookConfig) {
	if w.Timeout == 0 {
		w.Timeout = 10 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Unsplash.AccessKey == "" {
		errs = append(errs, fmt.Errorf("unsplash.access_key is required"))
	}
	if cfg.Picker.PerPage < 1 || cfg.Picker.PerPage > 30 {
		// The API caps per_page at 30.
		errs = append(
			errs,
			fmt.Errorf("picker.per_page must be between 1 and 30 (got %d)", cfg.Picker.PerPage),
		)
	}
	if _, err := domain.ParseContentFilter(cfg.Picker.ContentFilter); err != nil {
		errs = append(errs, fmt.Errorf("picker.content_filter: %w", err))
	}
	if cfg.Cache.Enabled && cfg.Cache.DiskCapacity > 0 && cfg.Cache.DiskPath == "" {
		errs = append(
			errs,
			fmt.Errorf("cache.disk_path is required when cache.disk_capacity is set"),
		)
	}
	if cfg.Cache.MemoryCapacity < 0 || cfg.Cache.DiskCapacity < 0 {
		errs = append(errs, fmt.Errorf("cache capacities must not be negative"))
	}
	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.webhook.url is required when the webhook is enabled"),
		)
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(
			errs,
			fmt.Errorf("tracing.sample_ratio must be between 0 and 1 (got %g)", cfg.Tracing.SampleRatio),
		)
	}

	switch cfg.Logging.Format {
	case "text", "json", "console":
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"logging.format must be one of: text, json, console (got %q)",
				cfg.Logging.Format,
			),
		)
	}

	return errors.Join(errs...)
}
