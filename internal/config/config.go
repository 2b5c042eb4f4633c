package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/state"
)

// State backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Template
	Variant   string `yaml:"variant"`
	LabelLang string `yaml:"label_lang"`

	// Saved state
	StateBackend string `yaml:"state_backend"`
	StatePath    string `yaml:"state_path"`

	// Translation backend
	TranslateURL         string        `yaml:"translate_url"`
	TranslateAPIKey      string        `yaml:"translate_api_key"`
	TranslateTimeout     time.Duration `yaml:"translate_timeout"`
	TranslateConcurrency int           `yaml:"translate_concurrency"`
	TranslateMaxChars    int           `yaml:"translate_max_chars"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Latency stats window
	StatsWindow time.Duration `yaml:"stats_window"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		Variant:              string(schema.VariantNotes),
		StateBackend:         BackendFile,
		TranslateTimeout:     30 * time.Second,
		TranslateConcurrency: 4,
		TranslateMaxChars:    4500,
		MaxUploadBytes:       5 << 20, // 5MB
		StatsWindow:          1 * time.Hour,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// SLIDEDIT_CONFIG if any, and environment variables, in that order of
// increasing precedence.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("SLIDEDIT_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("SLIDEDIT_API_KEY", cfg.APIKey)
	cfg.Variant = envOr("SLIDE_VARIANT", cfg.Variant)
	cfg.LabelLang = envOr("LABEL_LANG", cfg.LabelLang)
	cfg.StateBackend = envOr("STATE_BACKEND", cfg.StateBackend)
	cfg.StatePath = envOr("STATE_PATH", cfg.StatePath)
	cfg.TranslateURL = envOr("TRANSLATE_URL", cfg.TranslateURL)
	cfg.TranslateAPIKey = envOr("TRANSLATE_API_KEY", cfg.TranslateAPIKey)
	cfg.TranslateTimeout = envDuration("TRANSLATE_TIMEOUT", cfg.TranslateTimeout)
	cfg.TranslateConcurrency = envInt("TRANSLATE_CONCURRENCY", cfg.TranslateConcurrency)
	cfg.TranslateMaxChars = envInt("TRANSLATE_MAX_CHARS", cfg.TranslateMaxChars)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	cfg.clamp()
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults without consulting the
// environment.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if err := cfg.overlayFile(path); err != nil {
		return Config{}, err
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) clamp() {
	d := Defaults()
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.StateBackend == "" {
		c.StateBackend = d.StateBackend
	}
	if c.TranslateTimeout <= 0 {
		c.TranslateTimeout = d.TranslateTimeout
	}
	if c.TranslateConcurrency <= 0 {
		c.TranslateConcurrency = d.TranslateConcurrency
	}
	if c.TranslateMaxChars <= 0 {
		c.TranslateMaxChars = d.TranslateMaxChars
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
}

func (c Config) Validate() error {
	if _, err := schema.ParseVariant(c.Variant); err != nil {
		return fmt.Errorf("SLIDE_VARIANT: %w", err)
	}
	if c.LabelLang != "" && !schema.ParseLang(c.LabelLang).Valid() {
		return fmt.Errorf("LABEL_LANG must be sl or en, got %q", c.LabelLang)
	}
	switch c.StateBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("STATE_BACKEND must be %s or %s, got %q", BackendFile, BackendSQLite, c.StateBackend)
	}
	return nil
}

// Schema returns the template schema selected by Variant.
func (c Config) Schema() *schema.Schema {
	v, err := schema.ParseVariant(c.Variant)
	if err != nil {
		v = schema.VariantNotes
	}
	return schema.For(v)
}

// Lang returns the configured label language, or none.
func (c Config) Lang() schema.Lang {
	return schema.ParseLang(c.LabelLang)
}

// StateLocation returns StatePath or the backend's default location.
func (c Config) StateLocation() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	if c.StateBackend == BackendSQLite {
		return state.DefaultSQLitePath
	}
	return state.DefaultPath
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
