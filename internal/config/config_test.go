package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/slidedit/internal/schema"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SLIDEDIT_CONFIG", "PORT", "SLIDEDIT_API_KEY", "SLIDE_VARIANT", "LABEL_LANG",
		"STATE_BACKEND", "STATE_PATH", "TRANSLATE_URL", "TRANSLATE_API_KEY",
		"TRANSLATE_TIMEOUT", "TRANSLATE_CONCURRENCY", "TRANSLATE_MAX_CHARS",
		"MAX_UPLOAD_BYTES", "STATS_WINDOW",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %s", cfg.Port)
	}
	if cfg.Schema().Variant != schema.VariantNotes {
		t.Errorf("expected notes variant, got %s", cfg.Schema().Variant)
	}
	if cfg.Lang() != schema.LangNone {
		t.Errorf("expected no label language, got %q", cfg.Lang())
	}
	if cfg.StateLocation() != "slidedit_state.json" {
		t.Errorf("unexpected state location %s", cfg.StateLocation())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverridesAndClamps(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLIDE_VARIANT", "footer")
	t.Setenv("LABEL_LANG", "sl")
	t.Setenv("STATE_BACKEND", "sqlite")
	t.Setenv("TRANSLATE_CONCURRENCY", "-2")
	t.Setenv("TRANSLATE_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schema().Variant != schema.VariantFooter {
		t.Errorf("expected footer variant, got %s", cfg.Schema().Variant)
	}
	if cfg.Lang() != schema.LangSL {
		t.Errorf("expected sl, got %q", cfg.Lang())
	}
	if cfg.TranslateConcurrency != 4 {
		t.Errorf("expected clamped concurrency 4, got %d", cfg.TranslateConcurrency)
	}
	if cfg.TranslateTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.TranslateTimeout)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("expected default upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.StateLocation() != "slidedit_state.db" {
		t.Errorf("unexpected state location %s", cfg.StateLocation())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "slidedit.yaml")
	yml := "port: \"9000\"\nvariant: a\ntranslate_url: http://lt:5000\ntranslate_timeout: 45s\nstate_path: /tmp/s.json\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLIDEDIT_CONFIG", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected env to win, got %s", cfg.Port)
	}
	if cfg.TranslateURL != "http://lt:5000" || cfg.TranslateTimeout != 45*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Schema().Variant != schema.VariantFooter {
		t.Errorf("expected footer variant, got %s", cfg.Schema().Variant)
	}
	if cfg.StateLocation() != "/tmp/s.json" {
		t.Errorf("unexpected state location %s", cfg.StateLocation())
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad variant", func(c *Config) { c.Variant = "c" }, true},
		{"bad label lang", func(c *Config) { c.LabelLang = "de" }, true},
		{"bad backend", func(c *Config) { c.StateBackend = "redis" }, true},
		{"sqlite", func(c *Config) { c.StateBackend = BackendSQLite }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
