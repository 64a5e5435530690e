package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vlooo/internal/config"
)

func TestDefaultPassesValidation(t *testing.T) {
	cfg := config.Default()
	loaded, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if loaded.Backend.BaseURL != cfg.Backend.BaseURL {
		t.Fatalf("defaults not applied: %q", loaded.Backend.BaseURL)
	}
	if loaded.Workflow.StatusPollInterval != 3 || loaded.Workflow.CancelTimeoutSeconds != 2 {
		t.Fatalf("workflow defaults wrong: %+v", loaded.Workflow)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "backend.example.com/"
timeout_seconds = 5

[conversion]
tone_of_voice = "Friendly"
resolution = "720P"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("config file not resolved")
	}
	if cfg.Backend.BaseURL != "http://backend.example.com" {
		t.Fatalf("base URL not normalized: %q", cfg.Backend.BaseURL)
	}
	if cfg.Conversion.ToneOfVoice != "friendly" || cfg.Conversion.Resolution != "720p" {
		t.Fatalf("conversion values not normalized: %+v", cfg.Conversion)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	t.Setenv("VLOOO_BACKEND_URL", "https://override.example.com")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://override.example.com" {
		t.Fatalf("env override ignored: %q", cfg.Backend.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{"tone", func(c *config.Config) { c.Conversion.ToneOfVoice = "shouty" }, "tone_of_voice"},
		{"resolution", func(c *config.Config) { c.Conversion.Resolution = "8k" }, "resolution"},
		{"format", func(c *config.Config) { c.Conversion.OutputFormat = "avi" }, "output_format"},
		{"speed", func(c *config.Config) { c.Conversion.Speed = 3.5 }, "speed"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("expected %q error, got %v", tc.wantSub, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}
