package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", path)
	}
	if cfg.Processing.NoiseThreshold != "-30dB" {
		t.Fatalf("expected default noise threshold, got %q", cfg.Processing.NoiseThreshold)
	}
	if cfg.Processing.MinSilenceDuration != 0.5 {
		t.Fatalf("expected default min silence duration, got %v", cfg.Processing.MinSilenceDuration)
	}
	if cfg.Storage.Backend != "supabase" {
		t.Fatalf("expected supabase backend default, got %q", cfg.Storage.Backend)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`work_dir = "` + filepath.Join(dir, "work") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`api_bind = "127.0.0.1:0"`,
		"",
		"[processing]",
		`whisper_model = "SMALL"`,
		"",
		"[workflow]",
		"max_concurrent_jobs = 4",
	}, "\n")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Processing.WhisperModel != "small" {
		t.Fatalf("expected model normalized to lowercase, got %q", cfg.Processing.WhisperModel)
	}
	if cfg.Workflow.MaxConcurrentJobs != 4 {
		t.Fatalf("expected max_concurrent_jobs=4, got %d", cfg.Workflow.MaxConcurrentJobs)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadAppliesEnvCredentials(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "secret")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Supabase.URL != "https://example.supabase.co" {
		t.Fatalf("expected env URL with trailing slash trimmed, got %q", cfg.Supabase.URL)
	}
	if cfg.Supabase.ServiceRoleKey != "secret" {
		t.Fatalf("expected env key, got %q", cfg.Supabase.ServiceRoleKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad backend", func(c *config.Config) { c.Storage.Backend = "gcs" }},
		{"s3 without bucket", func(c *config.Config) { c.Storage.Backend = "s3"; c.Storage.S3Bucket = "" }},
		{"unknown model", func(c *config.Config) { c.Processing.WhisperModel = "enormous" }},
		{"zero silence duration", func(c *config.Config) { c.Processing.MinSilenceDuration = 0 }},
		{"negative padding", func(c *config.Config) { c.Processing.SilencePadding = -1 }},
		{"zero workers", func(c *config.Config) { c.Workflow.MaxConcurrentJobs = 0 }},
		{"zero timeout", func(c *config.Config) { c.Workflow.DownloadTimeout = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[processing]") {
		t.Fatalf("sample config missing processing section")
	}
}
