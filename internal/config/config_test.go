package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("WANIKANI_API_TOKEN", "secret")
	t.Setenv("WANIKANI_REQUESTS_PER_MINUTE", "30")
	t.Setenv("SETTINGS_BACKEND", "toml")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")
	t.Setenv("REFRESH_MINUTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WaniKani.Token != "secret" {
		t.Errorf("Token = %q, want secret", cfg.WaniKani.Token)
	}
	if cfg.WaniKani.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want 30", cfg.WaniKani.RequestsPerMinute)
	}
	if cfg.RefreshInterval != 15*time.Minute {
		t.Errorf("RefreshInterval = %v, want fallback 15m", cfg.RefreshInterval)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("EnableMermaidCharts = false, want true")
	}
	if want := filepath.Join(dir, "settings"); cfg.SettingsPath() != want {
		t.Errorf("SettingsPath() = %q, want %q", cfg.SettingsPath(), want)
	}
	if want := filepath.Join(dir, "cache"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("SETTINGS_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for unknown backend")
	}
}

func TestLoad_ReadsQuotedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	// godotenv never overrides a variable that is already set.
	t.Setenv("WANIKANI_API_TOKEN", "")
	os.Unsetenv("WANIKANI_API_TOKEN")

	content := "WANIKANI_API_TOKEN='token with \"double quotes\"'\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := `token with "double quotes"`; cfg.WaniKani.Token != want {
		t.Errorf("Token = %q, want %q", cfg.WaniKani.Token, want)
	}
	if want := filepath.Join(dir, "logs"); cfg.LogDir != want {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, want)
	}
}
