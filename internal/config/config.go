package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ganbarometer/internal/wanikani"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Settings backends.
const (
	BackendSQLite = "sqlite"
	BackendTOML   = "toml"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	WaniKani wanikani.Config

	DataPath        string
	LogDir          string
	CacheDir        string
	SettingsBackend string
	SettingsID      string
	MetricsAddr     string
	RefreshInterval time.Duration

	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	backend := getEnv("SETTINGS_BACKEND", BackendSQLite)
	if backend != BackendSQLite && backend != BackendTOML {
		return nil, fmt.Errorf("SETTINGS_BACKEND must be %q or %q, got %q", BackendSQLite, BackendTOML, backend)
	}

	cfg := &AppConfig{
		WaniKani: wanikani.Config{
			BaseURL:           getEnv("WANIKANI_URL", ""),
			Token:             getEnv("WANIKANI_API_TOKEN", ""),
			Revision:          getEnv("WANIKANI_REVISION", ""),
			RequestsPerMinute: getEnvInt("WANIKANI_REQUESTS_PER_MINUTE", 60),
			Timeout:           time.Duration(getEnvInt("WANIKANI_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		DataPath:        dataPath,
		LogDir:          logDir,
		CacheDir:        cacheDir,
		SettingsBackend: backend,
		SettingsID:      getEnv("SETTINGS_ID", "gbSettings"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9464"),
		RefreshInterval: time.Duration(getEnvInt("REFRESH_MINUTES", 15)) * time.Minute,

		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	return cfg, nil
}

// SettingsPath returns where the selected settings backend keeps its data.
func (c *AppConfig) SettingsPath() string {
	if c.SettingsBackend == BackendTOML {
		return filepath.Join(c.DataPath, "settings")
	}
	return filepath.Join(c.DataPath, "settings.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return fallback
}
