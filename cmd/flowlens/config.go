package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/flowlens/flowlens/pkg/schema"
)

// Config holds all flowlens server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr     string `json:"listen_addr"`
	DBPath         string `json:"db_path"`
	LogLevel       string `json:"log_level"`
	Model          string `json:"model"`
	BaseURL        string `json:"base_url"`
	RequestTimeout string `json:"request_timeout"`
	RetainFor      string `json:"retain_for"`
	PruneSchedule  string `json:"prune_schedule"`
	MCP            bool   `json:"mcp"`

	// APIKey comes exclusively from the environment; it is never written to
	// or read from settings.json.
	APIKey string `json:"-"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		DBPath:         filepath.Join(flowlensDir(), "flowlens.db"),
		LogLevel:       "info",
		Model:          "openrouter/cypher-alpha:free",
		RequestTimeout: "90s",
		RetainFor:      "720h", // 30 days
		PruneSchedule:  "0 3 * * *",
	}
}

func flowlensDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowlens"
	}
	return filepath.Join(home, ".flowlens")
}

func settingsPath() string {
	return filepath.Join(flowlensDir(), "settings.json")
}

// loadConfig layers settings.json and env vars over the defaults. A missing
// API key is a startup configuration error, not a runtime data error.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWLENS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FLOWLENS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLOWLENS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWLENS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FLOWLENS_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FLOWLENS_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = v
	}
	if v := os.Getenv("FLOWLENS_RETAIN_FOR"); v != "" {
		cfg.RetainFor = v
	}
	if v := os.Getenv("FLOWLENS_PRUNE_SCHEDULE"); v != "" {
		cfg.PruneSchedule = v
	}
	if v := os.Getenv("FLOWLENS_MCP"); v != "" {
		cfg.MCP = v == "true" || v == "1"
	}

	cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	if cfg.APIKey == "" {
		return cfg, schema.NewError(schema.ErrCodeConfig,
			"OPENROUTER_API_KEY is not set; the model API cannot be reached")
	}

	return cfg, nil
}

// requestTimeout parses the configured timeout, falling back to the default.
func (c Config) requestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}

// retainFor parses the configured retention window, falling back to 30 days.
func (c Config) retainFor() time.Duration {
	d, err := time.ParseDuration(c.RetainFor)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}
