package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "openrouter/cypher-alpha:free", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.False(t, cfg.MCP)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("FLOWLENS_LISTEN_ADDR", ":9999")
	t.Setenv("FLOWLENS_MODEL", "deepseek/deepseek-r1:free")
	t.Setenv("FLOWLENS_LOG_LEVEL", "debug")
	t.Setenv("FLOWLENS_MCP", "true")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "deepseek/deepseek-r1:free", cfg.Model)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MCP)
}

func TestLoadConfigMissingAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeConfig, schema.ErrorCode(err))
}

func TestDurationParsing(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 90*time.Second, cfg.requestTimeout())
	assert.Equal(t, 720*time.Hour, cfg.retainFor())

	cfg.RequestTimeout = "2m"
	cfg.RetainFor = "24h"
	assert.Equal(t, 2*time.Minute, cfg.requestTimeout())
	assert.Equal(t, 24*time.Hour, cfg.retainFor())

	cfg.RequestTimeout = "garbage"
	cfg.RetainFor = "-5h"
	assert.Equal(t, 90*time.Second, cfg.requestTimeout())
	assert.Equal(t, 720*time.Hour, cfg.retainFor())
}
