package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SS58_PREFIX", "2")
	t.Setenv("ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, uint16(2), cfg.SS58Prefix)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 20, cfg.FeedCount)
	assert.Equal(t, 24*time.Hour, cfg.ContentCacheTTL)
	assert.Equal(t, time.Minute, cfg.RelayInterval())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
}

func TestLoadRejectsBadValue(t *testing.T) {
	t.Setenv("FEED_COUNT", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestApplySettings(t *testing.T) {
	cfg := Config{RPCURL: "ws://env", FeedCount: 20, SS58Prefix: 42}

	require.NoError(t, cfg.ApplySettings(map[string]string{
		"rpc_url":       "wss://settings",
		"discord_token": "  ",
		"feed_count":    "50",
		"ss58_prefix":   "0",
		"unknown":       "x",
	}))
	assert.Equal(t, "wss://settings", cfg.RPCURL)
	assert.Empty(t, cfg.DiscordToken)
	assert.Equal(t, 50, cfg.FeedCount)
	assert.Equal(t, uint16(0), cfg.SS58Prefix)

	err := cfg.ApplySettings(map[string]string{"rate_limit": "fast"})
	assert.ErrorContains(t, err, "setting rate_limit")
}
