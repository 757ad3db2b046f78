package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RPCURL        string   `envconfig:"RPC_URL" default:"ws://127.0.0.1:9944"`
	ContentAPIURL string   `envconfig:"CONTENT_API_URL" default:"http://127.0.0.1:3001/v1"`
	RedisURL      string   `envconfig:"REDIS_URL"`
	MySQLDSN      string   `envconfig:"MYSQL_DSN"`
	JWTSecret     string   `envconfig:"JWT_SECRET"`
	Port          string   `envconfig:"PORT" default:"3000"`
	LogLevel      string   `envconfig:"LOG_LEVEL" default:"info"`
	AllowOrigins  []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000"`
	TLSCertFile   string   `envconfig:"TLS_CERT_FILE"`
	TLSKeyFile    string   `envconfig:"TLS_KEY_FILE"`

	SignerSeed string `envconfig:"SIGNER_SEED"`
	SS58Prefix uint16 `envconfig:"SS58_PREFIX" default:"42"`
	FeedCount  int    `envconfig:"FEED_COUNT" default:"20"`

	DiscordToken         string `envconfig:"DISCORD_TOKEN"`
	DiscordChannelID     string `envconfig:"DISCORD_CHANNEL_ID"`
	RelayAddress         string `envconfig:"RELAY_ADDRESS"`
	RelayIntervalSeconds int    `envconfig:"RELAY_INTERVAL_SECONDS" default:"60"`
	SiteURL              string `envconfig:"SITE_URL" default:"http://localhost:3000"`

	ContentTimeout   time.Duration `envconfig:"CONTENT_TIMEOUT" default:"30s"`
	ContentCacheTTL  time.Duration `envconfig:"CONTENT_CACHE_TTL" default:"24h"`
	ContentCacheSize int           `envconfig:"CONTENT_CACHE_SIZE" default:"1024"`
	RateLimit        int           `envconfig:"RATE_LIMIT" default:"120"`
	SweepAfter       time.Duration `envconfig:"SWEEP_AFTER" default:"1h"`
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) RelayInterval() time.Duration {
	return time.Duration(c.RelayIntervalSeconds) * time.Second
}

// ApplySettings overrides fields with active rows of the settings table, keyed by lower-case
// name (rpc_url, discord_token, ...). Empty values and unknown names are ignored.
func (c *Config) ApplySettings(settings map[string]string) error {
	for name, value := range settings {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if err := c.apply(name, value); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) apply(name, value string) error {
	switch name {
	case "rpc_url":
		c.RPCURL = value
	case "content_api_url":
		c.ContentAPIURL = value
	case "jwt_secret":
		c.JWTSecret = value
	case "allow_origins":
		c.AllowOrigins = strings.Split(value, ",")
	case "discord_token":
		c.DiscordToken = value
	case "discord_channel_id":
		c.DiscordChannelID = value
	case "relay_address":
		c.RelayAddress = value
	case "site_url":
		c.SiteURL = value
	case "ss58_prefix":
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return err
		}
		c.SS58Prefix = uint16(n)
	case "feed_count":
		return setInt(&c.FeedCount, value)
	case "rate_limit":
		return setInt(&c.RateLimit, value)
	case "relay_interval_seconds":
		return setInt(&c.RelayIntervalSeconds, value)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}
