package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Gamma       GammaConfig
	Aggregation AggregationConfig
	API         APIConfig
	WatchParty  WatchPartyConfig
}

type GammaConfig struct {
	BaseURL            string
	UserAgent          string
	RequestTimeoutSecs int
	RateLimitPerSecond int
}

type AggregationConfig struct {
	MaxTags          int
	MarketsPerTag    int
	DefaultLimit     int
	TrendingCap      int
	FetchTimeoutSecs int
}

type APIConfig struct {
	BindAddress string
	CORSOrigins []string
}

type WatchPartyConfig struct {
	Enabled bool
}

// Load builds the configuration from defaults, then the optional
// config/default.toml file, then environment variables (highest
// precedence). Env keys follow PMFEED__SECTION__KEY.
func Load() (*Config, error) {
	cfg := &Config{
		Gamma: GammaConfig{
			BaseURL:            "https://gamma-api.polymarket.com",
			UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
			RequestTimeoutSecs: 30,
			RateLimitPerSecond: 20,
		},
		Aggregation: AggregationConfig{
			MaxTags:          100,
			MarketsPerTag:    300,
			DefaultLimit:     20,
			TrendingCap:      100,
			FetchTimeoutSecs: 10,
		},
		API: APIConfig{
			BindAddress: "0.0.0.0:8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		WatchParty: WatchPartyConfig{
			Enabled: true,
		},
	}

	if err := loadTOML(cfg, "config/default.toml"); err != nil {
		return nil, err
	}
	loadEnv(cfg)

	if cfg.Aggregation.MaxTags <= 0 {
		return nil, fmt.Errorf("aggregation.max_tags must be positive, got %d", cfg.Aggregation.MaxTags)
	}
	if cfg.Aggregation.MarketsPerTag <= 0 {
		return nil, fmt.Errorf("aggregation.markets_per_tag must be positive, got %d", cfg.Aggregation.MarketsPerTag)
	}

	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file struct {
		Gamma struct {
			BaseURL            *string `toml:"base_url"`
			UserAgent          *string `toml:"user_agent"`
			RequestTimeoutSecs *int    `toml:"request_timeout_secs"`
			RateLimitPerSecond *int    `toml:"rate_limit_per_second"`
		} `toml:"gamma"`
		Aggregation struct {
			MaxTags          *int `toml:"max_tags"`
			MarketsPerTag    *int `toml:"markets_per_tag"`
			DefaultLimit     *int `toml:"default_limit"`
			TrendingCap      *int `toml:"trending_cap"`
			FetchTimeoutSecs *int `toml:"fetch_timeout_secs"`
		} `toml:"aggregation"`
		API struct {
			BindAddress *string  `toml:"bind_address"`
			CORSOrigins []string `toml:"cors_origins"`
		} `toml:"api"`
		WatchParty struct {
			Enabled *bool `toml:"enabled"`
		} `toml:"watchparty"`
	}

	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.Gamma.BaseURL != nil {
		cfg.Gamma.BaseURL = *file.Gamma.BaseURL
	}
	if file.Gamma.UserAgent != nil {
		cfg.Gamma.UserAgent = *file.Gamma.UserAgent
	}
	if file.Gamma.RequestTimeoutSecs != nil {
		cfg.Gamma.RequestTimeoutSecs = *file.Gamma.RequestTimeoutSecs
	}
	if file.Gamma.RateLimitPerSecond != nil {
		cfg.Gamma.RateLimitPerSecond = *file.Gamma.RateLimitPerSecond
	}
	if file.Aggregation.MaxTags != nil {
		cfg.Aggregation.MaxTags = *file.Aggregation.MaxTags
	}
	if file.Aggregation.MarketsPerTag != nil {
		cfg.Aggregation.MarketsPerTag = *file.Aggregation.MarketsPerTag
	}
	if file.Aggregation.DefaultLimit != nil {
		cfg.Aggregation.DefaultLimit = *file.Aggregation.DefaultLimit
	}
	if file.Aggregation.TrendingCap != nil {
		cfg.Aggregation.TrendingCap = *file.Aggregation.TrendingCap
	}
	if file.Aggregation.FetchTimeoutSecs != nil {
		cfg.Aggregation.FetchTimeoutSecs = *file.Aggregation.FetchTimeoutSecs
	}
	if file.API.BindAddress != nil {
		cfg.API.BindAddress = *file.API.BindAddress
	}
	if file.API.CORSOrigins != nil {
		cfg.API.CORSOrigins = file.API.CORSOrigins
	}
	if file.WatchParty.Enabled != nil {
		cfg.WatchParty.Enabled = *file.WatchParty.Enabled
	}

	return nil
}

func loadEnv(cfg *Config) {
	cfg.Gamma.BaseURL = getEnv("PMFEED__GAMMA__BASE_URL", cfg.Gamma.BaseURL)
	cfg.Gamma.UserAgent = getEnv("PMFEED__GAMMA__USER_AGENT", cfg.Gamma.UserAgent)
	cfg.Gamma.RequestTimeoutSecs = getEnvInt("PMFEED__GAMMA__REQUEST_TIMEOUT_SECS", cfg.Gamma.RequestTimeoutSecs)
	cfg.Gamma.RateLimitPerSecond = getEnvInt("PMFEED__GAMMA__RATE_LIMIT_PER_SECOND", cfg.Gamma.RateLimitPerSecond)

	cfg.Aggregation.MaxTags = getEnvInt("PMFEED__AGGREGATION__MAX_TAGS", cfg.Aggregation.MaxTags)
	cfg.Aggregation.MarketsPerTag = getEnvInt("PMFEED__AGGREGATION__MARKETS_PER_TAG", cfg.Aggregation.MarketsPerTag)
	cfg.Aggregation.DefaultLimit = getEnvInt("PMFEED__AGGREGATION__DEFAULT_LIMIT", cfg.Aggregation.DefaultLimit)
	cfg.Aggregation.TrendingCap = getEnvInt("PMFEED__AGGREGATION__TRENDING_CAP", cfg.Aggregation.TrendingCap)
	cfg.Aggregation.FetchTimeoutSecs = getEnvInt("PMFEED__AGGREGATION__FETCH_TIMEOUT_SECS", cfg.Aggregation.FetchTimeoutSecs)

	cfg.API.BindAddress = getEnv("PMFEED__API__BIND_ADDRESS", cfg.API.BindAddress)
	cfg.API.CORSOrigins = getEnvSlice("PMFEED__API__CORS_ORIGINS", cfg.API.CORSOrigins)

	cfg.WatchParty.Enabled = getEnvBool("PMFEED__WATCHPARTY__ENABLED", cfg.WatchParty.Enabled)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
