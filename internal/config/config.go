package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the dashboard service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig controls the HTTP, metrics and gRPC health listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GRPCAddress     string        `yaml:"grpcAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
}

// UpstreamConfig configures access to the sentiment analysis API.
type UpstreamConfig struct {
	BaseURL       string        `yaml:"baseURL"`
	KeywordsPath  string        `yaml:"keywordsPath"`
	SentimentPath string        `yaml:"sentimentPath"`
	Timeout       time.Duration `yaml:"timeout"`
	// RateLimit bounds outbound requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
}

// DashboardConfig holds presentation defaults.
type DashboardConfig struct {
	DefaultKeyword string `yaml:"defaultKeyword"`
	WindowDays     int    `yaml:"windowDays"`
	Timezone       string `yaml:"timezone"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheValkey = "valkey"
)

// CacheConfig controls caching of the keyword suggestions.
type CacheConfig struct {
	Kind         string        `yaml:"kind"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	KeywordsTTL  time.Duration `yaml:"keywordsTTL"`
}

// Load initialises Config from defaults, an optional YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SENTIMENT_DASHBOARD_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case CacheNone, CacheMemory, CacheValkey:
	default:
		return fmt.Errorf("unknown cache kind %q", c.Cache.Kind)
	}
	if c.Cache.Kind == CacheValkey && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required for the valkey cache")
	}
	if c.Dashboard.WindowDays <= 0 {
		return fmt.Errorf("dashboard.windowDays must be positive")
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("dashboard.timezone: %w", err)
	}
	return nil
}

// Location resolves the display timezone; Validate guarantees it loads.
func (c DashboardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GRPCAddress:     ":50051",
			GracefulTimeout: 10 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:       "http://localhost:5000",
			KeywordsPath:  "/api/keywords",
			SentimentPath: "/api/sentiment",
			Timeout:       45 * time.Second,
			RateLimit:     5,
			Burst:         5,
		},
		Dashboard: DashboardConfig{
			DefaultKeyword: "energie",
			WindowDays:     30,
			Timezone:       "Europe/Bucharest",
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Kind:         CacheMemory,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			KeywordsTTL:  10 * time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTIMENT_DASHBOARD_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_GRPC_ADDRESS"); v != "" {
		cfg.Server.GRPCAddress = v
	}
	if v := os.Getenv("SENTIMENT_API_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("SENTIMENT_API_KEYWORDS_PATH"); v != "" {
		cfg.Upstream.KeywordsPath = v
	}
	if v := os.Getenv("SENTIMENT_API_SENTIMENT_PATH"); v != "" {
		cfg.Upstream.SentimentPath = v
	}
	if v := os.Getenv("SENTIMENT_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("SENTIMENT_API_RATE_LIMIT"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Upstream.RateLimit = r
		}
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_DEFAULT_KEYWORD"); v != "" {
		cfg.Dashboard.DefaultKeyword = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.WindowDays = days
		}
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_TIMEZONE"); v != "" {
		cfg.Dashboard.Timezone = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_KIND"); v != "" {
		cfg.Cache.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_TLS"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("SENTIMENT_DASHBOARD_CACHE_KEYWORDS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.KeywordsTTL = d
		}
	}
}
