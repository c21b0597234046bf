// Package config handles configuration loading for marketdesk.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	Prices   PricesConfig   `mapstructure:"prices"   yaml:"prices"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Market   MarketConfig   `mapstructure:"market"   yaml:"market"`
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// NewsConfig holds news aggregation settings.
type NewsConfig struct {
	TTL        time.Duration `mapstructure:"ttl"         yaml:"ttl"`
	Source     string        `mapstructure:"source"      yaml:"source"` // "search" or "rss"
	ChunkSize  int           `mapstructure:"chunk_size"  yaml:"chunk_size"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
}

// PricesConfig holds price cache settings.
type PricesConfig struct {
	TTL        time.Duration `mapstructure:"ttl"         yaml:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
	ChartTTL   time.Duration `mapstructure:"chart_ttl"   yaml:"chart_ttl"`
}

// CacheConfig selects the backend that holds the TTL caches.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"   yaml:"backend"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// CalendarConfig holds economic calendar settings.
type CalendarConfig struct {
	CacheFile       string        `mapstructure:"cache_file"       yaml:"cache_file"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"        yaml:"cache_ttl"`
	MonthsBack      int           `mapstructure:"months_back"      yaml:"months_back"`
	MonthsAhead     int           `mapstructure:"months_ahead"     yaml:"months_ahead"`
	Currencies      []string      `mapstructure:"currencies"       yaml:"currencies"`
	Strict          bool          `mapstructure:"strict"           yaml:"strict"`
	StrictCurrency  string        `mapstructure:"strict_currency"  yaml:"strict_currency"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
	Throttle        time.Duration `mapstructure:"throttle"         yaml:"throttle"`
	FallbackWindow  int           `mapstructure:"fallback_window"  yaml:"fallback_window"` // days
	ScrapeBaseURL   string        `mapstructure:"scrape_base_url"  yaml:"scrape_base_url"`
	DisableScraping bool          `mapstructure:"disable_scraping" yaml:"disable_scraping"`
}

// MarketConfig holds market data gateway settings.
type MarketConfig struct {
	BaseURL        string        `mapstructure:"base_url"        yaml:"base_url"`
	RSSURL         string        `mapstructure:"rss_url"         yaml:"rss_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst          int           `mapstructure:"burst"           yaml:"burst"`
}

// LLMConfig holds text generation provider configuration.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"      yaml:"provider"` // "openai" or "anthropic"
	BaseURL      string        `mapstructure:"base_url"      yaml:"base_url"`
	APIKey       string        `mapstructure:"api_key"       yaml:"api_key"`
	AnthropicKey string        `mapstructure:"anthropic_key" yaml:"anthropic_key"`
	Model        string        `mapstructure:"model"         yaml:"model"`
	Temperature  float64       `mapstructure:"temperature"   yaml:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"    yaml:"max_tokens"`
	TopP         float64       `mapstructure:"top_p"         yaml:"top_p"`
	Timeout      time.Duration `mapstructure:"timeout"       yaml:"timeout"`
}

// AnalysisConfig holds analysis service settings.
type AnalysisConfig struct {
	FetchArticleBody bool `mapstructure:"fetch_article_body" yaml:"fetch_article_body"`
	ArticleBodyLimit int  `mapstructure:"article_body_limit" yaml:"article_body_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketdesk/config.yaml (home directory)
//  3. /etc/marketdesk/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETDESK_<SECTION>_<KEY>, e.g., MARKETDESK_LLM_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketdesk"))
	v.AddConfigPath("/etc/marketdesk")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MARKETDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.request_timeout", 60*time.Second)

	// News defaults
	v.SetDefault("news.ttl", 60*time.Second)
	v.SetDefault("news.source", "search")
	v.SetDefault("news.chunk_size", 3)
	v.SetDefault("news.max_entries", 2048)

	// Price defaults
	v.SetDefault("prices.ttl", 15*time.Second)
	v.SetDefault("prices.max_entries", 4096)
	v.SetDefault("prices.chart_ttl", 5*time.Minute)

	// Cache backend
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")

	// Calendar defaults
	v.SetDefault("calendar.cache_file", "data/economic_calendar.json")
	v.SetDefault("calendar.cache_ttl", 12*time.Hour)
	v.SetDefault("calendar.months_back", 1)
	v.SetDefault("calendar.months_ahead", 2)
	v.SetDefault("calendar.currencies", []string{"USD", "EUR", "GBP", "JPY", "CNY"})
	v.SetDefault("calendar.strict", false)
	v.SetDefault("calendar.strict_currency", "USD")
	v.SetDefault("calendar.request_timeout", 5*time.Second)
	v.SetDefault("calendar.throttle", time.Second)
	v.SetDefault("calendar.fallback_window", 60)
	v.SetDefault("calendar.scrape_base_url", "https://www.forexfactory.com/calendar")
	v.SetDefault("calendar.disable_scraping", false)

	// Market data defaults
	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market.rss_url", "https://feeds.finance.yahoo.com/rss/2.0/headline")
	v.SetDefault("market.request_timeout", 10*time.Second)
	v.SetDefault("market.rate_per_second", 5.0)
	v.SetDefault("market.burst", 5)

	// LLM defaults (Groq via its OpenAI-compatible endpoint)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "qwen/qwen3-32b")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.top_p", 1.0)
	v.SetDefault("llm.timeout", 120*time.Second)

	// Analysis defaults
	v.SetDefault("analysis.fetch_article_body", true)
	v.SetDefault("analysis.article_body_limit", 6000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The provider-native names are honored so an existing Groq or Anthropic
// setup works without renaming anything.
func overrideFromEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	}
	if key := os.Getenv("MARKETDESK_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if cfg.LLM.AnthropicKey == "" {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.LLM.AnthropicKey = key
		}
	}
	if key := os.Getenv("MARKETDESK_LLM_ANTHROPIC_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.News.Source {
	case "search", "rss":
	default:
		return fmt.Errorf("config: unknown news.source %q", c.News.Source)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
	if c.News.ChunkSize <= 0 {
		return fmt.Errorf("config: news.chunk_size must be positive, got %d", c.News.ChunkSize)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port out of range: %d", c.API.Port)
	}
	return nil
}

// Addr returns the host:port the API server listens on.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
