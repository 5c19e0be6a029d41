package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Serp       SerpConfig       `yaml:"serp" mapstructure:"serp"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Enrichment EnrichmentConfig `yaml:"enrichment" mapstructure:"enrichment"`
	Fanout     FanoutConfig     `yaml:"fanout" mapstructure:"fanout"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Outreach   OutreachConfig   `yaml:"outreach" mapstructure:"outreach"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	APIKey         string   `yaml:"api_key" mapstructure:"api_key"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SearchConfig selects the web search backend.
type SearchConfig struct {
	Provider string  `yaml:"provider" mapstructure:"provider"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// SerpConfig holds SerpAPI settings.
type SerpConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Reader and search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// EnrichmentConfig holds the company/people enrichment API settings.
type EnrichmentConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FanoutConfig configures source fan-out and the request budget.
type FanoutConfig struct {
	Workers            int `yaml:"workers" mapstructure:"workers"`
	AdapterTimeoutSecs int `yaml:"adapter_timeout_secs" mapstructure:"adapter_timeout_secs"`
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BudgetSecs         int `yaml:"budget_secs" mapstructure:"budget_secs"`
	BreakerFailures    int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs   int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// AdapterTimeout returns the per-adapter timeout.
func (f FanoutConfig) AdapterTimeout() time.Duration {
	return time.Duration(f.AdapterTimeoutSecs) * time.Second
}

// Timeout returns the fan-out deadline.
func (f FanoutConfig) Timeout() time.Duration { return time.Duration(f.TimeoutSecs) * time.Second }

// Budget returns the wall-clock budget of one request.
func (f FanoutConfig) Budget() time.Duration { return time.Duration(f.BudgetSecs) * time.Second }

// CacheConfig configures the result cache.
type CacheConfig struct {
	Capacity   int `yaml:"capacity" mapstructure:"capacity"`
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// TTL returns the entry lifetime; zero means entries never expire.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLMinutes) * time.Minute }

// ScrapeConfig configures homepage fetching and domain probing.
type ScrapeConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	ProbeTimeoutMS int     `yaml:"probe_timeout_ms" mapstructure:"probe_timeout_ms"`
	HostRPS        float64 `yaml:"host_rps" mapstructure:"host_rps"`
}

// OutreachConfig configures the rendered email.
type OutreachConfig struct {
	SenderName   string `yaml:"sender_name" mapstructure:"sender_name"`
	CalendarURL  string `yaml:"calendar_url" mapstructure:"calendar_url"`
	ExamplesPath string `yaml:"examples_path" mapstructure:"examples_path"`
}

// StoreConfig configures the draft history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials and the drafts database ID.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	DraftsDB string `yaml:"drafts_db" mapstructure:"drafts_db"`
}

// Load reads configuration from .env, the config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("search.provider", "serp")
	v.SetDefault("search.rps", 2.0)
	v.SetDefault("serp.key", "")
	v.SetDefault("serp.base_url", "https://serpapi.com")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("enrichment.key", "")
	v.SetDefault("enrichment.base_url", "")
	v.SetDefault("fanout.workers", 3)
	v.SetDefault("fanout.adapter_timeout_secs", 8)
	v.SetDefault("fanout.timeout_secs", 10)
	v.SetDefault("fanout.budget_secs", 30)
	v.SetDefault("fanout.breaker_failures", 5)
	v.SetDefault("fanout.breaker_reset_secs", 60)
	v.SetDefault("cache.capacity", 100)
	v.SetDefault("cache.ttl_minutes", 0)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; OutreachBot/1.0)")
	v.SetDefault("scrape.probe_timeout_ms", 2500)
	v.SetDefault("scrape.host_rps", 1.0)
	v.SetDefault("outreach.sender_name", "Tahseen Rashid")
	v.SetDefault("outreach.calendar_url", "")
	v.SetDefault("outreach.examples_path", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.drafts_db", "")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
