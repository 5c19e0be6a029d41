package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command mode depends on. Mode is "serve"
// or "research"; every problem found is reported in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimitRPS < 0 {
			errs = append(errs, "server.rate_limit_rps must be >= 0")
		}
		if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
			errs = append(errs, "server.rate_limit_burst must be >= 1 when rate limiting")
		}
	case "research":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Fanout.Workers < 1 || c.Fanout.Workers > 50 {
		errs = append(errs, "fanout.workers must be between 1 and 50")
	}
	if c.Fanout.AdapterTimeoutSecs <= 0 {
		errs = append(errs, "fanout.adapter_timeout_secs must be > 0")
	}
	if c.Fanout.TimeoutSecs <= 0 {
		errs = append(errs, "fanout.timeout_secs must be > 0")
	}
	if c.Fanout.BudgetSecs < c.Fanout.TimeoutSecs {
		errs = append(errs, "fanout.budget_secs must be >= fanout.timeout_secs")
	}
	if c.Cache.Capacity < 1 {
		errs = append(errs, "cache.capacity must be >= 1")
	}
	if c.Cache.TTLMinutes < 0 {
		errs = append(errs, "cache.ttl_minutes must be >= 0")
	}

	switch c.LLM.Provider {
	case "anthropic", "gemini":
	default:
		errs = append(errs, "llm.provider must be anthropic or gemini")
	}
	switch c.Search.Provider {
	case "serp", "jina":
	default:
		errs = append(errs, "search.provider must be serp or jina")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "none", "":
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or none")
	}
	if (c.Notion.Token == "") != (c.Notion.DraftsDB == "") {
		errs = append(errs, "notion.token and notion.drafts_db must be set together")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
