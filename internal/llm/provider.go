package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ProviderConfig selects and configures a backend.
type ProviderConfig struct {
	Provider       string
	AnthropicKey   string
	AnthropicModel string
	GeminiKey      string
	GeminiModel    string
}

// New returns the configured generator, or nil when the selected provider
// has no key. A nil Generator disables synthesis and LLM intros.
func New(ctx context.Context, cfg ProviderConfig) (Generator, error) {
	switch cfg.Provider {
	case "", ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			zap.L().Warn("llm: no anthropic key, text generation disabled")
			return nil, nil
		}
		return NewAnthropic(anthropic.NewClient(cfg.AnthropicKey), cfg.AnthropicModel), nil
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			zap.L().Warn("llm: no gemini key, text generation disabled")
			return nil, nil
		}
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
