package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Anthropic generates text through the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic wraps an Anthropic client.
func NewAnthropic(client anthropic.Client, model string) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{client: client, model: model}
}

func (a *Anthropic) Name() string { return "anthropic:" + a.model }

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if len(req.Fields) > 0 {
		prompt += jsonInstruction(req.Fields)
	}
	temp := req.Temperature
	mr := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(req.MaxTokens),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	}
	if req.System != "" {
		mr.System = []anthropic.SystemBlock{{Text: req.System}}
	}

	resp, err := a.client.CreateMessage(ctx, mr)
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic generate")
	}
	resp.Usage.LogCost(a.model, req.Phase)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
