package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

type fakeAnthropic struct {
	got  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestAnthropic_Generate(t *testing.T) {
	fake := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "  Hope you're doing well!  "}},
	}}
	g := NewAnthropic(fake, "")

	out, err := g.Generate(context.Background(), Request{
		System:      "sys",
		Prompt:      "write it",
		Temperature: 0.8,
		MaxTokens:   150,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hope you're doing well!", out)
	assert.Equal(t, DefaultAnthropicModel, fake.got.Model)
	assert.Equal(t, int64(150), fake.got.MaxTokens)
	require.NotNil(t, fake.got.Temperature)
	assert.InDelta(t, 0.8, *fake.got.Temperature, 1e-9)
	require.Len(t, fake.got.System, 1)
	assert.Equal(t, "sys", fake.got.System[0].Text)
	assert.Equal(t, "write it", fake.got.Messages[0].Content)
}

func TestAnthropic_JSONFieldsAppendInstruction(t *testing.T) {
	fake := &fakeAnthropic{resp: &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Text: "{}"}}}}
	g := NewAnthropic(fake, "m")

	_, err := g.Generate(context.Background(), Request{Prompt: "p", Fields: []string{"DESCRIPTION", "CEO_NAME"}})
	require.NoError(t, err)
	assert.Contains(t, fake.got.Messages[0].Content, `"DESCRIPTION", "CEO_NAME"`)
	assert.Empty(t, fake.got.System)
}

func TestAnthropic_EmptyReply(t *testing.T) {
	fake := &fakeAnthropic{resp: &anthropic.MessageResponse{}}
	_, err := NewAnthropic(fake, "m").Generate(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestAnthropic_Error(t *testing.T) {
	fake := &fakeAnthropic{err: errors.New("boom")}
	_, err := NewAnthropic(fake, "m").Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm: anthropic generate")
}

type fakeModels struct {
	model string
	cfg   *genai.GenerateContentConfig
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.cfg = cfg
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	ps := make([]*genai.Part, len(parts))
	for i, p := range parts {
		ps[i] = &genai.Part{Text: p}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: ps}}},
	}
}

func TestGemini_Generate(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"DESCRIPTION":`, `"payments"}`)}
	g := newGemini(fake, "")

	out, err := g.Generate(context.Background(), Request{
		System:      "sys",
		Prompt:      "p",
		Temperature: 0.2,
		MaxTokens:   400,
		Fields:      []string{"DESCRIPTION"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"DESCRIPTION":"payments"}`, out)
	assert.Equal(t, DefaultGeminiModel, fake.model)
	assert.Equal(t, "application/json", fake.cfg.ResponseMIMEType)
	require.NotNil(t, fake.cfg.ResponseSchema)
	assert.Contains(t, fake.cfg.ResponseSchema.Properties, "DESCRIPTION")
	assert.Equal(t, int32(400), fake.cfg.MaxOutputTokens)
	require.NotNil(t, fake.cfg.SystemInstruction)
	assert.Equal(t, "sys", fake.cfg.SystemInstruction.Parts[0].Text)
}

func TestGemini_PlainTextHasNoSchema(t *testing.T) {
	fake := &fakeModels{resp: textResponse("hello")}
	_, err := newGemini(fake, "m").Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Empty(t, fake.cfg.ResponseMIMEType)
	assert.Nil(t, fake.cfg.ResponseSchema)
	assert.Nil(t, fake.cfg.SystemInstruction)
}

func TestGemini_NoCandidates(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{}}
	_, err := newGemini(fake, "m").Generate(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"quota message", errors.New("You exceeded your current quota"), true},
		{"gemini exhausted", errors.New("Error 429, Message: limit, Status: RESOURCE_EXHAUSTED"), true},
		{"credit balance", eris.Wrap(errors.New("Your credit balance is too low"), "llm: anthropic generate"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuotaError(tt.err))
		})
	}
}

func TestIsQuotaError_AnthropicStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "overloaded", "message": "slow down"},
		})
	}))
	defer ts.Close()

	g := NewAnthropic(anthropic.NewClient("k", option.WithBaseURL(ts.URL)), "m")
	_, err := g.Generate(context.Background(), Request{Prompt: "p", MaxTokens: 8})
	require.Error(t, err)

	var apiErr *sdk.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, IsQuotaError(err))
}

func TestNew_NoKeyDisables(t *testing.T) {
	g, err := New(context.Background(), ProviderConfig{Provider: ProviderAnthropic})
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = New(context.Background(), ProviderConfig{Provider: ProviderGemini})
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = New(context.Background(), ProviderConfig{Provider: "openai"})
	assert.Error(t, err)
}

func TestNew_Anthropic(t *testing.T) {
	g, err := New(context.Background(), ProviderConfig{AnthropicKey: "k", AnthropicModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic:m", g.Name())
}
