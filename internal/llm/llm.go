// Package llm provides a provider-neutral text generation interface backed
// by Anthropic or Gemini.
package llm

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
)

// ErrEmptyReply is returned when the backend produced no text.
var ErrEmptyReply = eris.New("llm: empty reply")

// Request is one generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// Fields, when set, asks for a JSON object whose properties are these
	// string fields.
	Fields []string
	// Phase labels the call in cost logs.
	Phase string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

var quotaMarkers = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"credit balance",
	"resource_exhausted",
	"error 429",
}

// IsQuotaError reports whether err means the provider refused the call for
// quota or rate reasons.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// jsonInstruction is appended to prompts for providers without a native
// response schema.
func jsonInstruction(fields []string) string {
	var b strings.Builder
	b.WriteString("\n\nRespond with a single JSON object and nothing else. Keys: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"` + f + `"`)
	}
	b.WriteString(`. Every value is a string; use "unknown" when you do not know.`)
	return b.String()
}
