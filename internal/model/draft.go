package model

import "time"

// Draft generation modes.
const (
	GeneratedByLLM      = "llm"
	GeneratedByTemplate = "template"
)

// EmailDraft is the rendered outreach email for one request.
type EmailDraft struct {
	Subject            string `json:"subject"`
	Intro              string `json:"intro"`
	Body               string `json:"body"`
	RecipientFirstName string `json:"recipient_first_name"`
	GeneratedBy        string `json:"generated_by"`
}

// DraftRecord is a finished request as persisted to history and sinks.
type DraftRecord struct {
	ID          string       `json:"id"`
	CompanyName string       `json:"company_name"`
	Facts       CompanyFacts `json:"facts"`
	Draft       EmailDraft   `json:"draft"`
	CEOEmail    string       `json:"ceo_email,omitempty"`
	Sources     []SourceID   `json:"sources,omitempty"`
	Synthesis   string       `json:"synthesis,omitempty"`
	CacheHit    bool         `json:"cache_hit"`
	DurationMS  int64        `json:"duration_ms"`
	CreatedAt   time.Time    `json:"created_at"`
}
