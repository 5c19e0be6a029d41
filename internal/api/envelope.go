package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/outreach"
)

// APIVersion is reported in every success envelope.
const APIVersion = "1.0"

// timestampLayout renders generated_at as e.g. "2025-01-02 15:04:05 UTC".
const timestampLayout = "2006-01-02 15:04:05 UTC"

// Failure messages returned in the envelope's message field.
const (
	msgGenerateFailed = "Failed to generate outreach email"
	msgBadRequest     = "Invalid request"
	msgUnauthorized   = "Unauthorized"
	msgRateLimited    = "Too many requests"
)

// generateRequest is the body of POST /api/generate-outreach.
type generateRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=200"`
}

// CompanyDetails is the facts block of a success envelope. Absent facts
// encode as null.
type CompanyDetails struct {
	Description      *string `json:"description"`
	TechnologyFocus  *string `json:"technology_focus"`
	RecentNews       *string `json:"recent_news"`
	ImpressiveMetric *string `json:"impressive_metric"`
}

// OutreachData is the data block of a success envelope.
type OutreachData struct {
	CompanyName    string         `json:"company_name"`
	CEOName        *string        `json:"ceo_name"`
	CEOEmail       string         `json:"ceo_email,omitempty"`
	EmailContent   string         `json:"email_content"`
	SubjectLine    string         `json:"subject_line"`
	CompanyDetails CompanyDetails `json:"company_details"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	GeneratedAt           string  `json:"generated_at"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	CacheHit              bool    `json:"cache_hit"`
	APIVersion            string  `json:"api_version"`
}

// SuccessResponse is the envelope for a generated draft.
type SuccessResponse struct {
	Success  bool         `json:"success"`
	Data     OutreachData `json:"data"`
	Metadata Metadata     `json:"metadata"`
}

// ErrorResponse is the envelope for every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewSuccessResponse builds the success envelope for a result.
func NewSuccessResponse(res *outreach.Result, elapsed time.Duration) SuccessResponse {
	f := res.Facts
	ceo := f.CEOName
	if ceo == "" {
		ceo = f.FounderName
	}
	generated := res.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return SuccessResponse{
		Success: true,
		Data: OutreachData{
			CompanyName:  res.CompanyName,
			CEOName:      nullable(ceo),
			CEOEmail:     res.CEOEmail,
			EmailContent: res.Draft.Body,
			SubjectLine:  res.Draft.Subject,
			CompanyDetails: CompanyDetails{
				Description:      nullable(f.Description),
				TechnologyFocus:  nullable(f.TechnologyFocus),
				RecentNews:       nullable(f.RecentNews),
				ImpressiveMetric: nullable(f.ImpressiveMetric),
			},
		},
		Metadata: Metadata{
			GeneratedAt:           generated.UTC().Format(timestampLayout),
			ProcessingTimeSeconds: roundSeconds(elapsed),
			CacheHit:              res.CacheHit,
			APIVersion:            APIVersion,
		},
	}
}

// NewErrorResponse builds the failure envelope for a pipeline error.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: err.Error(), Message: msgGenerateFailed}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// roundSeconds reports d in seconds with two decimals.
func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()/10) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: errText, Message: message})
}
