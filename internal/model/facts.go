package model

import (
	"strings"
	"time"
)

// SourceID identifies the external source an adapter fetches from.
type SourceID string

const (
	SourceKnown      SourceID = "known"
	SourceEnrichment SourceID = "enrichment"
	SourceWebsite    SourceID = "website"
	SourceWebSearch  SourceID = "websearch"
	SourceNews       SourceID = "news"
)

// sourcePriority orders sources by trust. Lower rank wins.
var sourcePriority = map[SourceID]int{
	SourceKnown:      0,
	SourceEnrichment: 1,
	SourceWebsite:    2,
	SourceWebSearch:  3,
	SourceNews:       4,
}

// Priority returns the trust rank of a source. Unknown sources rank last.
func (s SourceID) Priority() int {
	if p, ok := sourcePriority[s]; ok {
		return p
	}
	return len(sourcePriority)
}

// CompanyFacts is everything known about one company for one request.
// An empty string means the field is absent.
type CompanyFacts struct {
	CompanyName      string `json:"company_name"`
	Description      string `json:"description,omitempty"`
	CEOName          string `json:"ceo_name,omitempty"`
	FounderName      string `json:"founder_name,omitempty"`
	TechnologyFocus  string `json:"technology_focus,omitempty"`
	RecentNews       string `json:"recent_news,omitempty"`
	ImpressiveMetric string `json:"impressive_metric,omitempty"`
	Domain           string `json:"domain,omitempty"`
}

// Field names a mergeable CompanyFacts field.
type Field string

const (
	FieldDescription      Field = "description"
	FieldCEOName          Field = "ceo_name"
	FieldFounderName      Field = "founder_name"
	FieldTechnologyFocus  Field = "technology_focus"
	FieldRecentNews       Field = "recent_news"
	FieldImpressiveMetric Field = "impressive_metric"
	FieldDomain           Field = "domain"
)

// Fields lists every mergeable field in a stable order.
func Fields() []Field {
	return []Field{
		FieldDescription,
		FieldCEOName,
		FieldFounderName,
		FieldTechnologyFocus,
		FieldRecentNews,
		FieldImpressiveMetric,
		FieldDomain,
	}
}

// Get returns the value of a field.
func (f *CompanyFacts) Get(field Field) string {
	if p := f.ptr(field); p != nil {
		return *p
	}
	return ""
}

// Set assigns a trimmed value to a field. Unknown fields are ignored.
func (f *CompanyFacts) Set(field Field, value string) {
	if p := f.ptr(field); p != nil {
		*p = strings.TrimSpace(value)
	}
}

func (f *CompanyFacts) ptr(field Field) *string {
	switch field {
	case FieldDescription:
		return &f.Description
	case FieldCEOName:
		return &f.CEOName
	case FieldFounderName:
		return &f.FounderName
	case FieldTechnologyFocus:
		return &f.TechnologyFocus
	case FieldRecentNews:
		return &f.RecentNews
	case FieldImpressiveMetric:
		return &f.ImpressiveMetric
	case FieldDomain:
		return &f.Domain
	}
	return nil
}

// IsEmpty reports whether no field besides the company name is populated.
func (f CompanyFacts) IsEmpty() bool {
	for _, field := range Fields() {
		if f.Get(field) != "" {
			return false
		}
	}
	return true
}

// Contact returns the CEO name, falling back to the founder name.
func (f CompanyFacts) Contact() string {
	if f.CEOName != "" {
		return f.CEOName
	}
	return f.FounderName
}

// Executive is a person flagged as part of a company's leadership by the
// enrichment source.
type Executive struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Seniority string `json:"seniority,omitempty"`
	Founder   bool   `json:"founder,omitempty"`
}

// SourceResult is the outcome of one adapter invocation.
type SourceResult struct {
	Source     SourceID      `json:"source"`
	Facts      CompanyFacts  `json:"facts"`
	Snippets   []string      `json:"snippets,omitempty"`
	Executives []Executive   `json:"executives,omitempty"`
	Succeeded  bool          `json:"succeeded"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Failed builds an unsuccessful result for a source.
func Failed(source SourceID, err error) SourceResult {
	return SourceResult{Source: source, Err: err}
}

// Error returns the failure reason, or an empty string.
func (r SourceResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
