// Package synth polishes merged company facts with one text generation call.
package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/merge"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Outcome reports what a synthesis attempt did.
type Outcome string

const (
	OutcomeSkipped      Outcome = "skipped"
	OutcomeApplied      Outcome = "applied"
	OutcomeBackendError Outcome = "backend_error"
	OutcomeQuota        Outcome = "quota_exceeded"
	OutcomeUnparseable  Outcome = "unparseable"
)

const (
	systemPrompt = "You are a venture capital analyst helping to research companies for outreach. " +
		"Provide accurate, specific information with real metrics and achievements when known."

	temperature     = 0.2
	maxTokens       = 400
	maxSnippetChars = 6000
)

// Synthesizer runs the synthesis step. A nil generator makes every call a
// no-op.
type Synthesizer struct {
	gen llm.Generator
}

// New creates a Synthesizer.
func New(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Synthesize asks the generator to fill and sharpen facts. On any failure
// the input facts are returned unchanged.
func (s *Synthesizer) Synthesize(ctx context.Context, facts model.CompanyFacts, results []model.SourceResult) (model.CompanyFacts, Outcome) {
	if s == nil || s.gen == nil {
		return facts, OutcomeSkipped
	}
	log := zap.L().With(zap.String("company", facts.CompanyName), zap.String("generator", s.gen.Name()))

	start := time.Now()
	reply, err := s.gen.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(facts, results),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Fields:      labelNames(),
		Phase:       "synthesis",
	})
	if err != nil {
		if llm.IsQuotaError(err) {
			log.Warn("synth: generator quota exceeded, keeping merged facts", zap.Error(err))
			return facts, OutcomeQuota
		}
		log.Warn("synth: generation failed, keeping merged facts", zap.Error(err))
		return facts, OutcomeBackendError
	}

	fields, ok := parseReply(reply)
	if !ok {
		log.Warn("synth: reply had no recognizable fields", zap.Int("reply_len", len(reply)))
		return facts, OutcomeUnparseable
	}

	out := apply(facts, fields)
	log.Debug("synth: applied",
		zap.Int("fields", len(fields)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return out, OutcomeApplied
}

// apply merges synthesized values back into facts.
func apply(facts model.CompanyFacts, fields map[label]string) model.CompanyFacts {
	if v := fields[labelDescription]; v != "" {
		facts.Description = v
	}
	if v := fields[labelCEO]; v != "" && facts.CEOName == "" {
		facts.CEOName = v
	}
	if v := fields[labelTechnology]; v != "" {
		facts.TechnologyFocus = v
	}
	if v := fields[labelNews]; v != "" && !merge.HasDollarAmount(facts.RecentNews) {
		facts.RecentNews = v
	}
	if v := fields[labelMetric]; v != "" {
		facts.ImpressiveMetric = v
	}
	return facts
}

func buildPrompt(facts model.CompanyFacts, results []model.SourceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", facts.CompanyName)
	fmt.Fprintf(&b, "Current Description: %s\n", orDefault(facts.Description, "No description found"))
	fmt.Fprintf(&b, "CEO/Founder: %s\n", orDefault(facts.Contact(), "Unknown"))
	fmt.Fprintf(&b, "Technology Focus: %s\n", orDefault(facts.TechnologyFocus, "Unknown"))
	fmt.Fprintf(&b, "Recent News Found: %s\n", orDefault(facts.RecentNews, "None"))
	fmt.Fprintf(&b, "Known Metric: %s\n", orDefault(facts.ImpressiveMetric, "None"))

	if dump := snippetDump(results); dump != "" {
		b.WriteString("\nRaw findings by source:\n")
		b.WriteString(dump)
	}

	b.WriteString(`
Based on your knowledge and the information provided above, provide:
1. A compelling 1-2 sentence description of what this company does and their key innovation
2. The name of the CEO or founder (if known)
3. What cutting-edge technology or approach they're using
4. If no recent news was found above, a recent achievement or development you know of; otherwise enhance the existing news with context
5. A specific impressive metric or fact (number of users, revenue growth, market share)

Format your response as:
DESCRIPTION: [description]
CEO_NAME: [name or "Unknown"]
TECHNOLOGY: [key technology or approach]
RECENT_NEWS: [recent development]
IMPRESSIVE_METRIC: [specific number or achievement]`)
	return b.String()
}

func snippetDump(results []model.SourceResult) string {
	var b strings.Builder
	for _, r := range results {
		if !r.Succeeded || len(r.Snippets) == 0 {
			continue
		}
		header := fmt.Sprintf("[%s]\n", r.Source)
		if b.Len()+len(header) > maxSnippetChars {
			break
		}
		b.WriteString(header)
		for _, s := range r.Snippets {
			line := "- " + strings.TrimSpace(s) + "\n"
			if b.Len()+len(line) > maxSnippetChars {
				return b.String()
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
