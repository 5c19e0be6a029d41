// Package render turns company facts into an outreach email draft.
package render

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	// Placeholder is the greeting name used when no contact is known.
	Placeholder = "[CEO/Founder Name]"

	// DefaultSenderName signs drafts when no sender is configured.
	DefaultSenderName = "Tahseen Rashid"

	greeting = "Hope you're doing well!"

	introSystemPrompt = "You are helping write personalized VC outreach emails. " +
		"Be specific, enthusiastic, and reference real achievements."

	introTemperature = 0.8
	introMaxTokens   = 150
)

// boilerplateMarkers identify text from the fixed firm paragraph. A
// generated intro is cut at the first one found.
var boilerplateMarkers = []string{
	"For quick context",
	"HOF Capital, a $3B+",
	"Here's my calendar",
	"Cheers,",
}

// Options configures a Renderer.
type Options struct {
	SenderName  string
	CalendarURL string
	Examples    []Example
}

// Renderer builds email drafts. A nil generator always uses templates.
type Renderer struct {
	gen  llm.Generator
	opts Options
}

// New creates a Renderer.
func New(gen llm.Generator, opts Options) *Renderer {
	if opts.SenderName == "" {
		opts.SenderName = DefaultSenderName
	}
	return &Renderer{gen: gen, opts: opts}
}

// Render produces a draft. It never fails: a generation problem falls back
// to a template intro.
func (r *Renderer) Render(ctx context.Context, facts model.CompanyFacts) model.EmailDraft {
	first := FirstName(facts)

	intro, by := "", model.GeneratedByTemplate
	if r.gen != nil && (facts.Description != "" || facts.RecentNews != "") {
		generated, err := r.generateIntro(ctx, facts)
		switch {
		case err != nil:
			zap.L().Warn("render: intro generation failed, using template",
				zap.String("company", facts.CompanyName),
				zap.Bool("quota", llm.IsQuotaError(err)),
				zap.Error(err),
			)
		case generated != "":
			intro, by = generated, model.GeneratedByLLM
		}
	}
	if intro == "" {
		intro = r.FallbackIntro(facts)
	}

	return model.EmailDraft{
		Subject:            Subject(facts.CompanyName),
		Intro:              intro,
		Body:               r.body(first, intro, facts.CompanyName),
		RecipientFirstName: first,
		GeneratedBy:        by,
	}
}

// Subject returns the subject line for a company.
func Subject(company string) string {
	return "HOF Capital - Partnership Opportunity with " + company
}

// FirstName returns the first token of the CEO name, then the founder name,
// then Placeholder.
func FirstName(facts model.CompanyFacts) string {
	if fields := strings.Fields(facts.Contact()); len(fields) > 0 {
		return fields[0]
	}
	return Placeholder
}

// FallbackIntro picks one of four template openings by which of recent news
// and impressive metric are present.
func (r *Renderer) FallbackIntro(facts model.CompanyFacts) string {
	news := lowerFirst(strings.TrimRight(strings.TrimSpace(facts.RecentNews), ".!"))
	metric := strings.TrimRight(strings.TrimSpace(facts.ImpressiveMetric), ".!")
	company, sender := facts.CompanyName, r.opts.SenderName

	switch {
	case news != "" && metric != "":
		return fmt.Sprintf("%s Congrats on %s! My name is %s and I'm truly excited by how %s is transforming the industry, with %s.",
			greeting, news, sender, company, metric)
	case news != "":
		return fmt.Sprintf("%s Congrats on %s! My name is %s and I'm truly excited by how %s is transforming the industry.",
			greeting, news, sender, company)
	case metric != "":
		return fmt.Sprintf("%s Congrats on the momentum at %s, including %s! My name is %s and I'm truly excited by what you're building.",
			greeting, company, metric, sender)
	default:
		return fmt.Sprintf("%s Congrats on the growth and momentum with %s! My name is %s and I'm truly excited by what you're building.",
			greeting, company, sender)
	}
}

func (r *Renderer) generateIntro(ctx context.Context, facts model.CompanyFacts) (string, error) {
	reply, err := r.gen.Generate(ctx, llm.Request{
		System:      introSystemPrompt,
		Prompt:      r.introPrompt(facts),
		Temperature: introTemperature,
		MaxTokens:   introMaxTokens,
		Phase:       "intro",
	})
	if err != nil {
		return "", err
	}
	return cleanIntro(reply), nil
}

func (r *Renderer) introPrompt(facts model.CompanyFacts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a personalized opening paragraph for a VC outreach email to %s.\n\n", facts.CompanyName)
	fmt.Fprintf(&b, "Company: %s\n", facts.CompanyName)
	fmt.Fprintf(&b, "CEO/Founder: %s\n", FirstName(facts))
	fmt.Fprintf(&b, "Description: %s\n", facts.Description)
	fmt.Fprintf(&b, "Technology Focus: %s\n", facts.TechnologyFocus)
	fmt.Fprintf(&b, "Recent News: %s\n", facts.RecentNews)
	fmt.Fprintf(&b, "Impressive Metric: %s\n\n", facts.ImpressiveMetric)
	fmt.Fprintf(&b, `Create an opening that:
1. Starts with "%s"
2. Congratulates them on a specific achievement or milestone (use the recent news if available, or reference their growth or technology)
3. Mentions a specific impressive metric or accomplishment if known
4. Introduces the sender as "My name is %s"
5. Shows genuine excitement about what they're building
6. Is 2-3 sentences max
`, greeting, r.opts.SenderName)

	if len(r.opts.Examples) > 0 {
		b.WriteString("\nExamples of great openings:\n")
		for _, ex := range r.opts.Examples {
			fmt.Fprintf(&b, "- (%s) %s\n", ex.Company, ex.Intro)
		}
	}

	b.WriteString("\nReturn ONLY the opening paragraph. Do not include the firm description, a call to action, or a signature.")
	return b.String()
}

// cleanIntro trims quotes, cuts any boilerplate the model added and makes
// sure the intro opens with the greeting.
func cleanIntro(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”")
	for _, m := range boilerplateMarkers {
		if i := strings.Index(s, m); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, greeting) {
		s = greeting + " " + s
	}
	return s
}

func (r *Renderer) body(first, intro, company string) string {
	calendar := "Here's my calendar."
	if r.opts.CalendarURL != "" {
		calendar = "Here's my calendar: " + r.opts.CalendarURL
	}
	return fmt.Sprintf(`Hi %s,

%s

For quick context, I'm an Investor at HOF Capital, a $3B+ AUM multi-stage VC firm that has backed transformative ventures including OpenAI, xAI, Epic Games, UiPath, and Rimac Automobili. Each year, we selectively partner with visionary founders tackling critical societal challenges through groundbreaking technology. Additionally, our LP base includes influential leaders across consumer and technology industries, providing extensive strategic value.

I'd love to set up a conversation to learn more about %s and explore potential ways we could support your impactful journey. %s

Cheers,
%s
Investor | HOF Capital`, first, intro, company, calendar, r.opts.SenderName)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
