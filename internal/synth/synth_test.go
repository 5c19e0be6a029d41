package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
)

type stubGenerator struct {
	reply string
	err   error
	got   llm.Request
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.got = req
	return s.reply, s.err
}

func (s *stubGenerator) Name() string { return "stub" }

func TestSynthesize_NilGeneratorIsNoop(t *testing.T) {
	facts := model.CompanyFacts{CompanyName: "Acme", Description: "d"}
	out, outcome := New(nil).Synthesize(context.Background(), facts, nil)
	assert.Equal(t, facts, out)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestSynthesize_JSONReply(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
		"DESCRIPTION": "Acme builds rockets for everyone.",
		"CEO_NAME": "Jane Doe",
		"TECHNOLOGY": "reusable boosters",
		"RECENT_NEWS": "launching its first orbital flight",
		"IMPRESSIVE_METRIC": "40 launches per year"
	}` + "\n```"}
	facts := model.CompanyFacts{CompanyName: "Acme", Description: "old"}

	out, outcome := New(gen).Synthesize(context.Background(), facts, nil)

	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, "Acme builds rockets for everyone.", out.Description)
	assert.Equal(t, "Jane Doe", out.CEOName)
	assert.Equal(t, "reusable boosters", out.TechnologyFocus)
	assert.Equal(t, "launching its first orbital flight", out.RecentNews)
	assert.Equal(t, "40 launches per year", out.ImpressiveMetric)

	assert.InDelta(t, 0.2, gen.got.Temperature, 1e-9)
	assert.Equal(t, 400, gen.got.MaxTokens)
	assert.Len(t, gen.got.Fields, 5)
	assert.Contains(t, gen.got.System, "venture capital analyst")
}

func TestSynthesize_LabelFallback(t *testing.T) {
	gen := &stubGenerator{reply: "DESCRIPTION: Payments infrastructure for the internet.\n" +
		"CEO_NAME: Unknown\n" +
		"TECHNOLOGY: APIs\n" +
		"RECENT_NEWS: unknown\n" +
		"IMPRESSIVE_METRIC: $1 trillion in payment volume"}
	facts := model.CompanyFacts{CompanyName: "Stripe", RecentNews: "hiring"}

	out, outcome := New(gen).Synthesize(context.Background(), facts, nil)

	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, "Payments infrastructure for the internet.", out.Description)
	assert.Empty(t, out.CEOName)
	assert.Equal(t, "APIs", out.TechnologyFocus)
	assert.Equal(t, "hiring", out.RecentNews)
	assert.Equal(t, "$1 trillion in payment volume", out.ImpressiveMetric)
}

func TestSynthesize_CEOOnlyFillsEmpty(t *testing.T) {
	gen := &stubGenerator{reply: `{"CEO_NAME": "Someone Else"}`}
	facts := model.CompanyFacts{CompanyName: "Acme", CEOName: "Jane Doe"}

	out, _ := New(gen).Synthesize(context.Background(), facts, nil)
	assert.Equal(t, "Jane Doe", out.CEOName)
}

func TestSynthesize_DollarNewsKept(t *testing.T) {
	gen := &stubGenerator{reply: `{"RECENT_NEWS": "expanding to Europe"}`}
	facts := model.CompanyFacts{CompanyName: "Acme", RecentNews: "closing a $50M Series B funding round"}

	out, _ := New(gen).Synthesize(context.Background(), facts, nil)
	assert.Equal(t, "closing a $50M Series B funding round", out.RecentNews)
}

func TestSynthesize_NewsWithoutDollarReplaced(t *testing.T) {
	gen := &stubGenerator{reply: `{"RECENT_NEWS": "closing a $50M Series B funding round"}`}
	facts := model.CompanyFacts{CompanyName: "Acme", RecentNews: "launching a new product"}

	out, _ := New(gen).Synthesize(context.Background(), facts, nil)
	assert.Equal(t, "closing a $50M Series B funding round", out.RecentNews)
}

func TestSynthesize_FailuresAreNoops(t *testing.T) {
	facts := model.CompanyFacts{CompanyName: "Acme", Description: "kept"}

	tests := []struct {
		name string
		gen  *stubGenerator
		want Outcome
	}{
		{"backend error", &stubGenerator{err: errors.New("connection reset")}, OutcomeBackendError},
		{"quota", &stubGenerator{err: errors.New("insufficient_quota: You exceeded your current quota")}, OutcomeQuota},
		{"garbage", &stubGenerator{reply: "I cannot help with that."}, OutcomeUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, outcome := New(tt.gen).Synthesize(context.Background(), facts, nil)
			assert.Equal(t, facts, out)
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestBuildPrompt_IncludesSnippets(t *testing.T) {
	results := []model.SourceResult{
		{Source: model.SourceWebSearch, Succeeded: true, Snippets: []string{"Acme raises $10M"}},
		{Source: model.SourceWebsite, Succeeded: false, Snippets: []string{"should not appear"}},
	}
	p := buildPrompt(model.CompanyFacts{CompanyName: "Acme"}, results)

	assert.Contains(t, p, "Company: Acme")
	assert.Contains(t, p, "Current Description: No description found")
	assert.Contains(t, p, "[websearch]\n- Acme raises $10M")
	assert.NotContains(t, p, "should not appear")
	assert.Contains(t, p, "IMPRESSIVE_METRIC:")
}

func TestSnippetDump_Capped(t *testing.T) {
	long := make([]string, 0, 200)
	for range 200 {
		long = append(long, "0123456789012345678901234567890123456789012345678901234567890123456789")
	}
	dump := snippetDump([]model.SourceResult{{Source: model.SourceNews, Succeeded: true, Snippets: long}})
	require.NotEmpty(t, dump)
	assert.LessOrEqual(t, len(dump), maxSnippetChars)
}
