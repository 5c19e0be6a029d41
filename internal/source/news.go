package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/perplexity"
)

var citationRe = regexp.MustCompile(`\[\d+\]`)

const newsSystemPrompt = "You are a venture research assistant. Answer with one short phrase and nothing else."

// News asks a search-grounded model for the company's latest funding round
// or announcement.
type News struct {
	client perplexity.Client
}

// NewNews creates the funding-news adapter.
func NewNews(client perplexity.Client) *News {
	return &News{client: client}
}

func (n *News) ID() model.SourceID { return model.SourceNews }

func (n *News) Fetch(ctx context.Context, company string) model.SourceResult {
	temp := 0.1
	maxTokens := 80
	resp, err := n.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: newsSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"What is the most recent funding round or major announcement by the company %q? "+
					"Reply with a phrase that completes \"Congrats on ...\", for example "+
					"\"closing a $40M Series B funding round\". Reply NONE if you do not know.", company)},
		},
		Temperature:         &temp,
		MaxTokens:           &maxTokens,
		SearchRecencyFilter: perplexity.RecencyYear,
	})
	if err != nil {
		return model.Failed(model.SourceNews, eris.Wrap(err, "source: funding news"))
	}

	answer := cleanNewsAnswer(resp.Text())
	snippets := []string{"News: " + answer}
	for _, c := range resp.Citations {
		snippets = append(snippets, "Citation: "+c)
	}

	return model.SourceResult{
		Source:    model.SourceNews,
		Facts:     model.CompanyFacts{CompanyName: company, RecentNews: answer},
		Snippets:  snippets,
		Succeeded: true,
	}
}

// cleanNewsAnswer strips quotes, citation markers and a "Congrats on"
// prefix. NONE and unknown answers become "".
func cleanNewsAnswer(s string) string {
	s = citationRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
	s = strings.TrimSuffix(s, ".")
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "congrats on ") {
		s = s[len("congrats on "):]
		lower = lower[len("congrats on "):]
	}
	if lower == "none" || lower == "unknown" || lower == "" {
		return ""
	}
	return strings.TrimSpace(s)
}
