package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/search"
)

// WebSearch mines general web search results: the knowledge panel when
// present, otherwise snippets.
type WebSearch struct {
	searcher search.Searcher
	nowFunc  func() time.Time
}

// NewWebSearch creates the web search adapter.
func NewWebSearch(searcher search.Searcher) *WebSearch {
	return &WebSearch{searcher: searcher, nowFunc: time.Now}
}

func (w *WebSearch) ID() model.SourceID { return model.SourceWebSearch }

func (w *WebSearch) Fetch(ctx context.Context, company string) model.SourceResult {
	year := w.nowFunc().Year()
	facts := model.CompanyFacts{CompanyName: company}
	var snippets []string

	people, peopleErr := w.searcher.Search(ctx, search.Query{
		Text: fmt.Sprintf("%s CEO founder funding round %d", company, year),
		Num:  10,
	})
	funding, fundingErr := w.searcher.Search(ctx, search.Query{
		Text:    fmt.Sprintf("%s funding round %d series million billion", company, year),
		Num:     10,
		Recency: search.PastYear,
	})
	if peopleErr != nil && fundingErr != nil {
		return model.Failed(model.SourceWebSearch, eris.Wrap(peopleErr, "source: web search"))
	}

	if people != nil && people.Panel != nil {
		p := people.Panel
		facts.Description = p.Description
		facts.CEOName = panelName(p.CEO)
		facts.FounderName = panelName(firstFounder(p.Founders))
		snippets = append(snippets, fmt.Sprintf("Knowledge panel: %s. CEO: %s. Founders: %s.", p.Description, p.CEO, p.Founders))
	}
	snippets = append(snippets, people.Snippets()...)
	snippets = append(snippets, funding.Snippets()...)

	text := strings.Join(snippets, "\n")
	if facts.Description == "" {
		facts.Description = describingSnippet(company, people)
	}
	if facts.CEOName == "" {
		facts.CEOName = FindCEO(text)
	}
	if facts.FounderName == "" {
		facts.FounderName = FindFounder(text)
	}
	facts.RecentNews = FindFunding(company, text)
	facts.ImpressiveMetric = FindValuation(text)

	if facts.RecentNews == "" {
		achievements, err := w.searcher.Search(ctx, search.Query{
			Text:    fmt.Sprintf("%s announcement partnership product launch %d", company, year),
			Num:     10,
			Recency: search.PastMonth,
		})
		if err != nil {
			zap.L().Debug("source: achievement search failed", zap.String("company", company), zap.Error(err))
		} else {
			extra := achievements.Snippets()
			snippets = append(snippets, extra...)
			facts.RecentNews = FindAchievement(company, strings.Join(extra, "\n"))
		}
	}

	return model.SourceResult{
		Source:    model.SourceWebSearch,
		Facts:     facts,
		Snippets:  snippets,
		Succeeded: true,
	}
}

// firstFounder returns the first name in a comma or "and" separated list.
func firstFounder(list string) string {
	list = strings.ReplaceAll(list, " and ", ",")
	for _, part := range strings.Split(list, ",") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

var panelNameRe = regexp.MustCompile(namePattern)

// panelName strips annotations such as "(2019–)" from a panel entry.
func panelName(s string) string {
	return panelNameRe.FindString(s)
}

// describingSnippet returns the first snippet that mentions company and is
// long enough to describe it.
func describingSnippet(company string, resp *search.Response) string {
	if resp == nil {
		return ""
	}
	lc := strings.ToLower(company)
	for _, r := range resp.Results {
		s := strings.TrimSpace(r.Snippet)
		if len(s) > 50 && strings.Contains(strings.ToLower(s), lc) {
			return clip(s, 300)
		}
	}
	return ""
}
