package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/scrape"
)

// Website reads the company's own homepage.
type Website struct {
	resolver *DomainResolver
	scraper  scrape.Scraper
}

// NewWebsite creates the website adapter.
func NewWebsite(resolver *DomainResolver, scraper scrape.Scraper) *Website {
	return &Website{resolver: resolver, scraper: scraper}
}

func (w *Website) ID() model.SourceID { return model.SourceWebsite }

func (w *Website) Fetch(ctx context.Context, company string) model.SourceResult {
	site, err := w.resolver.Resolve(ctx, company)
	if err != nil {
		return model.Failed(model.SourceWebsite, err)
	}

	page, err := w.scraper.Scrape(ctx, site.URL)
	if err != nil {
		return model.Failed(model.SourceWebsite, eris.Wrap(err, "source: scrape homepage"))
	}

	facts := model.CompanyFacts{
		CompanyName: company,
		Domain:      site.Domain,
		Description: scrape.Description(page),
		FounderName: FindFounder(page.Text),
		CEOName:     FindCEO(page.Text),
	}

	var snippets []string
	if page.Title != "" {
		snippets = append(snippets, "Title: "+page.Title)
	}
	if text := strings.TrimSpace(page.Text); text != "" {
		snippets = append(snippets, clip(text, maxSnippetChars))
	}

	return model.SourceResult{
		Source:    model.SourceWebsite,
		Facts:     facts,
		Snippets:  snippets,
		Succeeded: true,
	}
}
