package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/enrich"
)

// Enrichment looks the company up in the enrichment API by domain and
// collects its executives.
type Enrichment struct {
	resolver *DomainResolver
	client   enrich.Client
}

// NewEnrichment creates the enrichment adapter.
func NewEnrichment(resolver *DomainResolver, client enrich.Client) *Enrichment {
	return &Enrichment{resolver: resolver, client: client}
}

func (e *Enrichment) ID() model.SourceID { return model.SourceEnrichment }

func (e *Enrichment) Fetch(ctx context.Context, company string) model.SourceResult {
	site, err := e.resolver.Resolve(ctx, company)
	if err != nil {
		return model.Failed(model.SourceEnrichment, err)
	}

	rec, err := e.client.CompanyByDomain(ctx, site.Domain)
	if err != nil {
		return model.Failed(model.SourceEnrichment, eris.Wrap(err, "source: enrichment company"))
	}

	facts := model.CompanyFacts{
		CompanyName: company,
		Domain:      site.Domain,
		Description: rec.Description,
	}
	if len(rec.Tags) > 0 {
		facts.TechnologyFocus = strings.Join(rec.Tags, ", ")
	} else {
		facts.TechnologyFocus = rec.Industry
	}
	if rec.FundingTotal != "" {
		facts.ImpressiveMetric = "raising " + rec.FundingTotal + " in total funding"
	}

	snippets := []string{"Enrichment record: " + rec.Name + ". " + rec.Description}

	people, err := e.client.People(ctx, rec.ID)
	if err != nil {
		// The company record is still useful without its roster.
		zap.L().Debug("source: enrichment people lookup failed",
			zap.String("company", company), zap.Error(err))
	}

	var execs []model.Executive
	for _, p := range people {
		if !enrich.IsExecutive(p) {
			continue
		}
		execs = append(execs, model.Executive{
			ID:        p.ID,
			Name:      p.Name,
			Title:     p.Title,
			Seniority: p.Seniority,
			Founder:   enrich.IsFounder(p),
		})
		if facts.CEOName == "" && enrich.IsCEO(p) {
			facts.CEOName = p.Name
		}
		if facts.FounderName == "" && enrich.IsFounder(p) {
			facts.FounderName = p.Name
		}
		snippets = append(snippets, "Executive: "+p.Name+", "+p.Title)
	}

	return model.SourceResult{
		Source:     model.SourceEnrichment,
		Facts:      facts,
		Snippets:   snippets,
		Executives: execs,
		Succeeded:  true,
	}
}
