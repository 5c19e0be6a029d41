package outreach

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/enrich"
)

// lookupEmail resolves the contact's email through the enrichment API. The
// executive is matched by name against the CEO, then the founder, then the
// first CEO-titled executive. Any failure yields "".
func (s *Service) lookupEmail(ctx context.Context, facts model.CompanyFacts, results []model.SourceResult) string {
	if s.enrich == nil {
		return ""
	}
	var execs []model.Executive
	for _, r := range results {
		if r.Succeeded {
			execs = append(execs, r.Executives...)
		}
	}
	exec, ok := pickExecutive(facts, execs)
	if !ok {
		return ""
	}

	email, err := s.enrich.Email(ctx, exec.ID)
	if err != nil {
		zap.L().Info("outreach: executive email lookup failed",
			zap.String("company", facts.CompanyName),
			zap.String("executive", exec.Name),
			zap.Error(err),
		)
		return ""
	}
	return email
}

func pickExecutive(facts model.CompanyFacts, execs []model.Executive) (model.Executive, bool) {
	if len(execs) == 0 {
		return model.Executive{}, false
	}
	for _, name := range []string{facts.CEOName, facts.FounderName} {
		if name == "" {
			continue
		}
		for _, e := range execs {
			if e.ID != "" && strings.EqualFold(strings.TrimSpace(e.Name), name) {
				return e, true
			}
		}
	}
	for _, e := range execs {
		if e.ID != "" && enrich.IsCEO(toPerson(e)) {
			return e, true
		}
	}
	for _, e := range execs {
		if e.ID != "" {
			return e, true
		}
	}
	return model.Executive{}, false
}

func toPerson(e model.Executive) enrich.Person {
	return enrich.Person{ID: e.ID, Name: e.Name, Title: e.Title, Seniority: e.Seniority, Founder: e.Founder}
}
