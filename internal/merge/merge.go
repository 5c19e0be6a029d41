// Package merge combines partial CompanyFacts from several sources into one
// record under a fixed source priority.
package merge

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// specificFields may be replaced by a lower-priority value when that value
// is more specific. This is the only exception to strict priority order.
var specificFields = map[model.Field]bool{
	model.FieldRecentNews:       true,
	model.FieldImpressiveMetric: true,
}

// Result is the merged record plus the winning source of each field.
type Result struct {
	Facts      model.CompanyFacts
	Provenance []model.FieldProvenance
}

// Merge combines results into a single CompanyFacts for company.
//
// Results are ordered by source priority before merging, so the caller's
// ordering does not matter. For each field the first non-empty value wins.
// Exception: a lower-priority value for recent news or impressive metric
// that contains a currency amount replaces a current value without one.
func Merge(company string, results []model.SourceResult) model.CompanyFacts {
	return MergeWithProvenance(company, results).Facts
}

// MergeWithProvenance is Merge plus a per-field record of the winning source.
func MergeWithProvenance(company string, results []model.SourceResult) Result {
	ordered := make([]model.SourceResult, 0, len(results))
	for _, r := range results {
		if r.Succeeded {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Priority() < ordered[j].Source.Priority()
	})

	merged := model.CompanyFacts{CompanyName: strings.TrimSpace(company)}
	winners := make(map[model.Field]model.FieldProvenance)

	for _, r := range ordered {
		for _, field := range model.Fields() {
			incoming := strings.TrimSpace(r.Facts.Get(field))
			if incoming == "" {
				continue
			}
			current := merged.Get(field)
			switch {
			case current == "":
				merged.Set(field, incoming)
				winners[field] = model.FieldProvenance{Field: field, Source: r.Source}
			case specificFields[field] && MoreSpecific(current, incoming):
				zap.L().Debug("merge: specificity override",
					zap.String("field", string(field)),
					zap.String("from", string(winners[field].Source)),
					zap.String("to", string(r.Source)),
				)
				merged.Set(field, incoming)
				winners[field] = model.FieldProvenance{Field: field, Source: r.Source, Override: true}
			}
		}
	}

	prov := make([]model.FieldProvenance, 0, len(winners))
	for _, field := range model.Fields() {
		if p, ok := winners[field]; ok {
			prov = append(prov, p)
		}
	}
	return Result{Facts: merged, Provenance: prov}
}
