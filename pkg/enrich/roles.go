package enrich

import (
	"regexp"
	"strings"
)

var execTitleRe = regexp.MustCompile(`(?i)\b(ceo|chief executive|co-?founder|founder|president|owner)\b`)

var execSeniority = map[string]bool{
	"founder": true,
	"c_suite": true,
	"owner":   true,
}

// IsExecutive reports whether p belongs to the company's leadership: a
// matching title, the founder flag, or an executive seniority.
func IsExecutive(p Person) bool {
	if p.Founder {
		return true
	}
	if execSeniority[strings.ToLower(strings.TrimSpace(p.Seniority))] {
		return true
	}
	return execTitleRe.MatchString(p.Title)
}

// IsCEO reports whether p's title names the chief executive.
func IsCEO(p Person) bool {
	t := strings.ToLower(p.Title)
	return strings.Contains(t, "ceo") || strings.Contains(t, "chief executive")
}

// IsFounder reports whether p founded the company.
func IsFounder(p Person) bool {
	if p.Founder || strings.EqualFold(p.Seniority, "founder") {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), "founder")
}
