package cache

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Key normalizes a company name into a cache key: NFKC, case-folded,
// trimmed, with inner whitespace collapsed to a single space.
func Key(company string) string {
	s := norm.NFKC.String(company)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}
