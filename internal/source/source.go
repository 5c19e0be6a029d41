// Package source holds the adapters that each pull partial company facts
// from one external source.
package source

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Adapter fetches partial facts about a company from one source. Fetch
// never returns an error: failures come back as an unsuccessful
// SourceResult.
type Adapter interface {
	ID() model.SourceID
	Fetch(ctx context.Context, company string) model.SourceResult
}

// maxSnippetChars bounds the page text handed to synthesis per source.
const maxSnippetChars = 1500

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
