package source

import (
	"context"
	"strings"
	"sync"

	"github.com/sells-group/outreach-cli/internal/search"
)

// fakeSearcher answers queries by the first registered substring match.
type fakeSearcher struct {
	mu        sync.Mutex
	responses map[string]*search.Response
	err       error
	queries   []search.Query
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, q search.Query) (*search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	for sub, resp := range f.responses {
		if strings.Contains(q.Text, sub) {
			return resp, nil
		}
	}
	return &search.Response{}, nil
}
