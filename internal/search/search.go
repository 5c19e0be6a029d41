// Package search puts the web search backends behind one interface.
package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/pkg/jina"
	"github.com/sells-group/outreach-cli/pkg/serp"
)

// Recency limits results to a recent time window.
type Recency int

const (
	AnyTime Recency = iota
	PastMonth
	PastYear
)

// Query is one web search.
type Query struct {
	Text    string
	Recency Recency
	Num     int
}

// Result is one ranked hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Panel is the knowledge panel shown for well-known organizations.
type Panel struct {
	Title       string
	Description string
	Website     string
	CEO         string
	Founders    string
}

// Response is the outcome of a search. Panel is nil when the backend has
// none.
type Response struct {
	Results []Result
	Panel   *Panel
}

// Snippets returns "title: snippet" lines for every result.
func (r *Response) Snippets() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		s := strings.TrimSpace(res.Title + ": " + res.Snippet)
		if s != ":" {
			out = append(out, s)
		}
	}
	return out
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Response, error)
	Name() string
}

// Serp adapts a SerpAPI client.
type Serp struct {
	client  serp.Client
	limiter *rate.Limiter
}

// NewSerp wraps client, allowing at most rps searches per second.
func NewSerp(client serp.Client, rps float64) *Serp {
	return &Serp{client: client, limiter: newLimiter(rps)}
}

func (s *Serp) Name() string { return "serp" }

func (s *Serp) Search(ctx context.Context, q Query) (*Response, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}

	resp, err := s.client.Search(ctx, serp.SearchRequest{
		Query:   q.Text,
		Num:     q.Num,
		Recency: serpRecency(q.Recency),
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: serp")
	}

	out := &Response{Results: make([]Result, 0, len(resp.OrganicResults))}
	for _, r := range resp.OrganicResults {
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	if kg := resp.KnowledgeGraph; kg != nil {
		founders := kg.Founders
		if founders == "" {
			founders = kg.Founder
		}
		out.Panel = &Panel{
			Title:       kg.Title,
			Description: kg.Description,
			Website:     kg.Website,
			CEO:         kg.CEO,
			Founders:    founders,
		}
	}
	return out, nil
}

func serpRecency(r Recency) serp.Recency {
	switch r {
	case PastMonth:
		return serp.RecencyMonth
	case PastYear:
		return serp.RecencyYear
	default:
		return serp.RecencyAny
	}
}

// Jina adapts the Jina search API. It has no recency filter and no panel.
type Jina struct {
	client  jina.Client
	limiter *rate.Limiter
}

// NewJina wraps client, allowing at most rps searches per second.
func NewJina(client jina.Client, rps float64) *Jina {
	return &Jina{client: client, limiter: newLimiter(rps)}
}

func (j *Jina) Name() string { return "jina" }

func (j *Jina) Search(ctx context.Context, q Query) (*Response, error) {
	if err := wait(ctx, j.limiter); err != nil {
		return nil, err
	}

	var opts []jina.SearchOption
	if q.Num > 0 {
		opts = append(opts, jina.WithCount(q.Num))
	}
	resp, err := j.client.Search(ctx, q.Text, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "search: jina")
	}

	out := &Response{Results: make([]Result, 0, len(resp.Data))}
	for _, r := range resp.Data {
		snippet := r.Description
		if snippet == "" {
			snippet = truncate(r.Content, 300)
		}
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return out, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func wait(ctx context.Context, lim *rate.Limiter) error {
	if lim == nil {
		return nil
	}
	if err := lim.Wait(ctx); err != nil {
		return eris.Wrap(err, "search: rate limiter wait")
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
