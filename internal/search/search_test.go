package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/pkg/jina"
	"github.com/sells-group/outreach-cli/pkg/serp"
)

type mockSerp struct{ mock.Mock }

func (m *mockSerp) Search(ctx context.Context, req serp.SearchRequest) (*serp.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serp.SearchResponse), args.Error(1)
}

type mockJina struct{ mock.Mock }

func (m *mockJina) Read(ctx context.Context, targetURL string) (*jina.ReadResponse, error) {
	args := m.Called(ctx, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jina.ReadResponse), args.Error(1)
}

func (m *mockJina) Search(ctx context.Context, query string, opts ...jina.SearchOption) (*jina.SearchResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jina.SearchResponse), args.Error(1)
}

func TestSerp_MapsResultsAndPanel(t *testing.T) {
	client := &mockSerp{}
	client.On("Search", mock.Anything, serp.SearchRequest{Query: "Acme funding", Num: 10, Recency: serp.RecencyYear}).
		Return(&serp.SearchResponse{
			OrganicResults: []serp.OrganicResult{{Title: "Acme raises", Link: "https://x.example", Snippet: "$10M Series A"}},
			KnowledgeGraph: &serp.KnowledgeGraph{Title: "Acme", Description: "Rockets", Founder: "Jane Doe"},
		}, nil)

	resp, err := NewSerp(client, 0).Search(context.Background(), Query{Text: "Acme funding", Num: 10, Recency: PastYear})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://x.example", resp.Results[0].URL)
	require.NotNil(t, resp.Panel)
	assert.Equal(t, "Jane Doe", resp.Panel.Founders)
	assert.Equal(t, []string{"Acme raises: $10M Series A"}, resp.Snippets())
	client.AssertExpectations(t)
}

func TestSerp_Error(t *testing.T) {
	client := &mockSerp{}
	client.On("Search", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := NewSerp(client, 0).Search(context.Background(), Query{Text: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search: serp")
}

func TestJina_MapsResults(t *testing.T) {
	client := &mockJina{}
	client.On("Search", mock.Anything, "Acme official website").Return(&jina.SearchResponse{
		Data: []jina.SearchResult{
			{Title: "Acme", URL: "https://acme.com", Description: "Home of Acme"},
			{Title: "Acme blog", URL: "https://acme.com/blog", Content: strings.Repeat("word ", 100)},
		},
	}, nil)

	resp, err := NewJina(client, 0).Search(context.Background(), Query{Text: "Acme official website", Recency: PastMonth})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Nil(t, resp.Panel)
	assert.Equal(t, "Home of Acme", resp.Results[0].Snippet)
	assert.Len(t, resp.Results[1].Snippet, 300)
}

func TestSnippets_Nil(t *testing.T) {
	var r *Response
	assert.Nil(t, r.Snippets())
}

func TestRateLimiterHonorsContext(t *testing.T) {
	client := &mockSerp{}
	client.On("Search", mock.Anything, mock.Anything).Return(&serp.SearchResponse{}, nil)
	s := NewSerp(client, 0.001)

	_, err := s.Search(context.Background(), Query{Text: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Search(ctx, Query{Text: "b"})
	require.Error(t, err)
	client.AssertNumberOfCalls(t, "Search", 1)
}
