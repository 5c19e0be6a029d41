package serp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "Acme CEO founder", q.Get("q"))
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "10", q.Get("num"))
		assert.Equal(t, "qdr:y", q.Get("tbs"))

		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 1, "title": "Acme raises $20M", "link": "https://news.example/acme", "snippet": "Acme closed a $20M Series A."}
			],
			"knowledge_graph": {"title": "Acme", "description": "Acme builds rockets.", "ceo": "Jane Doe", "founders": "Jane Doe, John Roe"}
		}`))
	}))
	defer srv.Close()

	got, err := NewClient("secret", WithBaseURL(srv.URL)).Search(context.Background(), SearchRequest{
		Query: "Acme CEO founder", Num: 10, Recency: RecencyYear,
	})

	require.NoError(t, err)
	require.Len(t, got.OrganicResults, 1)
	assert.Equal(t, "https://news.example/acme", got.OrganicResults[0].Link)
	require.NotNil(t, got.KnowledgeGraph)
	assert.Equal(t, "Jane Doe", got.KnowledgeGraph.CEO)
	assert.Equal(t, "Jane Doe, John Roe", got.KnowledgeGraph.Founders)
}

func TestSearch_NoRecency(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasTbs := r.URL.Query()["tbs"]
		assert.False(t, hasTbs)
		_, hasNum := r.URL.Query()["num"]
		assert.False(t, hasNum)
		_, _ = w.Write([]byte(`{"organic_results": []}`))
	}))
	defer srv.Close()

	got, err := NewClient("k", WithBaseURL(srv.URL)).Search(context.Background(), SearchRequest{Query: "acme"})
	require.NoError(t, err)
	assert.Empty(t, got.OrganicResults)
	assert.Nil(t, got.KnowledgeGraph)
}

func TestSearch_EmptyResultsMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Google hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	got, err := NewClient("k", WithBaseURL(srv.URL)).Search(context.Background(), SearchRequest{Query: "zzzz"})
	require.NoError(t, err)
	assert.Empty(t, got.OrganicResults)
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", WithBaseURL(srv.URL)).Search(context.Background(), SearchRequest{Query: "acme"})
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus())
	assert.Contains(t, err.Error(), "Invalid API key")
}
