// Package serp provides a client for the SerpAPI Google search endpoint.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://serpapi.com"

// Recency restricts results to a time window via the tbs parameter.
type Recency string

const (
	RecencyAny   Recency = ""
	RecencyDay   Recency = "qdr:d"
	RecencyWeek  Recency = "qdr:w"
	RecencyMonth Recency = "qdr:m"
	RecencyYear  Recency = "qdr:y"
)

// Client runs Google searches through SerpAPI.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is one search query.
type SearchRequest struct {
	Query   string
	Num     int
	Recency Recency
}

// SearchResponse is the subset of the SerpAPI response this client reads.
type SearchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// OrganicResult is a single organic search hit.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date,omitempty"`
}

// KnowledgeGraph is the entity panel Google shows for well-known
// organizations.
type KnowledgeGraph struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Website     string `json:"website"`
	CEO         string `json:"ceo"`
	Founders    string `json:"founders"`
	Founder     string `json:"founder"`
	Founded     string `json:"founded"`
}

// APIError is a non-2xx response from SerpAPI.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serp: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", req.Query)
	params.Set("api_key", c.apiKey)
	if req.Num > 0 {
		params.Set("num", strconv.Itoa(req.Num))
	}
	if req.Recency != RecencyAny {
		params.Set("tbs", string(req.Recency))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serp: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "serp: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serp: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "serp: unmarshal response")
	}
	// SerpAPI reports an empty result set as a 200 with an error message.
	if result.Error != "" && len(result.OrganicResults) == 0 && result.KnowledgeGraph == nil {
		return &SearchResponse{}, nil
	}
	return &result, nil
}
