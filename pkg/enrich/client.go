// Package enrich provides a client for a company and people enrichment API.
//
// The API maps a company domain to a company record, a company to its
// people, and a person to an email address.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// noEmail is the sentinel the API returns for people without an address.
const noEmail = "no email"

// ErrNotFound is returned when the API has no record for the lookup.
var ErrNotFound = eris.New("enrich: not found")

// Client is the enrichment API.
type Client interface {
	// CompanyByDomain returns the company registered for domain.
	CompanyByDomain(ctx context.Context, domain string) (*Company, error)
	// People lists the people known for a company.
	People(ctx context.Context, companyID string) ([]Person, error)
	// Email returns a person's email address, or "" when none is known.
	Email(ctx context.Context, personID string) (string, error)
}

// Company is an enrichment company record.
type Company struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Domain          string   `json:"domain"`
	Description     string   `json:"description"`
	Industry        string   `json:"industry"`
	Tags            []string `json:"tags"`
	Headcount       int      `json:"headcount"`
	FundingTotal    string   `json:"funding_total"`
	LastFundingType string   `json:"last_funding_type"`
	LastFundingDate string   `json:"last_funding_date"`
}

// Person is one member of a company roster.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Seniority string `json:"seniority"`
	Founder   bool   `json:"is_founder"`
}

type companiesResponse struct {
	Companies []Company `json:"companies"`
}

type peopleResponse struct {
	People []Person `json:"people"`
}

type emailResponse struct {
	Email string `json:"email"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("enrich: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
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

// NewClient creates an enrichment API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey: apiKey,
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

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "enrich: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "enrich: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "enrich: read response")
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "enrich: unmarshal response")
	}
	return nil
}

func (c *httpClient) CompanyByDomain(ctx context.Context, domain string) (*Company, error) {
	var resp companiesResponse
	if err := c.get(ctx, "/companies?domain="+url.QueryEscape(domain), &resp); err != nil {
		return nil, err
	}
	if len(resp.Companies) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Companies[0], nil
}

func (c *httpClient) People(ctx context.Context, companyID string) ([]Person, error) {
	var resp peopleResponse
	if err := c.get(ctx, "/companies/"+url.PathEscape(companyID)+"/people", &resp); err != nil {
		return nil, err
	}
	return resp.People, nil
}

func (c *httpClient) Email(ctx context.Context, personID string) (string, error) {
	var resp emailResponse
	err := c.get(ctx, "/people/"+url.PathEscape(personID)+"/email", &resp)
	if eris.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	email := strings.TrimSpace(resp.Email)
	if strings.EqualFold(email, noEmail) {
		return "", nil
	}
	return email, nil
}
