package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/jina"
)

// JinaReader fetches pages through the Jina reader. It returns text only.
type JinaReader struct {
	client  jina.Client
	breaker *resilience.Breaker
}

// NewJinaReader wraps a Jina client. Three consecutive failures skip the
// reader for a minute.
func NewJinaReader(client jina.Client) *JinaReader {
	return &JinaReader{
		client:  client,
		breaker: resilience.NewBreaker("jina_reader", resilience.FromConfig(3, 60)),
	}
}

func (j *JinaReader) Name() string { return "jina" }

// Scrape fetches targetURL via the reader and rejects challenge pages.
func (j *JinaReader) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	if err := j.breaker.Allow(); err != nil {
		return nil, err
	}

	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		j.breaker.Record(err)
		return nil, err
	}
	if needsFallback(resp) {
		err := eris.New("jina: unusable response")
		j.breaker.Record(err)
		return nil, err
	}
	j.breaker.Record(nil)

	return &Page{
		URL:        firstNonEmpty(resp.Data.URL, targetURL),
		Title:      resp.Data.Title,
		Text:       resp.Data.Content,
		StatusCode: 200,
		Source:     j.Name(),
	}, nil
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// needsFallback reports whether a reader response is empty or a challenge
// page.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return true
	}
	if len(content) < 1000 {
		lower := strings.ToLower(content)
		for _, sig := range challengeSignatures {
			if strings.Contains(lower, sig) {
				return true
			}
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
