package scrape

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible; OutreachBot/1.0)"

const maxPageBytes = 512 * 1024

// LocalScraper fetches HTML directly over net/http. It fails on anti-bot
// pages so the chain can fall through to a hosted reader.
type LocalScraper struct {
	client    *http.Client
	userAgent string
	limiter   *HostLimiter
}

// LocalOption configures a LocalScraper.
type LocalOption func(*LocalScraper)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LocalOption {
	return func(l *LocalScraper) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHostLimiter throttles requests per host.
func WithHostLimiter(h *HostLimiter) LocalOption {
	return func(l *LocalScraper) { l.limiter = h }
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) LocalOption {
	return func(l *LocalScraper) { l.client = c }
}

// NewLocalScraper creates a LocalScraper.
func NewLocalScraper(opts ...LocalOption) *LocalScraper {
	l := &LocalScraper{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *LocalScraper) Name() string { return "local_http" }

// Scrape fetches a URL, rejects blocked or empty pages, and decodes the
// body to UTF-8.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	if err := l.limiter.Wait(ctx, targetURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		l.limiter.OnRateLimit(targetURL)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}
	if len(body) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	html := decodeBody(body, resp.Header.Get("Content-Type"))
	title, text := PageText(html)

	return &Page{
		URL:        resp.Request.URL.String(),
		Title:      title,
		HTML:       html,
		Text:       text,
		StatusCode: resp.StatusCode,
		Source:     l.Name(),
	}, nil
}

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([\w-]+)`)

// decodeBody converts body to UTF-8 using the Content-Type charset, then
// any <meta charset>, and leaves it unchanged when neither is usable.
func decodeBody(body []byte, contentType string) string {
	cs := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		cs = params["charset"]
	}
	if cs == "" {
		head := body
		if len(head) > 1024 {
			head = head[:1024]
		}
		if m := metaCharsetRe.FindSubmatch(head); m != nil {
			cs = string(m[1])
		}
	}
	cs = strings.ToLower(strings.TrimSpace(cs))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return string(body)
	}

	enc, err := htmlindex.Get(cs)
	if err != nil {
		zap.L().Debug("local_http: unsupported charset", zap.String("charset", cs))
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}
