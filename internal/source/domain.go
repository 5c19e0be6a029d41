package source

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/search"
)

// ErrNoDomain is returned when no website can be found for a company.
var ErrNoDomain = eris.New("source: no website found")

// probeTLDs are tried in order before falling back to search.
var probeTLDs = []string{"com", "io", "ai", "co"}

// Hosts that are never a company's own website.
var blockedHosts = []string{
	"google.com", "youtube.com", "facebook.com", "linkedin.com", "twitter.com",
	"x.com", "instagram.com", "wikipedia.org", "crunchbase.com",
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Site is a resolved company website.
type Site struct {
	Domain string
	URL    string
}

// DomainResolver finds a company's website. Concurrent lookups for the
// same company share one resolution, and results are memoized.
type DomainResolver struct {
	client       *http.Client
	searcher     search.Searcher
	probeTimeout time.Duration
	userAgent    string
	probeURL     func(slug, tld string) string

	group singleflight.Group
	memo  *lru.Cache[string, Site]
}

// ResolverOption configures a DomainResolver.
type ResolverOption func(*DomainResolver)

// WithProbeTimeout bounds each probe request.
func WithProbeTimeout(d time.Duration) ResolverOption {
	return func(r *DomainResolver) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

// WithResolverHTTPClient overrides the probe HTTP client.
func WithResolverHTTPClient(c *http.Client) ResolverOption {
	return func(r *DomainResolver) { r.client = c }
}

// WithProbeURL overrides how candidate URLs are built (for testing).
func WithProbeURL(fn func(slug, tld string) string) ResolverOption {
	return func(r *DomainResolver) { r.probeURL = fn }
}

// WithResolverUserAgent sets the User-Agent sent with probes.
func WithResolverUserAgent(ua string) ResolverOption {
	return func(r *DomainResolver) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// NewDomainResolver creates a resolver. searcher may be nil, in which case
// only probing is used.
func NewDomainResolver(searcher search.Searcher, opts ...ResolverOption) *DomainResolver {
	memo, _ := lru.New[string, Site](256)
	r := &DomainResolver{
		client:       &http.Client{Timeout: 10 * time.Second},
		searcher:     searcher,
		probeTimeout: 2500 * time.Millisecond,
		userAgent:    "Mozilla/5.0 (compatible; OutreachBot/1.0)",
		probeURL: func(slug, tld string) string {
			return "https://" + slug + "." + tld
		},
		memo: memo,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the website for company.
func (r *DomainResolver) Resolve(ctx context.Context, company string) (Site, error) {
	key := cache.Key(company)
	if key == "" {
		return Site{}, ErrNoDomain
	}
	if site, ok := r.memo.Get(key); ok {
		return site, nil
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		if site, ok := r.memo.Get(key); ok {
			return site, nil
		}
		site, err := r.resolve(ctx, company)
		if err != nil {
			return Site{}, err
		}
		r.memo.Add(key, site)
		return site, nil
	})
	if err != nil {
		return Site{}, err
	}
	site := v.(Site)
	zap.L().Debug("source: domain resolved",
		zap.String("company", company),
		zap.String("domain", site.Domain),
		zap.Bool("shared", shared),
	)
	return site, nil
}

func (r *DomainResolver) resolve(ctx context.Context, company string) (Site, error) {
	if slug := slugStrip.ReplaceAllString(strings.ToLower(company), ""); slug != "" {
		for _, tld := range probeTLDs {
			if err := ctx.Err(); err != nil {
				return Site{}, eris.Wrap(err, "source: resolve domain")
			}
			candidate := r.probeURL(slug, tld)
			if final, ok := r.probe(ctx, candidate); ok {
				return siteFromURL(final)
			}
		}
	}

	if r.searcher == nil {
		return Site{}, ErrNoDomain
	}
	resp, err := r.searcher.Search(ctx, search.Query{Text: company + " official website", Num: 10})
	if err != nil {
		return Site{}, eris.Wrap(err, "source: search for website")
	}
	for _, res := range resp.Results {
		if u, err := url.Parse(res.URL); err == nil && u.Host != "" && !isBlockedHost(u.Hostname()) {
			return siteFromURL(u.Scheme + "://" + u.Host)
		}
	}
	return Site{}, ErrNoDomain
}

// probe reports whether candidate answers with a non-error status, and the
// URL it ended up at after redirects.
func (r *DomainResolver) probe(ctx context.Context, candidate string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	status, final, err := r.do(ctx, http.MethodHead, candidate)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, final, err = r.do(ctx, http.MethodGet, candidate)
	}
	if err != nil || status >= 400 {
		return "", false
	}
	return final, true
}

func (r *DomainResolver) do(ctx context.Context, method, target string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, resp.Request.URL.Scheme + "://" + resp.Request.URL.Host, nil
}

func siteFromURL(raw string) (Site, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Site{}, eris.Wrapf(ErrNoDomain, "source: bad site url %q", raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return Site{Domain: host, URL: u.Scheme + "://" + u.Host}, nil
}

func isBlockedHost(host string) bool {
	host = strings.ToLower(host)
	for _, b := range blockedHosts {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}
