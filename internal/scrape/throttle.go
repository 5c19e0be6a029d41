package scrape

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HostLimiter throttles outbound requests per host. Limiters are created on
// first use and halved when a host answers 429.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	minRPS   rate.Limit
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second per
// host. A non-positive rps disables throttling.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		minRPS:   rate.Limit(rps / 4),
	}
}

func (h *HostLimiter) limiterFor(rawURL string) *rate.Limiter {
	host := hostOf(rawURL)
	h.mu.Lock()
	defer h.mu.Unlock()
	lim, ok := h.limiters[host]
	if !ok {
		lim = rate.NewLimiter(h.rps, h.burst)
		h.limiters[host] = lim
	}
	return lim
}

// Wait blocks until a request to rawURL's host is allowed.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if h == nil || h.rps <= 0 {
		return nil
	}
	if err := h.limiterFor(rawURL).Wait(ctx); err != nil {
		return eris.Wrap(err, "scrape: rate limiter wait")
	}
	return nil
}

// OnRateLimit halves the rate for rawURL's host, down to a quarter of the
// configured rate.
func (h *HostLimiter) OnRateLimit(rawURL string) {
	if h == nil || h.rps <= 0 {
		return
	}
	lim := h.limiterFor(rawURL)
	next := lim.Limit() / 2
	if next < h.minRPS {
		next = h.minRPS
	}
	lim.SetLimit(next)
	zap.L().Warn("scrape: reducing host rate after 429",
		zap.String("host", hostOf(rawURL)),
		zap.Float64("rate", float64(next)),
	)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
