package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/search"
)

// probeRouter sends every candidate to srv with the tld as the path.
func probeRouter(srv *httptest.Server) ResolverOption {
	return WithProbeURL(func(slug, tld string) string {
		return srv.URL + "/" + slug + "/" + tld
	})
}

func TestResolve_ProbesInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/acmerockets/io":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewDomainResolver(nil, probeRouter(srv))
	site, err := r.Resolve(context.Background(), "Acme Rockets!")

	require.NoError(t, err)
	assert.Equal(t, []string{"HEAD /acmerockets/com", "HEAD /acmerockets/io", "GET /acmerockets/io"}, seen)
	assert.Equal(t, srv.URL, site.URL)
	assert.Equal(t, "127.0.0.1", site.Domain)
}

func TestResolve_FallsBackToSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	searcher := &fakeSearcher{responses: map[string]*search.Response{
		"official website": {Results: []search.Result{
			{URL: "https://www.linkedin.com/company/acme"},
			{URL: "https://en.wikipedia.org/wiki/Acme"},
			{URL: "https://www.acme-rockets.com/about"},
		}},
	}}

	site, err := NewDomainResolver(searcher, probeRouter(srv)).Resolve(context.Background(), "Acme")

	require.NoError(t, err)
	assert.Equal(t, "acme-rockets.com", site.Domain)
	assert.Equal(t, "https://www.acme-rockets.com", site.URL)
	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "Acme official website", searcher.queries[0].Text)
}

func TestResolve_NothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDomainResolver(nil, probeRouter(srv)).Resolve(context.Background(), "Acme")
	assert.ErrorIs(t, err, ErrNoDomain)

	searcher := &fakeSearcher{err: errors.New("quota")}
	_, err = NewDomainResolver(searcher, probeRouter(srv)).Resolve(context.Background(), "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")

	_, err = NewDomainResolver(nil).Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoDomain)
}

func TestResolve_ProbeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/com") {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	site, err := NewDomainResolver(nil, probeRouter(srv), WithProbeTimeout(50*time.Millisecond)).
		Resolve(context.Background(), "Acme")

	require.NoError(t, err)
	assert.NotEmpty(t, site.URL)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolve_MemoizesAndShares(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewDomainResolver(nil, probeRouter(srv))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "Acme")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	_, err := r.Resolve(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
}

func TestIsBlockedHost(t *testing.T) {
	assert.True(t, isBlockedHost("www.youtube.com"))
	assert.True(t, isBlockedHost("twitter.com"))
	assert.False(t, isBlockedHost("acme.com"))
	assert.False(t, isBlockedHost("notgoogle.com"))
}
