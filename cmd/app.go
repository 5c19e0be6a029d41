package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/crm"
	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/outreach"
	"github.com/sells-group/outreach-cli/internal/render"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/scrape"
	"github.com/sells-group/outreach-cli/internal/search"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/synth"
	"github.com/sells-group/outreach-cli/pkg/enrich"
	"github.com/sells-group/outreach-cli/pkg/jina"
	"github.com/sells-group/outreach-cli/pkg/notion"
	"github.com/sells-group/outreach-cli/pkg/perplexity"
	"github.com/sells-group/outreach-cli/pkg/serp"
)

// appEnv holds the orchestrator and the resources it owns.
type appEnv struct {
	Service *outreach.Service
	Store   store.Store // nil when history is disabled
}

// Close releases resources held by the environment.
func (a *appEnv) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

// initApp builds every client and the orchestrator from c. Sources whose
// credentials are missing are left out. Callers should defer env.Close().
func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	jinaOpts := []jina.Option{jina.WithBaseURL(c.Jina.BaseURL)}
	if c.Jina.SearchBaseURL != "" {
		jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	}
	jinaClient := jina.NewClient(c.Jina.Key, jinaOpts...)

	searcher := newSearcher(c, jinaClient)

	scraper := scrape.NewChain(
		scrape.NewLocalScraper(
			scrape.WithUserAgent(c.Scrape.UserAgent),
			scrape.WithHostLimiter(scrape.NewHostLimiter(c.Scrape.HostRPS, 1)),
		),
		scrape.NewJinaReader(jinaClient),
	)

	resolver := source.NewDomainResolver(searcher,
		source.WithProbeTimeout(time.Duration(c.Scrape.ProbeTimeoutMS)*time.Millisecond),
		source.WithResolverUserAgent(c.Scrape.UserAgent),
	)

	adapters := []source.Adapter{source.NewWebsite(resolver, scraper)}
	if searcher != nil {
		adapters = append(adapters, source.NewWebSearch(searcher))
	}

	var enrichClient enrich.Client
	if c.Enrichment.Key != "" && c.Enrichment.BaseURL != "" {
		enrichClient = enrich.NewClient(c.Enrichment.Key, enrich.WithBaseURL(c.Enrichment.BaseURL))
		adapters = append(adapters, source.NewEnrichment(resolver, enrichClient))
	} else {
		zap.L().Debug("enrichment not configured, source disabled")
	}

	if c.Perplexity.Key != "" {
		pc := perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
		)
		adapters = append(adapters, source.NewNews(pc))
	} else {
		zap.L().Debug("perplexity not configured, news source disabled")
	}

	gen, err := llm.New(ctx, llm.ProviderConfig{
		Provider:       c.LLM.Provider,
		AnthropicKey:   c.Anthropic.Key,
		AnthropicModel: c.Anthropic.Model,
		GeminiKey:      c.Gemini.Key,
		GeminiModel:    c.Gemini.Model,
	})
	if err != nil {
		return nil, err
	}

	examples, err := render.LoadExamples(c.Outreach.ExamplesPath)
	if err != nil {
		return nil, err
	}
	renderer := render.New(gen, render.Options{
		SenderName:  c.Outreach.SenderName,
		CalendarURL: c.Outreach.CalendarURL,
		Examples:    examples,
	})

	lru, err := cache.NewLRU(c.Cache.Capacity, cache.WithTTL(c.Cache.TTL()))
	if err != nil {
		return nil, err
	}

	breakers := resilience.NewBreakers(resilience.BreakerConfig{
		FailureThreshold: c.Fanout.BreakerFailures,
		ResetTimeout:     time.Duration(c.Fanout.BreakerResetSecs) * time.Second,
		ShouldTrip:       resilience.IsTransient,
	})

	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var recorders []outreach.Recorder
	if st != nil {
		recorders = append(recorders, store.NewRecorder(st))
	}
	if c.Notion.Token != "" && c.Notion.DraftsDB != "" {
		recorders = append(recorders, crm.NewNotionSink(notion.NewClient(c.Notion.Token), c.Notion.DraftsDB))
	}

	opts := []outreach.Option{
		outreach.WithConfig(outreach.Config{
			Workers:        c.Fanout.Workers,
			AdapterTimeout: c.Fanout.AdapterTimeout(),
			FanoutTimeout:  c.Fanout.Timeout(),
			Budget:         c.Fanout.Budget(),
		}),
		outreach.WithCache(lru),
		outreach.WithSynthesizer(synth.New(gen)),
		outreach.WithBreakers(breakers),
		outreach.WithRecorders(recorders...),
	}
	if enrichClient != nil {
		opts = append(opts, outreach.WithEmailLookup(enrichClient))
	}

	svc, err := outreach.New(renderer, adapters, opts...)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, eris.Wrap(err, "init app")
	}

	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, string(a.ID()))
	}
	zap.L().Info("outreach service ready",
		zap.Strings("sources", names),
		zap.Bool("llm", gen != nil),
		zap.String("store", c.Store.Driver),
		zap.Int("recorders", len(recorders)),
	)

	return &appEnv{Service: svc, Store: st}, nil
}

// newSearcher returns the configured web search backend, or nil when it
// has no credentials.
func newSearcher(c *config.Config, jinaClient jina.Client) search.Searcher {
	switch c.Search.Provider {
	case "jina":
		return search.NewJina(jinaClient, c.Search.RPS)
	default:
		if c.Serp.Key == "" {
			zap.L().Warn("serp key not set, web search disabled")
			return nil
		}
		return search.NewSerp(serp.NewClient(c.Serp.Key, serp.WithBaseURL(c.Serp.BaseURL)), c.Search.RPS)
	}
}
