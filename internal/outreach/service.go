// Package outreach runs one research request end to end: cache,
// known-entity lookup, source fan-out, merge, synthesis, rendering and recording.
package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/merge"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/render"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/internal/synth"
	"github.com/sells-group/outreach-cli/pkg/enrich"
)

// ErrEmptyCompany is returned when the company name is blank.
var ErrEmptyCompany = eris.New("outreach: company name is required")

// recordTimeout bounds each best-effort recorder call.
const recordTimeout = 5 * time.Second

// Config holds the orchestrator's concurrency and time limits.
type Config struct {
	Workers        int
	AdapterTimeout time.Duration
	FanoutTimeout  time.Duration
	Budget         time.Duration
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		Workers:        3,
		AdapterTimeout: 8 * time.Second,
		FanoutTimeout:  10 * time.Second,
		Budget:         30 * time.Second,
	}
}

// Recorder receives every finished draft. Failures are logged and ignored.
type Recorder interface {
	Name() string
	Record(ctx context.Context, rec model.DraftRecord) error
}

// SourceStatus summarizes one adapter invocation.
type SourceStatus struct {
	Source     model.SourceID `json:"source"`
	Succeeded  bool           `json:"succeeded"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// Result is the outcome of Handle.
type Result struct {
	ID          string                  `json:"id"`
	CompanyName string                  `json:"company_name"`
	Facts       model.CompanyFacts      `json:"facts"`
	Draft       model.EmailDraft        `json:"draft"`
	CEOEmail    string                  `json:"ceo_email,omitempty"`
	CacheHit    bool                    `json:"cache_hit"`
	Known       bool                    `json:"known"`
	Synthesis   synth.Outcome           `json:"synthesis,omitempty"`
	Sources     []SourceStatus          `json:"sources,omitempty"`
	Provenance  []model.FieldProvenance `json:"provenance,omitempty"`
	Duration    time.Duration           `json:"duration"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Service is the request orchestrator.
type Service struct {
	cfg       Config
	known     *source.Known
	adapters  []source.Adapter
	cache     cache.Cache
	synth     *synth.Synthesizer
	renderer  *render.Renderer
	enrich    enrich.Client
	breakers  *resilience.Breakers
	recorders []Recorder
	nowFunc   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets concurrency and time limits. Zero fields keep defaults.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.Workers > 0 {
			s.cfg.Workers = cfg.Workers
		}
		if cfg.AdapterTimeout > 0 {
			s.cfg.AdapterTimeout = cfg.AdapterTimeout
		}
		if cfg.FanoutTimeout > 0 {
			s.cfg.FanoutTimeout = cfg.FanoutTimeout
		}
		if cfg.Budget > 0 {
			s.cfg.Budget = cfg.Budget
		}
	}
}

// WithCache sets the result cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithSynthesizer sets the synthesis step.
func WithSynthesizer(sy *synth.Synthesizer) Option {
	return func(s *Service) { s.synth = sy }
}

// WithEmailLookup enables executive email resolution through the
// enrichment API.
func WithEmailLookup(c enrich.Client) Option {
	return func(s *Service) { s.enrich = c }
}

// WithBreakers sets the per-source circuit breakers.
func WithBreakers(b *resilience.Breakers) Option {
	return func(s *Service) { s.breakers = b }
}

// WithRecorders adds draft recorders.
func WithRecorders(r ...Recorder) Option {
	return func(s *Service) {
		for _, rec := range r {
			if rec != nil {
				s.recorders = append(s.recorders, rec)
			}
		}
	}
}

// New creates a Service. Nil adapters are skipped.
func New(renderer *render.Renderer, adapters []source.Adapter, opts ...Option) (*Service, error) {
	if renderer == nil {
		return nil, eris.New("outreach: renderer is required")
	}
	s := &Service{
		cfg:      DefaultConfig(),
		known:    source.NewKnown(),
		renderer: renderer,
		nowFunc:  time.Now,
	}
	for _, a := range adapters {
		if a != nil {
			s.adapters = append(s.adapters, a)
		}
	}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		lru, err := cache.NewLRU(cache.DefaultCapacity)
		if err != nil {
			return nil, eris.Wrap(err, "outreach: default cache")
		}
		s.cache = lru
	}
	if s.breakers == nil {
		cfg := resilience.DefaultBreakerConfig()
		cfg.ShouldTrip = resilience.IsTransient
		s.breakers = resilience.NewBreakers(cfg)
	}
	return s, nil
}

// Handle researches company and returns a rendered draft. Source failures
// degrade the draft rather than fail the call.
func (s *Service) Handle(ctx context.Context, company string) (res *Result, err error) {
	start := s.nowFunc()
	company = strings.TrimSpace(company)
	log := zap.L().With(zap.String("company", company))

	defer func() {
		if p := recover(); p != nil {
			log.Error("outreach: recovered panic", zap.Any("panic", p))
			res, err = nil, eris.Errorf("outreach: %v", p)
		}
	}()

	if company == "" {
		return nil, ErrEmptyCompany
	}
	if s.cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Budget)
		defer cancel()
	}

	res = &Result{ID: uuid.NewString(), CompanyName: company}
	defer func() {
		if res != nil {
			res.Duration = s.nowFunc().Sub(start)
			res.GeneratedAt = s.nowFunc().UTC()
		}
	}()

	key := cache.Key(company)
	if entry, ok := s.cache.Get(key); ok && entry.Draft != nil {
		log.Info("outreach: cache hit")
		res.CacheHit = true
		res.Known = entry.Known
		res.Facts = entry.Facts
		res.Draft = *entry.Draft
		res.CEOEmail = entry.CEOEmail
		s.record(ctx, res, start)
		return res, nil
	}

	if facts, ok := s.known.Lookup(company); ok {
		log.Info("outreach: known entity")
		res.Known = true
		res.Facts = facts
		res.Draft = s.renderer.Render(ctx, facts)
		res.Provenance = provenanceOf(facts, model.SourceKnown)
		draft := res.Draft
		s.cache.Put(key, cache.Entry{Facts: res.Facts, Draft: &draft, Known: true})
		s.record(ctx, res, start)
		return res, nil
	}

	results := s.fanOut(ctx, company)
	res.Sources = statuses(results)

	merged := merge.MergeWithProvenance(company, results)
	res.Provenance = merged.Provenance
	for _, p := range merged.Provenance {
		log.Debug("outreach: field provenance",
			zap.String("field", string(p.Field)),
			zap.String("source", string(p.Source)),
			zap.Bool("override", p.Override),
		)
	}

	res.Facts, res.Synthesis = s.synth.Synthesize(ctx, merged.Facts, results)
	res.CEOEmail = s.lookupEmail(ctx, res.Facts, results)
	res.Draft = s.renderer.Render(ctx, res.Facts)

	draft := res.Draft
	s.cache.Put(key, cache.Entry{Facts: res.Facts, Draft: &draft, CEOEmail: res.CEOEmail})

	log.Info("outreach: draft ready",
		zap.Int("sources_ok", countSucceeded(results)),
		zap.String("synthesis", string(res.Synthesis)),
		zap.String("generated_by", res.Draft.GeneratedBy),
		zap.Int64("duration_ms", s.nowFunc().Sub(start).Milliseconds()),
	)
	s.record(ctx, res, start)
	return res, nil
}

// record hands the result to every recorder. The request context may be
// past its budget, so recorders get their own deadline.
func (s *Service) record(ctx context.Context, res *Result, start time.Time) {
	if len(s.recorders) == 0 {
		return
	}
	rec := model.DraftRecord{
		ID:          res.ID,
		CompanyName: res.CompanyName,
		Facts:       res.Facts,
		Draft:       res.Draft,
		CEOEmail:    res.CEOEmail,
		Synthesis:   string(res.Synthesis),
		CacheHit:    res.CacheHit,
		DurationMS:  s.nowFunc().Sub(start).Milliseconds(),
		CreatedAt:   s.nowFunc().UTC(),
	}
	for _, st := range res.Sources {
		if st.Succeeded {
			rec.Sources = append(rec.Sources, st.Source)
		}
	}
	if res.Known {
		rec.Sources = []model.SourceID{model.SourceKnown}
	}

	base := context.WithoutCancel(ctx)
	for _, r := range s.recorders {
		rctx, cancel := context.WithTimeout(base, recordTimeout)
		if err := r.Record(rctx, rec); err != nil {
			zap.L().Warn("outreach: record draft failed",
				zap.String("recorder", r.Name()),
				zap.String("company", res.CompanyName),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func statuses(results []model.SourceResult) []SourceStatus {
	out := make([]SourceStatus, 0, len(results))
	for _, r := range results {
		out = append(out, SourceStatus{
			Source:     r.Source,
			Succeeded:  r.Succeeded,
			Error:      r.Error(),
			DurationMS: r.Duration.Milliseconds(),
		})
	}
	return out
}

func countSucceeded(results []model.SourceResult) int {
	n := 0
	for _, r := range results {
		if r.Succeeded {
			n++
		}
	}
	return n
}

func provenanceOf(facts model.CompanyFacts, src model.SourceID) []model.FieldProvenance {
	var out []model.FieldProvenance
	for _, f := range model.Fields() {
		if facts.Get(f) != "" {
			out = append(out, model.FieldProvenance{Field: f, Source: src})
		}
	}
	return out
}

// String implements fmt.Stringer for log output.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (cache_hit=%t known=%t by=%s)", r.CompanyName, r.CacheHit, r.Known, r.Draft.GeneratedBy)
}
