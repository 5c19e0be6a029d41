package outreach

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/source"
)

// ErrFanoutTimeout marks an adapter that had not finished when the fan-out
// deadline passed.
var ErrFanoutTimeout = eris.New("outreach: source did not finish before fan-out deadline")

// fanOut runs every adapter with bounded concurrency and returns one result
// per adapter. Results arriving after the fan-out deadline are discarded.
func (s *Service) fanOut(ctx context.Context, company string) []model.SourceResult {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FanoutTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make([]model.SourceResult, 0, len(s.adapters))
		closed  bool
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(s.cfg.Workers)
		for _, a := range s.adapters {
			g.Go(func() error {
				// Adapters still queued at the deadline are abandoned unstarted.
				if ctx.Err() != nil {
					return nil
				}
				r := s.runAdapter(ctx, a, company)
				mu.Lock()
				defer mu.Unlock()
				if closed {
					zap.L().Debug("outreach: discarding late source result",
						zap.String("company", company),
						zap.String("source", string(r.Source)),
					)
					return nil
				}
				results = append(results, r)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		zap.L().Warn("outreach: fan-out deadline reached", zap.String("company", company))
	}

	mu.Lock()
	closed = true
	snapshot := make([]model.SourceResult, len(results))
	copy(snapshot, results)
	mu.Unlock()

	finished := make(map[model.SourceID]bool, len(snapshot))
	for _, r := range snapshot {
		finished[r.Source] = true
	}
	for _, a := range s.adapters {
		if !finished[a.ID()] {
			snapshot = append(snapshot, model.Failed(a.ID(), ErrFanoutTimeout))
		}
	}
	return snapshot
}

// runAdapter calls one adapter under its own timeout, its circuit breaker
// and panic recovery. Outcomes cut short by the fan-out deadline are not
// reported to the breaker; only the adapter's own timeout counts against it.
func (s *Service) runAdapter(ctx context.Context, a source.Adapter, company string) (res model.SourceResult) {
	id := a.ID()
	breaker := s.breakers.Get(string(id))
	if err := breaker.Allow(); err != nil {
		zap.L().Debug("outreach: source skipped", zap.String("source", string(id)), zap.Error(err))
		return model.Failed(id, err)
	}

	actx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = model.Failed(id, eris.Errorf("outreach: source %s panicked: %v", id, p))
		}
		res.Source = id
		res.Duration = time.Since(start)
		switch {
		case res.Succeeded:
			breaker.Record(nil)
		case ctx.Err() != nil:
		default:
			breaker.Record(res.Err)
		}

		log := zap.L().With(
			zap.String("company", company),
			zap.String("source", string(id)),
			zap.Int64("duration_ms", res.Duration.Milliseconds()),
		)
		if res.Succeeded {
			log.Debug("outreach: source finished")
		} else {
			log.Info("outreach: source failed", zap.String("error", res.Error()))
		}
	}()

	return a.Fetch(actx, company)
}
