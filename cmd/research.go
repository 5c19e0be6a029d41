package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/api"
)

var (
	researchBatchFile   string
	researchConcurrency int
	researchPretty      bool
)

var researchCmd = &cobra.Command{
	Use:   "research [company name]",
	Short: "Research a company and print the outreach envelope",
	Long:  "Runs the full pipeline for one company, or for every line of --batch, and prints the same JSON envelope the API returns.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var companies []string
		if researchBatchFile != "" {
			f, err := os.Open(researchBatchFile)
			if err != nil {
				return eris.Wrap(err, "research: open batch file")
			}
			defer f.Close() //nolint:errcheck
			companies, err = readCompanies(f)
			if err != nil {
				return err
			}
		} else {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return eris.New("research: company name or --batch is required")
			}
			companies = []string{name}
		}

		if err := cfg.Validate("research"); err != nil {
			return err
		}

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if len(companies) == 1 {
			ok := researchOne(ctx, env.Service, companies[0], newEnvelopeWriter(os.Stdout, researchPretty))
			if !ok {
				return eris.Errorf("research: %s failed", companies[0])
			}
			return nil
		}

		sum := researchBatch(ctx, env.Service, companies, researchConcurrency, newEnvelopeWriter(os.Stdout, researchPretty))
		if sum.Failed > 0 {
			return eris.Errorf("research: %d of %d companies failed", sum.Failed, sum.Total)
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchBatchFile, "batch", "", "file with one company name per line")
	researchCmd.Flags().IntVar(&researchConcurrency, "concurrency", 3, "companies researched at once in batch mode")
	researchCmd.Flags().BoolVar(&researchPretty, "pretty", false, "indent JSON output")
	rootCmd.AddCommand(researchCmd)
}

// readCompanies returns the non-empty lines of r. Lines starting with '#'
// are comments.
func readCompanies(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "research: read batch file")
	}
	return out, nil
}

// envelopeWriter serializes envelopes to a shared writer, one per line.
type envelopeWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newEnvelopeWriter(w io.Writer, pretty bool) *envelopeWriter {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &envelopeWriter{enc: enc}
}

func (e *envelopeWriter) write(v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(v); err != nil {
		zap.L().Warn("research: write envelope", zap.Error(err))
	}
}

// researchOne runs one company and writes its success or failure envelope.
func researchOne(ctx context.Context, gen api.Generator, company string, out *envelopeWriter) bool {
	start := time.Now()
	res, err := gen.Handle(ctx, company)
	if err != nil {
		zap.L().Error("research failed", zap.String("company", company), zap.Error(err))
		out.write(api.NewErrorResponse(err))
		return false
	}
	out.write(api.NewSuccessResponse(res, time.Since(start)))
	return true
}

// batchSummary counts batch outcomes.
type batchSummary struct {
	Total     int
	Succeeded int64
	Failed    int64
	CacheHits int64
	Elapsed   time.Duration
}

// researchBatch runs companies with at most concurrency in flight. One
// failure does not stop the batch.
func researchBatch(ctx context.Context, gen api.Generator, companies []string, concurrency int, out *envelopeWriter) batchSummary {
	if concurrency < 1 {
		concurrency = 1
	}
	zap.L().Info("processing batch",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", concurrency),
	)

	start := time.Now()
	var succeeded, failed, hits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, company := range companies {
		g.Go(func() error {
			t0 := time.Now()
			res, err := gen.Handle(gctx, company)
			if err != nil {
				failed.Add(1)
				zap.L().Error("research failed", zap.String("company", company), zap.Error(err))
				out.write(api.NewErrorResponse(err))
				return nil
			}
			succeeded.Add(1)
			if res.CacheHit {
				hits.Add(1)
			}
			out.write(api.NewSuccessResponse(res, time.Since(t0)))
			return nil
		})
	}
	_ = g.Wait()

	sum := batchSummary{
		Total:     len(companies),
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		CacheHits: hits.Load(),
		Elapsed:   time.Since(start),
	}
	zap.L().Info("batch complete",
		zap.Int64("succeeded", sum.Succeeded),
		zap.Int64("failed", sum.Failed),
		zap.Int64("cache_hits", sum.CacheHits),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum
}
