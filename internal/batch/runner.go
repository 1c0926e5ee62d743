// Package batch assesses many apps concurrently. Each request is independent;
// results come back in input order.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/open-sspm/oauth-risk/internal/ingest"
	"github.com/open-sspm/oauth-risk/internal/metrics"
	"github.com/open-sspm/oauth-risk/internal/risk"
)

const defaultWorkers = 4

// Result is the outcome for one request. Exactly one of Assessment and
// Error is set.
type Result struct {
	Index      int              `json:"index"`
	AppID      string           `json:"app_id,omitempty"`
	Assessment *risk.Assessment `json:"assessment,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type Report struct {
	RunID      string                `json:"run_id"`
	Assessed   int                   `json:"assessed"`
	Failed     int                   `json:"failed"`
	BySeverity map[risk.Severity]int `json:"by_severity"`
	Results    []Result              `json:"results"`
}

// Runner fans requests out to a bounded pool of workers.
type Runner struct {
	engine     *risk.Engine
	workers    int
	opts       ingest.Options
	logger     *slog.Logger
	onProgress func(done, total int64)
	newRunID   func() string
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithIngestOptions sets the org domain and evaluation-time override applied
// to every request.
func WithIngestOptions(opts ingest.Options) Option {
	return func(r *Runner) { r.opts = opts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers a callback invoked after each request finishes.
func WithProgress(fn func(done, total int64)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

func NewRunner(engine *risk.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:   engine,
		workers:  defaultWorkers,
		logger:   slog.Default(),
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run assesses every request. Invalid requests become failed results and do
// not stop the run; only context cancellation aborts it.
func (r *Runner) Run(ctx context.Context, reqs []ingest.Request) (Report, error) {
	report := Report{
		RunID:      r.newRunID(),
		BySeverity: map[risk.Severity]int{},
		Results:    make([]Result, len(reqs)),
	}
	if len(reqs) == 0 {
		return report, nil
	}

	logger := r.logger.With("run_id", report.RunID)
	started := time.Now()
	total := int64(len(reqs))
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeWorkers(r.workers, len(reqs)))
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = r.assessOne(logger, i, req)
			n := atomic.AddInt64(&done, 1)
			if r.onProgress != nil {
				r.onProgress(n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, res := range report.Results {
		if res.Assessment == nil {
			report.Failed++
			continue
		}
		report.Assessed++
		report.BySeverity[res.Assessment.RiskScore.Severity]++
	}
	logger.Info("batch assessment complete",
		"requests", len(reqs),
		"assessed", report.Assessed,
		"failed", report.Failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return report, nil
}

func (r *Runner) assessOne(logger *slog.Logger, index int, req ingest.Request) Result {
	res := Result{Index: index, AppID: req.App.ClientID}
	in, err := req.ToInput(r.opts)
	if err != nil {
		metrics.AssessmentFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		logger.Warn("assessment request rejected", "index", index, "app_id", req.App.ClientID, "err", err)
		res.Error = err.Error()
		return res
	}

	started := time.Now()
	assessment := r.engine.Assess(in)
	metrics.AssessmentDuration.Observe(time.Since(started).Seconds())
	Observe(assessment)

	logger.Debug("app assessed",
		"index", index,
		"app_id", assessment.AppID,
		"overall", assessment.RiskScore.Overall,
		"severity", assessment.RiskScore.Severity,
		"anomalies", len(assessment.Anomalies),
	)
	res.AppID = assessment.AppID
	res.Assessment = &assessment
	return res
}

// Observe records the Prometheus counters for one finished assessment.
func Observe(a risk.Assessment) {
	metrics.AssessmentsTotal.WithLabelValues(string(a.RiskScore.Severity)).Inc()
	for _, m := range a.Anomalies {
		metrics.AnomaliesDetectedTotal.WithLabelValues(m.PatternID).Inc()
	}
	for _, rec := range a.Recommendations {
		metrics.RecommendationsTotal.WithLabelValues(string(rec.Category), string(rec.Priority)).Inc()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ingest.ErrMissingClientID) && errors.Is(err, ingest.ErrMissingScopes):
		return "missing_client_id_and_scopes"
	case errors.Is(err, ingest.ErrMissingClientID):
		return "missing_client_id"
	case errors.Is(err, ingest.ErrMissingScopes):
		return "missing_scopes"
	case errors.Is(err, ingest.ErrMissingNow):
		return "missing_now"
	default:
		return "invalid_request"
	}
}

func normalizeWorkers(workers, itemCount int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > itemCount {
		workers = itemCount
	}
	return workers
}
