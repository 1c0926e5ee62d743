package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-sspm/oauth-risk/internal/batch"
	"github.com/open-sspm/oauth-risk/internal/config"
	"github.com/open-sspm/oauth-risk/internal/ingest"
	"github.com/open-sspm/oauth-risk/internal/metrics"
	"github.com/open-sspm/oauth-risk/internal/risk"
)

type batchOptions struct {
	input   string
	now     string
	workers int
	failOn  string
	pretty  bool
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess many apps in parallel and print a run report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Request file, directory of request files, or - for stdin")
	cmd.Flags().StringVar(&opts.now, "now", "", "Evaluation instant (RFC3339) applied to every request; defaults to each request's now, then the current time")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel assessments (default ASSESS_WORKERS)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "Exit 3 when any app reaches this severity (low|medium|high|critical)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	return structuredLog(cmd)
}

func runBatch(cmd *cobra.Command, opts batchOptions) error {
	now, err := parseNow(opts.now)
	if err != nil {
		return invalidInput(err)
	}
	var threshold risk.Severity
	if opts.failOn != "" {
		sev, ok := risk.ParseSeverity(opts.failOn)
		if !ok {
			return invalidInput(fmt.Errorf("--fail-on: unknown severity %q", opts.failOn))
		}
		threshold = sev
	}
	reqs, err := readRequests(cmd.InOrStdin(), opts.input)
	if err != nil {
		return invalidInput(err)
	}

	cfg, err := config.Load()
	if err != nil {
		return invalidInput(err)
	}
	workers := cfg.AssessWorkers
	if opts.workers > 0 {
		workers = opts.workers
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metrics.Enabled(cfg.MetricsAddr) {
		if _, _, err := metrics.StartServer(ctx, cfg.MetricsAddr); err != nil {
			return runError(fmt.Errorf("metrics listener: %w", err))
		}
	}

	engine, closeFn, err := loadEngine(ctx, cfg)
	defer func() { _ = closeFn() }()
	if err != nil {
		return runError(err)
	}

	runner := batch.NewRunner(engine,
		batch.WithWorkers(workers),
		batch.WithIngestOptions(ingest.Options{OrgDomain: cfg.OrgDomain, Now: now, DefaultNow: time.Now().UTC()}),
		batch.WithLogger(slog.Default()),
		batch.WithProgress((&batch.ProgressLogger{Logger: slog.Default()}).Report),
	)
	report, err := runner.Run(ctx, reqs)
	if err != nil {
		return runError(err)
	}
	if err := writeJSON(cmd.OutOrStdout(), report, opts.pretty); err != nil {
		return runError(err)
	}

	if threshold != "" {
		if n := countAtLeast(report, threshold); n > 0 {
			return &exitError{
				code: exitThreshold,
				err:  fmt.Errorf("%d app(s) at or above %s severity", n, threshold),
			}
		}
	}
	return nil
}

func countAtLeast(report batch.Report, threshold risk.Severity) int {
	n := 0
	for sev, count := range report.BySeverity {
		if sev.AtLeast(threshold) {
			n += count
		}
	}
	return n
}
