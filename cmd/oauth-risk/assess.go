package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-sspm/oauth-risk/internal/batch"
	"github.com/open-sspm/oauth-risk/internal/config"
	"github.com/open-sspm/oauth-risk/internal/ingest"
	"github.com/open-sspm/oauth-risk/internal/risk"
)

type assessOptions struct {
	input  string
	now    string
	pretty bool
}

func newAssessCmd() *cobra.Command {
	var opts assessOptions
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess the apps in one request file and print the result as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Request file (JSON or YAML), or - for stdin")
	cmd.Flags().StringVar(&opts.now, "now", "", "Evaluation instant (RFC3339); defaults to the request's now, then the current time")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	return structuredLog(cmd)
}

func runAssess(cmd *cobra.Command, opts assessOptions) error {
	now, err := parseNow(opts.now)
	if err != nil {
		return invalidInput(err)
	}
	reqs, err := readRequests(cmd.InOrStdin(), opts.input)
	if err != nil {
		return invalidInput(err)
	}
	if len(reqs) == 0 {
		return invalidInput(fmt.Errorf("%s: no requests found", opts.input))
	}

	cfg, err := config.Load()
	if err != nil {
		return invalidInput(err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine, closeFn, err := loadEngine(ctx, cfg)
	defer func() { _ = closeFn() }()
	if err != nil {
		return runError(err)
	}

	ingestOpts := ingest.Options{OrgDomain: cfg.OrgDomain, Now: now, DefaultNow: time.Now().UTC()}
	inputs := make([]risk.Input, 0, len(reqs))
	for i, req := range reqs {
		in, err := req.ToInput(ingestOpts)
		if err != nil {
			return invalidInput(fmt.Errorf("request %d: %w", i, err))
		}
		inputs = append(inputs, in)
	}

	out := make([]risk.Assessment, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return runError(err)
		}
		a := engine.Assess(in)
		batch.Observe(a)
		out = append(out, a)
	}

	if len(out) == 1 {
		return writeJSON(cmd.OutOrStdout(), out[0], opts.pretty)
	}
	return writeJSON(cmd.OutOrStdout(), out, opts.pretty)
}
