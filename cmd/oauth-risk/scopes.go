package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/open-sspm/oauth-risk/internal/config"
	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

func newScopesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "Inspect and manage the OAuth scope risk library.",
	}
	cmd.AddCommand(newScopesListCmd(), newScopesLookupCmd(), newScopesImportCmd())
	return cmd
}

func newScopesListCmd() *cobra.Command {
	var (
		asJSON  bool
		service string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library entries, riskiest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := configuredLibrary(cmd.Context())
			if err != nil {
				return err
			}
			entries := filterService(lib.Entries(), service)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries, false)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCOPE\tSERVICE\tACCESS\tSCORE\tLEVEL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Scope, e.Service, e.AccessLevel, e.RiskScore, e.RiskLevel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	cmd.Flags().StringVar(&service, "service", "", "Only list entries for this service")
	return cmd
}

type lookupResult struct {
	Query string         `json:"query"`
	Known bool           `json:"known"`
	Entry scopelib.Entry `json:"entry"`
}

func newScopesLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <scope>...",
		Short: "Show the library entry for each scope; unknown scopes get the default.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := configuredLibrary(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]lookupResult, 0, len(args))
			for _, arg := range args {
				entry, known := scopelib.Resolve(lib, arg)
				out = append(out, lookupResult{Query: arg, Known: known, Entry: entry})
			}
			if len(out) == 1 {
				return writeJSON(cmd.OutOrStdout(), out[0], false)
			}
			return writeJSON(cmd.OutOrStdout(), out, false)
		},
	}
}

func newScopesImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert the embedded (or a YAML) scope library into Postgres.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRequireDB()
			if err != nil {
				return invalidInput(err)
			}

			var loader scopelib.Loader = scopelib.EmbeddedLoader{}
			if strings.TrimSpace(file) != "" {
				loader = scopelib.FileLoader{Path: file}
			}
			lib, err := loader.Load(cmd.Context())
			if err != nil {
				return invalidInput(err)
			}

			store, err := scopelib.OpenPostgres(cfg.DatabaseURL)
			if err != nil {
				return runError(err)
			}
			defer store.Close()

			n, err := store.Upsert(cmd.Context(), lib.Entries())
			if err != nil {
				return runError(err)
			}
			slog.Info("scope library imported", "source", loader.Source(), "version", lib.Version(), "entries", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML library to import instead of the embedded one")
	return structuredLog(cmd)
}

func configuredLibrary(ctx context.Context) (*scopelib.Library, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, invalidInput(err)
	}
	cache, closeFn, err := loadScopeCache(ctx, cfg)
	defer func() { _ = closeFn() }()
	if err != nil {
		return nil, runError(err)
	}
	return cache.Snapshot(), nil
}

func filterService(entries []scopelib.Entry, service string) []scopelib.Entry {
	service = strings.ToLower(strings.TrimSpace(service))
	if service == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.Service == service {
			out = append(out, e)
		}
	}
	return out
}
