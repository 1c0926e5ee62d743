package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

const (
	defaultMetricsAddr    = "off"
	defaultAssessWorkers  = 4
	defaultActivityZone   = "UTC"
	defaultScopeLibSource = scopelib.SourceEmbedded
)

type Config struct {
	DatabaseURL        string
	ScopeLibrarySource string
	ScopeLibraryPath   string
	MetricsAddr        string
	AssessWorkers      int
	OrgDomain          string
	ActivityTimezone   string
	ActivityLocation   *time.Location
	// SpikeMinEvents is the smallest peak day reported as a usage spike;
	// zero keeps the plain three-times-average rule.
	SpikeMinEvents int
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: false})
}

// LoadRequireDB is used by commands that always talk to Postgres.
func LoadRequireDB() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ScopeLibraryPath: strings.TrimSpace(os.Getenv("SCOPE_LIBRARY_PATH")),
		MetricsAddr:      strings.TrimSpace(getenvDefault("METRICS_ADDR", defaultMetricsAddr)),
		AssessWorkers:    getenvIntDefault("ASSESS_WORKERS", defaultAssessWorkers),
		OrgDomain:        strings.ToLower(strings.TrimSpace(os.Getenv("ORG_DOMAIN"))),
		ActivityTimezone: strings.TrimSpace(getenvDefault("ACTIVITY_TIMEZONE", defaultActivityZone)),
		SpikeMinEvents:   getenvIntDefault("ACTIVITY_SPIKE_MIN_EVENTS", 0),
	}

	source, err := scopelib.ValidateSource(getenvDefault("SCOPE_LIBRARY_SOURCE", defaultScopeLibSource))
	if err != nil {
		return cfg, fmt.Errorf("SCOPE_LIBRARY_SOURCE: %w", err)
	}
	cfg.ScopeLibrarySource = source

	loc, err := time.LoadLocation(cfg.ActivityTimezone)
	if err != nil {
		return cfg, fmt.Errorf("ACTIVITY_TIMEZONE %q: %w", cfg.ActivityTimezone, err)
	}
	cfg.ActivityLocation = loc

	if cfg.ScopeLibrarySource == scopelib.SourceFile && cfg.ScopeLibraryPath == "" {
		return cfg, errors.New("SCOPE_LIBRARY_PATH is required when SCOPE_LIBRARY_SOURCE=file")
	}
	if (opts.RequireDatabaseURL || cfg.ScopeLibrarySource == scopelib.SourcePostgres) && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

// ScopeLoader builds the Loader for the configured source. The returned
// close func releases any database handle and is never nil.
func (c Config) ScopeLoader() (scopelib.Loader, func() error, error) {
	noop := func() error { return nil }
	switch c.ScopeLibrarySource {
	case scopelib.SourceFile:
		return scopelib.FileLoader{Path: c.ScopeLibraryPath}, noop, nil
	case scopelib.SourcePostgres:
		store, err := scopelib.OpenPostgres(c.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case scopelib.SourceEmbedded, "":
		return scopelib.EmbeddedLoader{}, noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", scopelib.ErrUnknownSource, c.ScopeLibrarySource)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
