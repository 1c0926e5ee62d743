package main

import (
	"context"
	"fmt"

	"github.com/open-sspm/oauth-risk/internal/config"
	"github.com/open-sspm/oauth-risk/internal/risk"
	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

// loadScopeCache builds and primes the scope library for the configured
// source. The returned close func is never nil.
func loadScopeCache(ctx context.Context, cfg config.Config) (*scopelib.Cache, func() error, error) {
	loader, closeFn, err := cfg.ScopeLoader()
	if err != nil {
		return nil, closeFn, err
	}
	cache := scopelib.NewCache(loader)
	if err := cache.Refresh(ctx); err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, fmt.Errorf("load scope library (%s): %w", loader.Source(), err)
	}
	return cache, closeFn, nil
}

func loadEngine(ctx context.Context, cfg config.Config) (*risk.Engine, func() error, error) {
	cache, closeFn, err := loadScopeCache(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}
	engine, err := risk.New(cache,
		risk.WithLocation(cfg.ActivityLocation),
		risk.WithSpikeMinEvents(cfg.SpikeMinEvents),
	)
	if err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, err
	}
	return engine, closeFn, nil
}
