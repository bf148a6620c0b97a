package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/pdc-decklist/internal/cache"
	"github.com/ramonehamilton/pdc-decklist/internal/config"
	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// app holds the services built from configuration.
type app struct {
	store    cache.Store
	client   *scryfall.Client
	renderer *deck.Renderer
	logger   *zap.Logger
	closeFn  func() error
}

// Close logs cache statistics when the store keeps them, then releases it.
func (a *app) Close() {
	if ms, ok := a.store.(*cache.MemoryStore); ok {
		stats := ms.Stats()
		a.logger.Debug("Card cache statistics",
			zap.Int64("hits", stats.Hits),
			zap.Int64("misses", stats.Misses),
			zap.Int64("evictions", stats.Evictions),
			zap.Int("size", stats.Size),
			zap.Float64("hit_rate", stats.HitRate()))
	}
	if err := a.closeFn(); err != nil {
		a.logger.Warn("Failed to close card cache", zap.Error(err))
	}
}

// newApp wires the cache, the Scryfall client and the renderer.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout, err := cfg.GetScryfallTimeout()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, err
	}

	a := &app{logger: logger, closeFn: func() error { return nil }}

	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		path, err := cfg.GetCachePath()
		if err != nil {
			return nil, err
		}
		store, err := cache.OpenSQLite(cache.DefaultSQLiteConfig(path))
		if err != nil {
			return nil, fmt.Errorf("open card cache: %w", err)
		}
		logger.Debug("Using SQLite card cache", zap.String("path", path))
		a.store = store
		a.closeFn = store.Close
	case config.BackendMemory:
		a.store = cache.NewMemoryStore(cfg.Cache.MaxEntries)
	default:
		return nil, errors.New("unknown cache backend: " + cfg.Cache.Backend)
	}

	a.client = scryfall.NewClient(scryfall.Config{
		BaseURL:           cfg.Scryfall.BaseURL,
		Timeout:           timeout,
		UserAgent:         cfg.Scryfall.UserAgent,
		RequestsPerSecond: cfg.Scryfall.RequestsPerSecond,
		CacheTTL:          ttl,
	}, a.store, logger.Named("scryfall"))

	a.renderer = deck.NewRenderer(a.client, deck.Config{
		Concurrency: cfg.Render.Concurrency,
	}, logger.Named("deck"))

	return a, nil
}
