// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Command server runs the Shelfmate HTTP service under a supervisor
// tree: the recommendation API, the trending refresher, and the
// Prometheus scrape endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/cache"
	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/database"
	"github.com/shelfmate/shelfmate/internal/logging"
	"github.com/shelfmate/shelfmate/internal/middleware"
	"github.com/shelfmate/shelfmate/internal/recommend"
	"github.com/shelfmate/shelfmate/internal/supervisor"
	"github.com/shelfmate/shelfmate/internal/trending"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors are logged with the default logger since the
		// configured one is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("trending_enabled", cfg.Trending.Enabled).
		Msg("Starting Shelfmate")

	db, err := database.New(cfg.Database, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	engine, err := recommend.NewEngine(db, cfg.Recommend, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	responseCache, err := buildCache(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	if responseCache != nil {
		engine.SetCache(responseCache)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(
		logging.NewSlogLogger(logging.Logger()),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)

	var trendingSvc *trending.Service
	if cfg.Trending.Enabled {
		trendingSvc = trending.New(db, cfg.Trending, logging.Logger())
		tree.AddJobService(trendingSvc)
		logging.Info().
			Dur("refresh_interval", cfg.Trending.RefreshInterval).
			Msg("Trending service added")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		defer limiter.Stop()
	}

	// A nil interface value, not a typed nil, when trending is off.
	var trendingProvider api.TrendingProvider
	if trendingSvc != nil {
		trendingProvider = trendingSvc
	}
	apiServer := api.NewServer(engine, db, trendingProvider, logging.Logger())

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer.NewRouter(limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Shelfmate stopped gracefully")
}

// buildCache creates the response cache backend named in the config.
// Returns nil when response caching is disabled at the engine level.
func buildCache(cfg config.CacheConfig) (recommend.Cache, error) {
	switch cfg.Backend {
	case "redis":
		r := cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.TTL,
		}, logging.Logger())
		if err := r.Ping(context.Background()); err != nil {
			// Redis being down at startup is survivable; the cache
			// degrades to misses until it recovers.
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).
				Msg("Redis unreachable at startup, continuing with degraded cache")
		}
		return r, nil
	case "memory":
		return cache.NewMemory(cfg.TTL, cfg.MaxEntries), nil
	default:
		// Validate() rejects other values before we get here.
		return cache.NewMemory(cfg.TTL, cfg.MaxEntries), nil
	}
}
