// Package app wires configuration, catalog, resolver chain and HTTP server
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/semsearch/internal/catalog"
	"github.com/nfrund/semsearch/internal/config"
	"github.com/nfrund/semsearch/internal/metrics"
	"github.com/nfrund/semsearch/internal/search"
	"github.com/nfrund/semsearch/internal/server"
	"github.com/nfrund/semsearch/internal/suspense"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
)

// App is the assembled application.
type App struct {
	Server  *server.Server
	Catalog *catalog.Store
	Metrics *metrics.SearchMetrics
	cfg     *config.Config
}

// New builds the application from cfg, reading the catalog through fs.
func New(cfg *config.Config, fs afero.Fs) (*App, error) {
	store, err := catalog.Open(fs, cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	searchMetrics, err := metrics.NewSearchMetrics(registry)
	if err != nil {
		return nil, err
	}
	searchMetrics.SetCatalog(len(store.Images()), store.LoadedAt())

	resolver, flush := search.NewResolver(store, cfg.MaxResults, cfg.ResultCacheTTL, searchMetrics)
	store.OnReload(func() {
		flush()
		searchMetrics.SetCatalog(len(store.Images()), store.LoadedAt())
	})

	srv, err := server.New(server.Dependencies{
		Config:   cfg,
		Resolver: resolver,
		Tracker:  suspense.NewTracker(),
		Gatherer: registry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	srv.RegisterRoutes()

	return &App{Server: srv, Catalog: store, Metrics: searchMetrics, cfg: cfg}, nil
}

// Run starts the catalog watcher when enabled and serves HTTP until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.CatalogWatch {
		if err := a.Catalog.Watch(ctx); err != nil {
			slog.Warn("Catalog hot-reload disabled", "path", a.Catalog.Path(), "error", err)
		}
	}
	return a.Server.Start(ctx)
}
