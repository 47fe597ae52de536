// Package app builds the lookup pipeline from configuration and holds the
// long-lived pieces a run needs.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/clock/system"
	"github.com/JakeFAU/weather-lookup/internal/config"
	"github.com/JakeFAU/weather-lookup/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/weather-lookup/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/weather-lookup/internal/fetcher/headless"
	"github.com/JakeFAU/weather-lookup/internal/format"
	"github.com/JakeFAU/weather-lookup/internal/id/uuid"
	"github.com/JakeFAU/weather-lookup/internal/metrics"
	"github.com/JakeFAU/weather-lookup/internal/progress"
	progresssinks "github.com/JakeFAU/weather-lookup/internal/progress/sinks"
	"github.com/JakeFAU/weather-lookup/internal/weather"
)

// Options overrides the collaborators New would otherwise build from config.
type Options struct {
	// Out receives progress lines and result blocks. Defaults to os.Stdout.
	Out io.Writer
	// Registerer receives the progress collectors. Defaults to the global registry.
	Registerer prometheus.Registerer
	// Renderer replaces the headless or static renderer picked by config.
	Renderer weather.Fetcher
	// Search replaces the colly search fetcher.
	Search weather.Fetcher
}

// App contains the application's dependencies.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	hub        *progress.Hub
	service    *weather.Service
	dispatch   *dispatcher.Dispatcher
	ids        *uuid.Generator
	metricsSrv *metrics.Server
}

// New wires the fetchers, pipeline, progress hub and worker pool described
// by cfg.
func New(cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	search := opts.Search
	if search == nil {
		search = collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.HTTP.UserAgent,
			RespectRobots: cfg.HTTP.RespectRobots,
			Timeout:       cfg.HTTP.Timeout,
		})
	}

	renderer := opts.Renderer
	if renderer == nil {
		if cfg.Headless.Enabled {
			f, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
				MaxParallel:       cfg.Headless.MaxParallel,
				UserAgent:         cfg.HTTP.UserAgent,
				NavigationTimeout: cfg.Headless.NavTimeout,
				Settle:            cfg.Headless.Settle,
				ExecPath:          cfg.Headless.ExecPath,
			}, logger.Named("headless"))
			if err != nil {
				return nil, fmt.Errorf("init headless renderer: %w", err)
			}
			renderer = f
		} else {
			logger.Warn("headless rendering disabled; metrics injected by scripts will be missing")
			renderer = search
		}
	}

	resolver, err := weather.NewResolver(weather.ResolverConfig{
		Origin:         cfg.Site.Origin,
		SearchTemplate: cfg.Site.SearchTemplate,
		Referer:        cfg.Site.Referer,
		Exclude:        cfg.Search.Exclude,
	}, search, logger.Named("resolver"))
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}
	extractor, err := weather.NewExtractor(renderer, logger.Named("extractor"))
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	formatter, err := format.ForName(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("init formatter: %w", err)
	}

	promSink, err := progresssinks.NewPrometheusSink(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("init progress metrics: %w", err)
	}
	hub := progress.NewHub(logger.Named("progress"),
		progresssinks.NewConsoleSink(opts.Out),
		progresssinks.NewLogSink(logger.Named("lookup")),
		promSink,
	)

	service, err := weather.NewService(resolver, extractor, formatter, hub, system.New(), logger.Named("service"))
	if err != nil {
		return nil, fmt.Errorf("init service: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		hub:      hub,
		service:  service,
		dispatch: dispatcher.New(cfg.Pool.Workers, logger.Named("dispatcher")),
		ids:      uuid.New(),
	}

	if cfg.Metrics.ListenAddr != "" {
		srv, _, err := metrics.Start(cfg.Metrics.ListenAddr, logger.Named("metrics"))
		if err != nil {
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
		a.metricsSrv = srv
	}

	logger.Info("application ready",
		zap.Int("workers", a.dispatch.Workers()),
		zap.Bool("headless", cfg.Headless.Enabled),
		zap.String("format", cfg.Output.Format),
	)
	return a, nil
}

// Lookup runs every query on the worker pool and blocks until all finish.
func (a *App) Lookup(ctx context.Context, queries []string) (dispatcher.Summary, error) {
	tasks := make([]dispatcher.Task, 0, len(queries))
	for _, q := range queries {
		id, err := a.ids.NewLookupID()
		if err != nil {
			return dispatcher.Summary{}, fmt.Errorf("lookup id: %w", err)
		}
		tasks = append(tasks, dispatcher.Task{
			ID:   id,
			Name: q,
			Run: func(ctx context.Context, worker string) error {
				return a.service.Run(ctx, weather.Lookup{ID: id, Query: q, Worker: worker})
			},
		})
	}
	return a.dispatch.Run(ctx, tasks), nil
}

// Close stops the metrics server and flushes the progress sinks.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.metricsSrv.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := a.hub.Close(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close progress hub: %w", err)
	}
	a.logger.Info("shutdown complete")
	return firstErr
}
