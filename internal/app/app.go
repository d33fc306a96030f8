// Package app wires configuration, stores and services into a runnable
// process. Every command builds one App and closes it when done.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/hetiograph/internal/config"
	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/data/mirror"
	httpH "github.com/yungbote/hetiograph/internal/http/handlers"
	"github.com/yungbote/hetiograph/internal/ingestion/tsv"
	"github.com/yungbote/hetiograph/internal/loader"
	"github.com/yungbote/hetiograph/internal/observability"
	"github.com/yungbote/hetiograph/internal/platform/gcp"
	"github.com/yungbote/hetiograph/internal/platform/logger"
	"github.com/yungbote/hetiograph/internal/query"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	Log     *logger.Logger
	Cfg     config.Config
	Metrics *observability.Metrics

	Graph   graph.Store
	Mirror  mirror.Store
	Objects *gcp.ObjectReader

	Loader  *loader.Loader
	Queries *query.Service

	checks    map[string]httpH.Check
	closers   []func(context.Context) error
	otelClose func(context.Context) error
}

// New builds the app from cfg. When withMirror is false the mirror store is
// not opened; query-only commands never write to it.
func New(ctx context.Context, cfg config.Config, withMirror bool) (*App, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{
		Log:     log,
		Cfg:     cfg,
		Metrics: observability.Init(),
		checks:  map[string]httpH.Check{},
	}
	a.otelClose = observability.InitTracing(ctx, log, cfg.Tracing, Version)

	if err := a.wireGraph(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.Mirror = mirror.Nop{}
	if withMirror {
		if err := a.wireMirror(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Objects = gcp.NewObjectReader(log, cfg.Storage)
	a.closers = append(a.closers, func(context.Context) error { return a.Objects.Close() })

	a.Loader = loader.New(log, a.Graph, a.Mirror, &tsv.Opener{Remote: a.Objects}, loader.Options{
		BatchSize:   cfg.Loader.BatchSize,
		EdgeWorkers: cfg.Loader.EdgeWorkers,
	}, a.Metrics)
	a.Queries, err = query.NewService(log, a.Graph, cfg.Schema, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("app wired",
		"graph_backend", cfg.Graph.Backend,
		"mirror_backend", a.Mirror.Name(),
		"batch_size", cfg.Loader.BatchSize,
		"edge_workers", cfg.Loader.EdgeWorkers,
	)
	return a, nil
}

// Close releases stores in reverse order of acquisition and flushes the logger.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelClose != nil {
		_ = a.otelClose(ctx)
	}
	a.Log.Sync()
}
