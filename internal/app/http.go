package app

import (
	"context"

	apphttp "github.com/yungbote/hetiograph/internal/http"
	httpH "github.com/yungbote/hetiograph/internal/http/handlers"
)

// Serve runs the HTTP API until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	srv := apphttp.NewServer(a.Cfg.HTTP.Addr, a.RouterConfig())
	return srv.Run(ctx)
}

func (a *App) RouterConfig() apphttp.RouterConfig {
	serviceName := ""
	if a.Cfg.Tracing.Enabled {
		serviceName = a.Cfg.Tracing.ServiceName
	}
	return apphttp.RouterConfig{
		Log:         a.Log,
		Metrics:     a.Metrics,
		ServiceName: serviceName,
		CORSOrigins: a.Cfg.HTTP.CORSOrigins,
		GraphHandler: httpH.NewGraphHandlerWithDeps(httpH.GraphHandlerDeps{
			Log:       a.Log,
			Queries:   a.Queries,
			Loader:    a.Loader,
			InputRoot: a.Cfg.HTTP.InputRoot,
		}),
		HealthHandler: httpH.NewHealthHandler(a.checks),
	}
}
