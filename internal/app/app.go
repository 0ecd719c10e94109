package app

import (
	"context"
	"fmt"

	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/http"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
	"github.com/yungbote/shipping-estimator/internal/reference"
)

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Tables   Tables
	Estimate *estimate.Service
	Metrics  *observability.Metrics
	Server   *http.Server

	otelShutdown func(context.Context) error
}

// Tables holds the read-only reference data loaded once at startup.
type Tables struct {
	Rates       *ratetable.Table
	Definitions *reference.Glossary
}

var initOTel = observability.InitOTel

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	otelShutdown := initOTel(ctx, log, cfg.Env, cfg.Tracing)
	defer func() {
		if err != nil {
			if serr := otelShutdown(context.WithoutCancel(ctx)); serr != nil {
				log.Warn("otel shutdown failed", "error", serr)
			}
		}
	}()

	var metrics *observability.Metrics
	if cfg.HTTP.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	tables, err := loadTables(ctx, cfg.Data, log)
	if err != nil {
		return nil, err
	}
	metrics.SetRateTableRows(tables.Rates.Len())

	est, err := wireEstimator(ctx, cfg, log, metrics)
	if err != nil {
		return nil, err
	}
	service := estimate.NewService(tables.Rates, est, log)

	handlers := wireHandlers(log, tables, service, metrics)
	server := http.NewServer(cfg.HTTP, wireRouterConfig(cfg, log, metrics, handlers))

	return &App{
		Log:          log,
		Cfg:          cfg,
		Tables:       tables,
		Estimate:     service,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTP.Addr, "estimator_enabled", a.Estimate.Enabled())
	return a.Server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
