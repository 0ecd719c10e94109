package app

import (
	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/http"
	httpH "github.com/yungbote/shipping-estimator/internal/http/handlers"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Rate     *httpH.RateHandler
	Estimate *httpH.EstimateHandler
}

func wireHandlers(log *logger.Logger, tables Tables, service *estimate.Service, metrics *observability.Metrics) Handlers {
	log.Debug("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Rate:     httpH.NewRateHandler(tables.Rates, tables.Definitions, metrics),
		Estimate: httpH.NewEstimateHandler(service, metrics),
	}
}

func wireRouterConfig(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, handlers Handlers) http.RouterConfig {
	rc := http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AllowOrigins:    cfg.HTTP.AllowOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		RateHandler:     handlers.Rate,
		EstimateHandler: handlers.Estimate,
		HealthHandler:   handlers.Health,
	}
	if cfg.Tracing.Enabled {
		rc.TracingService = cfg.Tracing.ServiceName
	}
	return rc
}
