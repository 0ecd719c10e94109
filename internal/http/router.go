package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/shipping-estimator/internal/http/handlers"
	httpMW "github.com/yungbote/shipping-estimator/internal/http/middleware"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AllowOrigins    []string
	MaxRequestBytes int64

	// TracingService, when set, names the otelgin server spans.
	TracingService string

	RateHandler     *httpH.RateHandler
	EstimateHandler *httpH.EstimateHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Rate table
		if cfg.RateHandler != nil {
			api.GET("/options", cfg.RateHandler.Options)
			api.GET("/definitions", cfg.RateHandler.Definitions)
			api.GET("/rates", cfg.RateHandler.Lookup)
		}

		// Free-text estimate
		if cfg.EstimateHandler != nil {
			api.POST("/estimate", cfg.EstimateHandler.Estimate)
		}
	}

	return r
}
