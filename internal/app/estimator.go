package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/inference/router"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
)

// wireEstimator returns nil when no estimator model is configured.
func wireEstimator(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics *observability.Metrics) (estimate.Estimator, error) {
	mc, ok := cfg.EstimatorModel()
	if !ok {
		log.Info("Estimator disabled (no estimator.model configured)")
		return nil, nil
	}
	est, err := BuildEstimator(ctx, mc, cfg.Estimator)
	if err != nil {
		return nil, err
	}
	log.Info("Estimator configured", "model", mc.ID, "engine", mc.Engine.Type)
	return instrumentEstimator(mc.ID, est, metrics), nil
}

// BuildEstimator constructs the engine for one configured model.
func BuildEstimator(ctx context.Context, mc config.ModelConfig, ec config.EstimatorConfig) (estimate.Estimator, error) {
	r, err := router.New(ctx, []config.ModelConfig{mc})
	if err != nil {
		return nil, fmt.Errorf("init estimator: %w", err)
	}
	route, ok := r.RouteForModel(mc.ID)
	if !ok {
		return nil, fmt.Errorf("init estimator: model %q not routed", mc.ID)
	}
	return estimate.NewEngineEstimator(route.Engine, route.UpstreamModel, estimate.EngineOptions{
		SystemPrompt: ec.SystemPrompt,
		Temperature:  ec.Temperature,
	}), nil
}

type instrumentedEstimator struct {
	model   string
	inner   estimate.Estimator
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func instrumentEstimator(model string, inner estimate.Estimator, metrics *observability.Metrics) estimate.Estimator {
	if inner == nil {
		return nil
	}
	return &instrumentedEstimator{
		model:   model,
		inner:   inner,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/yungbote/shipping-estimator/internal/estimate"),
	}
}

func (e *instrumentedEstimator) Estimate(ctx context.Context, prompt string) (string, error) {
	ctx, span := e.tracer.Start(ctx, "estimate.completion",
		trace.WithAttributes(
			attribute.String("estimate.model", e.model),
			attribute.Int("estimate.prompt_chars", len(prompt)),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := e.inner.Estimate(ctx, prompt)
	e.metrics.ObserveEstimate(e.model, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}
