package estimate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/shipping-estimator/internal/inference/engine"
)

const DefaultSystemPrompt = "You are a shipping cost assistant. Answer with a short, plain-language cost estimate in US dollars. Use the rate table range when one is given."

var ErrEmptyEstimate = errors.New("completion service returned no text")

// Estimator turns a free-text prompt into a free-text estimate.
type Estimator interface {
	Estimate(ctx context.Context, prompt string) (string, error)
}

// ServiceError is any failure of the completion call. The lookup result is
// unaffected by it.
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	if e == nil || e.Err == nil {
		return "completion service error"
	}
	if e.Model == "" {
		return fmt.Sprintf("completion service error: %v", e.Err)
	}
	return fmt.Sprintf("completion service error (model=%s): %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type EngineOptions struct {
	SystemPrompt string
	Temperature  float64
}

// EngineEstimator sends the prompt to one model of an inference engine as a
// single request.
type EngineEstimator struct {
	eng    engine.Engine
	model  string
	system string
	temp   float64
}

func NewEngineEstimator(eng engine.Engine, model string, opts EngineOptions) *EngineEstimator {
	system := strings.TrimSpace(opts.SystemPrompt)
	if system == "" {
		system = DefaultSystemPrompt
	}
	return &EngineEstimator{eng: eng, model: model, system: system, temp: opts.Temperature}
}

func (e *EngineEstimator) Estimate(ctx context.Context, prompt string) (string, error) {
	if e == nil || e.eng == nil {
		return "", &ServiceError{Err: errors.New("no engine configured")}
	}
	messages := []engine.Message{
		{Role: "system", Content: e.system},
		{Role: "user", Content: prompt},
	}
	text, err := e.eng.GenerateText(ctx, e.model, messages, engine.GenerateOptions{Temperature: e.temp})
	if err != nil {
		return "", &ServiceError{Model: e.model, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ServiceError{Model: e.model, Err: ErrEmptyEstimate}
	}
	return text, nil
}
