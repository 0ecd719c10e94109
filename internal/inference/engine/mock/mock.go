package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/shipping-estimator/internal/inference/engine"
)

// Engine is an offline engine that echoes the last user message. It lets the
// service and its tests run without network access.
type Engine struct {
	// Err, when set, is returned from every call.
	Err error
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, _ engine.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.Err != nil {
		return "", e.Err
	}
	user := strings.TrimSpace(engine.LastUserContent(messages))
	if user == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock(%s): %s", model, user), nil
}
