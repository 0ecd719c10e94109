package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/inference/engine"
)

var ErrEmptyCompletion = errors.New("genai: empty completion")

// Engine generates text with Google's Gemini API.
type Engine struct {
	client  *genai.Client
	timeout time.Duration
}

func New(ctx context.Context, cfg config.EngineConfig) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api_key required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Engine{client: client, timeout: timeout}, nil
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	system, contents := toContents(messages)
	if len(contents) == 0 {
		return "", errors.New("no messages")
	}

	gcfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if system != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Models.GenerateContent(ctx, model, contents, gcfg)
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// toContents folds system messages into a single instruction and maps the
// rest onto Gemini's user/model roles.
func toContents(messages []engine.Message) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case "system", "developer":
			system = append(system, content)
		case "assistant", "model":
			out = append(out, genai.NewContentFromText(content, genai.RoleModel))
		default:
			out = append(out, genai.NewContentFromText(content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), out
}
