package engine

import "context"

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Temperature float64
}

// Engine produces a completion for a chat-style message list. Calls are a
// single blocking request; engines do not retry.
type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}

// LastUserContent returns the content of the last "user" message.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
