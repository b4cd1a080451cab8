package adapter

import "context"

// ChatMessage is one turn sent to an LLM gateway.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-neutral chat completion request.
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// CompletionResponse carries the assistant text of a completion.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// Gateway is the interface to an external LLM provider.
type Gateway interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

const (
	// DefaultTemperature and DefaultMaxTokens are applied when a request
	// leaves them unset.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)
