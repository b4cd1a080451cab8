package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	openRouterDefaultModel = "anthropic/claude-3.5-sonnet"
)

// OpenRouterClient implements Gateway against the OpenRouter chat completion
// API.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	referer    string
	title      string
	httpClient *http.Client
}

type OpenRouterOption func(*OpenRouterClient)

func WithOpenRouterBaseURL(baseURL string) OpenRouterOption {
	return func(c *OpenRouterClient) {
		c.baseURL = baseURL
	}
}

func WithOpenRouterModel(model string) OpenRouterOption {
	return func(c *OpenRouterClient) {
		c.model = model
	}
}

func WithOpenRouterHTTPClient(httpClient *http.Client) OpenRouterOption {
	return func(c *OpenRouterClient) {
		c.httpClient = httpClient
	}
}

// NewOpenRouter creates a new OpenRouter gateway client.
func NewOpenRouter(apiKey string, opts ...OpenRouterOption) *OpenRouterClient {
	c := &OpenRouterClient{
		apiKey:  apiKey,
		baseURL: openRouterBaseURL,
		model:   openRouterDefaultModel,
		referer: "https://rapid-crm.example.com",
		title:   "Rapid CRM AI Assistant",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type openRouterRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openRouterResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	body := openRouterRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.Model == "" {
		body.Model = c.model
	}
	if body.Temperature == 0 {
		body.Temperature = DefaultTemperature
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = DefaultMaxTokens
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", c.referer)
	httpReq.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(model.ErrExternalService, "failed to call OpenRouter", goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, goerr.Wrap(model.ErrExternalService, "OpenRouter returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	var parsed openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(model.ErrExternalService, "failed to decode OpenRouter response", goerr.V("cause", err.Error()))
	}
	if len(parsed.Choices) == 0 {
		return nil, goerr.Wrap(model.ErrExternalService, "OpenRouter returned no choices")
	}

	return &CompletionResponse{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
	}, nil
}
