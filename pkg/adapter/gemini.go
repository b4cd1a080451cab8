package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"google.golang.org/genai"
)

// GeminiClient implements Gateway on Vertex AI Gemini for deployments that
// prefer GCP credentials over an OpenRouter key.
type GeminiClient struct {
	client *genai.Client
	model  string
}

type GeminiOption func(*GeminiClient)

func WithGeminiModel(m string) GeminiOption {
	return func(g *GeminiClient) {
		g.model = m
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client: client,
		model:  "gemini-2.5-flash",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	cfg := &genai.GenerateContentConfig{}

	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	cfg.Temperature = &temperature

	maxTokens := int32(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	cfg.MaxOutputTokens = maxTokens

	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			cfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	geminiModel := g.model
	if req.Model != "" {
		geminiModel = req.Model
	}

	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, cfg)
	if err != nil {
		return nil, goerr.Wrap(model.ErrExternalService, "failed to generate content", goerr.V("cause", err.Error()))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.Wrap(model.ErrExternalService, "Gemini returned no candidates")
	}

	return &CompletionResponse{
		Content: resp.Candidates[0].Content.Parts[0].Text,
		Model:   geminiModel,
	}, nil
}
