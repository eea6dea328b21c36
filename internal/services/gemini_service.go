package services

import (
	"context"
	"fmt"

	"zaikan/internal/config"
	"zaikan/internal/models"

	"google.golang.org/genai"
)

type geminiClient struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// NewGeminiClient builds a CompletionClient backed by the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string, settings config.AssistantSettings) (CompletionClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiClient{
		client:          client,
		model:           settings.Model,
		temperature:     float32(settings.Temperature),
		maxOutputTokens: int32(settings.MaxOutputTokens),
	}, nil
}

// Complete makes a single generation call. No retries: the caller degrades
// to a fallback answer on failure.
func (g *geminiClient) Complete(ctx context.Context, instruction, question string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(question), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	return resp.Text(), nil
}

// disabledCompletionClient fails every call. Used when no API key is
// configured, so the assistant serves its fallback answer instead of
// crashing the process at startup.
type disabledCompletionClient struct{}

// NewDisabledCompletionClient returns a CompletionClient that always fails.
func NewDisabledCompletionClient() CompletionClient {
	return disabledCompletionClient{}
}

func (disabledCompletionClient) Complete(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: no API key configured", models.ErrUpstream)
}
