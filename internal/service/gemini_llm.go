package service

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiLLM implements Generator against the Gemini API with an API key.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM creates a Gemini API client. baseURL and httpClient are
// optional and exist for proxies and tests.
func NewGeminiLLM(ctx context.Context, apiKey, modelName, baseURL string, httpClient *http.Client) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiLLM{client: client, modelName: modelName}, nil
}

// Generate sends one user turn with the system instruction attached.
func (g *GeminiLLM) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(req.UserMessage, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   req.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoCandidates
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if text == "" {
		return "", errNoCandidates
	}
	return text, nil
}
