package service

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexLLM implements Generator using Google's Vertex AI
type VertexLLM struct {
	client    *genai.Client
	modelName string
}

// NewVertexLLM creates a new Vertex AI client for projectID/location.
// credentialsFile is optional; application default credentials are used otherwise.
func NewVertexLLM(ctx context.Context, projectID, location, modelName, credentialsFile string) (*VertexLLM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexLLM{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate sends the system instruction and user message to the model.
func (l *VertexLLM) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	model := l.client.GenerativeModel(l.modelName)
	model.SetTemperature(req.Temperature)
	model.SetMaxOutputTokens(req.MaxOutputTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserMessage))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errNoCandidates
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// Close closes the Vertex AI client
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
