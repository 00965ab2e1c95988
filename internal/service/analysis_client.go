package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/prompt"
)

const (
	// PromptBudget is the estimated-unit size above which issues are chunked.
	PromptBudget = 8000
	// Temperature and MaxOutputTokens are fixed for every analysis call.
	Temperature     float32 = 0.7
	MaxOutputTokens int32   = 2000

	systemInstruction = "You are an expert at analyzing GitHub issues. Provide clear, actionable insights based on the issues provided."
)

// errNoCandidates is returned by generators when the provider answered with
// no usable text.
var errNoCandidates = errors.New("no response generated")

// GenerationRequest is one chat-style completion call.
type GenerationRequest struct {
	SystemInstruction string
	UserMessage       string
	Temperature       float32
	MaxOutputTokens   int32
}

// Generator abstracts the text-generation provider.
type Generator interface {
	// Generate returns the first candidate's text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// AnalysisClient turns cached issues plus a user instruction into an LLM answer.
type AnalysisClient struct {
	gen Generator
	log *zap.Logger
}

// NewAnalysisClient wires a generator.
func NewAnalysisClient(gen Generator, logger *zap.Logger) *AnalysisClient {
	return &AnalysisClient{gen: gen, log: logger.Named("analysis")}
}

// Analyze renders issues into the prompt and returns the generated text.
// Every failure is an *AnalysisError.
func (a *AnalysisClient) Analyze(ctx context.Context, issues []models.Issue, instruction string) (string, error) {
	req := GenerationRequest{
		SystemInstruction: systemInstruction,
		UserMessage:       BuildUserMessage(issues, instruction),
		Temperature:       Temperature,
		MaxOutputTokens:   MaxOutputTokens,
	}

	a.log.Info("requesting analysis",
		zap.Int("issues", len(issues)),
		zap.Int("prompt_units", prompt.EstimateUnits(req.UserMessage)))

	text, err := a.gen.Generate(ctx, req)
	if err != nil {
		aerr := classifyProviderError(err)
		a.log.Warn("analysis failed", zap.Stringer("kind", aerr.Kind), zap.Error(err))
		return "", aerr
	}
	return text, nil
}

// BuildUserMessage embeds the rendered issues and the caller's instruction.
func BuildUserMessage(issues []models.Issue, instruction string) string {
	return fmt.Sprintf("Here are the GitHub issues:\n\n%s\n\nUser request: %s",
		prompt.Render(issues, PromptBudget), instruction)
}

// classifyProviderError maps Gemini API, gRPC (Vertex) and transport errors
// onto AnalysisErrorKind.
func classifyProviderError(err error) *AnalysisError {
	var aerr *AnalysisError
	if errors.As(err, &aerr) {
		return aerr
	}

	if code, msg, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return &AnalysisError{Kind: KindAnalysisAuthFailed, Message: msg, Err: err}
		case code == http.StatusTooManyRequests:
			return &AnalysisError{Kind: KindRateLimited, Message: msg, Err: err}
		default:
			return &AnalysisError{Kind: KindProviderError, Message: msg, Err: err}
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown && st.Code() != codes.OK {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return &AnalysisError{Kind: KindAnalysisAuthFailed, Message: st.Message(), Err: err}
		case codes.ResourceExhausted:
			return &AnalysisError{Kind: KindRateLimited, Message: st.Message(), Err: err}
		case codes.Unavailable:
			return &AnalysisError{Kind: KindConnectionFailed, Message: st.Message(), Err: err}
		default:
			return &AnalysisError{Kind: KindProviderError, Message: st.Message(), Err: err}
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &AnalysisError{Kind: KindConnectionFailed, Message: err.Error(), Err: err}
	}

	return &AnalysisError{Kind: KindUnexpected, Message: err.Error(), Err: err}
}

// apiErrorCode extracts the HTTP status of a Gemini API error.
func apiErrorCode(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
