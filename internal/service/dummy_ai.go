package service

import (
	"context"
	"fmt"
)

type dummyLLM struct{}

// Generate returns a canned answer so the server can run without credentials.
func (dummyLLM) Generate(_ context.Context, req GenerationRequest) (string, error) {
	return fmt.Sprintf("<placeholder analysis: %d prompt bytes>", len(req.UserMessage)), nil
}

// NewDummyLLM returns a Generator that never calls a provider.
func NewDummyLLM() Generator {
	return dummyLLM{}
}
