// Package ai holds the stand-in generator used until the real model
// backend is wired in. Responses are canned; pricing and metering do
// not depend on what the generator returns.
package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StubGenerator returns fixed responses for every request.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (g *StubGenerator) GenerateChatReply(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	if len(message) == 0 {
		return "", fmt.Errorf("empty message")
	}
	return "Thanks for your question. A dermatologist-reviewed answer will be available once the model backend is connected.", nil
}

func (g *StubGenerator) AnalyzeSkinImage(ctx context.Context, userID uuid.UUID, imageRef string) (string, error) {
	if imageRef == "" {
		return "", fmt.Errorf("empty image reference")
	}
	return "No acute findings detected. This is a placeholder result pending the model backend.", nil
}
