package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/config"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// Metered feature names.
const (
	FeatureChatMessage  = "chat_message"
	FeatureSkinAnalysis = "skin_analysis"
)

// Generator produces AI output for metered features. The real
// implementation talks to an external service; it is injected so the
// meter never runs it without a committed debit.
type Generator interface {
	GenerateChatReply(ctx context.Context, userID uuid.UUID, message string) (string, error)
	AnalyzeSkinImage(ctx context.Context, userID uuid.UUID, imageRef string) (string, error)
}

// ChatResult is the outcome of a paid chat message.
type ChatResult struct {
	Reply            string
	CreditsUsed      int64
	RemainingCredits int64
	Reference        uuid.UUID
}

// AnalysisResult is the outcome of a paid skin analysis.
type AnalysisResult struct {
	Result           string
	CreditsUsed      int64
	RemainingCredits int64
	Reference        uuid.UUID
}

// Meter maps feature invocations to fixed-price ledger debits. The
// debit commits before the feature work runs, so insufficient funds
// never reach the generator. If the work fails afterwards the debit is
// sunk: no auto-refund, the failure is logged as a distinct upstream
// error.
type Meter struct {
	ledger    *Ledger
	generator Generator
	prices    map[string]int64
	logger    *logger.Logger
}

func NewMeter(ledger *Ledger, generator Generator, cfg config.Credits, logger *logger.Logger) *Meter {
	return &Meter{
		ledger:    ledger,
		generator: generator,
		prices: map[string]int64{
			FeatureChatMessage:  cfg.ChatMessagePrice,
			FeatureSkinAnalysis: cfg.SkinAnalysisPrice,
		},
		logger: logger,
	}
}

// Price returns the fixed credit price of a feature.
func (m *Meter) Price(feature string) (int64, bool) {
	price, ok := m.prices[feature]
	return price, ok
}

// SendChatMessage charges one chat message and generates the reply.
// The reference on the debit row ties it to this invocation.
func (m *Meter) SendChatMessage(ctx context.Context, userID uuid.UUID, message string) (ChatResult, error) {
	price := m.prices[FeatureChatMessage]
	reference := uuid.New()

	remaining, err := m.ledger.Debit(ctx, userID, price, "chat message", &reference)
	if err != nil {
		return ChatResult{}, err
	}

	reply, err := m.generator.GenerateChatReply(ctx, userID, message)
	if err != nil {
		m.logger.Error("chat generation failed after debit",
			"user_id", userID,
			"reference", reference,
			"error", err.Error())
		return ChatResult{}, &model.UpstreamError{Feature: FeatureChatMessage, Err: err}
	}

	return ChatResult{
		Reply:            reply,
		CreditsUsed:      price,
		RemainingCredits: remaining,
		Reference:        reference,
	}, nil
}

// AnalyzeSkinImage charges one skin analysis and runs it.
func (m *Meter) AnalyzeSkinImage(ctx context.Context, userID uuid.UUID, imageRef string) (AnalysisResult, error) {
	price := m.prices[FeatureSkinAnalysis]
	reference := uuid.New()

	remaining, err := m.ledger.Debit(ctx, userID, price, "skin analysis", &reference)
	if err != nil {
		return AnalysisResult{}, err
	}

	result, err := m.generator.AnalyzeSkinImage(ctx, userID, imageRef)
	if err != nil {
		m.logger.Error("skin analysis failed after debit",
			"user_id", userID,
			"reference", reference,
			"error", err.Error())
		return AnalysisResult{}, &model.UpstreamError{Feature: FeatureSkinAnalysis, Err: err}
	}

	return AnalysisResult{
		Result:           result,
		CreditsUsed:      price,
		RemainingCredits: remaining,
		Reference:        reference,
	}, nil
}
