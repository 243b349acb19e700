package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermai-app/dermai-server/internal/config"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/repository/memory"
	"github.com/dermai-app/dermai-server/internal/testutil"
)

type fakeGenerator struct {
	chatCalls     int
	analysisCalls int
	err           error
}

func (g *fakeGenerator) GenerateChatReply(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	g.chatCalls++
	if g.err != nil {
		return "", g.err
	}
	return "reply", nil
}

func (g *fakeGenerator) AnalyzeSkinImage(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	g.analysisCalls++
	if g.err != nil {
		return "", g.err
	}
	return "analysis", nil
}

func meterFixture(t *testing.T, credits int64, generator Generator) (*Meter, *memory.Store, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	user := model.User{ID: uuid.New(), Email: "user@example.com", Active: true}
	_, err := store.Users().Create(context.Background(), user)
	require.NoError(t, err)
	if credits > 0 {
		_, err = store.Ledger().Credit(context.Background(), user.ID, credits, model.KindBonus, "signup bonus", nil)
		require.NoError(t, err)
	}

	ledger := NewLedger(store.Ledger(), testutil.MakeNoopLogger())
	cfg := config.Credits{SignupBonus: 10, ChatMessagePrice: 1, SkinAnalysisPrice: 2}
	return NewMeter(ledger, generator, cfg, testutil.MakeNoopLogger()), store, user.ID
}

func TestMeter_Price(t *testing.T) {
	m, _, _ := meterFixture(t, 0, &fakeGenerator{})

	price, ok := m.Price(FeatureChatMessage)
	require.True(t, ok)
	assert.Equal(t, int64(1), price)

	price, ok = m.Price(FeatureSkinAnalysis)
	require.True(t, ok)
	assert.Equal(t, int64(2), price)

	_, ok = m.Price("voice_call")
	assert.False(t, ok)
}

func TestMeter_SendChatMessage(t *testing.T) {
	generator := &fakeGenerator{}
	m, store, userID := meterFixture(t, 5, generator)

	result, err := m.SendChatMessage(context.Background(), userID, "is this mole ok?")
	require.NoError(t, err)

	assert.Equal(t, "reply", result.Reply)
	assert.Equal(t, int64(1), result.CreditsUsed)
	assert.Equal(t, int64(4), result.RemainingCredits)
	assert.Equal(t, 1, generator.chatCalls)

	// The debit row carries the invocation reference.
	transactions, _, err := store.Ledger().List(context.Background(), userID, model.HistoryFilter{Kind: model.KindUsage})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.NotNil(t, transactions[0].Reference)
	assert.Equal(t, result.Reference, *transactions[0].Reference)
}

func TestMeter_InsufficientFunds_GeneratorNotInvoked(t *testing.T) {
	generator := &fakeGenerator{}
	m, store, userID := meterFixture(t, 1, generator)

	_, err := m.AnalyzeSkinImage(context.Background(), userID, "upload-1")

	var insufficient *model.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(1), insufficient.Missing())
	assert.Equal(t, 0, generator.analysisCalls)

	balance, err := store.Ledger().Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance)
}

func TestMeter_GeneratorFailure_DebitIsSunk(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model timeout")}
	m, store, userID := meterFixture(t, 5, generator)

	_, err := m.SendChatMessage(context.Background(), userID, "hello")

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, FeatureChatMessage, upstream.Feature)

	// No auto-refund: the debit stays committed.
	balance, err := store.Ledger().Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)
}

func TestMeter_AnalyzeSkinImage(t *testing.T) {
	generator := &fakeGenerator{}
	m, _, userID := meterFixture(t, 5, generator)

	result, err := m.AnalyzeSkinImage(context.Background(), userID, "upload-1")
	require.NoError(t, err)

	assert.Equal(t, "analysis", result.Result)
	assert.Equal(t, int64(2), result.CreditsUsed)
	assert.Equal(t, int64(3), result.RemainingCredits)
}
