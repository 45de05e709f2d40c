package service

import (
	"context"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/orchestrator"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	got   orchestrator.Request
	reply *orchestrator.Reply
}

func (h *stubHandler) Handle(ctx context.Context, req orchestrator.Request) *orchestrator.Reply {
	h.got = req
	return h.reply
}

func newChatFixture(t *testing.T, handler ChatHandler) (IChatService, unitofwork.RepositoryFactory) {
	t.Helper()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	return NewChatService(factory, handler, logger.NewNopLogger()), factory
}

func TestSendMessageSuccess(t *testing.T) {
	keyboard := &entity.Product{Id: uuid.New(), Name: "K2", Category: "Electronics", Price: 89}
	confidence := 0.9
	handler := &stubHandler{reply: &orchestrator.Reply{
		Success:        true,
		Reply:          "The K2 is a great pick.",
		Candidates:     []retrieval.Candidate{{Product: keyboard, SimilarityScore: 0.82}},
		Suggestions:    constant.ChatSuggestions(true),
		ConversationId: "c-1",
		Timestamp:      time.Now(),
		Analysis: intent.Analysis{
			Intent:     "search",
			Entities:   []intent.Entity{{Type: "product", Value: "keyboard", Confidence: &confidence}},
			Sentiment:  intent.Sentiment{Score: 0.5, Label: "positive"},
			Confidence: 0.8,
		},
		State:        orchestrator.StateCompleted,
		Degradations: []outcome.Degradation{{Step: "analyze", Status: outcome.StatusDegraded, Reason: "timeout"}},
	}}
	svc, _ := newChatFixture(t, handler)

	res := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		Message:  "mechanical keyboard",
		UserId:   "u1",
		Metadata: map[string]interface{}{"page": "home"},
	})

	assert.Equal(t, "mechanical keyboard", handler.got.Message)
	assert.Equal(t, "home", handler.got.Metadata["page"])

	assert.True(t, res.Success)
	assert.Equal(t, constant.MessageProcessed, res.Message)
	assert.Equal(t, "c-1", res.ConversationId)
	assert.Equal(t, "The K2 is a great pick.", res.AIResponse.Text)
	assert.Equal(t, "search", res.AIResponse.Intent)
	assert.Equal(t, 0.8, res.AIResponse.Confidence)
	require.Len(t, res.AIResponse.Entities, 1)
	assert.Equal(t, "keyboard", res.AIResponse.Entities[0].Value)
	assert.Equal(t, "positive", res.AIResponse.Sentiment.Label)
	require.Len(t, res.Products, 1)
	assert.Equal(t, keyboard.Id, res.Products[0].Id)
	assert.InDelta(t, 0.82, *res.Products[0].Similarity, 1e-9)
	assert.Len(t, res.Suggestions, 4)
	require.Len(t, res.Degradations, 1)
	assert.Equal(t, "analyze", res.Degradations[0].Step)
}

func TestSendMessageFailureIsFullyPopulated(t *testing.T) {
	handler := &stubHandler{reply: &orchestrator.Reply{
		Success:        false,
		Reply:          constant.OrchestratorFailedReply,
		Candidates:     []retrieval.Candidate{},
		Suggestions:    constant.ErrorSuggestions(),
		ConversationId: "c-42",
		Timestamp:      time.Now(),
		Analysis:       intent.DefaultAnalysis(),
		State:          orchestrator.StateErrored,
	}}
	svc, _ := newChatFixture(t, handler)

	res := svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "hi", UserId: "u1", ConversationId: "c-42"})

	assert.False(t, res.Success)
	assert.Equal(t, constant.MessageProcessFailed, res.Message)
	assert.Equal(t, "c-42", res.ConversationId)
	assert.Equal(t, constant.OrchestratorFailedReply, res.AIResponse.Text)
	assert.Equal(t, constant.ErrorIntent, res.AIResponse.Intent)
	assert.Zero(t, res.AIResponse.Confidence)
	assert.NotNil(t, res.AIResponse.Entities)
	assert.Equal(t, "neutral", res.AIResponse.Sentiment.Label)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
	assert.Equal(t, constant.ErrorSuggestions(), res.Suggestions)
	assert.False(t, res.Timestamp.IsZero())
}

func TestConversationHistoryHydratesProducts(t *testing.T) {
	svc, factory := newChatFixture(t, &stubHandler{})
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	lamp := &entity.Product{Name: "Lamp", Category: "Home"}
	require.NoError(t, uow.ProductRepository().Create(ctx, lamp))

	conv := uuid.New()
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{
		UserId: "u1", ConversationId: conv, UserMessage: "first", AiResponse: "one",
	}))
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{
		UserId: "u1", ConversationId: conv, UserMessage: "second", AiResponse: "two",
		ProductsMentioned: []string{lamp.Id.String(), uuid.NewString(), "not-a-uuid"},
	}))
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{
		UserId: "someone-else", ConversationId: uuid.New(), UserMessage: "private",
	}))

	history, err := svc.GetConversationHistory(ctx, "u1", 0)
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].UserMessage, "most recent first")
	require.Len(t, history[0].Products, 1, "unknown and malformed ids are skipped")
	assert.Equal(t, "Lamp", history[0].Products[0].Name)
	assert.Empty(t, history[1].Products)

	limited, err := svc.GetConversationHistory(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, svc.ClearConversationHistory(ctx, "u1"))
	history, err = svc.GetConversationHistory(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	others, err := svc.GetConversationHistory(ctx, "someone-else", 0)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestGetChatSuggestions(t *testing.T) {
	svc, _ := newChatFixture(t, &stubHandler{})
	ctx := context.Background()

	msg := "I need a gift"
	assert.Equal(t, []string{constant.SuggestionBestDeals, constant.SuggestionFindSpecific}, svc.GetChatSuggestions(ctx, &msg))
	assert.Equal(t, constant.ContinueSuggestions(), svc.GetChatSuggestions(ctx, nil))

	blank := "  "
	assert.Equal(t, constant.ContinueSuggestions(), svc.GetChatSuggestions(ctx, &blank))
}

func TestConversationSessions(t *testing.T) {
	svc, factory := newChatFixture(t, &stubHandler{})
	ctx := context.Background()

	first, err := svc.CreateConversation(ctx, &dto.CreateConversationRequest{UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultConversationTitle, first.Title)

	second, err := svc.CreateConversation(ctx, &dto.CreateConversationRequest{UserId: "u1", Title: "Gift ideas"})
	require.NoError(t, err)

	sessions, err := svc.GetConversationSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.Id, sessions[0].Id, "newest first")

	renamed, err := svc.UpdateConversationTitle(ctx, &dto.UpdateConversationTitleRequest{Id: first.Id, UserId: "u1", Title: "Keyboards"})
	require.NoError(t, err)
	assert.Equal(t, "Keyboards", renamed.Title)

	_, err = svc.UpdateConversationTitle(ctx, &dto.UpdateConversationTitleRequest{Id: first.Id, UserId: "intruder", Title: "mine"})
	assert.ErrorIs(t, err, ErrConversationNotFound)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{UserId: "u1", ConversationId: first.Id, UserMessage: "in first"}))
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{UserId: "u1", ConversationId: second.Id, UserMessage: "in second"}))

	require.NoError(t, svc.DeleteConversation(ctx, first.Id, "u1"))

	sessions, err = svc.GetConversationSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, second.Id, sessions[0].Id)

	history, err := svc.GetConversationHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "in second", history[0].UserMessage)
}

func TestDeleteConversationOfAnotherUser(t *testing.T) {
	svc, _ := newChatFixture(t, &stubHandler{})
	ctx := context.Background()

	session, err := svc.CreateConversation(ctx, &dto.CreateConversationRequest{UserId: "u1"})
	require.NoError(t, err)

	err = svc.DeleteConversation(ctx, session.Id, "u2")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	sessions, err := svc.GetConversationSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
