package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/orchestrator"

	"github.com/google/uuid"
)

var ErrConversationNotFound = fmt.Errorf("conversation %w", contract.ErrRecordNotFound)

const defaultHistoryLimit = 20

// ChatHandler runs one chat turn.
type ChatHandler interface {
	Handle(ctx context.Context, req orchestrator.Request) *orchestrator.Reply
}

type IChatService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) *dto.ChatResponse
	GetConversationHistory(ctx context.Context, userId string, limit int) ([]*dto.ConversationResponse, error)
	ClearConversationHistory(ctx context.Context, userId string) error
	GetChatSuggestions(ctx context.Context, msgContext *string) []string

	CreateConversation(ctx context.Context, req *dto.CreateConversationRequest) (*dto.ConversationSessionResponse, error)
	GetConversationSessions(ctx context.Context, userId string) ([]*dto.ConversationSessionResponse, error)
	UpdateConversationTitle(ctx context.Context, req *dto.UpdateConversationTitleRequest) (*dto.ConversationSessionResponse, error)
	DeleteConversation(ctx context.Context, id uuid.UUID, userId string) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	handler    ChatHandler
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, handler ChatHandler, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		handler:    handler,
		logger:     log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) *dto.ChatResponse {
	reply := s.handler.Handle(ctx, orchestrator.Request{
		Message:        req.Message,
		UserId:         req.UserId,
		ConversationId: req.ConversationId,
		Metadata:       req.Metadata,
	})

	if !reply.Success {
		return failedChatResponse(reply)
	}

	products := make([]*dto.ProductResponse, 0, len(reply.Candidates))
	for _, c := range reply.Candidates {
		res := toProductResponse(c.Product)
		score := c.SimilarityScore
		res.Similarity = &score
		products = append(products, res)
	}

	return &dto.ChatResponse{
		Success:        true,
		Message:        constant.MessageProcessed,
		ConversationId: reply.ConversationId,
		AIResponse:     toAIResponse(reply.Reply, reply.Analysis),
		Products:       products,
		Suggestions:    reply.Suggestions,
		Timestamp:      reply.Timestamp,
		Degradations:   toDegradations(reply),
	}
}

func failedChatResponse(reply *orchestrator.Reply) *dto.ChatResponse {
	return &dto.ChatResponse{
		Success:        false,
		Message:        constant.MessageProcessFailed,
		ConversationId: reply.ConversationId,
		AIResponse: dto.AIResponseDTO{
			Text:       reply.Reply,
			Confidence: 0,
			Intent:     constant.ErrorIntent,
			Entities:   []dto.EntityDTO{},
			Sentiment:  &dto.SentimentDTO{Score: 0, Label: intent.SentimentNeutral},
		},
		Products:     []*dto.ProductResponse{},
		Suggestions:  reply.Suggestions,
		Timestamp:    reply.Timestamp,
		Degradations: toDegradations(reply),
	}
}

// RejectedChatResponse is the errored payload for a request that never
// reached the pipeline.
func RejectedChatResponse(conversationId string) *dto.ChatResponse {
	return failedChatResponse(&orchestrator.Reply{
		Reply:          constant.OrchestratorFailedReply,
		Suggestions:    constant.ErrorSuggestions(),
		ConversationId: conversationId,
		Timestamp:      time.Now(),
	})
}

func toAIResponse(text string, a intent.Analysis) dto.AIResponseDTO {
	entities := make([]dto.EntityDTO, 0, len(a.Entities))
	for _, e := range a.Entities {
		entities = append(entities, dto.EntityDTO{Type: e.Type, Value: e.Value, Confidence: e.Confidence})
	}
	return dto.AIResponseDTO{
		Text:       text,
		Confidence: a.Confidence,
		Intent:     a.Intent,
		Entities:   entities,
		Sentiment:  &dto.SentimentDTO{Score: a.Sentiment.Score, Label: a.Sentiment.Label},
	}
}

func toDegradations(reply *orchestrator.Reply) []dto.DegradationDTO {
	if len(reply.Degradations) == 0 {
		return nil
	}
	out := make([]dto.DegradationDTO, 0, len(reply.Degradations))
	for _, d := range reply.Degradations {
		out = append(out, dto.DegradationDTO{Step: d.Step, Status: string(d.Status), Reason: d.Reason})
	}
	return out
}

func (s *chatService) GetConversationHistory(ctx context.Context, userId string, limit int) ([]*dto.ConversationResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	products, err := s.hydrateProducts(ctx, uow, turns)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationResponse, 0, len(turns))
	for _, t := range turns {
		mentioned := make([]*dto.ProductResponse, 0, len(t.ProductsMentioned))
		for _, id := range t.ProductsMentioned {
			if p, ok := products[id]; ok {
				mentioned = append(mentioned, p)
			}
		}
		result = append(result, &dto.ConversationResponse{
			Id:             t.Id,
			UserId:         t.UserId,
			ConversationId: t.ConversationId,
			UserMessage:    t.UserMessage,
			AiResponse:     t.AiResponse,
			Products:       mentioned,
			Timestamp:      t.CreatedAt,
			Metadata:       t.Metadata,
		})
	}
	return result, nil
}

// hydrateProducts loads every product mentioned by turns in one query.
// Ids that are malformed or no longer in the catalog are skipped.
func (s *chatService) hydrateProducts(ctx context.Context, uow unitofwork.UnitOfWork, turns []*entity.ConversationTurn) (map[string]*dto.ProductResponse, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, t := range turns {
		for _, raw := range t.ProductsMentioned {
			id, err := uuid.Parse(raw)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	out := make(map[string]*dto.ProductResponse, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	products, err := uow.ProductRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.Id.String()] = toProductResponse(p)
	}
	return out, nil
}

func (s *chatService) ClearConversationHistory(ctx context.Context, userId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().DeleteByUserId(ctx, userId); err != nil {
		return err
	}

	s.logger.Info("ChatService", "Conversation history cleared", map[string]interface{}{
		"user_id": userId,
	})
	return nil
}

// GetChatSuggestions offers generic chips for a message context and
// continuation chips when there is none.
func (s *chatService) GetChatSuggestions(ctx context.Context, msgContext *string) []string {
	if msgContext != nil && strings.TrimSpace(*msgContext) != "" {
		return constant.ChatSuggestions(false)
	}
	return constant.ContinueSuggestions()
}

func (s *chatService) CreateConversation(ctx context.Context, req *dto.CreateConversationRequest) (*dto.ConversationSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = constant.DefaultConversationTitle
	}

	session := entity.ConversationSession{
		Id:     uuid.New(),
		UserId: req.UserId,
		Title:  title,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return toSessionResponse(&session), nil
}

func (s *chatService) GetConversationSessions(ctx context.Context, userId string) ([]*dto.ConversationSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ConversationSessionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, toSessionResponse(session))
	}
	return result, nil
}

func (s *chatService) UpdateConversationTitle(ctx context.Context, req *dto.UpdateConversationTitleRequest) (*dto.ConversationSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ConversationSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByUserID{UserID: req.UserId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrConversationNotFound
	}

	session.Title = req.Title
	if err := uow.ConversationSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	return toSessionResponse(session), nil
}

// DeleteConversation removes the session and every turn recorded under it
// in one transaction.
func (s *chatService) DeleteConversation(ctx context.Context, id uuid.UUID, userId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().DeleteByConversationId(ctx, id, userId); err != nil {
		return err
	}
	if err := uow.ConversationSessionRepository().Delete(ctx, id, userId); err != nil {
		if errors.Is(err, contract.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		return err
	}

	return uow.Commit()
}

func toSessionResponse(session *entity.ConversationSession) *dto.ConversationSessionResponse {
	return &dto.ConversationSessionResponse{
		Id:        session.Id,
		UserId:    session.UserId,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}
