package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/service"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
)

const logModule = "GraphQL"

type userIDKey struct{}

// WithUserID attaches an authenticated user to the request context. It takes
// precedence over userId arguments supplied by the client.
func WithUserID(ctx context.Context, userId string) context.Context {
	if userId == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userId)
}

func userFrom(ctx context.Context, fallback string) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok && id != "" {
		return id
	}
	return fallback
}

type Resolver struct {
	chat    service.IChatService
	product service.IProductService
	user    service.IUserService
	health  service.IHealthService
	logger  logger.ILogger
}

func NewResolver(chat service.IChatService, product service.IProductService, user service.IUserService, health service.IHealthService, log logger.ILogger) *Resolver {
	return &Resolver{
		chat:    chat,
		product: product,
		user:    user,
		health:  health,
		logger:  log,
	}
}

// fail logs the cause and hands the client a generic message.
func (r *Resolver) fail(op string, err error) error {
	var vErr *serverutils.ValidationError
	if errors.As(err, &vErr) {
		return vErr
	}
	r.logger.Error(logModule, "Resolver failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return fmt.Errorf("Failed to %s", op)
}

func decodeArg(args map[string]interface{}, name string, out interface{}) error {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]interface{}, name string, def int) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return def
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &serverutils.ValidationError{Fields: map[string]string{"id": "must be a valid UUID"}}
	}
	return id, nil
}

// Queries

func (r *Resolver) Hello(p graphql.ResolveParams) (interface{}, error) {
	return "Hello from the AI shopping assistant!", nil
}

func (r *Resolver) Health(p graphql.ResolveParams) (interface{}, error) {
	return healthView(r.health.Check(p.Context)), nil
}

func (r *Resolver) SearchProducts(p graphql.ResolveParams) (interface{}, error) {
	var req dto.ProductSearchRequest
	if err := decodeArg(p.Args, "input", &req); err != nil {
		return nil, r.fail("search products", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.product.Search(p.Context, &req)
	if err != nil {
		return nil, r.fail("search products", err)
	}
	return searchResultView(res), nil
}

func (r *Resolver) GetProduct(p graphql.ResolveParams) (interface{}, error) {
	id, err := uuid.Parse(stringArg(p.Args, "id"))
	if err != nil {
		return nil, nil
	}

	res, err := r.product.Get(p.Context, id)
	if errors.Is(err, contract.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get product", err)
	}
	return productView(res), nil
}

func (r *Resolver) GetProductRecommendations(p graphql.ResolveParams) (interface{}, error) {
	var req dto.RecommendationRequest
	if err := decodeArg(p.Args, "input", &req); err != nil {
		return nil, r.fail("get recommendations", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	req.UserId = userFrom(p.Context, req.UserId)

	res, err := r.product.Recommendations(p.Context, &req)
	if errors.Is(err, contract.ErrRecordNotFound) {
		return []interface{}{}, nil
	}
	if err != nil {
		return nil, r.fail("get recommendations", err)
	}
	return productViews(res), nil
}

func (r *Resolver) GetProductCategories(p graphql.ResolveParams) (interface{}, error) {
	res, err := r.product.Categories(p.Context)
	if err != nil {
		return nil, r.fail("get categories", err)
	}
	return res, nil
}

func (r *Resolver) GetFeaturedProducts(p graphql.ResolveParams) (interface{}, error) {
	res, err := r.product.Featured(p.Context, intArg(p.Args, "limit", 10))
	if err != nil {
		return nil, r.fail("get featured products", err)
	}
	return productViews(res), nil
}

func (r *Resolver) GetConversationHistory(p graphql.ResolveParams) (interface{}, error) {
	userId := userFrom(p.Context, stringArg(p.Args, "userId"))
	res, err := r.chat.GetConversationHistory(p.Context, userId, intArg(p.Args, "limit", 20))
	if err != nil {
		return nil, r.fail("fetch conversation history", err)
	}
	return conversationViews(res), nil
}

func (r *Resolver) GetChatSuggestions(p graphql.ResolveParams) (interface{}, error) {
	var msgContext *string
	if s, ok := p.Args["context"].(string); ok {
		msgContext = &s
	}
	return r.chat.GetChatSuggestions(p.Context, msgContext), nil
}

func (r *Resolver) GetConversationSessions(p graphql.ResolveParams) (interface{}, error) {
	userId := userFrom(p.Context, stringArg(p.Args, "userId"))
	res, err := r.chat.GetConversationSessions(p.Context, userId)
	if err != nil {
		return nil, r.fail("fetch conversation sessions", err)
	}
	out := make([]interface{}, 0, len(res))
	for _, s := range res {
		out = append(out, sessionView(s))
	}
	return out, nil
}

// Mutations

// SendMessage always resolves to a payload; bad input becomes the errored
// reply instead of a GraphQL error.
func (r *Resolver) SendMessage(p graphql.ResolveParams) (interface{}, error) {
	var req dto.SendMessageRequest
	err := decodeArg(p.Args, "input", &req)
	if err == nil {
		req.UserId = userFrom(p.Context, req.UserId)
		err = serverutils.ValidateRequest(req)
	}
	if err != nil {
		r.logger.Warn(logModule, "Rejected chat message", map[string]interface{}{
			"user_id": req.UserId,
			"error":   err.Error(),
		})
		return chatResponseView(service.RejectedChatResponse(req.ConversationId)), nil
	}
	return chatResponseView(r.chat.SendMessage(p.Context, &req)), nil
}

func (r *Resolver) ClearConversationHistory(p graphql.ResolveParams) (interface{}, error) {
	userId := userFrom(p.Context, stringArg(p.Args, "userId"))
	if err := r.chat.ClearConversationHistory(p.Context, userId); err != nil {
		return nil, r.fail("clear conversation history", err)
	}
	return true, nil
}

func (r *Resolver) AddProduct(p graphql.ResolveParams) (interface{}, error) {
	var req dto.AddProductRequest
	if err := decodeArg(p.Args, "input", &req); err != nil {
		return nil, r.fail("add product", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.product.Add(p.Context, &req)
	if err != nil {
		return nil, r.fail("add product", err)
	}
	return productView(res), nil
}

func (r *Resolver) UpdateProduct(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(stringArg(p.Args, "id"))
	if err != nil {
		return nil, err
	}

	var req dto.UpdateProductRequest
	if err := decodeArg(p.Args, "input", &req); err != nil {
		return nil, r.fail("update product", err)
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.product.Update(p.Context, &req)
	if errors.Is(err, contract.ErrRecordNotFound) {
		return nil, errors.New("Product not found")
	}
	if err != nil {
		return nil, r.fail("update product", err)
	}
	return productView(res), nil
}

func (r *Resolver) DeleteProduct(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(stringArg(p.Args, "id"))
	if err != nil {
		return nil, err
	}

	err = r.product.Delete(p.Context, id)
	if errors.Is(err, contract.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return nil, r.fail("delete product", err)
	}
	return true, nil
}

func (r *Resolver) CreateConversation(p graphql.ResolveParams) (interface{}, error) {
	req := dto.CreateConversationRequest{
		UserId: userFrom(p.Context, stringArg(p.Args, "userId")),
		Title:  stringArg(p.Args, "title"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.chat.CreateConversation(p.Context, &req)
	if err != nil {
		return nil, r.fail("create conversation", err)
	}
	return sessionView(res), nil
}

func (r *Resolver) UpdateConversationTitle(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(stringArg(p.Args, "id"))
	if err != nil {
		return nil, err
	}
	req := dto.UpdateConversationTitleRequest{
		Id:     id,
		UserId: userFrom(p.Context, stringArg(p.Args, "userId")),
		Title:  stringArg(p.Args, "title"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.chat.UpdateConversationTitle(p.Context, &req)
	if errors.Is(err, contract.ErrRecordNotFound) {
		return nil, errors.New("Conversation not found")
	}
	if err != nil {
		return nil, r.fail("update conversation title", err)
	}
	return sessionView(res), nil
}

func (r *Resolver) DeleteConversation(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(stringArg(p.Args, "id"))
	if err != nil {
		return nil, err
	}

	err = r.chat.DeleteConversation(p.Context, id, userFrom(p.Context, stringArg(p.Args, "userId")))
	if errors.Is(err, contract.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return nil, r.fail("delete conversation", err)
	}
	return true, nil
}
