package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/graphql"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/internal/service"
	"ai-shopping-assistant-be/pkg/rag/orchestrator"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text string) outcome.Result[[]float32] {
	return outcome.Ok([]float32{1, 0, 0})
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, payload []byte) error { return nil }

type recordingHandler struct {
	got orchestrator.Request
}

func (h *recordingHandler) Handle(ctx context.Context, req orchestrator.Request) *orchestrator.Reply {
	h.got = req
	return &orchestrator.Reply{
		Success:        true,
		Reply:          "ok",
		Suggestions:    constant.ChatSuggestions(false),
		ConversationId: "conv-1",
		Timestamp:      time.Now(),
		State:          orchestrator.StateCompleted,
	}
}

type testApp struct {
	app     *fiber.App
	factory unitofwork.RepositoryFactory
	handler *recordingHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.NewNopLogger()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	retriever := retrieval.NewRetriever(retrieval.NewRepositoryCatalog(factory), flatEmbedder{}, log)
	handler := &recordingHandler{}

	chatService := service.NewChatService(factory, handler, log)
	productService := service.NewProductService(factory, retriever, nopPublisher{}, log, service.ProductServiceConfig{
		SearchThreshold:         0.7,
		RecommendationThreshold: 0.2,
	})
	userService := service.NewUserService(factory, log)
	healthService := service.NewHealthService(nil, nil, false, "test")

	schema, err := graphql.NewSchema(graphql.NewResolver(chatService, productService, userService, healthService, log))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewGraphQLController(schema, testSecret).RegisterRoutes(app)
	api := app.Group("/api")
	NewHealthController(healthService).RegisterRoutes(api)
	NewProductController(productService, testSecret).RegisterRoutes(api)
	NewChatController(chatService, testSecret).RegisterRoutes(api)
	NewUserController(userService, testSecret).RegisterRoutes(api)

	return &testApp{app: app, factory: factory, handler: handler}
}

func token(t *testing.T, userId string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testApp) call(t *testing.T, method, path string, body interface{}, bearer string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthEndpoint(t *testing.T) {
	a := newTestApp(t)

	status, body := a.call(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "OK", data["status"])
	assert.Equal(t, "test", data["version"])
}

func TestGraphQLEndpoint(t *testing.T) {
	a := newTestApp(t)

	status, body := a.call(t, http.MethodPost, "/graphql", map[string]interface{}{
		"query":     `mutation($input: SendMessageInput!) { sendMessage(input: $input) { success conversationId } }`,
		"variables": map[string]interface{}{"input": map[string]interface{}{"message": "hi", "userId": "anon"}},
	}, token(t, "jwt-user"))

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["errors"])
	res := body["data"].(map[string]interface{})["sendMessage"].(map[string]interface{})
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "jwt-user", a.handler.got.UserId)
}

func TestGraphQLEndpointRejectsEmptyQuery(t *testing.T) {
	a := newTestApp(t)

	status, body := a.call(t, http.MethodPost, "/graphql", map[string]interface{}{"query": ""}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestProductEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.call(t, http.MethodPost, "/api/product/v1", map[string]interface{}{
		"name": "K2", "description": "keyboard", "price": 89, "category": "Electronics",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status, "writes need a token")

	status, body := a.call(t, http.MethodPost, "/api/product/v1", map[string]interface{}{
		"name": "K2", "description": "keyboard", "price": 89, "category": "Electronics",
	}, token(t, "admin"))
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]interface{})["id"].(string)

	status, body = a.call(t, http.MethodGet, "/api/product/v1/"+id, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "K2", body["data"].(map[string]interface{})["name"])

	status, _ = a.call(t, http.MethodGet, "/api/product/v1/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.call(t, http.MethodPost, "/api/product/v1/search", map[string]interface{}{
		"category": "Electronics",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]interface{})["total"])

	status, body = a.call(t, http.MethodPost, "/api/product/v1/search", map[string]interface{}{
		"sortBy": "CHEAPEST",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "sortBy")
}

func TestChatEndpoints(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.factory.NewUnitOfWork(ctx).ConversationRepository().Create(ctx, &entity.ConversationTurn{
		UserId:         "u1",
		ConversationId: uuid.New(),
		UserMessage:    "hi",
		AiResponse:     "hello",
	}))

	status, body := a.call(t, http.MethodGet, "/api/chat/v1/history?userId=u1", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = a.call(t, http.MethodGet, "/api/chat/v1/history", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.call(t, http.MethodPost, "/api/chat/v1/send", map[string]interface{}{
		"message": "keyboards?",
	}, token(t, "u1"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u1", a.handler.got.UserId)
	assert.Equal(t, constant.MessageProcessed, body["message"])

	status, body = a.call(t, http.MethodPost, "/api/chat/v1/sessions", map[string]interface{}{"userId": "u1"}, "")
	require.Equal(t, http.StatusCreated, status)
	sessionId := body["data"].(map[string]interface{})["id"].(string)

	status, _ = a.call(t, http.MethodDelete, "/api/chat/v1/sessions/"+sessionId+"?userId=u2", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.call(t, http.MethodDelete, "/api/chat/v1/sessions/"+sessionId+"?userId=u1", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestUserEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.call(t, http.MethodGet, "/api/user/v1/preferences?userId=u1", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := a.call(t, http.MethodPut, "/api/user/v1/preferences", map[string]interface{}{
		"userId":     "spoofed",
		"categories": []string{"Electronics", " electronics ", "Books"},
		"priceRange": map[string]interface{}{"max": 200},
	}, token(t, "u1"))
	require.Equal(t, http.StatusOK, status)
	prefs := body["data"].(map[string]interface{})
	assert.Equal(t, "u1", prefs["userId"])
	assert.Equal(t, []interface{}{"Electronics", "Books"}, prefs["categories"])

	status, _ = a.call(t, http.MethodPut, "/api/user/v1/preferences", map[string]interface{}{
		"userId":     "u1",
		"priceRange": map[string]interface{}{"min": 50, "max": 10},
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.call(t, http.MethodPost, "/api/user/v1/activity", map[string]interface{}{
		"userId": "u1", "action": "SEARCH", "metadata": map[string]interface{}{"query": "usb hub"},
	}, "")
	assert.Equal(t, http.StatusCreated, status)

	status, _ = a.call(t, http.MethodPost, "/api/user/v1/activity", map[string]interface{}{
		"userId": "u1", "action": "DANCE",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.call(t, http.MethodGet, "/api/user/v1/profile?userId=u1", nil, "")
	require.Equal(t, http.StatusOK, status)
	profile := body["data"].(map[string]interface{})
	summary := profile["activitySummary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["totalSearches"])
	assert.Equal(t, []interface{}{"usb hub"}, summary["lastSearches"])

	status, _ = a.call(t, http.MethodGet, "/api/user/v1/profile?userId=nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}
