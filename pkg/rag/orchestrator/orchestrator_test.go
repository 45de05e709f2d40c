package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/pkg/embedding"
	"ai-shopping-assistant-be/pkg/events"
	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/rag/history"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/rag/response"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeHistory struct {
	mu        sync.Mutex
	past      []*entity.ConversationTurn
	fetchErr  error
	appendErr error
	appended  []*entity.ConversationTurn
	gotWindow int
}

func (h *fakeHistory) FetchRecent(_ context.Context, _ string, n int) ([]*entity.ConversationTurn, error) {
	h.gotWindow = n
	return h.past, h.fetchErr
}

func (h *fakeHistory) Append(_ context.Context, turn *entity.ConversationTurn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.appendErr != nil {
		return h.appendErr
	}
	h.appended = append(h.appended, turn)
	return nil
}

type fakeAnalyzer struct {
	result outcome.Result[intent.Analysis]
	panics bool
	calls  int
}

func (a *fakeAnalyzer) Analyze(context.Context, string) outcome.Result[intent.Analysis] {
	a.calls++
	if a.panics {
		panic("analyzer exploded")
	}
	return a.result
}

type fakeRetriever struct {
	result  outcome.Result[retrieval.SearchResult]
	gotText string
}

func (r *fakeRetriever) Search(_ context.Context, q retrieval.Query) outcome.Result[retrieval.SearchResult] {
	r.gotText = q.Text
	return r.result
}

type fakeGenerator struct {
	result        outcome.Result[string]
	gotCandidates int
	gotHistory    int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, past []*entity.ConversationTurn, candidates []retrieval.Candidate, _ *intent.Analysis) outcome.Result[string] {
	g.gotCandidates = len(candidates)
	g.gotHistory = len(past)
	return g.result
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func products(n int) []retrieval.Candidate {
	out := make([]retrieval.Candidate, n)
	for i := range out {
		out[i] = retrieval.Candidate{
			Product:         &entity.Product{Id: uuid.New(), Name: "p"},
			SimilarityScore: 0.9 - float64(i)*0.05,
		}
	}
	return out
}

type loggedEntry struct {
	message string
	details map[string]interface{}
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []loggedEntry
}

func (l *recordingLogger) Debug(string, string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, string, map[string]interface{})  {}
func (l *recordingLogger) Warn(string, string, map[string]interface{})  {}
func (l *recordingLogger) Sync() error                                  { return nil }

func (l *recordingLogger) Error(_ string, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, loggedEntry{message: message, details: details})
}

type harness struct {
	log       logger.ILogger
	history   *fakeHistory
	analyzer  *fakeAnalyzer
	retriever *fakeRetriever
	generator *fakeGenerator
	publisher *recordingPublisher
}

func newHarness() *harness {
	return &harness{
		history:   &fakeHistory{},
		analyzer:  &fakeAnalyzer{result: outcome.Ok(intent.Analysis{Intent: "greeting", Entities: []intent.Entity{}, Confidence: 0.9})},
		retriever: &fakeRetriever{result: outcome.Ok(retrieval.SearchResult{Candidates: []retrieval.Candidate{}})},
		generator: &fakeGenerator{result: outcome.Ok("Hi! What are you shopping for today?")},
		publisher: &recordingPublisher{},
	}
}

func (h *harness) orchestrator() *Orchestrator {
	log := h.log
	if log == nil {
		log = logger.NewNopLogger()
	}
	return New(Dependencies{
		History:   h.history,
		Analyzer:  h.analyzer,
		Retriever: h.retriever,
		Generator: h.generator,
		Publisher: h.publisher,
		Logger:    log,
	}, DefaultConfig())
}

// --- tests ---

func TestHandleHelloWithEmptyState(t *testing.T) {
	h := newHarness()

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "hello", UserId: "u1"})

	assert.True(t, reply.Success)
	assert.NotEmpty(t, reply.Reply)
	assert.NotNil(t, reply.Candidates)
	assert.Empty(t, reply.Candidates)
	assert.GreaterOrEqual(t, len(reply.Suggestions), 2)
	assert.Equal(t, []string{constant.SuggestionBestDeals, constant.SuggestionFindSpecific}, reply.Suggestions)
	assert.Equal(t, StateCompleted, reply.State)
	assert.Empty(t, reply.Degradations)
	assert.Equal(t, "hello", h.retriever.gotText)
	assert.Equal(t, history.DefaultWindow, h.history.gotWindow)

	_, err := uuid.Parse(reply.ConversationId)
	assert.NoError(t, err, "a conversation id is minted")
	require.Len(t, h.history.appended, 1)
	assert.Empty(t, h.history.appended[0].ProductsMentioned)

	assert.Equal(t, []string{
		events.TypeTypingIndicator,
		events.TypeMessageAdded,
		events.TypeTypingIndicator,
	}, h.publisher.types())
}

func TestHandleHistoryFailureIsErrored(t *testing.T) {
	h := newHarness()
	h.history.fetchErr = errors.New("database is down")

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "hello", UserId: "u1", ConversationId: "c-42"})

	assert.False(t, reply.Success)
	assert.Equal(t, constant.OrchestratorFailedReply, reply.Reply)
	assert.NotNil(t, reply.Candidates)
	assert.Empty(t, reply.Candidates)
	assert.Equal(t, constant.ErrorSuggestions(), reply.Suggestions)
	assert.Len(t, reply.Suggestions, 3)
	assert.Equal(t, "c-42", reply.ConversationId)
	assert.Equal(t, StateErrored, reply.State)
	assert.Equal(t, intent.DefaultAnalysis(), reply.Analysis)
	assert.Empty(t, h.history.appended)
}

func TestHandleHistoryFailureIsLoggedAsReceived(t *testing.T) {
	h := newHarness()
	rec := &recordingLogger{}
	h.log = rec
	h.history.fetchErr = errors.New("database is down")

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "hello", UserId: "u1"})

	assert.Equal(t, StateErrored, reply.State)
	require.Len(t, rec.errors, 1)
	assert.Equal(t, "Chat turn failed", rec.errors[0].message)
	assert.Equal(t, string(StateReceived), rec.errors[0].details["state"])
	assert.Zero(t, h.analyzer.calls)
}

func TestHandlePanicIsErrored(t *testing.T) {
	h := newHarness()
	h.analyzer.panics = true

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "hello", UserId: "u1"})

	assert.False(t, reply.Success)
	assert.Equal(t, StateErrored, reply.State)
	assert.Equal(t, constant.OrchestratorFailedReply, reply.Reply)
	assert.Contains(t, h.publisher.types(), events.TypeTypingIndicator)
}

func TestHandlePersistsAtMostThreeMentionedProducts(t *testing.T) {
	h := newHarness()
	found := products(5)
	h.retriever.result = outcome.Ok(retrieval.SearchResult{Candidates: found, Total: 5})

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "keyboards", UserId: "u1"})

	require.True(t, reply.Success)
	assert.Len(t, reply.Candidates, 5)
	assert.Equal(t, constant.ChatSuggestions(true), reply.Suggestions)
	assert.Equal(t, 5, h.generator.gotCandidates)

	require.Len(t, h.history.appended, 1)
	mentioned := h.history.appended[0].ProductsMentioned
	assert.LessOrEqual(t, len(mentioned), 3)

	retrieved := map[string]bool{}
	for _, c := range found {
		retrieved[c.Product.Id.String()] = true
	}
	for _, id := range mentioned {
		assert.True(t, retrieved[id], "mentioned id %s was retrieved", id)
	}
	assert.Equal(t, found[0].Product.Id.String(), mentioned[0])
}

func TestHandleCapsCandidatesAtMatchCount(t *testing.T) {
	h := newHarness()
	h.retriever.result = outcome.Ok(retrieval.SearchResult{Candidates: products(8)})

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "anything", UserId: "u1"})

	assert.Len(t, reply.Candidates, DefaultConfig().MatchCount)
}

func TestHandleDegradedStepsKeepSuccess(t *testing.T) {
	h := newHarness()
	h.analyzer.result = outcome.Degraded(intent.DefaultAnalysis(), "model overloaded")
	h.retriever.result = outcome.Unavailable(retrieval.SearchResult{Candidates: []retrieval.Candidate{}}, "store down")
	h.generator.result = outcome.Degraded(constant.GenerationFailedReply, "timeout")
	h.history.appendErr = errors.New("disk full")

	reply := h.orchestrator().Handle(context.Background(), Request{Message: "hello", UserId: "u1"})

	assert.True(t, reply.Success)
	assert.Equal(t, StateCompleted, reply.State)
	assert.Equal(t, constant.GenerationFailedReply, reply.Reply)

	steps := map[string]outcome.Status{}
	for _, d := range reply.Degradations {
		steps[d.Step] = d.Status
	}
	assert.Equal(t, map[string]outcome.Status{
		"analyze":  outcome.StatusDegraded,
		"retrieve": outcome.StatusUnavailable,
		"generate": outcome.StatusDegraded,
		"persist":  outcome.StatusUnavailable,
	}, steps)
}

func TestConversationUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, conversationUUID(id.String()))
	assert.Equal(t, conversationUUID("default"), conversationUUID("default"))
	assert.NotEqual(t, conversationUUID("default"), conversationUUID("other"))
}

// --- end to end over the real components ---

type brokenLLM struct{}

func (brokenLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenLLM) Name() string { return "broken" }

type brokenEmbedder struct{}

func (brokenEmbedder) Generate(context.Context, string) ([]float32, error) {
	return nil, errors.New("quota exceeded")
}
func (brokenEmbedder) Dimensions() int { return 64 }
func (brokenEmbedder) Name() string    { return "openai" }

func TestHandleWithEveryProviderDown(t *testing.T) {
	nop := logger.NewNopLogger()
	backend := memory.NewStore()
	factory := memory.NewRepositoryFactory(backend)
	ctx := context.Background()

	local := embedding.NewLocalProvider(64)
	keyboard := &entity.Product{Name: "Mechanical Gaming Keyboard", Category: "electronics", Price: 99}
	keyboard.Embedding = local.Embed(keyboard.Name)
	require.NoError(t, factory.NewUnitOfWork(ctx).ProductRepository().Create(ctx, keyboard))

	embedder := embedding.NewFallbackProvider(brokenEmbedder{}, 64, nop, nil)
	store := history.NewStore(factory, nop)
	o := New(Dependencies{
		History:   store,
		Analyzer:  intent.NewAnalyzer(brokenLLM{}, nop, nil),
		Retriever: retrieval.NewRetriever(retrieval.NewRepositoryCatalog(factory), embedder, nop),
		Generator: response.NewGenerator(brokenLLM{}, nop, nil),
		Logger:    nop,
	}, Config{HistoryWindow: 5, MatchThreshold: 0.5, MatchCount: 5})

	reply := o.Handle(ctx, Request{Message: "mechanical keyboard", UserId: "u1"})

	require.True(t, reply.Success)
	assert.Equal(t, constant.GenerationFailedReply, reply.Reply)
	require.NotEmpty(t, reply.Candidates)
	assert.Equal(t, keyboard.Id, reply.Candidates[0].Product.Id)
	assert.Greater(t, reply.Candidates[0].SimilarityScore, 0.5)
	assert.Equal(t, intent.DefaultAnalysis(), reply.Analysis)

	turns, err := store.FetchRecent(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, []string{keyboard.Id.String()}, turns[0].ProductsMentioned)
}
