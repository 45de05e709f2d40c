package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/events"
	"ai-shopping-assistant-be/pkg/rag/history"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const logModule = "Orchestrator"

type State string

const (
	StateReceived   State = "RECEIVED"
	StateAnalyzing  State = "ANALYZING"
	StateRetrieving State = "RETRIEVING"
	StateGenerating State = "GENERATING"
	StatePersisting State = "PERSISTING"
	StateCompleted  State = "COMPLETED"
	StateErrored    State = "ERRORED"
)

type HistoryStore interface {
	FetchRecent(ctx context.Context, userId string, n int) ([]*entity.ConversationTurn, error)
	Append(ctx context.Context, turn *entity.ConversationTurn) error
}

type IntentAnalyzer interface {
	Analyze(ctx context.Context, message string) outcome.Result[intent.Analysis]
}

type ProductRetriever interface {
	Search(ctx context.Context, q retrieval.Query) outcome.Result[retrieval.SearchResult]
}

type ResponseGenerator interface {
	Generate(ctx context.Context, message string, history []*entity.ConversationTurn, candidates []retrieval.Candidate, hint *intent.Analysis) outcome.Result[string]
}

type Config struct {
	HistoryWindow  int
	MatchThreshold float64
	MatchCount     int
}

func DefaultConfig() Config {
	return Config{
		HistoryWindow:  history.DefaultWindow,
		MatchThreshold: 0.6,
		MatchCount:     5,
	}
}

type Request struct {
	Message        string
	UserId         string
	ConversationId string
	Metadata       map[string]interface{}
}

type Reply struct {
	Success        bool
	Reply          string
	Candidates     []retrieval.Candidate
	Suggestions    []string
	ConversationId string
	Timestamp      time.Time
	Analysis       intent.Analysis
	State          State
	Degradations   []outcome.Degradation
}

type Dependencies struct {
	History   HistoryStore
	Analyzer  IntentAnalyzer
	Retriever ProductRetriever
	Generator ResponseGenerator
	Publisher events.Publisher
	Logger    logger.ILogger
	Metrics   *observe.Metrics
}

// Orchestrator runs one chat turn end to end. Handle always returns a
// well-formed Reply.
type Orchestrator struct {
	history   HistoryStore
	analyzer  IntentAnalyzer
	retriever ProductRetriever
	generator ResponseGenerator
	publisher events.Publisher
	logger    logger.ILogger
	metrics   *observe.Metrics
	tracer    trace.Tracer
	cfg       Config
	now       func() time.Time
}

func New(deps Dependencies, cfg Config) *Orchestrator {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = history.DefaultWindow
	}
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = DefaultConfig().MatchCount
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Orchestrator{
		history:   deps.History,
		analyzer:  deps.Analyzer,
		retriever: deps.Retriever,
		generator: deps.Generator,
		publisher: publisher,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		tracer:    otel.Tracer("ai-shopping-assistant-be/orchestrator"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// turn is the per-request state; nothing in it outlives Handle.
type turn struct {
	req            Request
	conversationId string
	state          State
	degradations   []outcome.Degradation
}

func (o *Orchestrator) Handle(ctx context.Context, req Request) (reply *Reply) {
	start := o.now()
	ctx, span := o.tracer.Start(ctx, "orchestrator.Handle", trace.WithAttributes(
		attribute.String("user.id", req.UserId),
	))
	defer span.End()

	t := &turn{req: req, conversationId: req.ConversationId, state: StateReceived}
	if t.conversationId == "" {
		t.conversationId = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error(logModule, "Chat turn panicked", map[string]interface{}{
				"user_id": req.UserId,
				"state":   string(t.state),
				"panic":   fmt.Sprint(r),
				"stack":   string(debug.Stack()),
			})
			reply = o.errored(t, fmt.Errorf("panic: %v", r))
		}
		if reply.State == StateErrored {
			span.SetStatus(codes.Error, "chat turn errored")
		}
		span.SetAttributes(attribute.String("chat.state", string(reply.State)))
		o.metrics.RecordTurn(ctx, string(reply.State), o.now().Sub(start).Seconds())
		o.publish(ctx, events.NewTypingIndicator(req.UserId, false))
	}()

	o.publish(ctx, events.NewTypingIndicator(req.UserId, true))

	reply, err := o.run(ctx, t)
	if err != nil {
		return o.errored(t, err)
	}
	return reply
}

func (o *Orchestrator) run(ctx context.Context, t *turn) (*Reply, error) {
	req := t.req

	// 1. bounded history; a failure here is still RECEIVED
	past, err := o.fetchHistory(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	t.state = StateAnalyzing

	// 2. intent analysis and retrieval are independent
	var (
		analysis outcome.Result[intent.Analysis]
		search   outcome.Result[retrieval.SearchResult]
	)
	t.state = StateRetrieving
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard("analyze", func() {
		sctx, span := o.tracer.Start(gctx, "orchestrator.analyze")
		defer span.End()
		analysis = o.analyzer.Analyze(sctx, req.Message)
	}))
	g.Go(guard("retrieve", func() {
		sctx, span := o.tracer.Start(gctx, "orchestrator.retrieve")
		defer span.End()
		search = o.retriever.Search(sctx, retrieval.Query{
			Text:       req.Message,
			Threshold:  o.cfg.MatchThreshold,
			MaxResults: o.cfg.MatchCount,
		})
		span.SetAttributes(attribute.Int("retrieval.candidates", len(search.Value.Candidates)))
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	o.note(ctx, t, "analyze", analysis.Note)
	o.note(ctx, t, "retrieve", search.Note)

	candidates := search.Value.Candidates
	if candidates == nil {
		candidates = []retrieval.Candidate{}
	}
	if len(candidates) > o.cfg.MatchCount {
		candidates = candidates[:o.cfg.MatchCount]
	}

	// 3. generation
	t.state = StateGenerating
	gctx2, genSpan := o.tracer.Start(ctx, "orchestrator.generate")
	hint := analysis.Value
	generated := o.generator.Generate(gctx2, req.Message, past, candidates, &hint)
	genSpan.End()
	o.note(ctx, t, "generate", generated.Note)

	// 4. suggestions
	suggestions := constant.ChatSuggestions(len(candidates) > 0)

	// 5. persistence is best effort
	t.state = StatePersisting
	saved := &entity.ConversationTurn{
		UserId:            req.UserId,
		ConversationId:    conversationUUID(t.conversationId),
		UserMessage:       req.Message,
		AiResponse:        generated.Value,
		ProductsMentioned: mentionedIDs(candidates),
		Metadata:          req.Metadata,
	}
	if err := o.history.Append(ctx, saved); err != nil {
		o.logger.Error(logModule, "Failed to persist conversation turn", map[string]interface{}{
			"user_id":         req.UserId,
			"conversation_id": t.conversationId,
			"error":           err.Error(),
		})
		o.note(ctx, t, "persist", outcome.Unavailable(struct{}{}, err.Error()).Note)
	}

	// 6. reply
	t.state = StateCompleted
	reply := &Reply{
		Success:        true,
		Reply:          generated.Value,
		Candidates:     candidates,
		Suggestions:    suggestions,
		ConversationId: t.conversationId,
		Timestamp:      o.now(),
		Analysis:       analysis.Value,
		State:          StateCompleted,
		Degradations:   t.degradations,
	}

	messageId := saved.Id.String()
	if saved.Id == uuid.Nil {
		messageId = uuid.NewString()
	}
	o.publish(ctx, events.NewMessageAdded(req.UserId, messageId, reply.Reply, true, map[string]interface{}{
		"conversationId": t.conversationId,
		"products":       mentionedIDs(candidates),
	}))

	o.logger.Info(logModule, "Chat turn completed", map[string]interface{}{
		"user_id":      req.UserId,
		"candidates":   len(candidates),
		"intent":       analysis.Value.Intent,
		"degradations": len(t.degradations),
	})
	return reply, nil
}

func (o *Orchestrator) fetchHistory(ctx context.Context, userId string) ([]*entity.ConversationTurn, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.history")
	defer span.End()
	past, err := o.history.FetchRecent(ctx, userId, o.cfg.HistoryWindow)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(past) > o.cfg.HistoryWindow {
		past = past[:o.cfg.HistoryWindow]
	}
	return past, nil
}

func (o *Orchestrator) errored(t *turn, err error) *Reply {
	o.logger.Error(logModule, "Chat turn failed", map[string]interface{}{
		"user_id": t.req.UserId,
		"state":   string(t.state),
		"error":   err.Error(),
	})
	t.state = StateErrored
	return &Reply{
		Success:        false,
		Reply:          constant.OrchestratorFailedReply,
		Candidates:     []retrieval.Candidate{},
		Suggestions:    constant.ErrorSuggestions(),
		ConversationId: t.conversationId,
		Timestamp:      o.now(),
		Analysis:       intent.DefaultAnalysis(),
		State:          StateErrored,
		Degradations:   t.degradations,
	}
}

func (o *Orchestrator) note(ctx context.Context, t *turn, step string, noteFn func(string) (outcome.Degradation, bool)) {
	d, degraded := noteFn(step)
	if !degraded {
		return
	}
	t.degradations = append(t.degradations, d)
	o.metrics.RecordDegradation(ctx, d.Step, string(d.Status))
	o.logger.Warn(logModule, "Pipeline step degraded", map[string]interface{}{
		"step":   d.Step,
		"status": string(d.Status),
		"reason": d.Reason,
	})
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Warn(logModule, "Failed to publish chat event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

// guard turns a panic inside an errgroup goroutine into an error.
func guard(step string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", step, r)
			}
		}()
		fn()
		return nil
	}
}

func mentionedIDs(candidates []retrieval.Candidate) []string {
	ids := make([]string, 0, history.MaxProductsMentioned)
	for _, c := range candidates {
		if len(ids) == history.MaxProductsMentioned {
			break
		}
		if c.Product != nil {
			ids = append(ids, c.Product.Id.String())
		}
	}
	return ids
}

// conversationUUID keeps arbitrary client ids stable by hashing the ones
// that are not UUIDs.
func conversationUUID(id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("conversation:"+id))
}
