package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/rag/outcome"
)

const logModule = "IntentAnalyzer"

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 150
	defaultConfidence   = 0.5
	defaultIntent       = "general"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type Entity struct {
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type Analysis struct {
	Intent     string    `json:"intent"`
	Entities   []Entity  `json:"entities"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
}

// DefaultAnalysis is returned whenever the model output cannot be used.
func DefaultAnalysis() Analysis {
	return Analysis{
		Intent:     defaultIntent,
		Entities:   []Entity{},
		Sentiment:  Sentiment{Score: 0, Label: SentimentNeutral},
		Confidence: defaultConfidence,
	}
}

var errEmptyAnalysis = errors.New("empty analysis payload")

type Analyzer struct {
	llm     llm.LLMProvider
	logger  logger.ILogger
	metrics *observe.Metrics
}

func NewAnalyzer(provider llm.LLMProvider, log logger.ILogger, metrics *observe.Metrics) *Analyzer {
	return &Analyzer{
		llm:     provider,
		logger:  log,
		metrics: metrics,
	}
}

// Analyze classifies message. It never fails: call or parse errors yield
// DefaultAnalysis as Degraded.
func (a *Analyzer) Analyze(ctx context.Context, message string) outcome.Result[Analysis] {
	start := time.Now()
	raw, err := a.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.IntentAnalysisPromptV1},
		{Role: llm.RoleUser, Content: message},
	}, llm.WithTemperature(analysisTemperature), llm.WithMaxTokens(analysisMaxTokens))
	a.metrics.RecordProviderCall(ctx, a.llm.Name(), "analyze", time.Since(start).Seconds(), err)

	if err != nil {
		a.logger.Error(logModule, "Intent analysis call failed", map[string]interface{}{
			"provider": a.llm.Name(),
			"error":    err.Error(),
		})
		return outcome.Degraded(DefaultAnalysis(), "analysis call failed: "+err.Error())
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		a.logger.Warn(logModule, "Failed to parse AI analysis, using defaults", map[string]interface{}{
			"error": err.Error(),
			"raw":   raw,
		})
		return outcome.Degraded(DefaultAnalysis(), "malformed analysis: "+err.Error())
	}

	a.logger.Debug(logModule, "Intent resolved", map[string]interface{}{
		"intent":     analysis.Intent,
		"confidence": analysis.Confidence,
		"sentiment":  analysis.Sentiment.Label,
		"entities":   len(analysis.Entities),
	})
	return outcome.Ok(analysis)
}

type rawAnalysis struct {
	Intent     string            `json:"intent"`
	Entities   []json.RawMessage `json:"entities"`
	Sentiment  json.RawMessage   `json:"sentiment"`
	Confidence json.RawMessage   `json:"confidence"`
}

// ParseAnalysis decodes the model's JSON payload. Markdown code fences around
// the object are tolerated.
func ParseAnalysis(raw string) (Analysis, error) {
	payload := stripFences(raw)
	if payload == "" {
		return Analysis{}, errEmptyAnalysis
	}

	var r rawAnalysis
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	out := Analysis{
		Intent:     strings.TrimSpace(r.Intent),
		Entities:   parseEntities(r.Entities),
		Sentiment:  parseSentiment(r.Sentiment),
		Confidence: defaultConfidence,
	}
	if out.Intent == "" {
		out.Intent = defaultIntent
	}
	if c, ok := parseNumber(r.Confidence); ok {
		out.Confidence = math.Max(0, math.Min(1, c))
	}
	return out, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	// Models sometimes add a sentence before or after the object.
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func parseEntities(raw []json.RawMessage) []Entity {
	entities := make([]Entity, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				entities = append(entities, Entity{Type: "entity", Value: s})
			}
			continue
		}

		var obj struct {
			Type       string          `json:"type"`
			Value      json.RawMessage `json:"value"`
			Name       string          `json:"name"`
			Confidence json.RawMessage `json:"confidence"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		value := stringify(obj.Value)
		if value == "" {
			value = obj.Name
		}
		if value == "" {
			continue
		}
		e := Entity{Type: obj.Type, Value: value}
		if e.Type == "" {
			e.Type = "entity"
		}
		if c, ok := parseNumber(obj.Confidence); ok {
			c = math.Max(0, math.Min(1, c))
			e.Confidence = &c
		}
		entities = append(entities, e)
	}
	return entities
}

// parseSentiment maps a bare label onto a fixed score and passes a
// structured {score,label} through with non-finite scores zeroed.
func parseSentiment(raw json.RawMessage) Sentiment {
	if len(raw) == 0 {
		return Sentiment{Score: 0, Label: SentimentNeutral}
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return SentimentFromLabel(label)
	}

	var obj struct {
		Score json.RawMessage `json:"score"`
		Label string          `json:"label"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Sentiment{Score: 0, Label: SentimentNeutral}
	}
	if len(obj.Score) == 0 {
		return SentimentFromLabel(obj.Label)
	}
	score, _ := parseNumber(obj.Score)
	if obj.Label == "" {
		obj.Label = SentimentNeutral
	}
	return Sentiment{Score: score, Label: obj.Label}
}

func SentimentFromLabel(label string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case SentimentPositive:
		return Sentiment{Score: 0.7, Label: SentimentPositive}
	case SentimentNegative:
		return Sentiment{Score: -0.7, Label: SentimentNegative}
	default:
		return Sentiment{Score: 0, Label: SentimentNeutral}
	}
}

// parseNumber accepts a JSON number or numeric string; non-finite values
// report false.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringify(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
