package response

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-shopping-assistant-be/internal/constant"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/rag/retrieval"
)

const logModule = "ResponseGenerator"

const (
	generationTemperature = 0.7
	generationMaxTokens   = 300

	// PromptCandidates bounds how many products are described to the model.
	PromptCandidates = 3

	maxDescriptionRunes = 200
)

// Generator writes the assistant reply grounded in retrieved products
type Generator struct {
	llmProvider      llm.LLMProvider
	logger           logger.ILogger
	metrics          *observe.Metrics
	promptCandidates int
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger, metrics *observe.Metrics) *Generator {
	return &Generator{
		llmProvider:      llmProvider,
		logger:           log,
		metrics:          metrics,
		promptCandidates: PromptCandidates,
	}
}

// WithPromptCandidates overrides the number of products put in the prompt.
func (g *Generator) WithPromptCandidates(n int) *Generator {
	if n > 0 {
		g.promptCandidates = n
	}
	return g
}

// Generate returns the model reply, or the fixed apology as Degraded when the
// call fails or comes back empty.
func (g *Generator) Generate(
	ctx context.Context,
	message string,
	history []*entity.ConversationTurn,
	candidates []retrieval.Candidate,
	hint *intent.Analysis,
) outcome.Result[string] {

	messages := g.BuildMessages(message, history, candidates, hint)

	start := time.Now()
	reply, err := g.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(generationTemperature),
		llm.WithMaxTokens(generationMaxTokens),
	)
	g.metrics.RecordProviderCall(ctx, g.llmProvider.Name(), "chat", time.Since(start).Seconds(), err)

	if err != nil {
		g.logger.Error(logModule, "LLM generation failed", map[string]interface{}{
			"provider": g.llmProvider.Name(),
			"error":    err.Error(),
		})
		return outcome.Degraded(constant.GenerationFailedReply, "generation failed: "+err.Error())
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.logger.Warn(logModule, "LLM returned an empty completion", nil)
		return outcome.Degraded(constant.GenerationFailedReply, "empty completion")
	}

	g.logger.Debug(logModule, "Reply generated", map[string]interface{}{
		"history_turns": len(history),
		"candidates":    len(candidates),
		"reply_length":  len(reply),
	})
	return outcome.Ok(reply)
}

// BuildMessages assembles system framing, prior turns oldest first and the
// current message. history is expected most-recent-first as stored.
func (g *Generator) BuildMessages(
	message string,
	history []*entity.ConversationTurn,
	candidates []retrieval.Candidate,
	hint *intent.Analysis,
) []llm.Message {

	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: g.buildSystemPrompt(candidates, hint),
	})

	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn == nil {
			continue
		}
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.UserMessage},
			llm.Message{Role: llm.RoleAssistant, Content: turn.AiResponse},
		)
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: message})
}

func (g *Generator) buildSystemPrompt(candidates []retrieval.Candidate, hint *intent.Analysis) string {
	var prompt strings.Builder
	prompt.WriteString(constant.ShoppingAssistantSystemPromptV1)
	prompt.WriteString("\n\n")

	if len(candidates) == 0 {
		prompt.WriteString(constant.ShoppingAssistantNoProducts)
	} else {
		prompt.WriteString(constant.ShoppingAssistantProductsHeader)
		prompt.WriteString("\n")
		limit := g.promptCandidates
		if len(candidates) < limit {
			limit = len(candidates)
		}
		for i := 0; i < limit; i++ {
			p := candidates[i].Product
			prompt.WriteString(fmt.Sprintf("%d. %s - $%.2f", i+1, p.Name, p.Price))
			if p.Category != "" {
				prompt.WriteString(fmt.Sprintf(" (%s)", p.Category))
			}
			if desc := truncate(p.Description, maxDescriptionRunes); desc != "" {
				prompt.WriteString(": ")
				prompt.WriteString(desc)
			}
			prompt.WriteString("\n")
		}
	}

	if hint != nil && hint.Intent != "" {
		prompt.WriteString("\n")
		prompt.WriteString(fmt.Sprintf(constant.ShoppingAssistantIntentHint, hint.Intent, hint.Confidence))
	}

	return strings.TrimSpace(prompt.String())
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
