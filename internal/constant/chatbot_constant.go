package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	ShoppingAssistantSystemPromptV1 = `You are a helpful shopping assistant. You help users find products and answer questions about them.
Be friendly, helpful, and provide accurate information about the products.
Consider the conversation history and the user's intent when responding.
If relevant products are listed below, ground your answer in them and mention them by name.
Never invent products, prices or stock that are not listed.
Always finish with a helpful suggestion for what the user could do next.`

	// Appended to the system prompt when retrieval found candidates.
	ShoppingAssistantProductsHeader = "Available products (most relevant first):"

	ShoppingAssistantNoProducts = "No matching products were found in the catalog for this message."

	// %s: intent, %.2f: confidence
	ShoppingAssistantIntentHint = "Detected user intent: %s (confidence %.2f)."

	IntentAnalysisPromptV1 = `Analyze the following message and return ONLY a JSON object with:
- intent: the main intent (search, question, greeting, complaint, comparison, purchase, general)
- entities: array of important entities mentioned (product names, categories, brands, price limits)
- sentiment: positive, negative, or neutral
- confidence: confidence score from 0 to 1
Do not wrap the JSON in any other text.`
)

// Fixed replies used when a step cannot produce model output.
const (
	GenerationFailedReply   = "I'm sorry, I couldn't process your request at the moment."
	OrchestratorFailedReply = "I'm sorry, I encountered an error. Please try again."
)

const (
	SuggestionTellMeMore      = "Tell me more about these products"
	SuggestionShowSimilar     = "Show me similar items"
	SuggestionBestDeals       = "What are your best deals today?"
	SuggestionFindSpecific    = "Help me find something specific"
	SuggestionContinue        = "Continue the conversation"
	SuggestionAskAnother      = "Ask another question"
	SuggestionRephrase        = "Try rephrasing your question"
	SuggestionAskProducts     = "Ask about specific products"
	SuggestionCheckCategories = "Check our categories"
)

// ErrorSuggestions returns the fixed suggestion list of a failed chat turn.
func ErrorSuggestions() []string {
	return []string{SuggestionRephrase, SuggestionAskProducts, SuggestionCheckCategories}
}

// ChatSuggestions returns follow-up chips for a turn. Product specific chips
// come first when the turn surfaced products.
func ChatSuggestions(hasProducts bool) []string {
	suggestions := make([]string, 0, 4)
	if hasProducts {
		suggestions = append(suggestions, SuggestionTellMeMore, SuggestionShowSimilar)
	}
	return append(suggestions, SuggestionBestDeals, SuggestionFindSpecific)
}

// ContinueSuggestions is offered when no conversational context is known.
func ContinueSuggestions() []string {
	return []string{SuggestionContinue, SuggestionAskAnother}
}

const (
	MessageProcessed     = "Message processed successfully"
	MessageProcessFailed = "Failed to process message"
	ErrorIntent          = "error"

	DefaultConversationTitle = "New Conversation"
)
