package events

import (
	"strings"
	"time"
)

const (
	TypeMessageAdded    = "CHAT_MESSAGE_ADDED"
	TypeTypingIndicator = "CHAT_TYPING_INDICATOR"
)

// ChatSubjectPrefix matches every chat event on the bus.
const ChatSubjectPrefix = "CHAT_"

func NewMessageAdded(userId, messageId, text string, isBot bool, metadata map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{
		Type: TypeMessageAdded,
		Data: map[string]interface{}{
			"id":        messageId,
			"userId":    userId,
			"message":   text,
			"isBot":     isBot,
			"timestamp": now.Format(time.RFC3339),
			"metadata":  metadata,
		},
		OccurredAt: now,
	}
}

func NewTypingIndicator(userId string, isTyping bool) BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{
		Type: TypeTypingIndicator,
		Data: map[string]interface{}{
			"userId":    userId,
			"isTyping":  isTyping,
			"timestamp": now.Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}

// UserID returns the recipient of a chat event, or "" when absent.
func UserID(e Event) string {
	if v, ok := e.Payload()["userId"].(string); ok {
		return v
	}
	return ""
}

// ClientEventName maps a bus event type to the name pushed to browsers:
// CHAT_MESSAGE_ADDED becomes messageAdded.
func ClientEventName(eventType string) string {
	switch eventType {
	case TypeMessageAdded:
		return "messageAdded"
	case TypeTypingIndicator:
		return "typingIndicator"
	}
	return strings.ToLower(eventType)
}
