package service

import (
	"context"
	"strings"

	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/events"
	pktNats "ai-shopping-assistant-be/pkg/nats"
)

const chatRelayDurable = "chat-relay-worker"

// EventSubscriber is the bus side the relay listens on.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// ChatRelayService forwards chat events from the bus to connected clients.
type ChatRelayService struct {
	subscriber EventSubscriber
	delivery   events.Publisher
	logger     logger.ILogger
}

func NewChatRelayService(sub EventSubscriber, delivery events.Publisher, log logger.ILogger) *ChatRelayService {
	return &ChatRelayService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *ChatRelayService) Start(ctx context.Context) error {
	subject := pktNats.SubjectPrefix + ">"
	if err := s.subscriber.Subscribe(ctx, subject, chatRelayDurable, s.HandleEvent); err != nil {
		s.logger.Error("ChatRelay", "Failed to start chat event subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ChatRelay", "Chat relay started", map[string]interface{}{"subject": subject})
	return nil
}

// HandleEvent delivers chat events and acknowledges everything else
// without action.
func (s *ChatRelayService) HandleEvent(ctx context.Context, event events.Event) error {
	if !strings.HasPrefix(event.EventType(), events.ChatSubjectPrefix) {
		return nil
	}
	if events.UserID(event) == "" {
		s.logger.Warn("ChatRelay", "Chat event without userId", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	return s.delivery.Publish(ctx, event)
}
