package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-shopping-assistant-be/pkg/events"
)

const (
	StreamName    = "EVENTS"
	SubjectPrefix = "events."
)

// envelope is the wire form of an event. The type travels with the payload
// so consumers never have to derive it from the subject.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

func Encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Payload:    event.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return data, nil
}

// Decode rebuilds an event from the wire. Messages without a type fall back
// to the subject's last token.
func Decode(subject string, data []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.BaseEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, SubjectPrefix)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	if env.Payload == nil {
		env.Payload = map[string]interface{}{}
	}
	return events.BaseEvent{
		Type:       env.Type,
		Data:       env.Payload,
		OccurredAt: env.OccurredAt,
	}, nil
}
