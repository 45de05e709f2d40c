package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_cluster_events"

// Hub tracks the live connections of every user on this instance. With
// Redis configured, deliveries go through a shared channel so a user's
// devices receive the event whichever instance they are connected to.
type Hub struct {
	// userId -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserID]
			for i, c := range clients {
				if c == client {
					h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
				h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
			}
			h.mu.Unlock()
		}
	}
}

// Connected reports how many live connections userId has here.
func (h *Hub) Connected(userId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

// Publish implements events.Publisher by pushing chat events to the
// recipient's sockets.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	userId := events.UserID(event)
	if userId == "" {
		h.logger.Warn("Hub", "Event without recipient dropped", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	data, err := json.Marshal(map[string]interface{}{
		"type": events.ClientEventName(event.EventType()),
		"data": event.Payload(),
	})
	if err != nil {
		return err
	}

	h.Send(ctx, userId, data)
	return nil
}

// Send delivers a serialized frame to userId. The local fan-out is skipped
// when Redis carries the frame, since this instance receives it back from
// the channel.
func (h *Hub) Send(ctx context.Context, userId string, data []byte) {
	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{TargetUserID: userId, Message: data})
		err := h.rdb.Publish(ctx, clusterChannel, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
	h.deliverLocal(userId, data)
}

func (h *Hub) deliverLocal(userId string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userId})
		go func(c *Client) { h.unregister <- c }(client)
	}
}

type clusterMessage struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(payload.TargetUserID, payload.Message)
	}
}
