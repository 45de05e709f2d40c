package websocket

import (
	"ai-shopping-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one client until its connection closes.
func ServeWs(hub *Hub, c *websocket.Conn, userId string) {
	client := &Client{Hub: hub, Conn: c, UserID: userId, Send: make(chan []byte, sendBuffer)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}

// Handler upgrades GET /ws. The user is taken from a JWT ("token" query
// parameter or Authorization header) when a secret is configured, and from
// the userId query parameter otherwise.
func Handler(hub *Hub, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userId, err := resolveUser(c, jwtSecret)
		if err != nil {
			return err
		}

		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return websocket.New(func(conn *websocket.Conn) {
			hub.logger.Info("Hub", "Starting WebSocket session", map[string]interface{}{"user_id": userId})
			ServeWs(hub, conn, userId)
			hub.logger.Info("Hub", "WebSocket session ended", map[string]interface{}{"user_id": userId})
		})(c)
	}
}

func resolveUser(c *fiber.Ctx, jwtSecret string) (string, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c.Get("Authorization"))
	}

	if jwtSecret != "" {
		if tokenStr == "" {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')")
		}
		userId, err := serverutils.ParseUserID(tokenStr, jwtSecret)
		if err != nil {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		return userId, nil
	}

	userId := c.Query("userId")
	if userId == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "Missing userId")
	}
	return userId, nil
}
