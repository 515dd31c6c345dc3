package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"lens-backend/internal/models"
	"lens-backend/internal/relay"
	"lens-backend/internal/utils"
)

// WSUpgradeMiddleware rejects plain HTTP requests to the websocket route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler runs the read loop for a live-relay connection. The
// only client event is "join", which puts the connection in the caller's
// own room; pushed messages arrive as "receive_message" events.
func WebSocketHandler(hub *relay.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID := c.Locals(LocalUserID).(string)
		connID := uuid.New().String()

		joined := false
		defer func() {
			if joined {
				hub.Leave(relay.UserRoom(userID), connID)
			}
			c.Close()
		}()

		utils.SendJSON(c, models.WSMessage{Event: "connected"})

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				break
			}

			var env models.WSMessage
			if err := json.Unmarshal(msg, &env); err != nil {
				utils.LogError(err, "WebSocketHandler")
				continue
			}

			if env.Event == "join" {
				// A user may only ever join their own room.
				hub.Join(relay.UserRoom(userID), connID, c)
				joined = true
			}
		}
	})
}
