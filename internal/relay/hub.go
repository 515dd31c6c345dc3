// Package relay delivers direct messages to connected clients. Each user
// has one logical room; delivery is fire-and-forget, and the polling
// endpoint is the recovery path for anyone not connected.
package relay

import (
	"sync"

	"github.com/gofiber/websocket/v2"

	"lens-backend/internal/utils"
)

// UserRoom names the per-user broadcast room.
func UserRoom(userID string) string {
	return "user_" + userID
}

type Hub struct {
	// room -> connID -> conn
	rooms map[string]map[string]*websocket.Conn
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*websocket.Conn)}
}

func (h *Hub) Join(room, connID string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]*websocket.Conn)
	}
	h.rooms[room][connID] = c
}

func (h *Hub) Leave(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// EmitToUser pushes a payload to every connection in the user's room.
// Write failures are logged and otherwise ignored; the read loop owns
// connection teardown.
func (h *Hub) EmitToUser(userID string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.rooms[UserRoom(userID)] {
		if err := utils.SendJSON(conn, payload); err != nil {
			utils.LogError(err, "EmitToUser")
		}
	}
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[UserRoom(userID)]) > 0
}
