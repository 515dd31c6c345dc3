package utils

import (
	"log"

	"github.com/gofiber/websocket/v2"
)

// SendJSON writes a JSON payload to a websocket connection. The websocket
// implementation is not safe for concurrent writes; callers serialize
// through the relay hub's lock.
func SendJSON(c *websocket.Conn, payload interface{}) error {
	return c.WriteJSON(payload)
}

// LogError logs an error with a short context tag if it's not nil.
func LogError(err error, context string) {
	if err != nil {
		log.Printf("Error [%s]: %v", context, err)
	}
}
