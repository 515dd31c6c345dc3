package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lens-backend/internal/services"
)

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) || c.Is("json")
}

// InboxHandler lists conversations grouped by counterpart, plus the
// total unread badge.
func InboxHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		conversations, err := chatService.Inbox(c.Context(), userID)
		if err != nil {
			return err
		}
		unread, err := chatService.UnreadCount(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"conversations": conversations, "unread_messages_count": unread})
	}
}

// ChatHandler opens a conversation: the counterpart's unread messages to
// the caller become read, and the full history comes back oldest first.
func ChatHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		otherID := c.Params("user_id")

		if otherID == userID {
			if wantsJSON(c) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{
					"status": "error", "message": services.ErrSelfMessage.Error(),
				})
			}
			return c.Redirect("/messages")
		}

		page, err := chatService.Conversation(c.Context(), userID, otherID)
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(page)
	}
}

// SendMessageHandler persists and relays a direct message. Content comes
// from a JSON body or a form field, whichever the client sent.
func SendMessageHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		otherID := c.Params("user_id")

		content := c.FormValue("content")
		if c.Is("json") {
			var body struct {
				Content string `json:"content"`
			}
			if err := c.BodyParser(&body); err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
			}
			content = body.Content
		}

		msg, err := chatService.Send(c.Context(), userID, otherID, content)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSelfMessage):
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{
					"status": "error", "message": err.Error(),
				})
			case errors.Is(err, services.ErrEmptyMessage):
				// The chat form quietly reloads on an empty submit.
				return c.Redirect("/messages/" + otherID)
			default:
				return notFoundIfMissing(err)
			}
		}
		return c.JSON(fiber.Map{"status": "success", "message": msg.Payload()})
	}
}

// RecentMessagesHandler is the polling fallback: messages from the
// counterpart strictly newer than `since`, marked read on the way out.
func RecentMessagesHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		since, err := strconv.ParseFloat(c.Query("since", "0"), 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid timestamp"})
		}

		payloads, err := chatService.RecentSince(c.Context(), currentUserID(c), c.Params("user_id"), int64(since))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"messages": payloads})
	}
}
