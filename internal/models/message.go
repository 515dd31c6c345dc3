package models

import "time"

type Message struct {
	ID          string `db:"id" json:"id"`
	SenderID    string `db:"sender_id" json:"sender_id"`
	RecipientID string `db:"recipient_id" json:"recipient_id"`
	Content     string `db:"content" json:"content"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	Read        bool   `db:"is_read" json:"read"`
}

// ClockTime formats the message timestamp the way chat bubbles show it.
func (m *Message) ClockTime() string {
	return time.Unix(m.CreatedAt, 0).Format("3:04 PM")
}

// MessagePayload is what goes over the live channel and out of the
// polling endpoint for a single message.
type MessagePayload struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	SenderID  string `json:"sender_id"`
}

// Payload converts a stored message to its wire shape.
func (m *Message) Payload() MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		Content:   m.Content,
		Timestamp: m.ClockTime(),
		SenderID:  m.SenderID,
	}
}

// Conversation summarises one counterpart on the inbox page.
type Conversation struct {
	User        *UserPublic `json:"user"`
	LastMessage *Message    `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
}

// WSMessage is the JSON envelope exchanged over the websocket. Clients
// send {"event":"join"}; the server pushes "receive_message" events.
type WSMessage struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	SenderID  string `json:"sender_id,omitempty"`
}
