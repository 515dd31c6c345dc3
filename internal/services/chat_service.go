package services

import (
	"context"
	"errors"
	"strings"

	"lens-backend/internal/models"
	"lens-backend/internal/store"
)

var (
	ErrSelfMessage  = errors.New("You cannot message yourself.")
	ErrEmptyMessage = errors.New("Message cannot be empty.")
)

// Notifier pushes a payload to a user's live channel, if any is open.
// Delivery is best-effort; missed pushes are recovered by polling.
type Notifier interface {
	EmitToUser(userID string, payload interface{})
}

type ChatService struct {
	store  *store.Store
	notify Notifier
}

func NewChatService(st *store.Store, notify Notifier) *ChatService {
	return &ChatService{store: st, notify: notify}
}

// Send persists the message unread and immediately relays it to the
// recipient's room.
func (s *ChatService) Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error) {
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.store.UserByID(ctx, recipientID); err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: senderID, RecipientID: recipientID, Content: content}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.notify != nil {
		payload := msg.Payload()
		s.notify.EmitToUser(recipientID, models.WSMessage{
			Event:     "receive_message",
			Content:   payload.Content,
			Timestamp: payload.Timestamp,
			SenderID:  payload.SenderID,
		})
	}
	return msg, nil
}

// ChatPage is one open conversation.
type ChatPage struct {
	OtherUser *models.UserPublic `json:"other_user"`
	Messages  []*models.Message  `json:"messages"`
}

// Conversation opens the chat with otherID: everything the counterpart
// sent the user is marked read, then the full history is returned oldest
// first.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID string) (*ChatPage, error) {
	other, err := s.store.UserByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkConversationRead(ctx, otherID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ConversationBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	return &ChatPage{OtherUser: other.Public(), Messages: msgs}, nil
}

// RecentSince returns messages from otherID to the user strictly newer
// than the cutoff, and marks them read as a side effect of being fetched.
func (s *ChatService) RecentSince(ctx context.Context, userID, otherID string, since int64) ([]models.MessagePayload, error) {
	msgs, err := s.store.MessagesSince(ctx, otherID, userID, since)
	if err != nil {
		return nil, err
	}

	payloads := make([]models.MessagePayload, 0, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, m.Payload())
		ids = append(ids, m.ID)
	}
	if err := s.store.MarkMessagesRead(ctx, ids); err != nil {
		return nil, err
	}
	return payloads, nil
}

// Inbox groups the user's messages by counterpart, newest conversation
// first, with per-conversation unread counts.
func (s *ChatService) Inbox(ctx context.Context, userID string) ([]*models.Conversation, error) {
	msgs, err := s.store.MessagesInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.Conversation)
	var order []string
	for _, m := range msgs {
		otherID := m.SenderID
		if m.SenderID == userID {
			otherID = m.RecipientID
		}
		conv, ok := byUser[otherID]
		if !ok {
			other, err := s.store.UserByID(ctx, otherID)
			if err != nil {
				return nil, err
			}
			// msgs are newest first, so the first message seen per
			// counterpart is the conversation's latest.
			conv = &models.Conversation{User: other.Public(), LastMessage: m}
			byUser[otherID] = conv
			order = append(order, otherID)
		}
		if m.RecipientID == userID && !m.Read {
			conv.UnreadCount++
		}
	}

	conversations := make([]*models.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, byUser[id])
	}
	return conversations, nil
}

// UnreadCount is the badge number shown on every page.
func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}
