package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lens-backend/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO messages (id, sender_id, recipient_id, content, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?)`),
		m.ID, m.SenderID, m.RecipientID, m.Content, m.CreatedAt, m.Read)
	return err
}

// ConversationBetween returns the full two-way history, oldest first.
func (s *Store) ConversationBetween(ctx context.Context, a, b string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := s.db.SelectContext(ctx, &msgs, s.q(`
		SELECT * FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at, id`), a, b, b, a)
	return msgs, err
}

// MarkConversationRead flags every unread message from sender to recipient
// as read. The flag only ever moves unread -> read.
func (s *Store) MarkConversationRead(ctx context.Context, senderID, recipientID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = ? AND recipient_id = ? AND is_read = FALSE`),
		senderID, recipientID)
	return err
}

// MessagesSince returns messages from sender to recipient strictly newer
// than the cutoff, oldest first.
func (s *Store) MessagesSince(ctx context.Context, senderID, recipientID string, since int64) ([]*models.Message, error) {
	var msgs []*models.Message
	err := s.db.SelectContext(ctx, &msgs, s.q(`
		SELECT * FROM messages
		WHERE sender_id = ? AND recipient_id = ? AND created_at > ?
		ORDER BY created_at, id`), senderID, recipientID, since)
	return msgs, err
}

// MarkMessagesRead flags the given messages as read.
func (s *Store) MarkMessagesRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE messages SET is_read = TRUE WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(query), args...)
	return err
}

// MessagesInvolving returns every message the user sent or received,
// newest first. The inbox groups these by counterpart.
func (s *Store) MessagesInvolving(ctx context.Context, userID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := s.db.SelectContext(ctx, &msgs, s.q(`
		SELECT * FROM messages
		WHERE sender_id = ? OR recipient_id = ?
		ORDER BY created_at DESC, id`), userID, userID)
	return msgs, err
}

// UnreadCount reports how many unread messages are addressed to the user.
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`
		SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = FALSE`), userID)
	return n, err
}
