package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lens-backend/internal/models"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO comments (id, photo_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.PhotoID, c.UserID, c.Content, c.CreatedAt)
	return err
}

// CommentsForPhoto returns a photo's comments oldest first, with the
// author's display fields joined in.
func (s *Store) CommentsForPhoto(ctx context.Context, photoID string) ([]*models.CommentWithAuthor, error) {
	var comments []*models.CommentWithAuthor
	err := s.db.SelectContext(ctx, &comments, s.q(`
		SELECT c.*, u.full_name AS author_name, u.profile_image AS author_avatar
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.photo_id = ?
		ORDER BY c.created_at, c.id`), photoID)
	return comments, err
}

// CommentCount reports how many comments a photo has.
func (s *Store) CommentCount(ctx context.Context, photoID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM comments WHERE photo_id = ?`), photoID)
	return n, err
}
