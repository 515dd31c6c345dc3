package store

import (
	"context"
)

// Follow inserts a follow edge. The composite primary key plus
// ON CONFLICT DO NOTHING makes repeated follows leave exactly one edge.
func (s *Store) Follow(ctx context.Context, followerID, followedID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO connections (follower_id, followed_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`), followerID, followedID)
	return err
}

// Unfollow removes the edge; deleting a missing edge is a no-op.
func (s *Store) Unfollow(ctx context.Context, followerID, followedID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM connections WHERE follower_id = ? AND followed_id = ?`),
		followerID, followedID)
	return err
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`
		SELECT COUNT(*) FROM connections WHERE follower_id = ? AND followed_id = ?`),
		followerID, followedID)
	return n > 0, err
}

// FollowingIDs returns the IDs of everyone the user follows.
func (s *Store) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.q(`
		SELECT followed_id FROM connections WHERE follower_id = ?`), userID)
	return ids, err
}

// SavePhoto bookmarks a photo; saving twice leaves one edge.
func (s *Store) SavePhoto(ctx context.Context, userID, photoID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO saved_photos (user_id, photo_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`), userID, photoID)
	return err
}

func (s *Store) UnsavePhoto(ctx context.Context, userID, photoID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM saved_photos WHERE user_id = ? AND photo_id = ?`), userID, photoID)
	return err
}

func (s *Store) IsSaved(ctx context.Context, userID, photoID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`
		SELECT COUNT(*) FROM saved_photos WHERE user_id = ? AND photo_id = ?`),
		userID, photoID)
	return n > 0, err
}
