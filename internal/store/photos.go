package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lens-backend/internal/models"
)

func (s *Store) CreatePhoto(ctx context.Context, p *models.Photo) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.UploadedAt == 0 {
		p.UploadedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO photos (id, user_id, title, category, description, location, tags, filename, views, likes, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.UserID, p.Title, p.Category, p.Description, p.Location, p.Tags, p.Filename, p.Views, p.Likes, p.UploadedAt)
	return err
}

func (s *Store) PhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	var p models.Photo
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM photos WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) PhotosByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := s.db.SelectContext(ctx, &photos, s.q(`
		SELECT * FROM photos WHERE user_id = ? ORDER BY uploaded_at DESC, id`), userID)
	return photos, err
}

// TopPhotosByUser returns a user's most viewed photos, for the dashboard chart.
func (s *Store) TopPhotosByUser(ctx context.Context, userID string, limit int) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := s.db.SelectContext(ctx, &photos, s.q(`
		SELECT * FROM photos WHERE user_id = ? ORDER BY views DESC, id LIMIT ?`), userID, limit)
	return photos, err
}

func (s *Store) AllPhotos(ctx context.Context) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := s.db.SelectContext(ctx, &photos, s.q(`
		SELECT * FROM photos ORDER BY uploaded_at DESC, id`))
	return photos, err
}

// PhotosByUsers is the feed query: every photo owned by any of the given
// users, newest first.
func (s *Store) PhotosByUsers(ctx context.Context, userIDs []string) ([]*models.Photo, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT * FROM photos WHERE user_id IN (?) ORDER BY uploaded_at DESC, id`, userIDs)
	if err != nil {
		return nil, err
	}
	var photos []*models.Photo
	err = s.db.SelectContext(ctx, &photos, s.q(query), args...)
	return photos, err
}

// IncrementViews bumps the view counter and returns the new value. There is
// deliberately no dedup by viewer.
func (s *Store) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := s.db.QueryRowContext(ctx, s.q(`
		UPDATE photos SET views = views + 1 WHERE id = ? RETURNING views`), id).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return views, err
}

// IncrementLikes bumps the like counter and returns the new value.
func (s *Store) IncrementLikes(ctx context.Context, id string) (int64, error) {
	var likes int64
	err := s.db.QueryRowContext(ctx, s.q(`
		UPDATE photos SET likes = likes + 1 WHERE id = ? RETURNING likes`), id).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return likes, err
}

// DeletePhoto removes the photo row together with its comments and saved
// edges, in one transaction.
func (s *Store) DeletePhoto(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM comments WHERE photo_id = ?`), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM saved_photos WHERE photo_id = ?`), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM photos WHERE id = ?`), id); err != nil {
		return err
	}
	return tx.Commit()
}

// SavedPhotos lists the photos a user has bookmarked, newest first.
func (s *Store) SavedPhotos(ctx context.Context, userID string) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := s.db.SelectContext(ctx, &photos, s.q(`
		SELECT p.* FROM photos p
		JOIN saved_photos sp ON sp.photo_id = p.id
		WHERE sp.user_id = ?
		ORDER BY p.uploaded_at DESC, p.id`), userID)
	return photos, err
}
