package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"lens-backend/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	if u.ProfileImage == "" {
		u.ProfileImage = models.DefaultProfileImage
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, full_name, email, password_hash, bio, profile_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Bio, u.ProfileImage, u.CreatedAt)
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile overwrites the mutable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id, fullName, bio, profileImage string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE users SET full_name = ?, bio = ?, profile_image = ? WHERE id = ?`),
		fullName, bio, profileImage, id)
	return err
}

// SearchUsers does a case-insensitive substring match on full_name.
func (s *Store) SearchUsers(ctx context.Context, query string) ([]*models.User, error) {
	var users []*models.User
	err := s.db.SelectContext(ctx, &users, s.q(`
		SELECT * FROM users
		WHERE LOWER(full_name) LIKE '%' || LOWER(?) || '%'
		ORDER BY full_name`), query)
	return users, err
}
