package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"lens-backend/internal/models"
	"lens-backend/internal/store"
)

// Error text doubles as the user-visible message, so a few of these read
// like sentences.
var (
	ErrFieldsRequired     = errors.New("All fields are required")
	ErrPasswordTooShort   = errors.New("Password must be at least 6 characters long")
	ErrEmailTaken         = errors.New("Email address already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

const minPasswordLength = 6

type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

// Register validates, hashes the password and creates the account.
// Email uniqueness is check-then-insert; the UNIQUE constraint backstops
// the race.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.store.UserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login reports the same failure for an unknown email and a wrong
// password, so responses carry no enumeration signal.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*models.User, error) {
	return s.store.UserByID(ctx, id)
}

// UpdateSettings overwrites name and bio; the avatar only changes when a
// new filename is supplied.
func (s *UserService) UpdateSettings(ctx context.Context, userID, fullName, bio, profileImage string) (*models.User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profileImage == "" {
		profileImage = user.ProfileImage
	}
	if err := s.store.UpdateProfile(ctx, userID, fullName, bio, profileImage); err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Bio = bio
	user.ProfileImage = profileImage
	return user, nil
}

// Search matches full names case-insensitively; a blank query matches
// nobody rather than everybody.
func (s *UserService) Search(ctx context.Context, query string) ([]*models.UserPublic, error) {
	if query == "" {
		return []*models.UserPublic{}, nil
	}
	users, err := s.store.SearchUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]*models.UserPublic, len(users))
	for i, u := range users {
		results[i] = u.Public()
	}
	return results, nil
}

// Connect adds a follow edge. Connecting to yourself is a silent no-op,
// matching the UI which never offers it.
func (s *UserService) Connect(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return nil
	}
	if _, err := s.store.UserByID(ctx, followedID); err != nil {
		return err
	}
	return s.store.Follow(ctx, followerID, followedID)
}

// Disconnect removes a follow edge; removing a missing edge is a no-op.
func (s *UserService) Disconnect(ctx context.Context, followerID, followedID string) error {
	if _, err := s.store.UserByID(ctx, followedID); err != nil {
		return err
	}
	return s.store.Unfollow(ctx, followerID, followedID)
}

func (s *UserService) IsConnected(ctx context.Context, followerID, followedID string) (bool, error) {
	return s.store.IsFollowing(ctx, followerID, followedID)
}
