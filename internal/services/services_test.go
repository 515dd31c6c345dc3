package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"lens-backend/internal/db"
	"lens-backend/internal/models"
	"lens-backend/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return store.New(conn)
}

func registerTestUser(t *testing.T, users *UserService, name, email string) *models.User {
	t.Helper()
	u, err := users.Register(context.Background(), models.RegisterRequest{
		FullName: name,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}
