package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/auth"
	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	ts, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	return ts
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// seedUser registers a user directly through the store.
func seedUser(t *testing.T, s *store.Store, userID string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:       userID + "@example.com",
		DisplayName: "User " + userID,
	}
	user.ID = userID
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// seedBook reconciles a book with the given stock directly through the store.
func seedBook(t *testing.T, s *store.Store, bookID string, total int) *domain.Book {
	t.Helper()
	book, err := s.EnsureBook(context.Background(), normalize.Book(normalize.BookInput{
		ID:         bookID,
		Title:      "Book " + bookID,
		Authors:    []string{"Author"},
		StockTotal: &total,
	}))
	require.NoError(t, err)
	return book
}

func newValidator() *validation.Validator {
	return validation.New()
}
