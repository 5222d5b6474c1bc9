package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
)

// setupTestStore creates a Store backed by a temp directory and returns a
// cleanup function.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "booklend-store-test-*")
	require.NoError(t, err)

	s, err := New(dir, nil)
	require.NoError(t, err)

	cleanup := func() {
		s.Close()
		os.RemoveAll(dir)
	}
	return s, cleanup
}

// testBook builds a normalized book with the given id and stock.
func testBook(id string, total int) *domain.Book {
	book := normalize.Book(normalize.BookInput{
		ID:         id,
		Title:      "Book " + id,
		Authors:    []string{"Author " + id},
		StockTotal: &total,
	})
	return book
}

// testUser builds a user document.
func testUser(id string) *domain.User {
	user := &domain.User{
		Email:       id + "@example.com",
		DisplayName: "User " + id,
	}
	user.ID = id
	user.InitTimestamps()
	return user
}
