package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/normalize"
)

func newWishlistService(t *testing.T) *WishlistService {
	t.Helper()
	return NewWishlistService(newTestStore(t), newValidator(), testLogger())
}

func TestWishlistService_AddRemove(t *testing.T) {
	svc := newWishlistService(t)
	ctx := context.Background()

	seedUser(t, svc.store, "u1")
	seedBook(t, svc.store, "bk-1", 1)

	item, err := svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "bk-1"})
	require.NoError(t, err)

	in, err := svc.Contains(ctx, "u1", "u1", "bk-1")
	require.NoError(t, err)
	assert.True(t, in)

	book, err := svc.store.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.Stats.Wishlists)

	require.NoError(t, svc.Remove(ctx, "u1", "u1", item.ID, "bk-1"))

	book, err = svc.store.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.Stats.Wishlists)
	assert.Equal(t, 0, book.PopularityScore)
}

func TestWishlistService_AddDuplicate(t *testing.T) {
	svc := newWishlistService(t)
	ctx := context.Background()

	seedUser(t, svc.store, "u1")
	seedBook(t, svc.store, "bk-1", 1)

	_, err := svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "bk-1"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "bk-1"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestWishlistService_PrincipalChecks(t *testing.T) {
	svc := newWishlistService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u2", &AddRequest{UserID: "u1", BookID: "bk-1"})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	err = svc.Remove(ctx, "u2", "u1", "item", "bk-1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = svc.List(ctx, "u2", "u1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = svc.Contains(ctx, "u2", "u1", "bk-1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestWishlistService_AddUnknownBook(t *testing.T) {
	svc := newWishlistService(t)
	ctx := context.Background()

	seedUser(t, svc.store, "u1")

	_, err := svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "ghost"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWishlistService_RemoveMissing(t *testing.T) {
	svc := newWishlistService(t)

	err := svc.Remove(context.Background(), "u1", "u1", "item", "bk-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWishlistService_List(t *testing.T) {
	svc := newWishlistService(t)
	ctx := context.Background()

	seedUser(t, svc.store, "u1")
	seedBook(t, svc.store, "bk-1", 1)
	seedBook(t, svc.store, "bk-2", 1)

	_, err := svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "bk-1"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", &AddRequest{UserID: "u1", BookID: "bk-2"})
	require.NoError(t, err)

	items, err := svc.List(ctx, "u1", "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWishlistService_Add_ReconcilesSnapshot(t *testing.T) {
	st := newTestStore(t)
	wishlist := NewWishlistService(st, newValidator(), testLogger())
	ctx := context.Background()

	seedUser(t, st, "u1")

	item, err := wishlist.Add(ctx, "u1", &AddRequest{
		UserID: "u1",
		BookID: "bk-wish",
		Book:   &normalize.BookInput{Title: "Wanted", Authors: []string{"B. Author"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-wish", item.BookID)

	book, err := st.GetBook(ctx, "bk-wish")
	require.NoError(t, err)
	assert.Equal(t, "Wanted", book.Title)
	assert.Equal(t, 1, book.Stats.Wishlists)
}
