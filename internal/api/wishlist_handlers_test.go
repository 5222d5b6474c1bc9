package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistLifecycle(t *testing.T) {
	api, s := setupTestServer(t)
	userID, authHeader := registerTestUser(t, s, "wisher@example.com")
	seedTestBook(t, s, "book-w", 1)

	resp := api.Post("/api/v1/users/"+userID+"/wishlist", authHeader, map[string]any{
		"book_id": "book-w",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	item := envelopeData(t, resp.Body.Bytes())
	itemID := item["id"].(string)
	assert.Equal(t, "book-w", item["book_id"])

	resp = api.Get("/api/v1/users/"+userID+"/wishlist/contains/book-w", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	data := envelopeData(t, resp.Body.Bytes())
	assert.Equal(t, true, data["in_wishlist"])

	resp = api.Get("/api/v1/users/"+userID+"/wishlist", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	data = envelopeData(t, resp.Body.Bytes())
	assert.Len(t, data["items"].([]any), 1)

	resp = api.Delete("/api/v1/users/"+userID+"/wishlist/"+itemID+"?book_id=book-w", authHeader)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Get("/api/v1/users/"+userID+"/wishlist/contains/book-w", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	data = envelopeData(t, resp.Body.Bytes())
	assert.Equal(t, false, data["in_wishlist"])
}

func TestAddWishlistItemTwice(t *testing.T) {
	api, s := setupTestServer(t)
	userID, authHeader := registerTestUser(t, s, "twice@example.com")
	seedTestBook(t, s, "book-t", 1)

	body := map[string]any{"book_id": "book-t"}
	resp := api.Post("/api/v1/users/"+userID+"/wishlist", authHeader, body)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/api/v1/users/"+userID+"/wishlist", authHeader, body)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestWishlistForAnotherUserForbidden(t *testing.T) {
	api, s := setupTestServer(t)
	_, authHeader := registerTestUser(t, s, "prying@example.com")
	otherID, _ := registerTestUser(t, s, "private@example.com")

	resp := api.Get("/api/v1/users/"+otherID+"/wishlist", authHeader)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRemoveUnknownWishlistItem(t *testing.T) {
	api, s := setupTestServer(t)
	userID, authHeader := registerTestUser(t, s, "empty@example.com")

	resp := api.Delete("/api/v1/users/"+userID+"/wishlist/wish:x:y?book_id=y", authHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
