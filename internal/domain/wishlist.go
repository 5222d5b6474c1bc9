package domain

// WishlistItem records a user's saved interest in a book, independent of
// borrowing. Hard-deleted on removal, no status field.
type WishlistItem struct {
	Syncable
	UserID string       `json:"user_id"`
	BookID string       `json:"book_id"`
	Book   BookSnapshot `json:"book"`
	User   UserSnapshot `json:"user"`
}

// WishlistItemID derives the deterministic item id for a (user, book) pair.
// Keying items this way makes duplicate entries structurally impossible:
// two racing adds for the same pair target the same document.
func WishlistItemID(userID, bookID string) string {
	return "wish:" + userID + ":" + bookID
}
