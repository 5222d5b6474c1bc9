package store

import "sync"

// Key prefixes. Loans and wishlist items live under the owning user's
// namespace; view records under the book's, since views are counted
// per (book, user).
const (
	bookPrefix        = "book:"
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:"

	loanPrefix      = "loan:"            // loan:{userID}:{loanID}
	loanCountPrefix = "idx:loans:count:" // idx:loans:count:{userID}
	wishlistPrefix  = "wishlist:"        // wishlist:{userID}:{bookID}
	viewPrefix      = "view:"            // view:{bookID}:{userID}

	sessionPrefix        = "session:"
	sessionByTokenPrefix = "idx:sessions:token:"
)

// loanKey builds the composite key for a user's loan.
func loanKey(userID, loanID string) []byte {
	return []byte(loanPrefix + userID + ":" + loanID)
}

// loanScanPrefix is the prefix covering all of one user's loans.
func loanScanPrefix(userID string) []byte {
	return []byte(loanPrefix + userID + ":")
}

// loanCountKey is the per-user active-loan counter. Every borrow and return
// transaction reads and rewrites it so same-user transactions conflict on a
// common key.
func loanCountKey(userID string) []byte {
	return []byte(loanCountPrefix + userID)
}

// wishlistKey builds the composite key for a user's wishlist entry.
// Keyed by bookID, so a (user, book) pair maps to exactly one document.
func wishlistKey(userID, bookID string) []byte {
	return []byte(wishlistPrefix + userID + ":" + bookID)
}

// wishlistScanPrefix is the prefix covering all of one user's wishlist.
func wishlistScanPrefix(userID string) []byte {
	return []byte(wishlistPrefix + userID + ":")
}

// viewKey builds the composite key for a per-(book, user) view record.
func viewKey(bookID, userID string) []byte {
	return []byte(viewPrefix + bookID + ":" + userID)
}

// keyPool provides reusable byte slices for building single-document keys.
// This reduces allocations on the hot path of database operations.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers prefix + nanoid-sized suffix comfortably.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled
// buffer. Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(bookPrefix, bookID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
