package store

import "errors"

// Sentinel errors returned by store operations. Services translate these
// into domain errors at the boundary.
var (
	ErrBookNotFound = errors.New("book not found")

	ErrLoanNotFound     = errors.New("loan not found")
	ErrLoanNotActive    = errors.New("loan is not active")
	ErrLoanLimitReached = errors.New("loan limit reached")
	ErrOutOfStock       = errors.New("book is out of stock")

	ErrWishlistItemExists   = errors.New("wishlist item already exists")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")

	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("email already registered")

	ErrSessionNotFound = errors.New("session not found")
)
