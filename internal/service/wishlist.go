package service

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// WishlistService manages per-user wishlists.
type WishlistService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// AddRequest puts a book on a user's wishlist. Book is an optional snapshot
// reconciled into the catalog before the item is written.
type AddRequest struct {
	UserID string               `json:"user_id" validate:"required"`
	BookID string               `json:"book_id" validate:"required"`
	Book   *normalize.BookInput `json:"book,omitempty"`
}

// Add creates a wishlist entry and bumps the book's wishlist counter.
// Adding a book twice fails with an already-exists error.
func (s *WishlistService) Add(ctx context.Context, principalID string, req *AddRequest) (*domain.WishlistItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if principalID != req.UserID {
		return nil, domainerrors.Forbidden("cannot modify another user's wishlist")
	}

	user, err := lookupUser(ctx, s.store, req.UserID)
	if err != nil {
		return nil, err
	}

	book, err := resolveBook(ctx, s.store, req.BookID, req.Book)
	if err != nil {
		return nil, err
	}

	item, err := s.store.AddWishlistItem(ctx, user, book)
	if err != nil {
		if errors.Is(err, store.ErrWishlistItemExists) {
			return nil, domainerrors.AlreadyExists("book is already on the wishlist")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "add wishlist item")
	}

	s.logger.Info("wishlist item added",
		"user_id", user.ID,
		"book_id", book.ID,
	)
	return item, nil
}

// Remove deletes a wishlist entry and decrements the book's counter.
func (s *WishlistService) Remove(ctx context.Context, principalID, userID, itemID, bookID string) error {
	if principalID != userID {
		return domainerrors.Forbidden("cannot modify another user's wishlist")
	}
	if bookID == "" {
		return domainerrors.Validation("book id is required")
	}

	err := s.store.RemoveWishlistItem(ctx, userID, itemID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrWishlistItemNotFound) {
			return domainerrors.NotFoundf("wishlist item %s not found", itemID)
		}
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "remove wishlist item")
	}

	s.logger.Info("wishlist item removed",
		"user_id", userID,
		"book_id", bookID,
	)
	return nil
}

// List returns a user's wishlist, newest first.
func (s *WishlistService) List(ctx context.Context, principalID, userID string) ([]*domain.WishlistItem, error) {
	if principalID != userID {
		return nil, domainerrors.Forbidden("cannot read another user's wishlist")
	}

	items, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "list wishlist")
	}
	return items, nil
}

// Contains reports whether the book is on the user's wishlist.
func (s *WishlistService) Contains(ctx context.Context, principalID, userID, bookID string) (bool, error) {
	if principalID != userID {
		return false, domainerrors.Forbidden("cannot read another user's wishlist")
	}

	in, err := s.store.IsInWishlist(ctx, userID, bookID)
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "wishlist lookup")
	}
	return in, nil
}
