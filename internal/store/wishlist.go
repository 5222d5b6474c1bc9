package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// Wishlist Operations

// AddWishlistItem creates a wishlist entry and bumps the book's wishlist
// counter in the same transaction. The item ID is derived from the
// (user, book) pair, so adding the same book twice fails with
// ErrWishlistItemExists instead of creating a duplicate.
func (s *Store) AddWishlistItem(ctx context.Context, user *domain.User, book *domain.Book) (*domain.WishlistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := wishlistKey(user.ID, book.ID)
	bookKey := []byte(bookPrefix + book.ID)
	var item domain.WishlistItem

	err := s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrWishlistItemExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		var stored domain.Book
		err = txnGet(txn, bookKey, &stored)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// No catalog record to count against; keep the item anyway.
			stored = *book
		case err != nil:
			return err
		default:
			stored.Stats.Wishlists++
			stored.RecalculatePopularity()
			stored.Touch()
			if err := txnSet(txn, bookKey, &stored); err != nil {
				return err
			}
		}

		item = domain.WishlistItem{
			UserID: user.ID,
			BookID: stored.ID,
			Book:   stored.Snapshot(),
			User:   user.Snapshot(),
		}
		item.ID = domain.WishlistItemID(user.ID, book.ID)
		item.InitTimestamps()

		return txnSet(txn, key, &item)
	})
	if err != nil {
		if errors.Is(err, ErrWishlistItemExists) {
			return nil, err
		}
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "wishlist item added",
			slog.String("user_id", user.ID),
			slog.String("book_id", book.ID),
		)
	}
	return &item, nil
}

// RemoveWishlistItem deletes the entry for (userID, bookID) and decrements
// the book's wishlist counter in the same transaction. The caller-supplied
// itemID must match the stored entry.
func (s *Store) RemoveWishlistItem(ctx context.Context, userID, itemID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := wishlistKey(userID, bookID)
	bookKey := []byte(bookPrefix + bookID)

	err := s.update(ctx, func(txn *badger.Txn) error {
		var item domain.WishlistItem
		err := txnGet(txn, key, &item)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrWishlistItemNotFound
		}
		if err != nil {
			return err
		}
		if item.ID != itemID {
			return ErrWishlistItemNotFound
		}

		var book domain.Book
		err = txnGet(txn, bookKey, &book)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			book.Stats.Wishlists--
			book.Stats.Floor()
			book.RecalculatePopularity()
			book.Touch()
			if err := txnSet(txn, bookKey, &book); err != nil {
				return err
			}
		}

		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ErrWishlistItemNotFound) {
			return err
		}
		return fmt.Errorf("remove wishlist item: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "wishlist item removed",
			slog.String("user_id", userID),
			slog.String("book_id", bookID),
		)
	}
	return nil
}

// ListWishlist returns the user's wishlist entries, newest first.
func (s *Store) ListWishlist(ctx context.Context, userID string) ([]*domain.WishlistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []*domain.WishlistItem
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = wishlistScanPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			var item domain.WishlistItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return err
			}
			items = append(items, &item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// IsInWishlist reports whether the user has the book on their wishlist.
func (s *Store) IsInWishlist(ctx context.Context, userID, bookID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists, err := s.exists(wishlistKey(userID, bookID))
	if err != nil {
		return false, fmt.Errorf("wishlist lookup: %w", err)
	}
	return exists, nil
}
