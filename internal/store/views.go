package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// View Tracking

// RecordView registers that a user opened a book. The first view from a
// given user bumps the book's view counter; later views only refresh the
// per-user record, so a reader paging back and forth doesn't inflate
// popularity. Returns whether the view counted toward the stats.
func (s *Store) RecordView(ctx context.Context, bookID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := viewKey(bookID, userID)
	bookKey := []byte(bookPrefix + bookID)
	counted := false

	err := s.update(ctx, func(txn *badger.Txn) error {
		counted = false

		_, err := txn.Get(key)
		firstView := errors.Is(err, badger.ErrKeyNotFound)
		if err != nil && !firstView {
			return err
		}

		record := domain.ViewRecord{LastViewedAt: time.Now().UTC()}
		if err := txnSet(txn, key, &record); err != nil {
			return err
		}
		if !firstView {
			return nil
		}

		var book domain.Book
		err = txnGet(txn, bookKey, &book)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// View recorded against a book not yet in the catalog.
			counted = true
			return nil
		case err != nil:
			return err
		}

		book.Stats.Views++
		book.RecalculatePopularity()
		book.Touch()
		counted = true
		return txnSet(txn, bookKey, &book)
	})
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "view recorded",
			slog.String("book_id", bookID),
			slog.String("user_id", userID),
			slog.Bool("counted", counted),
		)
	}
	return counted, nil
}

// HasViewed reports whether the user has any recorded view of the book.
func (s *Store) HasViewed(ctx context.Context, bookID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists, err := s.exists(viewKey(bookID, userID))
	if err != nil {
		return false, fmt.Errorf("view lookup: %w", err)
	}
	return exists, nil
}
