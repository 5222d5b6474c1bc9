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
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/slug"
)

// Book Operations

// EnsureBook is the idempotent reconciler: it creates the book record if it
// does not exist, or refreshes the descriptive fields if it does. Stock,
// stats, and popularity are only written on first creation; an update never
// resets live counters. Runs inside one transaction and returns the
// post-write record.
func (s *Store) EnsureBook(ctx context.Context, incoming *domain.Book) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(bookPrefix + incoming.ID)
	var result domain.Book
	var created bool

	err := s.update(ctx, func(txn *badger.Txn) error {
		var existing domain.Book
		err := txnGet(txn, key, &existing)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			result = *incoming
			result.InitTimestamps()
			result.RecalculatePopularity()
			created = true
		case err != nil:
			return err
		default:
			existing.ApplyDescriptiveFields(incoming)
			existing.Touch()
			result = existing
			created = false
		}

		return txnSet(txn, key, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("ensure book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "book reconciled",
			slog.String("id", result.ID),
			slog.String("title", result.Title),
			slog.Bool("created", created),
		)
	}
	return &result, nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(bookPrefix, id)
	defer releaseKey(key)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBookStats is the generic transactional stats/stock mutator. It reads
// the current book, hands the normalized counters to updater, recomputes the
// popularity score from the returned stats, and writes everything back in the
// same transaction. If updater returns a non-nil stock it replaces the
// current stock (clamped); nil leaves the stock untouched.
//
// A missing book is a silent no-op: callers are expected to have reconciled
// first, so this is a defensive guard, not a creation path.
func (s *Store) UpdateBookStats(ctx context.Context, bookID string, updater func(stats domain.Stats, stock domain.Stock) (domain.Stats, *domain.Stock)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + bookID)

	err := s.update(ctx, func(txn *badger.Txn) error {
		var book domain.Book
		err := txnGet(txn, key, &book)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		newStats, newStock := updater(normalize.Stats(book.Stats), book.Stock)
		newStats.Floor()
		book.Stats = newStats
		if newStock != nil {
			book.Stock = *newStock
			book.Stock.ClampAvailable()
		}
		book.RecalculatePopularity()
		book.Touch()

		return txnSet(txn, key, &book)
	})
	if err != nil {
		return fmt.Errorf("update book stats: %w", err)
	}
	return nil
}

// ListBooks returns a page of catalog records ordered by key.
func (s *Store) ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.Validate()
	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	result := &PaginatedResult[*domain.Book]{}
	prefix := []byte(bookPrefix)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		if startKey != "" {
			it.Seek([]byte(startKey))
			// The cursor is the last key of the previous page; skip it.
			if it.ValidForPrefix(prefix) && string(it.Item().Key()) == startKey {
				it.Next()
			}
		} else {
			it.Rewind()
		}

		var lastKey string
		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(result.Items) >= params.Limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			var book domain.Book
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return err
			}
			result.Items = append(result.Items, &book)
			lastKey = string(it.Item().Key())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return result, nil
}

// ListPopularBooks returns up to limit books ordered by popularity score,
// highest first. When category is non-empty, only books carrying a matching
// category (compared by slug, so case and accents don't matter) are
// considered.
func (s *Store) ListPopularBooks(ctx context.Context, limit int, category string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	categorySlug := slug.Make(category)
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			var book domain.Book
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return err
			}

			if categorySlug != "" && !hasCategory(&book, categorySlug) {
				continue
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list popular books: %w", err)
	}

	sort.SliceStable(books, func(i, j int) bool {
		if books[i].PopularityScore != books[j].PopularityScore {
			return books[i].PopularityScore > books[j].PopularityScore
		}
		return books[i].Title < books[j].Title
	})

	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

// hasCategory reports whether the book carries a category matching the slug.
func hasCategory(book *domain.Book, categorySlug string) bool {
	for _, c := range book.Categories {
		if slug.Make(c) == categorySlug {
			return true
		}
	}
	return false
}
