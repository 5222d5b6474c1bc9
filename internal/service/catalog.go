// Package service provides the business logic layer for the lending catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/metadata/googlebooks"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/store"
)

// popularDefaultLimit caps the popular listing when the caller doesn't ask
// for a specific size.
const popularDefaultLimit = 20

// CatalogService orchestrates catalog reconciliation, lookups, and the
// metadata provider.
type CatalogService struct {
	store    *store.Store
	metadata *googlebooks.Client
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *store.Store, metadata *googlebooks.Client, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		metadata: metadata,
		logger:   logger,
	}
}

// SyncBookRequest is the caller-supplied book snapshot for reconciliation.
type SyncBookRequest struct {
	normalize.BookInput
}

// SyncBook reconciles a caller-supplied book snapshot into the catalog.
// Missing fields are defaulted; an existing record keeps its live counters.
func (s *CatalogService) SyncBook(ctx context.Context, req *SyncBookRequest) (*domain.Book, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, domainerrors.Validation("book id is required")
	}

	book, err := s.store.EnsureBook(ctx, normalize.Book(req.BookInput))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "sync book")
	}
	return book, nil
}

// GetBook retrieves a single catalog record.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", id)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "get book")
	}
	return book, nil
}

// ListBooks returns a page of catalog records.
func (s *CatalogService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	result, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "list books")
	}
	return result, nil
}

// ListPopularBooks returns the most popular books, optionally filtered by
// category.
func (s *CatalogService) ListPopularBooks(ctx context.Context, limit int, category string) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = popularDefaultLimit
	}

	books, err := s.store.ListPopularBooks(ctx, limit, category)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "list popular books")
	}
	return books, nil
}

// SearchMetadata queries the metadata provider without touching the catalog.
func (s *CatalogService) SearchMetadata(ctx context.Context, query string, startIndex, maxResults int) ([]normalize.BookInput, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.Validation("search query is required")
	}
	if s.metadata == nil {
		return nil, domainerrors.Internal("metadata provider is not configured")
	}

	results, err := s.metadata.Search(ctx, query, startIndex, maxResults)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "metadata search")
	}
	return results, nil
}

// ImportBook fetches a volume from the metadata provider and reconciles it
// into the catalog.
func (s *CatalogService) ImportBook(ctx context.Context, volumeID string) (*domain.Book, error) {
	if s.metadata == nil {
		return nil, domainerrors.Internal("metadata provider is not configured")
	}

	input, err := s.metadata.FindByID(ctx, volumeID)
	if err != nil {
		if errors.Is(err, googlebooks.ErrVolumeNotFound) {
			return nil, domainerrors.NotFoundf("volume %s not found", volumeID)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "metadata lookup")
	}

	book, err := s.store.EnsureBook(ctx, normalize.Book(*input))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "import book")
	}

	s.logger.Info("book imported from metadata provider",
		"book_id", book.ID,
		"title", book.Title,
	)
	return book, nil
}

// lookupUser loads the acting user, mapping store sentinels to domain errors.
// Shared by the loan and wishlist services.
func lookupUser(ctx context.Context, st *store.Store, userID string) (*domain.User, error) {
	user, err := st.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// resolveBook returns the catalog record for bookID. When the caller supplied
// a snapshot it is reconciled first, guaranteeing the record exists; without
// one the book must already be in the catalog.
func resolveBook(ctx context.Context, st *store.Store, bookID string, snapshot *normalize.BookInput) (*domain.Book, error) {
	if snapshot != nil {
		if snapshot.ID != "" && snapshot.ID != bookID {
			return nil, domainerrors.Validation("book snapshot id does not match book_id")
		}
		in := *snapshot
		in.ID = bookID

		book, err := st.EnsureBook(ctx, normalize.Book(in))
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "reconcile book")
		}
		return book, nil
	}

	book, err := st.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "get book")
	}
	return book, nil
}
