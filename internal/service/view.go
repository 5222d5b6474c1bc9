package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/store"
)

// ViewService records catalog views for popularity tracking.
type ViewService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewViewService creates a new view service.
func NewViewService(store *store.Store, logger *slog.Logger) *ViewService {
	return &ViewService{
		store:  store,
		logger: logger,
	}
}

// Record notes that the user opened the book. Only the first view from a
// user counts toward the popularity stats; repeats are acknowledged without
// error. Views of unknown books are accepted silently.
func (s *ViewService) Record(ctx context.Context, bookID, userID string) (bool, error) {
	if bookID == "" {
		return false, domainerrors.Validation("book id is required")
	}
	if userID == "" {
		return false, domainerrors.Validation("user id is required")
	}

	counted, err := s.store.RecordView(ctx, bookID, userID)
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "record view")
	}
	return counted, nil
}
