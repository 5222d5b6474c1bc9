package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/id"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// LoanPolicy is the effective lending policy, resolved from config with
// domain defaults as fallback.
type LoanPolicy struct {
	MaxActive int
	Period    time.Duration
}

// LoanService orchestrates borrowing and returning.
type LoanService struct {
	store     *store.Store
	policy    LoanPolicy
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLoanService creates a new loan service.
func NewLoanService(store *store.Store, policy LoanPolicy, validator *validation.Validator, logger *slog.Logger) *LoanService {
	if policy.MaxActive <= 0 {
		policy.MaxActive = domain.DefaultMaxActiveLoans
	}
	if policy.Period <= 0 {
		policy.Period = domain.DefaultLoanPeriod
	}
	return &LoanService{
		store:     store,
		policy:    policy,
		validator: validator,
		logger:    logger,
	}
}

// BorrowRequest asks for a copy of a book on behalf of a user. Book is an
// optional snapshot from the caller; when present it is reconciled into the
// catalog before the loan transaction, so borrowing never depends on the
// book having been synced separately.
type BorrowRequest struct {
	UserID string               `json:"user_id" validate:"required"`
	BookID string               `json:"book_id" validate:"required"`
	Book   *normalize.BookInput `json:"book,omitempty"`
}

// Borrow checks stock and the user's loan allowance, then creates an active
// loan. principalID is the authenticated caller; borrowing on someone else's
// behalf is forbidden.
func (s *LoanService) Borrow(ctx context.Context, principalID string, req *BorrowRequest) (*domain.Loan, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if principalID != req.UserID {
		return nil, domainerrors.Forbidden("cannot borrow on behalf of another user")
	}

	user, err := lookupUser(ctx, s.store, req.UserID)
	if err != nil {
		return nil, err
	}

	book, err := resolveBook(ctx, s.store, req.BookID, req.Book)
	if err != nil {
		return nil, err
	}

	// Generated outside the transaction so a conflict retry reuses the same id.
	loanID, err := id.Generate("loan")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate loan id")
	}

	loan, err := s.store.CreateLoan(ctx, store.CreateLoanParams{
		LoanID:    loanID,
		UserID:    user.ID,
		Book:      book,
		User:      user,
		MaxActive: s.policy.MaxActive,
		Period:    s.policy.Period,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOutOfStock):
			return nil, domainerrors.FailedPrecondition("no copies available")
		case errors.Is(err, store.ErrLoanLimitReached):
			return nil, domainerrors.FailedPrecondition("active loan limit reached")
		case errors.Is(err, store.ErrBookNotFound):
			return nil, domainerrors.FailedPrecondition("book record is not available")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create loan")
	}

	s.logger.Info("book borrowed",
		"user_id", user.ID,
		"book_id", book.ID,
		"loan_id", loan.ID,
		"due_date", loan.DueDate,
	)
	return loan, nil
}

// Return closes an active loan and restores availability.
func (s *LoanService) Return(ctx context.Context, principalID, userID, loanID string) (*domain.Loan, error) {
	if principalID != userID {
		return nil, domainerrors.Forbidden("cannot return another user's loan")
	}

	loan, err := s.store.ReturnLoan(ctx, userID, loanID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrLoanNotFound):
			return nil, domainerrors.NotFoundf("loan %s not found", loanID)
		case errors.Is(err, store.ErrLoanNotActive):
			return nil, domainerrors.FailedPrecondition("loan is already returned")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "return loan")
	}

	s.logger.Info("book returned",
		"user_id", userID,
		"loan_id", loanID,
		"book_id", loan.BookID,
	)
	return loan, nil
}

// List returns a user's loans, optionally filtered by status
// ("active", "returned", or "overdue").
func (s *LoanService) List(ctx context.Context, principalID, userID, status string) ([]*domain.Loan, error) {
	if principalID != userID {
		return nil, domainerrors.Forbidden("cannot list another user's loans")
	}

	switch status {
	case "", "active", "returned", "overdue":
	default:
		return nil, domainerrors.Validationf("invalid status filter %q", status)
	}

	loans, err := s.store.ListUserLoans(ctx, userID, status)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "list loans")
	}
	return loans, nil
}

// HasActive reports whether the user currently holds an active loan for the
// book.
func (s *LoanService) HasActive(ctx context.Context, principalID, userID, bookID string) (bool, error) {
	if principalID != userID {
		return false, domainerrors.Forbidden("cannot read another user's loans")
	}

	has, err := s.store.HasActiveLoan(ctx, userID, bookID)
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "loan lookup")
	}
	return has, nil
}
