package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// Loan Operations

// CreateLoanParams carries everything the borrow transaction needs. The loan
// ID is generated by the caller so a conflict retry reuses the same identity.
type CreateLoanParams struct {
	LoanID    string
	UserID    string
	Book      *domain.Book
	User      *domain.User
	MaxActive int
	Period    time.Duration
}

// CreateLoan executes the full borrow operation in one transaction: it checks
// stock and the member's active-loan count, creates the loan record with
// frozen book and user snapshots, decrements availability, and bumps the loan
// counter on the book. Any check failing aborts the whole transaction.
func (s *Store) CreateLoan(ctx context.Context, params CreateLoanParams) (*domain.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.MaxActive <= 0 {
		params.MaxActive = domain.DefaultMaxActiveLoans
	}
	if params.Period <= 0 {
		params.Period = domain.DefaultLoanPeriod
	}

	bookKey := []byte(bookPrefix + params.Book.ID)
	var loan domain.Loan

	err := s.update(ctx, func(txn *badger.Txn) error {
		var book domain.Book
		err := txnGet(txn, bookKey, &book)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		if book.Stock.Available <= 0 {
			return ErrOutOfStock
		}

		// Badger tracks conflicts only on keys a transaction has read, and
		// iterator reads are not tracked, so two borrows of different books
		// by the same user would otherwise share no key and both commit past
		// the limit. Reading the counter here and rewriting it below forces
		// concurrent same-user borrows to conflict, retry, and re-count.
		if _, err := readLoanCount(txn, params.UserID); err != nil {
			return err
		}

		active, err := countActiveLoans(txn, params.UserID)
		if err != nil {
			return err
		}
		if active >= params.MaxActive {
			return ErrLoanLimitReached
		}

		now := time.Now().UTC()
		loan = domain.Loan{
			UserID:  params.UserID,
			BookID:  book.ID,
			Status:  domain.LoanStatusActive,
			DueDate: now.Add(params.Period),
			Book:    book.Snapshot(),
			User:    params.User.Snapshot(),
		}
		loan.ID = params.LoanID
		loan.InitTimestamps()

		book.Stock.Available--
		book.Stock.ClampAvailable()
		book.Stats.Loans++
		book.RecalculatePopularity()
		book.Touch()

		if err := writeLoanCount(txn, params.UserID, active+1); err != nil {
			return err
		}
		if err := txnSet(txn, bookKey, &book); err != nil {
			return err
		}
		return txnSet(txn, loanKey(params.UserID, loan.ID), &loan)
	})
	if err != nil {
		if isLoanSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create loan: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "loan created",
			slog.String("loan_id", loan.ID),
			slog.String("user_id", loan.UserID),
			slog.String("book_id", loan.BookID),
		)
	}
	return &loan, nil
}

// GetLoan retrieves a single loan belonging to a user.
func (s *Store) GetLoan(ctx context.Context, userID, loanID string) (*domain.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var loan domain.Loan
	if err := s.get(loanKey(userID, loanID), &loan); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return &loan, nil
}

// ReturnLoan closes an active loan and restores one unit of availability,
// all in one transaction. Returning an already-returned loan fails with
// ErrLoanNotActive rather than silently double-crediting stock.
func (s *Store) ReturnLoan(ctx context.Context, userID, loanID string) (*domain.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var loan domain.Loan

	err := s.update(ctx, func(txn *badger.Txn) error {
		err := txnGet(txn, loanKey(userID, loanID), &loan)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrLoanNotFound
		}
		if err != nil {
			return err
		}
		if !loan.IsActive() {
			return ErrLoanNotActive
		}

		loan.MarkReturned(time.Now().UTC())

		// Touch the counter so a concurrent borrow conflicts, retries, and
		// observes the freed slot.
		n, err := readLoanCount(txn, userID)
		if err != nil {
			return err
		}
		if err := writeLoanCount(txn, userID, n-1); err != nil {
			return err
		}

		bookKey := []byte(bookPrefix + loan.BookID)
		var book domain.Book
		err = txnGet(txn, bookKey, &book)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// Book record gone; still close the loan.
		case err != nil:
			return err
		default:
			book.Stock.Available++
			book.Stock.ClampAvailable()
			book.Touch()
			if err := txnSet(txn, bookKey, &book); err != nil {
				return err
			}
		}

		return txnSet(txn, loanKey(userID, loanID), &loan)
	})
	if err != nil {
		if isLoanSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("return loan: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "loan returned",
			slog.String("loan_id", loan.ID),
			slog.String("user_id", loan.UserID),
			slog.String("book_id", loan.BookID),
		)
	}
	return &loan, nil
}

// ListUserLoans returns a user's loans, newest first. Status filters to
// "active", "returned", or "overdue" (active past due); empty returns all.
func (s *Store) ListUserLoans(ctx context.Context, userID, status string) ([]*domain.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var loans []*domain.Loan

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = loanScanPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			var loan domain.Loan
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &loan)
			}); err != nil {
				return err
			}

			switch status {
			case "":
			case "active":
				if !loan.IsActive() {
					continue
				}
			case "returned":
				if loan.Status != domain.LoanStatusReturned {
					continue
				}
			case "overdue":
				if !loan.IsOverdue(now) {
					continue
				}
			default:
				return fmt.Errorf("unknown loan status filter %q", status)
			}
			loans = append(loans, &loan)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user loans: %w", err)
	}

	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})
	return loans, nil
}

// HasActiveLoan reports whether the user currently holds an active loan for
// the book.
func (s *Store) HasActiveLoan(ctx context.Context, userID, bookID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = loanScanPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			var loan domain.Loan
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &loan)
			}); err != nil {
				return err
			}
			if loan.BookID == bookID && loan.IsActive() {
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("has active loan: %w", err)
	}
	return found, nil
}

// readLoanCount reads the per-user active-loan counter, registering the key
// in the transaction's read set. A missing counter reads as zero.
func readLoanCount(txn *badger.Txn, userID string) (int, error) {
	var n int
	err := txnGet(txn, loanCountKey(userID), &n)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// writeLoanCount stores the per-user active-loan counter, clamped at zero.
// The loan iterator stays the source of truth for the limit check; the
// counter is the contention point that serializes same-user transactions.
func writeLoanCount(txn *badger.Txn, userID string, n int) error {
	if n < 0 {
		n = 0
	}
	return txnSet(txn, loanCountKey(userID), n)
}

// countActiveLoans counts the user's active loans inside the transaction.
// Iterator reads do not register for conflict detection, so callers must
// also read the user's loan counter in the same transaction.
func countActiveLoans(txn *badger.Txn, userID string) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = loanScanPrefix(userID)
	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
		var loan domain.Loan
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &loan)
		}); err != nil {
			return 0, err
		}
		if loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func isLoanSentinel(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrLoanLimitReached) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrLoanNotActive)
}
