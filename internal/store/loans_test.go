package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
)

func createLoan(t *testing.T, s *Store, user *domain.User, book *domain.Book, loanID string) *domain.Loan {
	t.Helper()
	loan, err := s.CreateLoan(context.Background(), CreateLoanParams{
		LoanID:    loanID,
		UserID:    user.ID,
		Book:      book,
		User:      user,
		MaxActive: domain.DefaultMaxActiveLoans,
		Period:    domain.DefaultLoanPeriod,
	})
	require.NoError(t, err)
	return loan
}

func TestCreateLoan_BorrowFlow(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 2))
	require.NoError(t, err)

	before := time.Now()
	loan := createLoan(t, s, user, book, "loan-1")

	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.Equal(t, "bk-1", loan.BookID)
	assert.Equal(t, "Book bk-1", loan.Book.Title)
	assert.Equal(t, "User u1", loan.User.Name)
	assert.WithinDuration(t, before.Add(domain.DefaultLoanPeriod), loan.DueDate, 5*time.Second)

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock.Available)
	assert.Equal(t, 1, got.Stats.Loans)
	assert.Equal(t, 10, got.PopularityScore)
}

func TestCreateLoan_OutOfStock(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u1, u2 := testUser("u1"), testUser("u2")
	require.NoError(t, s.CreateUser(ctx, u1))
	require.NoError(t, s.CreateUser(ctx, u2))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	createLoan(t, s, u1, book, "loan-1")

	_, err = s.CreateLoan(ctx, CreateLoanParams{
		LoanID: "loan-2", UserID: u2.ID, Book: book, User: u2,
	})
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestCreateLoan_LimitReached(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))

	for i := 0; i < domain.DefaultMaxActiveLoans; i++ {
		book, err := s.EnsureBook(ctx, testBook(fmt.Sprintf("bk-%d", i), 1))
		require.NoError(t, err)
		createLoan(t, s, user, book, fmt.Sprintf("loan-%d", i))
	}

	extra, err := s.EnsureBook(ctx, testBook("bk-extra", 1))
	require.NoError(t, err)
	_, err = s.CreateLoan(ctx, CreateLoanParams{
		LoanID: "loan-extra", UserID: user.ID, Book: extra, User: user,
	})
	assert.ErrorIs(t, err, ErrLoanLimitReached)

	// Returning one frees a slot.
	_, err = s.ReturnLoan(ctx, user.ID, "loan-0")
	require.NoError(t, err)
	createLoan(t, s, user, extra, "loan-extra")
}

func TestCreateLoan_MissingBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	user := testUser("u1")
	ghost := testBook("ghost", 1)
	_, err := s.CreateLoan(context.Background(), CreateLoanParams{
		LoanID: "loan-1", UserID: user.ID, Book: ghost, User: user,
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestReturnLoan_RestoresStock(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 2))
	require.NoError(t, err)

	createLoan(t, s, user, book, "loan-1")

	returned, err := s.ReturnLoan(ctx, user.ID, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock.Available)
	assert.Equal(t, 1, got.Stats.Loans, "loan counter is historical, not decremented on return")
}

func TestReturnLoan_DoubleReturn(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	createLoan(t, s, user, book, "loan-1")
	_, err = s.ReturnLoan(ctx, user.ID, "loan-1")
	require.NoError(t, err)

	_, err = s.ReturnLoan(ctx, user.ID, "loan-1")
	assert.ErrorIs(t, err, ErrLoanNotActive)

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock.Available, "double return must not overcredit stock")
}

func TestReturnLoan_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.ReturnLoan(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestLoanSnapshot_FrozenAfterResync(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	createLoan(t, s, user, book, "loan-1")

	renamed := testBook("bk-1", 1)
	renamed.Title = "New Title"
	_, err = s.EnsureBook(ctx, renamed)
	require.NoError(t, err)

	loan, err := s.GetLoan(ctx, user.ID, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, "Book bk-1", loan.Book.Title)
}

func TestListUserLoans_StatusFilters(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))

	for i := 0; i < 3; i++ {
		book, err := s.EnsureBook(ctx, testBook(fmt.Sprintf("bk-%d", i), 1))
		require.NoError(t, err)
		createLoan(t, s, user, book, fmt.Sprintf("loan-%d", i))
	}
	_, err := s.ReturnLoan(ctx, user.ID, "loan-1")
	require.NoError(t, err)

	all, err := s.ListUserLoans(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := s.ListUserLoans(ctx, user.ID, "active")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	returned, err := s.ListUserLoans(ctx, user.ID, "returned")
	require.NoError(t, err)
	assert.Len(t, returned, 1)

	overdue, err := s.ListUserLoans(ctx, user.ID, "overdue")
	require.NoError(t, err)
	assert.Empty(t, overdue)

	_, err = s.ListUserLoans(ctx, user.ID, "bogus")
	assert.Error(t, err)
}

func TestHasActiveLoan(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))
	book, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	has, err := s.HasActiveLoan(ctx, user.ID, "bk-1")
	require.NoError(t, err)
	assert.False(t, has)

	createLoan(t, s, user, book, "loan-1")

	has, err = s.HasActiveLoan(ctx, user.ID, "bk-1")
	require.NoError(t, err)
	assert.True(t, has)

	_, err = s.ReturnLoan(ctx, user.ID, "loan-1")
	require.NoError(t, err)

	has, err = s.HasActiveLoan(ctx, user.ID, "bk-1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCreateLoan_ConcurrentLastCopy(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	book, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	const borrowers = 8
	var wg sync.WaitGroup
	errs := make([]error, borrowers)

	for i := 0; i < borrowers; i++ {
		user := testUser(fmt.Sprintf("u%d", i))
		require.NoError(t, s.CreateUser(ctx, user))

		wg.Add(1)
		go func(i int, user *domain.User) {
			defer wg.Done()
			_, errs[i] = s.CreateLoan(ctx, CreateLoanParams{
				LoanID: fmt.Sprintf("loan-%d", i),
				UserID: user.ID,
				Book:   book,
				User:   user,
			})
		}(i, user)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrOutOfStock)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one borrower gets the last copy")

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock.Available)
	assert.Equal(t, 1, got.Stats.Loans)
}

func TestCreateLoan_ConcurrentLimit(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := testUser("u1")
	require.NoError(t, s.CreateUser(ctx, user))

	const attempts = 8
	books := make([]*domain.Book, attempts)
	for i := range books {
		b, err := s.EnsureBook(ctx, testBook(fmt.Sprintf("bk-%d", i), 5))
		require.NoError(t, err)
		books[i] = b
	}

	// All borrows start together so every transaction observes the same
	// initial count of zero.
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = s.CreateLoan(ctx, CreateLoanParams{
				LoanID: fmt.Sprintf("loan-%d", i),
				UserID: user.ID,
				Book:   books[i],
				User:   user,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrLoanLimitReached)
		}
	}
	assert.Equal(t, domain.DefaultMaxActiveLoans, succeeded)

	active, err := s.ListUserLoans(ctx, user.ID, "active")
	require.NoError(t, err)
	assert.Len(t, active, domain.DefaultMaxActiveLoans)
}
