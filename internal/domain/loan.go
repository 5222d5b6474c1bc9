package domain

import "time"

// Lending policy defaults. Services read the effective values from config,
// which falls back to these.
const (
	DefaultMaxActiveLoans = 3
	DefaultLoanPeriod     = 14 * 24 * time.Hour
)

// LoanStatus is the persisted state of a loan.
// Overdue is a derived display state, never stored.
type LoanStatus string

const (
	// LoanStatusActive means the copy is out with the user.
	LoanStatusActive LoanStatus = "active"
	// LoanStatusReturned is terminal. A loan transitions active -> returned
	// exactly once and is never deleted.
	LoanStatusReturned LoanStatus = "returned"
)

// Loan records one borrow event. Stored under the borrowing user's namespace.
type Loan struct {
	Syncable
	UserID     string       `json:"user_id"`
	BookID     string       `json:"book_id"`
	Status     LoanStatus   `json:"status"`
	DueDate    time.Time    `json:"due_date"`
	ReturnedAt *time.Time   `json:"returned_at,omitempty"`
	Book       BookSnapshot `json:"book"`
	User       UserSnapshot `json:"user"`
}

// IsActive reports whether the loan is still out.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// IsOverdue reports whether an active loan is past its due date at the given
// instant. Returned loans are never overdue.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && now.After(l.DueDate)
}

// MarkReturned transitions the loan to its terminal state.
func (l *Loan) MarkReturned(now time.Time) {
	l.Status = LoanStatusReturned
	l.ReturnedAt = &now
	l.UpdatedAt = now
}
