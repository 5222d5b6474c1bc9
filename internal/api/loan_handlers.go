package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerLoanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "borrowBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/loans",
		Summary:     "Borrow book",
		Description: "Creates an active loan for a copy of a book",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBorrowBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/loans",
		Summary:     "List loans",
		Description: "Returns the user's loans, newest first",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLoans)

	huma.Register(s.api, huma.Operation{
		OperationID: "hasActiveLoan",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/loans/active/{bookID}",
		Summary:     "Check active loan",
		Description: "Reports whether the user currently holds an active loan for the book",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleHasActiveLoan)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/loans/{loanID}/return",
		Summary:     "Return book",
		Description: "Closes an active loan and restores availability",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReturnBook)
}

// === DTOs ===

type BorrowBookRequest struct {
	BookID string               `json:"book_id" validate:"required" doc:"Book to borrow"`
	Book   *normalize.BookInput `json:"book,omitempty" doc:"Optional snapshot reconciled before the loan"`
}

type BorrowBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Borrowing user ID"`
	Body          BorrowBookRequest
}

type LoanOutput struct {
	Body *domain.Loan
}

type ListLoansInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	Status        string `query:"status" enum:"active,returned,overdue" doc:"Optional status filter"`
}

type ListLoansResponse struct {
	Loans []*domain.Loan `json:"loans" doc:"Loans, newest first"`
}

type ListLoansOutput struct {
	Body ListLoansResponse
}

type HasActiveLoanInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

type HasActiveLoanResponse struct {
	HasActiveLoan bool `json:"has_active_loan" doc:"Whether an active loan for the book exists"`
}

type HasActiveLoanOutput struct {
	Body HasActiveLoanResponse
}

type ReturnBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	LoanID        string `path:"loanID" doc:"Loan ID"`
}

// === Handlers ===

func (s *Server) handleBorrowBook(ctx context.Context, input *BorrowBookInput) (*LoanOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Loan.Borrow(ctx, principalID, &service.BorrowRequest{
		UserID: input.UserID,
		BookID: input.Body.BookID,
		Book:   input.Body.Book,
	})
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}

func (s *Server) handleListLoans(ctx context.Context, input *ListLoansInput) (*ListLoansOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	loans, err := s.services.Loan.List(ctx, principalID, input.UserID, input.Status)
	if err != nil {
		return nil, err
	}
	return &ListLoansOutput{Body: ListLoansResponse{Loans: loans}}, nil
}

func (s *Server) handleHasActiveLoan(ctx context.Context, input *HasActiveLoanInput) (*HasActiveLoanOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	has, err := s.services.Loan.HasActive(ctx, principalID, input.UserID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &HasActiveLoanOutput{Body: HasActiveLoanResponse{HasActiveLoan: has}}, nil
}

func (s *Server) handleReturnBook(ctx context.Context, input *ReturnBookInput) (*LoanOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Loan.Return(ctx, principalID, input.UserID, input.LoanID)
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}
