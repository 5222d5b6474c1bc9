package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/service"
	"github.com/booklendapp/booklend-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "syncBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/sync",
		Summary:     "Sync book",
		Description: "Reconciles a book snapshot into the catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSyncBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated list of catalog records",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPopularBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/popular",
		Summary:     "List popular books",
		Description: "Returns books ordered by popularity score",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPopularBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordBookView",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/views",
		Summary:     "Record book view",
		Description: "Registers that the authenticated user opened the book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordBookView)
}

// === DTOs ===

type SyncBookInput struct {
	Authorization string `header:"Authorization"`
	Body          normalize.BookInput
}

type BookOutput struct {
	Body *domain.Book
}

type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Page size (default 100, max 1000)"`
	Cursor        string `query:"cursor" doc:"Opaque pagination cursor"`
}

type ListBooksResponse struct {
	Books      []*domain.Book `json:"books" doc:"Catalog records"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

type ListBooksOutput struct {
	Body ListBooksResponse
}

type ListPopularBooksInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Maximum results (default 20)"`
	Category      string `query:"category" doc:"Optional category filter"`
}

type PopularBooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Books ordered by popularity"`
}

type PopularBooksOutput struct {
	Body PopularBooksResponse
}

type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

type RecordBookViewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

type RecordViewResponse struct {
	Counted bool `json:"counted" doc:"Whether this view incremented the stats"`
}

type RecordViewOutput struct {
	Body RecordViewResponse
}

// === Handlers ===

func (s *Server) handleSyncBook(ctx context.Context, input *SyncBookInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.SyncBook(ctx, &service.SyncBookRequest{BookInput: input.Body})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.ListBooks(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: ListBooksResponse{
		Books:      result.Items,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	}}, nil
}

func (s *Server) handleListPopularBooks(ctx context.Context, input *ListPopularBooksInput) (*PopularBooksOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.ListPopularBooks(ctx, input.Limit, input.Category)
	if err != nil {
		return nil, err
	}
	return &PopularBooksOutput{Body: PopularBooksResponse{Books: books}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleRecordBookView(ctx context.Context, input *RecordBookViewInput) (*RecordViewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	counted, err := s.services.View.Record(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	return &RecordViewOutput{Body: RecordViewResponse{Counted: counted}}, nil
}
