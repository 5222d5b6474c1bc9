package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalogMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog metadata",
		Description: "Searches the metadata provider for candidate books",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID: "importBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/{volumeId}/import",
		Summary:     "Import book",
		Description: "Fetches a volume from the metadata provider and adds it to the catalog",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleImportBook)
}

// === DTOs ===

type SearchMetadataInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	StartIndex    int    `query:"start_index" doc:"Result offset"`
	MaxResults    int    `query:"max_results" doc:"Maximum results (default 10, max 40)"`
}

type SearchMetadataResponse struct {
	Results []normalize.BookInput `json:"results" doc:"Candidate books from the provider"`
}

type SearchMetadataOutput struct {
	Body SearchMetadataResponse
}

type ImportBookInput struct {
	Authorization string `header:"Authorization"`
	VolumeID      string `path:"volumeId" doc:"Metadata provider volume ID"`
}

type ImportBookOutput struct {
	Body *domain.Book
}

// === Handlers ===

func (s *Server) handleSearchMetadata(ctx context.Context, input *SearchMetadataInput) (*SearchMetadataOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	results, err := s.services.Catalog.SearchMetadata(ctx, input.Query, input.StartIndex, input.MaxResults)
	if err != nil {
		return nil, err
	}
	return &SearchMetadataOutput{Body: SearchMetadataResponse{Results: results}}, nil
}

func (s *Server) handleImportBook(ctx context.Context, input *ImportBookInput) (*ImportBookOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.ImportBook(ctx, input.VolumeID)
	if err != nil {
		return nil, err
	}
	return &ImportBookOutput{Body: book}, nil
}
