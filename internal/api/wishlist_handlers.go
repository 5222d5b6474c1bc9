package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerWishlistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addWishlistItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/wishlist",
		Summary:     "Add wishlist item",
		Description: "Puts a book on the user's wishlist",
		Tags:        []string{"Wishlist"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddWishlistItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWishlist",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/wishlist",
		Summary:     "List wishlist",
		Description: "Returns the user's wishlist, newest first",
		Tags:        []string{"Wishlist"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListWishlist)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeWishlistItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{userID}/wishlist/{itemID}",
		Summary:     "Remove wishlist item",
		Description: "Removes a book from the user's wishlist",
		Tags:        []string{"Wishlist"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveWishlistItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "wishlistContains",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/wishlist/contains/{bookID}",
		Summary:     "Check wishlist",
		Description: "Reports whether a book is on the user's wishlist",
		Tags:        []string{"Wishlist"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleWishlistContains)
}

// === DTOs ===

type AddWishlistItemRequest struct {
	BookID string               `json:"book_id" validate:"required" doc:"Book to add"`
	Book   *normalize.BookInput `json:"book,omitempty" doc:"Optional snapshot reconciled before the add"`
}

type AddWishlistItemInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	Body          AddWishlistItemRequest
}

type WishlistItemOutput struct {
	Body *domain.WishlistItem
}

type ListWishlistInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
}

type ListWishlistResponse struct {
	Items []*domain.WishlistItem `json:"items" doc:"Wishlist entries, newest first"`
}

type ListWishlistOutput struct {
	Body ListWishlistResponse
}

type RemoveWishlistItemInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	ItemID        string `path:"itemID" doc:"Wishlist item ID"`
	BookID        string `query:"book_id" doc:"Book the item refers to"`
}

type WishlistContainsInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

type WishlistContainsResponse struct {
	InWishlist bool `json:"in_wishlist" doc:"Whether the book is on the wishlist"`
}

type WishlistContainsOutput struct {
	Body WishlistContainsResponse
}

// === Handlers ===

func (s *Server) handleAddWishlistItem(ctx context.Context, input *AddWishlistItemInput) (*WishlistItemOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Wishlist.Add(ctx, principalID, &service.AddRequest{
		UserID: input.UserID,
		BookID: input.Body.BookID,
		Book:   input.Body.Book,
	})
	if err != nil {
		return nil, err
	}
	return &WishlistItemOutput{Body: item}, nil
}

func (s *Server) handleListWishlist(ctx context.Context, input *ListWishlistInput) (*ListWishlistOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Wishlist.List(ctx, principalID, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ListWishlistOutput{Body: ListWishlistResponse{Items: items}}, nil
}

func (s *Server) handleRemoveWishlistItem(ctx context.Context, input *RemoveWishlistItemInput) (*struct{}, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Wishlist.Remove(ctx, principalID, input.UserID, input.ItemID, input.BookID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleWishlistContains(ctx context.Context, input *WishlistContainsInput) (*WishlistContainsOutput, error) {
	principalID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	in, err := s.services.Wishlist.Contains(ctx, principalID, input.UserID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &WishlistContainsOutput{Body: WishlistContainsResponse{InWishlist: in}}, nil
}
