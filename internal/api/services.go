package api

import (
	"github.com/booklendapp/booklend-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Loan     *service.LoanService
	Wishlist *service.WishlistService
	View     *service.ViewService
}
