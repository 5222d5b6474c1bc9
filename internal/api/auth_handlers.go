package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/color"
	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates a new user account and logs it in",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates a user and issues tokens",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshTokens",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Rotates a refresh token and issues a new token pair",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session behind a refresh token",
		Tags:        []string{"Auth"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"Email address"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	AvatarColor string    `json:"avatar_color" doc:"Stable hex color derived from the user ID"`
	CreatedAt   time.Time `json:"created_at" doc:"Account creation time"`
	LastLoginAt time.Time `json:"last_login_at,omitzero" doc:"Last login time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarColor: color.ForUser(u.ID),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type TokenPairResponse struct {
	AccessToken  string    `json:"access_token" doc:"PASETO access token"`
	RefreshToken string    `json:"refresh_token" doc:"Opaque refresh token"`
	ExpiresAt    time.Time `json:"expires_at" doc:"Access token expiry"`
}

type AuthResponse struct {
	User   UserResponse      `json:"user" doc:"Account profile"`
	Tokens TokenPairResponse `json:"tokens" doc:"Issued token pair"`
}

type RegisterInput struct {
	Body service.RegisterRequest
}

type LoginInput struct {
	Body service.LoginRequest
}

type AuthOutput struct {
	Body AuthResponse
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
}

type RefreshInput struct {
	Body RefreshRequest
}

type TokenPairOutput struct {
	Body TokenPairResponse
}

type LogoutInput struct {
	Body RefreshRequest
}

type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

type UserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	user, pair, err := s.services.Auth.Register(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: authResponse(user, pair)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	user, pair, err := s.services.Auth.Login(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: authResponse(user, pair)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*TokenPairOutput, error) {
	pair, err := s.services.Auth.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPairOutput{Body: tokenPairResponse(pair)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*struct{}, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func authResponse(user *domain.User, pair *service.TokenPair) AuthResponse {
	return AuthResponse{
		User:   toUserResponse(user),
		Tokens: tokenPairResponse(pair),
	}
}

func tokenPairResponse(pair *service.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
}
