package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"

	"github.com/booklendapp/booklend-server/internal/auth"
	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/id"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// AuthService handles registration, login, and session management.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, *TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "hash password")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate user id")
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
	}
	user.ID = userID

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserEmailExists) {
			return nil, nil, domainerrors.AlreadyExists("an account with this email already exists")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create user")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*domain.User, *TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same error as a bad password so probes can't enumerate accounts.
			return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "get user")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "verify password")
	}
	if !ok {
		return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now().UTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates a refresh token and issues a new token pair.
// The old refresh token is invalidated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, domainerrors.Unauthorized("refresh token is required")
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "get session")
	}

	if session.IsExpired(time.Now()) {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, domainerrors.TokenExpired("refresh token has expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, domainerrors.Unauthorized("session user no longer exists")
	}

	// Rotation: the old session dies with the old token.
	if err := s.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "rotate session")
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the session behind a refresh token. Unknown tokens are not
// an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "get session")
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "delete session")
	}

	s.logger.Info("user logged out", "user_id", session.UserID)
	return nil
}

// VerifyAccessToken validates a PASETO access token and returns its claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token")
	}
	return claims, nil
}

// GetUser loads a user profile.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return lookupUser(ctx, s.store, userID)
}

// CleanupExpiredSessions removes sessions past their refresh expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredSessions(ctx)
}

// issueTokens creates an access/refresh pair and persists the session.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate access token")
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate refresh token")
	}

	sessionID := "sess_" + uuid.NewString()

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastUsedAt:       now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}
