package domain

import "time"

// User represents an authenticated account in the system.
type User struct {
	Syncable
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Name returns the best available display name for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Snapshot returns the denormalized user view embedded in loans and wishlist
// items.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		Name:  u.Name(),
		Email: u.Email,
	}
}

// Session tracks an issued refresh token. Access tokens are stateless; the
// session exists so refresh tokens can be rotated and revoked.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}

// IsExpired reports whether the session's refresh token has expired.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
