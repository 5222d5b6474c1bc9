package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// User Operations

// CreateUser stores a new user and a lowercase email index entry in one
// transaction. A second account with the same email fails with
// ErrUserEmailExists.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(user.Email))
	user.Email = email
	emailKey := []byte(userByEmailPrefix + email)
	userKey := []byte(userPrefix + user.ID)

	err := s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrUserEmailExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		user.InitTimestamps()
		if err := txnSet(txn, userKey, user); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
	if err != nil {
		if errors.Is(err, ErrUserEmailExists) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "user created",
			slog.String("user_id", user.ID),
		)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	if err := s.get([]byte(userPrefix+id), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail resolves the email index and loads the user.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userByEmailPrefix + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser overwrites an existing user record. The email is immutable
// here; CreateUser owns the email index.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	userKey := []byte(userPrefix + user.ID)
	err := s.update(ctx, func(txn *badger.Txn) error {
		var existing domain.User
		err := txnGet(txn, userKey, &existing)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		user.Email = existing.Email
		user.CreatedAt = existing.CreatedAt
		user.Touch()
		return txnSet(txn, userKey, user)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
