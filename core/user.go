package core

import (
	"context"
	"time"
)

type (
	// User is a registered display name bound to a long-lived opaque token.
	// Users are never mutated or deleted once created.
	User struct {
		Name      string    `json:"name"`
		Token     string    `json:"-"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// UserStore persists users. Name uniqueness must be enforced atomically by the
	// backend: a concurrent duplicate CreateUser fails with ErrConflict.
	UserStore interface {
		CreateUser(ctx context.Context, user *User) error

		// FindUserByToken returns ErrNotFound when no user holds the token.
		FindUserByToken(ctx context.Context, token string) (*User, error)
	}
)
