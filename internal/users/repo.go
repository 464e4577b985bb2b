package users

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	// GetOrCreate returns the user for email, inserting it with displayName when absent.
	// An existing user's display name is left untouched.
	GetOrCreate(ctx context.Context, email, displayName string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// NormalizeEmail is the canonical key users are stored under.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
