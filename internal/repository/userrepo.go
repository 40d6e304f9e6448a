// Package repository defines storage interfaces implemented by concrete backends.
//
// Lookups that match no row fail with errs.ErrNotFound; updates and deletes
// that affect no row fail with errs.ErrNoRowsAffected, which also matches
// errs.ErrNotFound. Bulk deletes report the affected count and never fail on zero.
package repository

import (
	"context"

	"github.com/grantlemons/expenser/internal/model"
)

// UserRepository provides CRUD access for users.
type UserRepository interface {
	// Insert persists a new user and returns it with its generated ID.
	Insert(ctx context.Context, u model.NewUser) (model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// Update overwrites every mutable column of the user.
	Update(ctx context.Context, id int64, u model.NewUser) (model.User, error)
	// Replace is Update spelled for callers holding an edited submission.
	Replace(ctx context.Context, id int64, u model.NewUser) (model.User, error)
	// UpdateProfilePicture sets or clears (nil) the profile picture.
	UpdateProfilePicture(ctx context.Context, id int64, pic []byte) (model.User, error)
	// GetProfilePicture returns the raw picture, nil if the user has none.
	GetProfilePicture(ctx context.Context, id int64) ([]byte, error)
	// UpdatePassword stores a new opaque password hash.
	UpdatePassword(ctx context.Context, id int64, hash string) (model.User, error)
	// Delete removes the user and returns the removed row.
	Delete(ctx context.Context, id int64) (model.User, error)
	// Clear removes every user.
	Clear(ctx context.Context) (int64, error)
}
