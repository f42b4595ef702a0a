// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
)

// ErrUserNotFound is returned when no row matches the requested id.
var ErrUserNotFound = domainerrors.ErrUserNotFound

// UserRepository defines the persistence operations for users.
// Implementations are bound to a single transaction by RepositoryFactory and do no validation.
type UserRepository interface {
	// Create inserts a new user and writes the generated ID back into user.
	Create(ctx context.Context, user *entity.User) error

	// Update overwrites every mutable column of the row with user.ID.
	// Returns ErrUserNotFound when no such row exists.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the row with the given id.
	// Returns ErrUserNotFound when no such row exists.
	Delete(ctx context.Context, id uint64) error

	// FindByID retrieves a single user by id.
	FindByID(ctx context.Context, id uint64) (*entity.User, error)

	// FindAll retrieves every user.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// FindBySex retrieves the users whose sex equals the given value.
	FindBySex(ctx context.Context, sex entity.Sex) ([]*entity.User, error)

	// FindByNameContains retrieves the users whose first name or last name contains term.
	FindByNameContains(ctx context.Context, term string) ([]*entity.User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)
}
