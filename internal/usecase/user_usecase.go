// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"userstore/internal/domain/entity"
)

// UserUsecase is the public contract of the user store.
// Every method runs in exactly one transaction; the Get* methods use a read-only one.
type UserUsecase interface {
	// Save validates and inserts a user that has no id yet. The generated id is written into user.
	Save(ctx context.Context, user *entity.User) error

	// Update validates user and overwrites every mutable field of the row with user.ID.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the user with the given id.
	Delete(ctx context.Context, id uint64) error

	GetByID(ctx context.Context, id uint64) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
	GetBySex(ctx context.Context, sex entity.Sex) ([]*entity.User, error)

	// GetByNameContains returns the users whose first name or last name contains term.
	GetByNameContains(ctx context.Context, term string) ([]*entity.User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)
}
