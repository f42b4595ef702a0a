package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"

	"github.com/pkg/errors"
)

// Column widths of the users table.
const (
	nameColumnWidth = 50
	sexColumnWidth  = 6
)

// userRepository implements the domain.UserRepository interface over a transaction's state.
type userRepository struct {
	state    *state
	readOnly bool
}

// Create stores a copy of user under the next id, or under user.ID when the caller set one.
func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	if err := repo.checkWritable(user); err != nil {
		return err
	}

	if user.ID != 0 {
		if _, exists := repo.state.users[user.ID]; exists {
			return domainerrors.NewStoreErrorOf(domainerrors.ErrUserAlreadyExists, nil, "duplicate user id")
		}
	} else {
		user.ID = repo.state.lastID + 1
	}
	repo.state.lastID = max(repo.state.lastID, user.ID)

	user.BirthDate = entity.DateOnly(user.BirthDate)
	repo.state.users[user.ID] = user.Clone()

	return nil
}

// Update replaces every mutable field of the stored user.
func (repo *userRepository) Update(_ context.Context, user *entity.User) error {
	if err := repo.checkWritable(user); err != nil {
		return err
	}
	if _, exists := repo.state.users[user.ID]; !exists {
		return repository.ErrUserNotFound
	}

	user.BirthDate = entity.DateOnly(user.BirthDate)
	repo.state.users[user.ID] = user.Clone()

	return nil
}

// Delete removes the user with the given id.
func (repo *userRepository) Delete(_ context.Context, id uint64) error {
	if repo.readOnly {
		return errors.WithStack(domainerrors.ErrReadOnlyTransaction)
	}
	if _, exists := repo.state.users[id]; !exists {
		return repository.ErrUserNotFound
	}
	delete(repo.state.users, id)

	return nil
}

// FindByID retrieves a single user by id.
func (repo *userRepository) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	user, exists := repo.state.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}

	return user.Clone(), nil
}

// FindAll retrieves every user ordered by id.
func (repo *userRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	return repo.filter(func(*entity.User) bool { return true }), nil
}

// FindBySex retrieves the users stored with the given sex.
func (repo *userRepository) FindBySex(_ context.Context, sex entity.Sex) ([]*entity.User, error) {
	return repo.filter(func(u *entity.User) bool { return u.Sex == sex }), nil
}

// FindByNameContains matches term as a case-sensitive substring of first or last name.
func (repo *userRepository) FindByNameContains(_ context.Context, term string) ([]*entity.User, error) {
	return repo.filter(func(u *entity.User) bool {
		return strings.Contains(u.FirstName, term) || strings.Contains(u.LastName, term)
	}), nil
}

// Count returns the number of stored users.
func (repo *userRepository) Count(_ context.Context) (int64, error) {
	return int64(len(repo.state.users)), nil
}

func (repo *userRepository) filter(keep func(*entity.User) bool) []*entity.User {
	users := make([]*entity.User, 0, len(repo.state.users))
	for _, id := range slices.Sorted(maps.Keys(repo.state.users)) {
		if user := repo.state.users[id]; keep(user) {
			users = append(users, user.Clone())
		}
	}

	return users
}

// checkWritable rejects writes a relational store would refuse at the column level.
func (repo *userRepository) checkWritable(user *entity.User) error {
	if repo.readOnly {
		return errors.WithStack(domainerrors.ErrReadOnlyTransaction)
	}
	if user == nil {
		return errors.New("user is nil")
	}

	if utf8.RuneCountInString(user.FirstName) > nameColumnWidth ||
		utf8.RuneCountInString(user.LastName) > nameColumnWidth ||
		len(user.Sex) > sexColumnWidth {
		return domainerrors.NewStoreErrorOf(domainerrors.ErrConstraintViolated, nil, "value too long for column")
	}

	return nil
}
