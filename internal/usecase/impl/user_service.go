// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	logs "userstore/internal/infra/log"
	"userstore/internal/usecase"
	"userstore/internal/validator"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	validator *validator.Validator
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Validator *validator.Validator
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		validator: params.Validator,
		logger:    params.Logger,
	}
}

// Save inserts a new user. On failure user.ID is left at zero.
func (srv *userService) Save(ctx context.Context, user *entity.User) error {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	if user.IsPersisted() {
		return domainerrors.NewValidationError(domainerrors.FieldViolation{
			Field:   "id",
			Rule:    "unassigned",
			Message: "must not be set on a new user",
		})
	}
	if err := srv.validator.ValidateUser(user); err != nil {
		logger.Info("Rejected user", slog.String("reason", err.Error()))

		return err
	}

	err := srv.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		return txRepoFactory.UserRepo().Create(ctx, user)
	})
	if err != nil {
		user.ID = 0
		logger.Error("Failed to save user", slog.Any("error", err))

		return errors.Wrap(err, "failed to save user")
	}

	logger.Info("User saved", slog.Uint64("userID", user.ID))

	return nil
}

// Update overwrites the stored user with the same id.
func (srv *userService) Update(ctx context.Context, user *entity.User) error {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	if err := srv.validator.ValidateUser(user); err != nil {
		logger.Info("Rejected user", slog.String("reason", err.Error()))

		return err
	}
	if !user.IsPersisted() {
		return domainerrors.ErrUserNotFound.WrapMessage("user has no id")
	}

	err := srv.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		return txRepoFactory.UserRepo().Update(ctx, user)
	})
	if err != nil {
		return srv.wrapFailure(logger, err, "failed to update user", user.ID)
	}

	logger.Info("User updated", slog.Uint64("userID", user.ID))

	return nil
}

// Delete checks that the user exists before removing it, inside the same transaction.
func (srv *userService) Delete(ctx context.Context, id uint64) error {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	err := srv.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		userRepo := txRepoFactory.UserRepo()

		if _, err := userRepo.FindByID(ctx, id); err != nil {
			return err
		}

		return userRepo.Delete(ctx, id)
	})
	if err != nil {
		return srv.wrapFailure(logger, err, "failed to delete user", id)
	}

	logger.Info("User deleted", slog.Uint64("userID", id))

	return nil
}

// GetByID returns the user with the given id.
func (srv *userService) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	var user *entity.User
	err := srv.txManager.ExecuteReadOnly(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		var err error
		user, err = txRepoFactory.UserRepo().FindByID(ctx, id)

		return err
	})
	if err != nil {
		return nil, srv.wrapFailure(logger, err, "failed to get user", id)
	}

	return user, nil
}

// GetAll returns every stored user.
func (srv *userService) GetAll(ctx context.Context) ([]*entity.User, error) {
	return srv.list(ctx, "failed to get users", func(ctx context.Context, userRepo repository.UserRepository) ([]*entity.User, error) {
		return userRepo.FindAll(ctx)
	})
}

// GetBySex returns the users with the given sex. An unspecified or unknown sex is rejected.
func (srv *userService) GetBySex(ctx context.Context, sex entity.Sex) ([]*entity.User, error) {
	if err := srv.validator.ValidateSex(sex); err != nil {
		return nil, err
	}

	return srv.list(ctx, "failed to get users by sex", func(ctx context.Context, userRepo repository.UserRepository) ([]*entity.User, error) {
		return userRepo.FindBySex(ctx, sex)
	})
}

// GetByNameContains returns the users whose first or last name contains term.
// An empty term matches every user.
func (srv *userService) GetByNameContains(ctx context.Context, term string) ([]*entity.User, error) {
	return srv.list(ctx, "failed to get users by name", func(ctx context.Context, userRepo repository.UserRepository) ([]*entity.User, error) {
		return userRepo.FindByNameContains(ctx, term)
	})
}

// Count returns the number of stored users.
func (srv *userService) Count(ctx context.Context) (int64, error) {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	var count int64
	err := srv.txManager.ExecuteReadOnly(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		var err error
		count, err = txRepoFactory.UserRepo().Count(ctx)

		return err
	})
	if err != nil {
		logger.Error("Failed to count users", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to count users")
	}

	return count, nil
}

func (srv *userService) list(
	ctx context.Context,
	failure string,
	query func(ctx context.Context, userRepo repository.UserRepository) ([]*entity.User, error),
) ([]*entity.User, error) {
	ctx, logger := logs.EnsureOperation(ctx, srv.logger)

	var users []*entity.User
	err := srv.txManager.ExecuteReadOnly(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		var err error
		users, err = query(ctx, txRepoFactory.UserRepo())

		return err
	})
	if err != nil {
		logger.Error(failure, slog.Any("error", err))

		return nil, errors.Wrap(err, failure)
	}

	logger.Debug("Users listed", slog.Int("count", len(users)))

	return users, nil
}

// wrapFailure logs unexpected failures at error level; a missing user is an expected outcome.
func (srv *userService) wrapFailure(logger *slog.Logger, err error, msg string, id uint64) error {
	if domainerrors.IsNotFound(err) {
		logger.Info("User not found", slog.Uint64("userID", id))
	} else {
		logger.Error(msg, slog.Uint64("userID", id), slog.Any("error", err))
	}

	return errors.Wrap(err, msg)
}
