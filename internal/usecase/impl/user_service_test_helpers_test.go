package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"userstore/internal/domain/repository"
	mockRepo "userstore/internal/mocks/repository"
	"userstore/internal/usecase"
	"userstore/internal/validator"

	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service   usecase.UserUsecase
	txManager *mockRepo.MockTransactionManager
	factory   *mockRepo.MockRepositoryFactory
	userRepo  *mockRepo.MockUserRepository
}

func createTestUserService(t *testing.T) userServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)

	service := NewUserService(UserServiceParams{
		TxManager: txManager,
		Validator: validator.New(),
		Logger:    newDiscardLogger(),
	})

	return userServiceFixtures{
		service:   service,
		txManager: txManager,
		factory:   mockRepo.NewMockRepositoryFactory(t),
		userRepo:  mockRepo.NewMockUserRepository(t),
	}
}

func (f userServiceFixtures) runInTx(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(f.factory)
}

func (f userServiceFixtures) expectExecute() {
	f.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(f.runInTx)
	f.factory.EXPECT().UserRepo().Return(f.userRepo)
}

func (f userServiceFixtures) expectExecuteReadOnly() {
	f.txManager.EXPECT().
		ExecuteReadOnly(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(f.runInTx)
	f.factory.EXPECT().UserRepo().Return(f.userRepo)
}
