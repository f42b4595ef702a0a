package impl

import (
	"context"
	"testing"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	logs "userstore/internal/infra/log"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAna() *entity.User {
	return entity.NewUser("Ana", "Silva", date(1992, 5, 10), entity.SexFemale)
}

func TestUserService_Save_Success(t *testing.T) {
	fx := createTestUserService(t)
	fx.expectExecute()

	fx.userRepo.EXPECT().
		Create(mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			user.ID = 5
		}).
		Return(nil)

	user := newAna()
	err := fx.service.Save(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, uint64(5), user.ID)
}

func TestUserService_Save_ValidationFailsBeforeTransaction(t *testing.T) {
	fx := createTestUserService(t)

	user := newAna()
	user.FirstName = "Al"
	err := fx.service.Save(context.Background(), user)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"firstName"}, verr.Fields())
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestUserService_Save_RejectsAssignedID(t *testing.T) {
	fx := createTestUserService(t)

	user := newAna()
	user.ID = 9
	err := fx.service.Save(context.Background(), user)

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Equal(t, uint64(9), user.ID)
}

func TestUserService_Save_NilUser(t *testing.T) {
	fx := createTestUserService(t)

	err := fx.service.Save(context.Background(), nil)

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserService_Save_StoreErrorResetsID(t *testing.T) {
	fx := createTestUserService(t)
	fx.expectExecute()

	storeErr := domainerrors.NewStoreErrorOf(domainerrors.ErrUserAlreadyExists, errors.New("duplicate"), "failed to create user")
	fx.userRepo.EXPECT().
		Create(mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			user.ID = 5
		}).
		Return(storeErr)

	user := newAna()
	err := fx.service.Save(context.Background(), user)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	assert.True(t, domainerrors.IsStoreError(err))
	assert.Zero(t, user.ID)
}

func TestUserService_Save_PropagatesRequestID(t *testing.T) {
	fx := createTestUserService(t)
	fx.expectExecute()

	hasRequestID := mock.MatchedBy(func(ctx context.Context) bool {
		return logs.RequestIDFromContext(ctx) == "req-1"
	})
	fx.userRepo.EXPECT().Create(hasRequestID, mock.AnythingOfType("*entity.User")).Return(nil)

	ctx := logs.WithRequestID(context.Background(), "req-1")

	require.NoError(t, fx.service.Save(ctx, newAna()))
}

func TestUserService_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecute()

		user := newAna()
		user.ID = 3
		fx.userRepo.EXPECT().Update(mock.Anything, user).Return(nil)

		require.NoError(t, fx.service.Update(context.Background(), user))
	})

	t.Run("missing row", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecute()

		user := newAna()
		user.ID = 404
		fx.userRepo.EXPECT().Update(mock.Anything, user).Return(repository.ErrUserNotFound)

		err := fx.service.Update(context.Background(), user)

		assert.True(t, domainerrors.IsNotFound(err))
	})

	t.Run("unsaved user", func(t *testing.T) {
		fx := createTestUserService(t)

		err := fx.service.Update(context.Background(), newAna())

		assert.True(t, domainerrors.IsNotFound(err))
	})

	t.Run("invalid user", func(t *testing.T) {
		fx := createTestUserService(t)

		user := newAna()
		user.ID = 3
		user.LastName = "  "
		err := fx.service.Update(context.Background(), user)

		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("existing user", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecute()

		fx.userRepo.EXPECT().FindByID(mock.Anything, uint64(3)).Return(&entity.User{ID: 3}, nil)
		fx.userRepo.EXPECT().Delete(mock.Anything, uint64(3)).Return(nil)

		require.NoError(t, fx.service.Delete(context.Background(), 3))
	})

	t.Run("missing user is not deleted", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecute()

		fx.userRepo.EXPECT().FindByID(mock.Anything, uint64(404)).Return(nil, repository.ErrUserNotFound)

		err := fx.service.Delete(context.Background(), 404)

		assert.True(t, domainerrors.IsNotFound(err))
		fx.userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUserService_GetByID(t *testing.T) {
	fx := createTestUserService(t)
	fx.expectExecuteReadOnly()

	want := &entity.User{ID: 3, FirstName: "Ana"}
	fx.userRepo.EXPECT().FindByID(mock.Anything, uint64(3)).Return(want, nil)

	got, err := fx.service.GetByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	fx.expectExecuteReadOnly()

	fx.userRepo.EXPECT().FindByID(mock.Anything, uint64(8)).Return(nil, repository.ErrUserNotFound)

	got, err := fx.service.GetByID(context.Background(), 8)

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_Queries(t *testing.T) {
	users := []*entity.User{{ID: 1, FirstName: "Ana"}, {ID: 2, FirstName: "Mariana"}}

	t.Run("all", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecuteReadOnly()
		fx.userRepo.EXPECT().FindAll(mock.Anything).Return(users, nil)

		got, err := fx.service.GetAll(context.Background())

		require.NoError(t, err)
		assert.Equal(t, users, got)
	})

	t.Run("by sex", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecuteReadOnly()
		fx.userRepo.EXPECT().FindBySex(mock.Anything, entity.SexFemale).Return(users, nil)

		got, err := fx.service.GetBySex(context.Background(), entity.SexFemale)

		require.NoError(t, err)
		assert.Equal(t, users, got)
	})

	t.Run("by name", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecuteReadOnly()
		fx.userRepo.EXPECT().FindByNameContains(mock.Anything, "ana").Return(users, nil)

		got, err := fx.service.GetByNameContains(context.Background(), "ana")

		require.NoError(t, err)
		assert.Equal(t, users, got)
	})

	t.Run("count", func(t *testing.T) {
		fx := createTestUserService(t)
		fx.expectExecuteReadOnly()
		fx.userRepo.EXPECT().Count(mock.Anything).Return(int64(2), nil)

		got, err := fx.service.Count(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(2), got)
	})
}

func TestUserService_GetBySex_RejectsUnknownValue(t *testing.T) {
	fx := createTestUserService(t)

	got, err := fx.service.GetBySex(context.Background(), entity.Sex("OTHER"))

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserService_GetAll_TransactionFailure(t *testing.T) {
	fx := createTestUserService(t)

	beginErr := domainerrors.NewStoreErrorOf(domainerrors.ErrTransactionFailed, errors.New("too many connections"), "failed to begin transaction")
	fx.txManager.EXPECT().
		ExecuteReadOnly(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(beginErr)

	got, err := fx.service.GetAll(context.Background())

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrTransactionFailed))
	assert.True(t, domainerrors.IsStoreError(err))
}
