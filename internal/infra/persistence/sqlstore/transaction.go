package sqlstore

import (
	"context"
	"database/sql"

	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory hands out repositories bound to a single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB // In GORM, a transaction is also a *gorm.DB
}

// UserRepo returns a user repository bound to the transaction.
func (f *gormRepositoryFactory) UserRepo() repository.UserRepository {
	return NewUserRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs fn within a single read-write transaction on the primary.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return tm.run(tm.db.WithContext(ctx).Begin(), fn)
}

// ExecuteReadOnly runs fn within a read-only transaction, routed to a replica when one is registered.
func (tm *gormTransactionManager) ExecuteReadOnly(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return tm.run(tm.db.WithContext(ctx).Clauses(dbresolver.Read).Begin(&sql.TxOptions{ReadOnly: true}), fn)
}

func (tm *gormTransactionManager) run(tx *gorm.DB, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if tx.Error != nil {
		return domainerrors.NewStoreErrorOf(domainerrors.ErrTransactionFailed, tx.Error, "failed to begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			// Re-panic so the caller's recovery sees the original value.
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Wrapf(err, "transaction rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return domainerrors.NewStoreErrorOf(domainerrors.ErrTransactionFailed, err, "failed to commit transaction")
	}

	return nil
}
