package memory

import (
	"context"

	"userstore/internal/domain/repository"

	"github.com/pkg/errors"
)

// transactionManager serializes writers and lets readers share the committed state.
type transactionManager struct {
	store *Store
}

// memoryRepositoryFactory binds repositories to one transaction's view of the store.
type memoryRepositoryFactory struct {
	state    *state
	readOnly bool
}

// UserRepo returns a user repository bound to the transaction.
func (f *memoryRepositoryFactory) UserRepo() repository.UserRepository {
	return &userRepository{state: f.state, readOnly: f.readOnly}
}

// NewTransactionManager is the constructor for the in-memory transaction manager.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn against a private copy of the store and publishes it only when fn succeeds.
// A panic leaves the committed state untouched.
func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	working := tm.store.state.clone()
	if err := fn(&memoryRepositoryFactory{state: working}); err != nil {
		return err
	}
	tm.store.state = working

	return nil
}

// ExecuteReadOnly runs fn against the committed state. Writes are rejected with ErrReadOnlyTransaction.
func (tm *transactionManager) ExecuteReadOnly(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	tm.store.mu.RLock()
	defer tm.store.mu.RUnlock()

	return fn(&memoryRepositoryFactory{state: tm.store.state, readOnly: true})
}
