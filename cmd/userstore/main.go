package main

import (
	"log/slog"

	"userstore/config"
	"userstore/internal/domain/repository"
	logs "userstore/internal/infra/log"
	"userstore/internal/infra/persistence/memory"
	"userstore/internal/infra/persistence/sqlstore"
	"userstore/internal/usecase/impl"
	"userstore/internal/validator"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		fx.Invoke(
			bootstrap,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		sqlstore.New,
		validator.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newTransactionManager,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
		),
	)
}

// newTransactionManager picks the in-memory store when no database handle was opened.
func newTransactionManager(db *gorm.DB, logger *slog.Logger) repository.TransactionManager {
	if db == nil {
		logger.Warn("User data is kept in memory and lost on exit")

		return memory.NewTransactionManager(memory.NewStore())
	}

	return sqlstore.NewTransactionManager(db)
}
