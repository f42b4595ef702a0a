package main

import (
	"context"
	"log/slog"
	"time"

	"userstore/config"
	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const seedDateLayout = time.DateOnly

type bootstrapParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Config *config.Config
	Logger *slog.Logger
	Users  usecase.UserUsecase
}

// bootstrap seeds the store once the database hooks have run, logs a summary and stops the app.
func bootstrap(params bootstrapParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := seedUsers(ctx, params.Users, params.Config.Seed, params.Logger); err != nil {
				return err
			}

			count, err := params.Users.Count(ctx)
			if err != nil {
				return err
			}
			params.Logger.Info("User store ready",
				slog.String("driver", params.Config.Database.Driver),
				slog.Int64("users", count),
			)

			return params.Shutdown()
		},
	})
}

// seedUsers saves the configured fixtures through the use case, so they pass the same validation
// as any other write. Nothing is seeded when the store already holds users.
func seedUsers(ctx context.Context, users usecase.UserUsecase, seed *config.SeedConfig, logger *slog.Logger) error {
	if seed == nil || !seed.Enabled || len(seed.Users) == 0 {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check existing users")
	}
	if count > 0 {
		logger.Info("Skipping seed, users already present", slog.Int64("users", count))

		return nil
	}

	for i, seedUser := range seed.Users {
		user, err := toSeedEntity(seedUser)
		if err != nil {
			return errors.Wrapf(err, "invalid seed user at index %d", i)
		}
		if err := users.Save(ctx, user); err != nil {
			return errors.Wrapf(err, "failed to seed user at index %d", i)
		}
	}
	logger.Info("Seeded users", slog.Int("count", len(seed.Users)))

	return nil
}

func toSeedEntity(seedUser config.SeedUser) (*entity.User, error) {
	var violations []domainerrors.FieldViolation

	birthDate, err := time.Parse(seedDateLayout, seedUser.BirthDate)
	if err != nil {
		violations = append(violations, domainerrors.FieldViolation{
			Field:   "birthDate",
			Rule:    "date",
			Message: "must use the " + seedDateLayout + " layout",
		})
	}

	sex, ok := entity.ParseSex(seedUser.Sex)
	if !ok {
		violations = append(violations, domainerrors.FieldViolation{
			Field:   "sex",
			Rule:    "oneof",
			Message: "must be one of: FEMALE MALE",
		})
	}

	if len(violations) > 0 {
		return nil, domainerrors.NewValidationError(violations...)
	}

	return entity.NewUser(seedUser.FirstName, seedUser.LastName, birthDate, sex), nil
}
