package sqlstore

import (
	"context"

	"userstore/config"
	"userstore/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// syncSchema brings the mapped tables in line with the models according to mode.
func syncSchema(ctx context.Context, db *gorm.DB, mode string) error {
	switch mode {
	case config.SchemaSyncNone:
		return nil
	case config.SchemaSyncUpdate:
		if err := db.WithContext(ctx).AutoMigrate(model.AllModels()...); err != nil {
			return errors.Wrap(err, "failed to update schema")
		}

		return nil
	case config.SchemaSyncValidate:
		return validateSchema(ctx, db, model.AllModels())
	default:
		return errors.Errorf("unsupported schema sync mode %q", mode)
	}
}

// validateSchema fails when a mapped table or column is absent. Column types are not compared.
func validateSchema(ctx context.Context, db *gorm.DB, models []any) error {
	migrator := db.WithContext(ctx).Migrator()

	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return errors.Wrapf(err, "failed to parse model %T", m)
		}

		table := stmt.Schema.Table
		if !migrator.HasTable(m) {
			return errors.Errorf("schema validation failed: table %s is missing", table)
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !migrator.HasColumn(m, field.DBName) {
				return errors.Errorf("schema validation failed: column %s.%s is missing", table, field.DBName)
			}
		}
	}

	return nil
}
