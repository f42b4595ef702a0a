// Package sqlstore contains the relational implementation of the persistence layer using GORM.
// MySQL is the primary dialect; PostgreSQL is reachable through the shared go-lib connector.
package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"maps"
	"net"
	"strconv"
	"strings"
	"time"

	"userstore/config"
	"userstore/internal/domain/lifecycle"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured relational store.
// It returns a nil *gorm.DB when the memory driver is selected.
func New(params Params) (*gorm.DB, error) {
	cfg := params.Config
	if cfg.Database.Driver == config.DriverMemory {
		params.Logger.Info("Using in-memory user store")

		return nil, nil
	}

	gormLogger := newGormSlogLogger(params.Logger, cfg)

	db, err := open(cfg, gormLogger)
	if err != nil {
		return nil, err
	}

	return setup(params, db, gormLogger)
}

// setup applies the session settings and pool limits to an opened handle and ties it to the app lifecycle.
func setup(params Params, db *gorm.DB, gormLogger logger.Interface) (*gorm.DB, error) {
	cfg := params.Config
	db.TranslateError = true
	db = db.Session(&gorm.Session{
		// Transactions are always opened explicitly by the transaction manager.
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s sql.DB", cfg.Database.Driver)
	}
	applyPoolConfig(sqlDB, cfg.Database.Pool)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrapf(err, "failed to ping %s", cfg.Database.Driver)
			}
			if err := syncSchema(ctx, db, cfg.Database.SchemaSync); err != nil {
				return err
			}
			params.Logger.Info("Database ready",
				slog.String("driver", cfg.Database.Driver),
				slog.String("schemaSync", cfg.Database.SchemaSync),
			)

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

func open(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return openMySQL(cfg.Database.MySQL, gormLogger)
	case config.DriverPostgres:
		db, err := pgLib.New(cfg.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create PostgreSQL client")
		}

		return db, nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openMySQL(mysqlCfg *config.MySQLConfig, gormLogger logger.Interface) (*gorm.DB, error) {
	if mysqlCfg == nil {
		return nil, errors.New("mysql configuration is required")
	}

	if mysqlCfg.CreateDatabaseIfNotExist {
		if err := ensureMySQLDatabase(mysqlCfg); err != nil {
			return nil, err
		}
	}

	primaryDSN := mysqlDSN(mysqlCfg, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.UserName, mysqlCfg.Password, mysqlCfg.Database)
	db, err := gorm.Open(mysql.Open(primaryDSN), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MySQL client")
	}

	if len(mysqlCfg.Replicas) == 0 {
		return db, nil
	}

	replicas := make([]gorm.Dialector, 0, len(mysqlCfg.Replicas))
	for _, replica := range mysqlCfg.Replicas {
		replicas = append(replicas, mysql.Open(
			mysqlDSN(mysqlCfg, replica.Host, replica.Port, replica.UserName, replica.Password, mysqlCfg.Database),
		))
	}
	if err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	})); err != nil {
		return nil, errors.Wrap(err, "failed to register MySQL replicas")
	}

	return db, nil
}

// mysqlDSN renders a go-sql-driver DSN. ClientFoundRows makes UPDATE report matched rows,
// so rewriting a row with identical values is not mistaken for a missing row.
func mysqlDSN(mysqlCfg *config.MySQLConfig, host string, port int, userName, password, database string) string {
	dsnCfg := mysqldriver.NewConfig()
	dsnCfg.User = userName
	dsnCfg.Passwd = password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	dsnCfg.DBName = database
	dsnCfg.ParseTime = true
	dsnCfg.ClientFoundRows = true
	if len(mysqlCfg.Params) > 0 {
		dsnCfg.Params = maps.Clone(mysqlCfg.Params)
	}

	return dsnCfg.FormatDSN()
}

func ensureMySQLDatabase(mysqlCfg *config.MySQLConfig) error {
	serverDSN := mysqlDSN(mysqlCfg, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.UserName, mysqlCfg.Password, "")
	conn, err := sql.Open("mysql", serverDSN)
	if err != nil {
		return errors.Wrap(err, "failed to open MySQL server connection")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	return createDatabaseIfNotExist(ctx, conn, mysqlCfg.Database)
}

func createDatabaseIfNotExist(ctx context.Context, conn *sql.DB, database string) error {
	if database == "" {
		return errors.New("mysql database name is required")
	}

	stmt := "CREATE DATABASE IF NOT EXISTS " + quoteMySQLIdentifier(database)
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to create database %s", database)
	}

	return nil
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func applyPoolConfig(sqlDB *sql.DB, pool config.PoolConfig) {
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration
			prev = cur

			if waitDelta <= 0 {
				continue
			}

			attrs := []slog.Attr{
				slog.Int64("waitCountDelta", waitDelta),
				slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
				slog.Int("openConns", cur.OpenConnections),
				slog.Int("inUseConns", cur.InUse),
				slog.Int("idleConns", cur.Idle),
			}
			level := slog.LevelDebug
			if waitDurationDelta >= dbPoolWarnDurationThreshold {
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "Database pool wait", attrs...)
		}
	}
}
