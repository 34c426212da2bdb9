// Package db opens the gorm connection, applies migrations and seeds
// reference data.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/bizdesk/internal/models"
)

// ErrUnknownDriver is returned for drivers other than postgres and sqlite.
var ErrUnknownDriver = errors.New("unknown_database_driver")

// Options controls Connect.
type Options struct {
	Driver     string // postgres | sqlite
	DSN        string
	Migrations string // SQL migrations directory (postgres only); empty uses AutoMigrate
	Seed       bool
	Retries    int
	RetryDelay time.Duration
	Debug      bool
	Logger     *zap.Logger
}

func (o *Options) defaults() {
	if o.Retries <= 0 {
		o.Retries = 10
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// gormWriter routes gorm's SQL log through zap.
type gormWriter struct{ l *zap.SugaredLogger }

func (w gormWriter) Printf(format string, args ...any) { w.l.Debugf(format, args...) }

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(NormalizeDSN(dsn)), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Open connects with retries so the app survives a database that is still
// starting. It does not migrate.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	opts.defaults()
	if opts.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}
	dial, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.New(gormWriter{opts.Logger.Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})}

	var db *gorm.DB
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		db, err = gorm.Open(dial, cfg)
		if err == nil {
			break
		}
		opts.Logger.Warn("database connection failed, retrying",
			zap.Int("attempt", attempt), zap.Int("max", opts.Retries), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", opts.Retries, err)
	}
	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	opts.Logger.Info("database connected", zap.String("driver", opts.Driver), zap.String("dsn", MaskDSN(opts.DSN)))
	return db, nil
}

// Connect opens the database, migrates it and optionally seeds it.
func Connect(ctx context.Context, opts Options) (*gorm.DB, error) {
	opts.defaults()
	db, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, opts); err != nil {
		return nil, err
	}
	if opts.Seed {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return db, nil
}

// requiredTables are checked after migration.
var requiredTables = []string{"plans", "users", "clients", "documents", "document_items"}

// Migrate applies SQL migrations when a directory is configured for
// postgres and falls back to AutoMigrate otherwise.
func Migrate(db *gorm.DB, opts Options) error {
	opts.defaults()
	if opts.Migrations != "" && opts.Driver == "postgres" {
		opts.Logger.Info("running sql migrations", zap.String("dir", opts.Migrations))
		if err := RunSQLMigrations(opts.DSN, opts.Migrations); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// Ping checks connectivity, used by /healthz.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
