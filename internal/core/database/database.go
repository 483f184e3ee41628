package database

import (
	"context"
	"fmt"
	"time"

	"cargo-tracker/internal/core/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls connection retries.
type Options struct {
	// Attempts is how many times Connect tries before giving up.
	Attempts int
	// Wait is the pause between attempts.
	Wait time.Duration
}

// DefaultOptions suits a database that starts alongside the service.
func DefaultOptions() Options {
	return Options{Attempts: 10, Wait: 2 * time.Second}
}

// Postgres returns the dialector for a Postgres DSN.
func Postgres(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// Connect opens a gorm connection, retrying while the database comes up.
func Connect(ctx context.Context, dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	log := logger.Named("database")
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var lastErr error
	for i := 0; i < opts.Attempts; i++ {
		log.Debug("Database connection attempt", zap.Int("attempt", i+1))

		db, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			log.Info("Connected to database", zap.String("dialect", dialector.Name()))
			return db, nil
		}

		lastErr = err
		log.Warn("Database connection attempt failed", zap.Int("attempt", i+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		case <-time.After(opts.Wait):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Attempts, lastErr)
}

// Migrate creates missing tables and indexes for the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Ping checks the underlying connection pool.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
