package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/shared/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// DB holds the reservation store and the optional Redis client that backs
// slot locks and the availability cache. Either may be nil.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

// InitDB opens Postgres, migrates the reservation schema and, when enabled,
// connects Redis.
func InitDB(cfg *config.Config) (*DB, error) {
	pg, err := OpenPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("migrate reservation schema: %w", err)
	}

	db := &DB{PostgreSQL: pg}
	if cfg.Redis.Enabled {
		if db.Redis, err = ConnectRedis(cfg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// OpenPostgres connects GORM with UTC timestamps and the configured pool.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.IsDevelopment() {
		level = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if n := cfg.Database.MaxOpenConns; n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	if n := cfg.Database.MaxIdleConns; n > 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	if d := cfg.Database.ConnMaxLifetime; d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ConnectRedis opens and pings a Redis client.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  connectTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	return rdb, nil
}

func (db *DB) Close() error {
	var errs []error
	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close postgres: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Health is the per-backend result of a health check; values are "ok" or
// the failure.
type Health map[string]string

func (h Health) Healthy() bool {
	for _, status := range h {
		if status != "ok" {
			return false
		}
	}
	return true
}

// HealthCheck pings every configured backend. Backends that are not
// configured are left out of the report.
func (db *DB) HealthCheck(ctx context.Context) Health {
	report := Health{}
	if db.PostgreSQL != nil {
		report["postgres"] = status(pingPostgres(ctx, db.PostgreSQL))
	}
	if db.Redis != nil {
		report["redis"] = status(db.Redis.Ping(ctx).Err())
	}
	return report
}

func pingPostgres(ctx context.Context, pg *gorm.DB) error {
	sqlDB, err := pg.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func status(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
