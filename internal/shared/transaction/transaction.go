package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Manager runs fn inside one unit of work. Repositories called with the ctx
// handed to fn observe a single snapshot.
type Manager interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// GormManager opens REPEATABLE READ transactions and binds them to the context.
type GormManager struct {
	db *gorm.DB
}

func NewGormManager(db *gorm.DB) *GormManager {
	return &GormManager{db: db}
}

func (m *GormManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	// join an outer transaction instead of nesting
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
}

// DB returns the transaction bound to ctx, or db scoped to ctx when none is open.
func DB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// NoopManager runs fn directly. Used with the memory store, whose repositories
// serialize on their own mutex.
type NoopManager struct{}

func (NoopManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Postgres SQLSTATEs that mean "try the whole transaction again".
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsSerializationFailure reports whether err is a conflict a retry can resolve.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}
