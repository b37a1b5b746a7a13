package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

type txContextKey struct{}

// gormTxManager implements repository.TxManager by stashing the open
// transaction in the context, where the repositories pick it up.
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a gorm-backed transaction manager.
func NewTxManager(db *gorm.DB) repository.TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to ctx, or the fallback
// connection when no transaction is open.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
