package repository

import "context"

// TxManager runs a function inside a database transaction. Repository
// implementations pick the transaction up from the context, so the same
// repository instances work inside and outside a transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
