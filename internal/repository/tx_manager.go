package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key under which an open transaction travels. An
// unexported struct type cannot collide with keys from other packages.
type txKey struct{}

// TransactionManager runs a function inside a database transaction. The
// transactional handle is injected through context, so repositories never
// know whether they run inside a transaction: the workflow coordinator
// relies on this to make a department move commit in full or not at all.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx executes fn inside a transaction. A context that already carries
// one joins it instead of opening a nested transaction, so services may
// compose each other's transactional operations.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetDB resolves the handle a repository should use: the ambient transaction
// when one is running, the root connection otherwise.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return rootDB.WithContext(ctx)
}
