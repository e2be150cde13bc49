// Package store holds the PostgreSQL backed components: accounts and
// addresses, the catalog, the order ledger and the feedback gate.
package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn inside a single transaction. Any error from fn rolls the
// whole transaction back and is returned unchanged.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
