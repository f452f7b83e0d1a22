package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

// RunInTx is the unit of work: it begins a transaction, hands it to fn and commits
// only when fn returns nil. Any error (or panic) from fn rolls the whole transaction back.
func RunInTx(ctx context.Context, db core.DB, fn func(tx core.DBExecutor) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	committed = true
	return nil
}
