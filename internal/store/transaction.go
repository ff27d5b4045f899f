package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/almanac/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled
// back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes the given function within a database
// transaction, rolling back on error or panic and committing otherwise.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rollbackErr, err)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}

	return nil
}

// Stores bundles every entity store backed by the same connection or
// transaction. Services receive a TxManager and run each logical
// operation against a transaction-scoped bundle.
type Stores struct {
	Projects  ProjectStore
	Habits    HabitStore
	Chores    ChoreStore
	Metrics   MetricStore
	Persons   PersonStore
	Vacations VacationStore
	Tasks     InboxTaskStore
	Links     SyncLinkStore
	Events    EventStore
}

// TxManager hands out store bundles. WithinTx is the unit of atomicity
// for every mutation: a failed fn leaves nothing behind.
type TxManager interface {
	// Stores returns a bundle for direct, auto-committed reads.
	Stores() Stores

	// WithinTx runs fn against a transaction-scoped bundle, committing
	// if fn returns nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
