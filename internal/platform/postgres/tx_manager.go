package postgres

import (
	"context"
	"database/sql"

	"github.com/phrazzld/almanac/internal/store"
)

// TxManager hands out PostgreSQL-backed store bundles. Compile-time
// check that it satisfies the store interface.
var _ store.TxManager = (*TxManager)(nil)

// TxManager implements store.TxManager on a *sql.DB.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager over the given database handle.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// Stores returns an auto-committing store bundle.
func (m *TxManager) Stores() store.Stores {
	return buildStores(m.db)
}

// WithinTx runs fn against a transaction-scoped bundle, committing on
// nil and rolling back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	return store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, buildStores(tx))
	})
}

func buildStores(db store.DBTX) store.Stores {
	return store.Stores{
		Projects:  NewProjectStore(db),
		Habits:    NewHabitStore(db),
		Chores:    NewChoreStore(db),
		Metrics:   NewMetricStore(db),
		Persons:   NewPersonStore(db),
		Vacations: NewVacationStore(db),
		Tasks:     NewInboxTaskStore(db),
		Links:     NewSyncLinkStore(db),
		Events:    NewEventStore(db),
	}
}
