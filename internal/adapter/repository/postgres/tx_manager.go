package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashstock/internal/usecase"
)

// pgxPool is the slice of pgxpool.Pool the manager needs. Narrowed so
// tests can substitute pgxmock.
type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager hands out database transactions to the use cases. A reserve,
// settle or release touches stock counters, the movement header and the
// outbox in one transaction; this is where that transaction comes from.
// Implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a TxManager on the given pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction behind the usecase.Transaction interface.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Safe after Commit; pgx reports
// ErrTxClosed which deferred rollbacks ignore.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx exposes the wrapped pgx.Tx for repositories in this package.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
