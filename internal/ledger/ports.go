// Package ledger owns the mutable state of the application: the transaction
// store, the debt ledger and the monthly budget threshold. Every mutation is
// validated before it touches memory and is then written through to a
// Persister as a whole collection.
package ledger

import (
	"context"
	"time"

	"dompet/internal/core"
)

// Clock returns the current time. Stores take one so tests can pin "now".
type Clock func() time.Time

type TransactionPersister interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, txs []core.Transaction) error
}

type DebtPersister interface {
	LoadDebts(ctx context.Context) ([]core.Debt, error)
	SaveDebts(ctx context.Context, debts []core.Debt) error
}

type BudgetPersister interface {
	LoadBudget(ctx context.Context) (int64, error)
	SaveBudget(ctx context.Context, threshold int64) error
}

// Persister is implemented by every storage backend.
type Persister interface {
	TransactionPersister
	DebtPersister
	BudgetPersister
}
