package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"dompet/internal/core"
)

var errDiskFull = errors.New("disk full")

// fakePersister records what was saved and can be told to fail.
type fakePersister struct {
	mu        sync.Mutex
	txs       []core.Transaction
	debts     []core.Debt
	budget    int64
	failSave  bool
	failLoad  bool
	saveCalls int
}

func (f *fakePersister) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.failLoad {
		return nil, errDiskFull
	}
	return append([]core.Transaction(nil), f.txs...), nil
}

func (f *fakePersister) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSave {
		return errDiskFull
	}
	f.txs = txs
	return nil
}

func (f *fakePersister) LoadDebts(ctx context.Context) ([]core.Debt, error) {
	if f.failLoad {
		return nil, errDiskFull
	}
	return append([]core.Debt(nil), f.debts...), nil
}

func (f *fakePersister) SaveDebts(ctx context.Context, debts []core.Debt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSave {
		return errDiskFull
	}
	f.debts = debts
	return nil
}

func (f *fakePersister) LoadBudget(ctx context.Context) (int64, error) {
	if f.failLoad {
		return 0, errDiskFull
	}
	return f.budget, nil
}

func (f *fakePersister) SaveBudget(ctx context.Context, v int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSave {
		return errDiskFull
	}
	f.budget = v
	return nil
}

// stepClock returns start and advances by step on every call.
func stepClock(start time.Time, step time.Duration) Clock {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
