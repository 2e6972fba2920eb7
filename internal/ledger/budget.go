package ledger

import (
	"context"
	"fmt"
	"sync"

	"dompet/internal/errs"
	"dompet/internal/log"
)

// Budget holds the monthly spending threshold. The value is not tied to a
// particular month; it always applies to the current one.
type Budget struct {
	mu        sync.Mutex
	threshold int64
	persist   BudgetPersister
	log       *log.Logger
}

func NewBudget(ctx context.Context, p BudgetPersister, logger *log.Logger) (*Budget, error) {
	if logger == nil {
		logger = log.Discard()
	}
	v, err := p.LoadBudget(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	return &Budget{threshold: v, persist: p, log: logger.WithComponent(log.ComponentBudget)}, nil
}

func (b *Budget) Threshold() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.threshold
}

// SetThreshold overwrites the threshold. Zero means no budget.
func (b *Budget) SetThreshold(ctx context.Context, v int64) error {
	if v < 0 {
		return errs.NewValidationError("budget must not be negative")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.threshold = v
	b.log.InfoContext(ctx, "Budget threshold set", log.FieldOperation, log.OpUpdate, log.FieldThreshold, v)
	if err := b.persist.SaveBudget(ctx, v); err != nil {
		b.log.ErrorContext(ctx, "Failed to persist budget", log.FieldOperation, log.OpPersist, log.FieldError, err)
		return errs.NewPersistenceError("budget", err)
	}
	return nil
}
