package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dompet/internal/core"
	"dompet/internal/errs"
	"dompet/internal/log"
)

// DebtLedger tracks payables and receivables in insertion order. Payment
// history is append-only.
type DebtLedger struct {
	mu      sync.Mutex
	debts   []core.Debt
	persist DebtPersister
	now     Clock
	newID   func() string
	log     *log.Logger
}

func NewDebtLedger(ctx context.Context, p DebtPersister, now Clock, logger *log.Logger) (*DebtLedger, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	debts, err := p.LoadDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load debts: %w", err)
	}
	for _, d := range debts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("load debts: debt %s: %w", d.ID, err)
		}
	}
	l := &DebtLedger{
		debts:   debts,
		persist: p,
		now:     now,
		newID:   uuid.NewString,
		log:     logger.WithComponent(log.ComponentDebts),
	}
	l.log.InfoContext(ctx, "Debts loaded", log.FieldCount, len(debts))
	return l, nil
}

// Create opens a new debt with nothing paid. A missing date defaults to
// today.
func (l *DebtLedger) Create(ctx context.Context, draft core.DebtDraft) (core.Debt, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Description = strings.TrimSpace(draft.Description)
	if err := draft.Validate(); err != nil {
		return core.Debt{}, errs.NewValidationError(err.Error())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if draft.Date.IsZero() {
		draft.Date = core.DateOf(l.now())
	}
	d := core.Debt{
		ID:          l.newID(),
		Name:        draft.Name,
		Amount:      draft.Amount,
		Date:        draft.Date,
		DueDate:     draft.DueDate,
		Type:        draft.Type,
		Description: draft.Description,
		History: []core.HistoryEntry{
			{Type: core.EntryInitial, Amount: draft.Amount, Date: draft.Date.Time},
		},
	}
	l.debts = append(l.debts, d.Clone())

	l.log.InfoContext(ctx, "Debt created",
		log.NewFields().WithOperation(log.OpCreate).WithDebt(d.ID, string(d.Type), d.Remaining()).ToSlice()...)
	return d.Clone(), l.save(ctx)
}

// RecordPayment appends a payment to the debt. Payments larger than the
// remaining balance are rejected, which also blocks paid-off debts.
func (l *DebtLedger) RecordPayment(ctx context.Context, id string, amount int64) (core.Debt, error) {
	if amount <= 0 {
		return core.Debt{}, errs.NewValidationError(core.ErrNonPositive.Error())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return core.Debt{}, errs.NewNotFoundError(fmt.Sprintf("debt %s not found", id))
	}
	d := l.debts[i].Clone()
	if remaining := d.Remaining(); amount > remaining {
		return core.Debt{}, errs.NewOverpaymentError(remaining, amount)
	}
	d.History = append(d.History, core.HistoryEntry{
		Type:   core.EntryPayment,
		Amount: amount,
		Date:   l.now().UTC(),
	})
	d.PaidAmount += amount
	l.debts[i] = d

	l.log.InfoContext(ctx, "Debt payment recorded",
		log.NewFields().WithOperation(log.OpPayment).WithDebt(d.ID, string(d.Type), d.Remaining()).ToSlice()...)
	return d.Clone(), l.save(ctx)
}

// Remove deletes a debt and its history. Unknown ids are ignored.
func (l *DebtLedger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil
	}
	l.debts = append(l.debts[:i:i], l.debts[i+1:]...)

	l.log.InfoContext(ctx, "Debt removed", log.FieldOperation, log.OpDelete, log.FieldDebtID, id)
	return l.save(ctx)
}

// List returns the debts of one type in insertion order. An empty type
// returns every debt.
func (l *DebtLedger) List(t core.DebtType) []core.Debt {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.Debt, 0, len(l.debts))
	for _, d := range l.debts {
		if t == "" || d.Type == t {
			out = append(out, d.Clone())
		}
	}
	return out
}

func (l *DebtLedger) Get(id string) (core.Debt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		return l.debts[i].Clone(), nil
	}
	return core.Debt{}, errs.NewNotFoundError(fmt.Sprintf("debt %s not found", id))
}

func (l *DebtLedger) indexOf(id string) int {
	for i, d := range l.debts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (l *DebtLedger) save(ctx context.Context) error {
	snapshot := make([]core.Debt, len(l.debts))
	for i, d := range l.debts {
		snapshot[i] = d.Clone()
	}
	if err := l.persist.SaveDebts(ctx, snapshot); err != nil {
		l.log.ErrorContext(ctx, "Failed to persist debts", log.FieldOperation, log.OpPersist, log.FieldError, err)
		return errs.NewPersistenceError("debts", err)
	}
	return nil
}
