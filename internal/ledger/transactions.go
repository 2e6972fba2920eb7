package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/errs"
	"dompet/internal/log"
)

// TransactionStore keeps transactions newest first.
type TransactionStore struct {
	mu      sync.Mutex
	items   []core.Transaction
	lastID  int64
	persist TransactionPersister
	now     Clock
	log     *log.Logger
}

// NewTransactionStore loads the persisted collection and returns a store
// ready for use.
func NewTransactionStore(ctx context.Context, p TransactionPersister, now Clock, logger *log.Logger) (*TransactionStore, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	items, err := p.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	s := &TransactionStore{
		items:   items,
		persist: p,
		now:     now,
		log:     logger.WithComponent(log.ComponentLedger),
	}
	for _, t := range items {
		s.lastID = max(s.lastID, t.ID)
	}
	s.log.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(items))
	return s, nil
}

// Add validates the draft, stamps id and date, and prepends the result.
// When err is a *errs.PersistenceError the returned transaction is still
// part of the store.
func (s *TransactionStore) Add(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	draft = draft.Normalize()
	amount, err := draft.Validate()
	if err != nil {
		return core.Transaction{}, errs.NewValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tx := core.Transaction{
		ID:       s.nextID(now),
		Title:    draft.Title,
		Category: draft.Category,
		Date:     now.UTC(),
		Amount:   amount,
		Type:     draft.Type,
	}
	s.items = append([]core.Transaction{tx}, s.items...)

	s.log.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpCreate).WithTransaction(tx.ID, string(tx.Type), tx.Category, tx.Amount).ToSlice()...)
	return tx, s.save(ctx)
}

// Edit replaces title, category, amount and type of an existing
// transaction. Its id, date and position are kept.
func (s *TransactionStore) Edit(ctx context.Context, id int64, draft core.TransactionDraft) (core.Transaction, error) {
	draft = draft.Normalize()
	amount, err := draft.Validate()
	if err != nil {
		return core.Transaction{}, errs.NewValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, errs.NewNotFoundError(fmt.Sprintf("transaction %d not found", id))
	}
	tx := s.items[i]
	tx.Title = draft.Title
	tx.Category = draft.Category
	tx.Amount = amount
	tx.Type = draft.Type
	s.items[i] = tx

	s.log.InfoContext(ctx, "Transaction updated",
		log.NewFields().WithOperation(log.OpUpdate).WithTransaction(tx.ID, string(tx.Type), tx.Category, tx.Amount).ToSlice()...)
	return tx, s.save(ctx)
}

// Remove deletes the transaction with the given id. Unknown ids are ignored.
func (s *TransactionStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)

	s.log.InfoContext(ctx, "Transaction removed", log.FieldOperation, log.OpDelete, log.FieldTxID, id)
	return s.save(ctx)
}

// Reset drops every transaction.
func (s *TransactionStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = nil
	s.log.InfoContext(ctx, "Transactions reset", log.FieldOperation, log.OpReset, log.FieldCount, n)
	return s.save(ctx)
}

// Replace swaps the whole collection for txs, keeping their order. The
// input is checked first and the store is left untouched when it is not a
// consistent collection.
func (s *TransactionStore) Replace(ctx context.Context, txs []core.Transaction) error {
	seen := make(map[int64]struct{}, len(txs))
	next := make([]core.Transaction, len(txs))
	var lastID int64
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return errs.NewMalformedImportError(fmt.Sprintf("transaction at index %d: %v", i, err))
		}
		if _, dup := seen[t.ID]; dup {
			return errs.NewMalformedImportError(fmt.Sprintf("duplicate transaction id %d", t.ID))
		}
		seen[t.ID] = struct{}{}
		t.Date = t.Date.UTC()
		next[i] = t
		lastID = max(lastID, t.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = next
	s.lastID = max(s.lastID, lastID)
	s.log.InfoContext(ctx, "Transactions imported", log.FieldOperation, log.OpImport, log.FieldCount, len(next))
	return s.save(ctx)
}

// All returns a copy of every transaction, newest first.
func (s *TransactionStore) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

// List returns the transactions inside the window, newest first.
func (s *TransactionStore) List(w core.Window) []core.Transaction {
	return w.Filter(s.All(), s.now())
}

func (s *TransactionStore) Get(id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Transaction{}, errs.NewNotFoundError(fmt.Sprintf("transaction %d not found", id))
}

func (s *TransactionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// nextID derives an id from the creation time, bumping it when two adds
// land in the same millisecond.
func (s *TransactionStore) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *TransactionStore) indexOf(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (s *TransactionStore) save(ctx context.Context) error {
	snapshot := append([]core.Transaction(nil), s.items...)
	if err := s.persist.SaveTransactions(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist transactions", log.FieldOperation, log.OpPersist, log.FieldError, err)
		return errs.NewPersistenceError("transactions", err)
	}
	return nil
}
