// Package memory keeps ledger state in process memory only. It backs the
// "memory" data backend and is handy for tests.
package memory

import (
	"context"
	"sync"

	"dompet/internal/core"
)

type Store struct {
	mu     sync.Mutex
	txs    []core.Transaction
	debts  []core.Debt
	budget int64
	saves  int
}

func New() *Store {
	return &Store{}
}

func (s *Store) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append([]core.Transaction(nil), txs...)
	s.saves++
	return nil
}

func (s *Store) LoadDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDebts(s.debts), nil
}

func (s *Store) SaveDebts(_ context.Context, debts []core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = cloneDebts(debts)
	s.saves++
	return nil
}

func (s *Store) LoadBudget(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget, nil
}

func (s *Store) SaveBudget(_ context.Context, v int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = v
	s.saves++
	return nil
}

// Saves reports how many writes the store has received.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneDebts(in []core.Debt) []core.Debt {
	if in == nil {
		return nil
	}
	out := make([]core.Debt, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}
