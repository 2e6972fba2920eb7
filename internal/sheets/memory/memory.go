package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

// Store keeps the last exported sheet in memory.
type Store struct {
	mu      sync.Mutex
	items   []core.Transaction
	exports int
	fail    error
}

var _ ports.Backup = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailWith makes every later call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) ExportTransactions(_ context.Context, txs []core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.items = append([]core.Transaction(nil), txs...)
	s.exports++
	return fmt.Sprintf("mem!A1:F%d", len(txs)+1), nil
}

func (s *Store) ImportTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	if s.exports == 0 {
		return nil, errors.New("nothing exported yet")
	}
	return append([]core.Transaction(nil), s.items...), nil
}

// Exports reports how many exports succeeded.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
