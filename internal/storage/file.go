package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dompet/internal/core"
)

// fileState is the on-disk layout of FileRepository.
type fileState struct {
	Transactions  []core.Transaction `json:"transactions"`
	Debts         []core.Debt        `json:"debts"`
	MonthlyBudget int64              `json:"monthlyBudget"`
}

// FileRepository keeps all state in a single JSON document. Writes go to a
// temporary file that is renamed over the old one.
type FileRepository struct {
	mu    sync.Mutex
	path  string
	state fileState
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	r := &FileRepository{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &r.state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}

func (r *FileRepository) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Transaction(nil), r.state.Transactions...), nil
}

func (r *FileRepository) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.state
	next.Transactions = txs
	return r.write(next)
}

func (r *FileRepository) LoadDebts(_ context.Context) ([]core.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Debt, len(r.state.Debts))
	for i, d := range r.state.Debts {
		out[i] = d.Clone()
	}
	return out, nil
}

func (r *FileRepository) SaveDebts(_ context.Context, debts []core.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.state
	next.Debts = debts
	return r.write(next)
}

func (r *FileRepository) LoadBudget(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.MonthlyBudget, nil
}

func (r *FileRepository) SaveBudget(_ context.Context, v int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.state
	next.MonthlyBudget = v
	return r.write(next)
}

// write replaces the file and only then adopts next as the cached state.
func (r *FileRepository) write(next fileState) error {
	if next.Transactions == nil {
		next.Transactions = []core.Transaction{}
	}
	if next.Debts == nil {
		next.Debts = []core.Debt{}
	}
	b, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".dompet-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	r.state = next
	return nil
}
