package ledger

import (
	"context"
	"time"

	"dompet/internal/core"
)

type seedEntry struct {
	daysAgo  int
	title    string
	category string
	amount   int64
	txType   core.TxType
}

var demoTransactions = []seedEntry{
	{0, "Makan Siang", "Makan", 25000, core.Expense},
	{0, "Ojek ke Kantor", "Transport", 15000, core.Expense},
	{1, "Kopi Susu", "Jajan", 18000, core.Expense},
	{2, "Token Listrik", "Tagihan", 200000, core.Expense},
	{3, "Nonton Bioskop", "Hiburan", 50000, core.Expense},
	{5, "Bonus Proyek", "Bonus", 750000, core.Income},
	{6, "Gaji Bulanan", "Gaji", 5000000, core.Income},
}

// SeedTransactions fills an empty store with a small demo history spread
// over the last week. It reports whether anything was written.
func SeedTransactions(ctx context.Context, s *TransactionStore) (bool, error) {
	if s.Len() > 0 {
		return false, nil
	}
	now := s.now()
	txs := make([]core.Transaction, 0, len(demoTransactions))
	for i, e := range demoTransactions {
		at := now.Add(-time.Duration(e.daysAgo) * 24 * time.Hour).Add(-time.Duration(i) * time.Minute)
		txs = append(txs, core.Transaction{
			ID:       at.UnixMilli(),
			Title:    e.title,
			Category: e.category,
			Date:     at,
			Amount:   e.amount,
			Type:     e.txType,
		})
	}
	if err := s.Replace(ctx, txs); err != nil {
		return false, err
	}
	return true, nil
}
