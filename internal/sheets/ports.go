package sheets

import (
	"context"

	"dompet/internal/core"
)

// Ports for the spreadsheet backup. The HTTP layer depends on these, the
// Google client and the in-memory store implement them.
type (
	TransactionExporter interface {
		// ExportTransactions overwrites the backup sheet with txs and returns
		// the range that was written.
		ExportTransactions(ctx context.Context, txs []core.Transaction) (string, error)
	}

	TransactionImporter interface {
		// ImportTransactions reads the backup sheet back, newest first.
		ImportTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	Backup interface {
		TransactionExporter
		TransactionImporter
	}
)
