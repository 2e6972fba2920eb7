// Package backup converts the transaction collection to and from the JSON
// array used for file backups.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"dompet/internal/core"
	"dompet/internal/errs"
)

// FileName is the suggested name of a backup taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("finance-backup-%s.json", t.Format(time.DateOnly))
}

// EncodeTransactions renders txs as an indented JSON array. An empty
// collection encodes as [] so it can be imported again.
func EncodeTransactions(txs []core.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return json.MarshalIndent(txs, "", "  ")
}

// DecodeTransactions parses a backup. Anything other than a JSON array of
// transactions is reported as a *errs.MalformedImportError.
func DecodeTransactions(data []byte) ([]core.Transaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errs.NewMalformedImportError("backup must be a JSON array of transactions")
	}
	var txs []core.Transaction
	if err := json.Unmarshal(trimmed, &txs); err != nil {
		return nil, errs.NewMalformedImportError(fmt.Sprintf("decode backup: %v", err))
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}
