package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dompet/internal/core"
	"dompet/internal/errs"
)

// header is the first row of the backup sheet. Column order is part of the
// backup format.
var header = []any{"ID", "Tanggal", "Judul", "Kategori", "Tipe", "Jumlah"}

const columns = "A:F"

// toRows renders transactions as a values matrix, header first.
func toRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, header)
	for _, t := range txs {
		rows = append(rows, []any{
			strconv.FormatInt(t.ID, 10),
			t.Date.UTC().Format(time.RFC3339Nano),
			t.Title,
			t.Category,
			string(t.Type),
			strconv.FormatInt(t.Amount, 10),
		})
	}
	return rows
}

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions. A leading header row and blank rows are skipped. Any other
// unreadable row fails the whole import.
func parseRows(values [][]any) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(values))
	for i, row := range values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		if i == 0 && strings.EqualFold(safeGet(cols, 0), "ID") {
			continue
		}
		if len(cols) < 6 {
			return nil, errs.NewMalformedImportError(fmt.Sprintf("row %d: expected 6 columns, got %d", i+1, len(cols)))
		}

		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil || id <= 0 {
			return nil, errs.NewMalformedImportError(fmt.Sprintf("row %d: invalid id %q", i+1, cols[0]))
		}
		date, err := parseDate(cols[1])
		if err != nil {
			return nil, errs.NewMalformedImportError(fmt.Sprintf("row %d: invalid date %q", i+1, cols[1]))
		}
		amount, err := core.ParseAmount(cols[5])
		if err != nil {
			return nil, errs.NewMalformedImportError(fmt.Sprintf("row %d: invalid amount %q", i+1, cols[5]))
		}
		typ := core.TxType(strings.ToLower(cols[4]))
		if !typ.Valid() {
			return nil, errs.NewMalformedImportError(fmt.Sprintf("row %d: invalid type %q", i+1, cols[4]))
		}

		out = append(out, core.Transaction{
			ID:       id,
			Title:    cols[2],
			Category: cols[3],
			Date:     date,
			Amount:   amount,
			Type:     typ,
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		// Unformatted numbers arrive as float64 and must not print in
		// exponent form.
		if f, ok := v.(float64); ok {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
