package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dompet/internal/core"

	_ "modernc.org/sqlite"
)

const budgetKey = "monthly_budget"

// SQLiteRepository persists every collection in a local SQLite file. Each
// save rewrites the whole collection inside one transaction, with a
// position column keeping the in-memory order.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, category, date, amount, type FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t    core.Transaction
			date string
			typ  string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &date, &t.Amount, &typ); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("transaction %d: parse date: %w", t.ID, err)
		}
		t.Type = core.TxType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (id, position, title, category, date, amount, type) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range txs {
			if _, err := stmt.ExecContext(ctx, t.ID, i, t.Title, t.Category,
				t.Date.Format(time.RFC3339Nano), t.Amount, string(t.Type)); err != nil {
				return fmt.Errorf("insert transaction %d: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "Transactions saved to SQLite", "count", len(txs))
	return nil
}

func (r *SQLiteRepository) LoadDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, paid_amount, date, due_date, type, description FROM debts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	index := map[string]int{}
	for rows.Next() {
		var (
			d    core.Debt
			date string
			due  sql.NullString
			typ  string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount, &d.PaidAmount, &date, &due, &typ, &d.Description); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		if d.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("debt %s: %w", d.ID, err)
		}
		if due.Valid && due.String != "" {
			dd, err := parseDate(due.String)
			if err != nil {
				return nil, fmt.Errorf("debt %s due date: %w", d.ID, err)
			}
			d.DueDate = &dd
		}
		d.Type = core.DebtType(typ)
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hist, err := r.db.QueryContext(ctx, `SELECT debt_id, type, amount, date FROM debt_history ORDER BY debt_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("query debt history: %w", err)
	}
	defer hist.Close()

	for hist.Next() {
		var (
			id, typ, date string
			e             core.HistoryEntry
		)
		if err := hist.Scan(&id, &typ, &e.Amount, &date); err != nil {
			return nil, fmt.Errorf("scan debt history: %w", err)
		}
		if e.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("debt %s history: parse date: %w", id, err)
		}
		e.Type = core.EntryType(typ)
		if i, ok := index[id]; ok {
			out[i].History = append(out[i].History, e)
		}
	}
	return out, hist.Err()
}

func (r *SQLiteRepository) SaveDebts(ctx context.Context, debts []core.Debt) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM debt_history`); err != nil {
			return fmt.Errorf("clear debt history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM debts`); err != nil {
			return fmt.Errorf("clear debts: %w", err)
		}
		for i, d := range debts {
			var due sql.NullString
			if d.DueDate != nil && !d.DueDate.IsZero() {
				due = sql.NullString{String: d.DueDate.String(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO debts (id, position, name, amount, paid_amount, date, due_date, type, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				d.ID, i, d.Name, d.Amount, d.PaidAmount, d.Date.String(), due, string(d.Type), d.Description); err != nil {
				return fmt.Errorf("insert debt %s: %w", d.ID, err)
			}
			for seq, e := range d.History {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO debt_history (debt_id, seq, type, amount, date) VALUES (?, ?, ?, ?, ?)`,
					d.ID, seq, string(e.Type), e.Amount, e.Date.Format(time.RFC3339Nano)); err != nil {
					return fmt.Errorf("insert debt %s history: %w", d.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "Debts saved to SQLite", "count", len(debts))
	return nil
}

func (r *SQLiteRepository) LoadBudget(ctx context.Context) (int64, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, budgetKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query budget: %w", err)
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse budget %q: %w", value, err)
	}
	return v, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, threshold int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		budgetKey, strconv.FormatInt(threshold, 10))
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
