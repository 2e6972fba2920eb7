package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"

	Payable    DebtType = "payable"
	Receivable DebtType = "receivable"

	EntryInitial EntryType = "initial"
	EntryPayment EntryType = "payment"
)

// DefaultCategory is used when a transaction is submitted without one.
const DefaultCategory = "Lainnya"

// RecentLimit is how many transactions the dashboard shows as recent activity.
const RecentLimit = 5

var (
	ExpenseCategories = []string{"Makan", "Transport", "Jajan", "Tagihan", "Hiburan", "Lainnya"}
	IncomeCategories  = []string{"Gaji", "Bonus", "Investasi", "Lainnya"}
)

type (
	TxType    string
	DebtType  string
	EntryType string

	// Date is a calendar date without a meaningful time of day.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID       int64     `json:"id"`
		Title    string    `json:"title"`
		Category string    `json:"category"`
		Date     time.Time `json:"date"`
		Amount   int64     `json:"amount"`
		Type     TxType    `json:"type"`
	}

	// TransactionDraft is the user-supplied part of a transaction. Amount is
	// the raw input and may carry separators or a currency prefix.
	TransactionDraft struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Amount   string `json:"amount"`
		Type     TxType `json:"type"`
	}

	HistoryEntry struct {
		Type   EntryType `json:"type"`
		Amount int64     `json:"amount"`
		Date   time.Time `json:"date"`
	}

	Debt struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Amount      int64          `json:"amount"`
		PaidAmount  int64          `json:"paidAmount"`
		Date        Date           `json:"date"`
		DueDate     *Date          `json:"dueDate,omitempty"`
		Type        DebtType       `json:"type"`
		Description string         `json:"description,omitempty"`
		History     []HistoryEntry `json:"history"`
	}

	DebtDraft struct {
		Name        string   `json:"name"`
		Amount      int64    `json:"amount"`
		Date        Date     `json:"date"`
		DueDate     *Date    `json:"dueDate,omitempty"`
		Type        DebtType `json:"type"`
		Description string   `json:"description,omitempty"`
	}
)

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyName       = errors.New("name is required")
	ErrNonPositive     = errors.New("amount must be greater than zero")
	ErrInvalidDebtType = errors.New("invalid debt type")
	ErrHistoryMismatch = errors.New("debt history does not match paid amount")
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t DebtType) Valid() bool {
	return t == Payable || t == Receivable
}

// Normalize trims the draft and fills in the default category.
func (d TransactionDraft) Normalize() TransactionDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	return d
}

// Validate checks the draft and returns the parsed amount.
func (d TransactionDraft) Validate() (int64, error) {
	if strings.TrimSpace(d.Title) == "" {
		return 0, ErrEmptyTitle
	}
	if !d.Type.Valid() {
		return 0, ErrInvalidType
	}
	return ParseAmount(d.Amount)
}

func (t Transaction) Validate() error {
	if t.ID == 0 {
		return errors.New("missing id")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.Date.IsZero() {
		return errors.New("missing date")
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (d DebtDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Amount <= 0 {
		return ErrNonPositive
	}
	if !d.Type.Valid() {
		return ErrInvalidDebtType
	}
	return nil
}

// Validate checks the ledger invariants of a stored debt.
func (d Debt) Validate() error {
	if d.ID == "" {
		return errors.New("missing id")
	}
	if !d.Type.Valid() {
		return ErrInvalidDebtType
	}
	if d.Amount < 0 || d.PaidAmount < 0 || d.PaidAmount > d.Amount {
		return ErrInvalidAmount
	}
	if len(d.History) == 0 || d.History[0].Type != EntryInitial || d.History[0].Amount != d.Amount {
		return ErrHistoryMismatch
	}
	var paid int64
	for _, h := range d.History[1:] {
		if h.Type != EntryPayment {
			return ErrHistoryMismatch
		}
		paid += h.Amount
	}
	if paid != d.PaidAmount {
		return ErrHistoryMismatch
	}
	return nil
}

// Remaining is the amount still owed.
func (d Debt) Remaining() int64 {
	return d.Amount - d.PaidAmount
}

func (d Debt) IsPaidOff() bool {
	return d.Remaining() <= 0
}

// Clone returns a copy that shares no memory with d.
func (d Debt) Clone() Debt {
	c := d
	if d.DueDate != nil {
		due := *d.DueDate
		c.DueDate = &due
	}
	c.History = append([]HistoryEntry(nil), d.History...)
	return c
}

// TotalOutstanding sums the remaining amounts of the given debts.
func TotalOutstanding(debts []Debt) int64 {
	var total int64
	for _, d := range debts {
		if r := d.Remaining(); r > 0 {
			total += r
		}
	}
	return total
}

// MatchesQuery reports whether the title or category contains q, ignoring case.
func (t Transaction) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Category), q)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day of t, keeping its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return errors.New("invalid date: " + s)
	}
	*d = DateOf(t)
	return nil
}
