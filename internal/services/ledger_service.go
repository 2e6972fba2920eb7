package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/backup"
	"dompet/internal/core"
	"dompet/internal/errs"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/report"
)

// AlertPublisher receives budget alerts. The AMQP client implements it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

type (
	// Dashboard is the home screen: balance over everything, cash flow and
	// trend over the window, budget over the current month.
	Dashboard struct {
		Window  core.Window           `json:"window"`
		Balance int64                 `json:"balance"`
		Income  int64                 `json:"income"`
		Expense int64                 `json:"expense"`
		Budget  core.BudgetStatus     `json:"budget"`
		Trend   []core.DayAmount      `json:"trend"`
		Recent  []core.Transaction    `json:"recent"`
		Top     []core.CategoryAmount `json:"topCategories"`
	}

	Statistics struct {
		Window       core.Window           `json:"window"`
		TotalExpense int64                 `json:"totalExpense"`
		TotalIncome  int64                 `json:"totalIncome"`
		Categories   []core.CategoryAmount `json:"categories"`
		Trend        []core.DayAmount      `json:"trend"`
	}

	DebtView struct {
		core.Debt
		Remaining int64   `json:"remaining"`
		Progress  float64 `json:"progress"`
		PaidOff   bool    `json:"paidOff"`
	}

	DebtOverview struct {
		Type             core.DebtType `json:"type,omitempty"`
		Debts            []DebtView    `json:"debts"`
		TotalOutstanding int64         `json:"totalOutstanding"`
	}
)

// Ledger coordinates the stores, derives the read models and raises budget
// alerts. A nil publisher disables alerts.
type Ledger struct {
	txs    *ledger.TransactionStore
	debts  *ledger.DebtLedger
	budget *ledger.Budget
	alerts AlertPublisher
	now    ledger.Clock
	log    *log.Logger
}

func NewLedger(txs *ledger.TransactionStore, debts *ledger.DebtLedger, budget *ledger.Budget, alerts AlertPublisher, now ledger.Clock, logger *log.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Ledger{
		txs:    txs,
		debts:  debts,
		budget: budget,
		alerts: alerts,
		now:    now,
		log:    logger.WithComponent(log.ComponentServices),
	}
}

func (s *Ledger) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	before := s.BudgetStatus()
	tx, err := s.txs.Add(ctx, draft)
	if isRejected(err) {
		return core.Transaction{}, err
	}
	s.checkBudget(ctx, before)
	return tx, err
}

func (s *Ledger) EditTransaction(ctx context.Context, id int64, draft core.TransactionDraft) (core.Transaction, error) {
	before := s.BudgetStatus()
	tx, err := s.txs.Edit(ctx, id, draft)
	if isRejected(err) {
		return core.Transaction{}, err
	}
	s.checkBudget(ctx, before)
	return tx, err
}

func (s *Ledger) RemoveTransaction(ctx context.Context, id int64) error {
	return s.txs.Remove(ctx, id)
}

func (s *Ledger) ResetTransactions(ctx context.Context) error {
	return s.txs.Reset(ctx)
}

// Transactions lists the window, newest first, narrowed by an optional
// search query.
func (s *Ledger) Transactions(w core.Window, query string) []core.Transaction {
	return report.Search(s.txs.List(w), query)
}

// ImportTransactions replaces the collection with a JSON backup and returns
// how many transactions it holds.
func (s *Ledger) ImportTransactions(ctx context.Context, data []byte) (int, error) {
	txs, err := backup.DecodeTransactions(data)
	if err != nil {
		return 0, err
	}
	return len(txs), s.ReplaceTransactions(ctx, txs)
}

func (s *Ledger) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	before := s.BudgetStatus()
	err := s.txs.Replace(ctx, txs)
	if isRejected(err) {
		return err
	}
	s.checkBudget(ctx, before)
	return err
}

// ExportTransactions returns the JSON backup and its suggested file name.
func (s *Ledger) ExportTransactions() ([]byte, string, error) {
	data, err := backup.EncodeTransactions(s.txs.All())
	if err != nil {
		return nil, "", fmt.Errorf("encode backup: %w", err)
	}
	return data, backup.FileName(s.now()), nil
}

func (s *Ledger) AllTransactions() []core.Transaction {
	return s.txs.All()
}

func (s *Ledger) Dashboard(w core.Window, query string) Dashboard {
	now := s.now()
	all := s.txs.All()
	filtered := report.Search(w.Filter(all, now), query)
	categories := report.CategoryTotals(filtered)
	if len(categories) > 3 {
		categories = categories[:3]
	}
	return Dashboard{
		Window:  w,
		Balance: report.TotalBalance(all),
		Income:  report.PeriodIncome(filtered),
		Expense: report.PeriodExpense(filtered),
		Budget:  report.Budget(all, s.budget.Threshold(), now),
		Trend:   report.SevenDayTrend(filtered, now),
		Recent:  report.Recent(filtered, core.RecentLimit),
		Top:     categories,
	}
}

func (s *Ledger) Statistics(w core.Window) Statistics {
	now := s.now()
	filtered := w.Filter(s.txs.All(), now)
	return Statistics{
		Window:       w,
		TotalExpense: report.PeriodExpense(filtered),
		TotalIncome:  report.PeriodIncome(filtered),
		Categories:   report.CategoryTotals(filtered),
		Trend:        report.SevenDayTrend(filtered, now),
	}
}

func (s *Ledger) BudgetStatus() core.BudgetStatus {
	return report.Budget(s.txs.All(), s.budget.Threshold(), s.now())
}

func (s *Ledger) SetBudget(ctx context.Context, threshold int64) (core.BudgetStatus, error) {
	before := s.BudgetStatus()
	err := s.budget.SetThreshold(ctx, threshold)
	if isRejected(err) {
		return core.BudgetStatus{}, err
	}
	s.checkBudget(ctx, before)
	return s.BudgetStatus(), err
}

func (s *Ledger) CreateDebt(ctx context.Context, draft core.DebtDraft) (DebtView, error) {
	d, err := s.debts.Create(ctx, draft)
	if isRejected(err) {
		return DebtView{}, err
	}
	return viewOf(d), err
}

func (s *Ledger) PayDebt(ctx context.Context, id string, amount int64) (DebtView, error) {
	d, err := s.debts.RecordPayment(ctx, id, amount)
	if isRejected(err) {
		return DebtView{}, err
	}
	return viewOf(d), err
}

func (s *Ledger) RemoveDebt(ctx context.Context, id string) error {
	return s.debts.Remove(ctx, id)
}

// Debts lists one side of the debt ledger. An empty type lists both.
func (s *Ledger) Debts(t core.DebtType) DebtOverview {
	debts := s.debts.List(t)
	views := make([]DebtView, len(debts))
	for i, d := range debts {
		views[i] = viewOf(d)
	}
	return DebtOverview{Type: t, Debts: views, TotalOutstanding: core.TotalOutstanding(debts)}
}

// checkBudget publishes an alert when the budget level got more severe
// since before. Publishing never fails the caller.
func (s *Ledger) checkBudget(ctx context.Context, before core.BudgetStatus) {
	after := s.BudgetStatus()
	if !after.HasBudget || after.Level.Severity() <= before.Level.Severity() {
		return
	}

	fields := log.NewFields().WithBudget(after.Threshold, after.Utilization, string(after.Level))
	if s.alerts == nil {
		s.log.DebugContext(ctx, "Budget level raised, alerts disabled", fields.ToSlice()...)
		return
	}
	msg := amqp.NewBudgetAlertMessage(before, after, s.now())
	if err := s.alerts.PublishBudgetAlert(ctx, msg); err != nil {
		s.log.ErrorContext(ctx, "Failed to publish budget alert", fields.WithError(err).ToSlice()...)
		return
	}
	s.log.InfoContext(ctx, "Budget alert published", fields.WithOperation(log.OpPublish).ToSlice()...)
}

func viewOf(d core.Debt) DebtView {
	return DebtView{
		Debt:      d,
		Remaining: d.Remaining(),
		Progress:  d.ProgressPercent(),
		PaidOff:   d.IsPaidOff(),
	}
}

// isRejected reports whether err stopped the mutation. A persistence error
// does not: the change is live in memory.
func isRejected(err error) bool {
	var perr *errs.PersistenceError
	return err != nil && !errors.As(err, &perr)
}
