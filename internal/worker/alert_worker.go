package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/log"
)

// Notification is the human readable form of a budget alert.
type Notification struct {
	Month   string
	Level   core.BudgetLevel
	Title   string
	Message string
}

// Notifier delivers notifications. The default one writes them to the log.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Stats counts what the worker has done since it started.
type Stats struct {
	Handled    int
	Duplicates int
	Failed     int
}

// AlertWorker turns budget alert messages into notifications. A month only
// notifies once per level, so redelivered messages are dropped.
type AlertWorker struct {
	mu       sync.Mutex
	notifier Notifier
	seen     map[string]core.BudgetLevel
	stats    Stats
	log      *log.Logger
}

func NewAlertWorker(notifier Notifier, logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWorker)
	if notifier == nil {
		notifier = LogNotifier{log: logger}
	}
	return &AlertWorker{
		notifier: notifier,
		seen:     make(map[string]core.BudgetLevel),
		log:      logger,
	}
}

// HandleBudgetAlert processes a single alert delivered from AMQP.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if msg == nil {
		return errors.New("nil budget alert")
	}
	if !msg.Level.Valid() {
		return fmt.Errorf("unknown budget level %q", msg.Level)
	}

	fields := log.NewFields().
		WithBudget(msg.Threshold, msg.Utilization, string(msg.Level)).
		WithOperation("notify")

	w.mu.Lock()
	if prev, ok := w.seen[msg.Month]; ok && prev.Severity() >= msg.Level.Severity() {
		w.stats.Duplicates++
		w.mu.Unlock()
		w.log.DebugContext(ctx, "Skipping repeated budget alert", fields.ToSlice()...)
		return nil
	}
	w.mu.Unlock()

	if err := w.notifier.Notify(ctx, Compose(msg)); err != nil {
		w.mu.Lock()
		w.stats.Failed++
		w.mu.Unlock()
		w.log.ErrorContext(ctx, "Failed to deliver budget notification", fields.WithError(err).ToSlice()...)
		return fmt.Errorf("notify: %w", err)
	}

	w.mu.Lock()
	w.seen[msg.Month] = msg.Level
	w.stats.Handled++
	w.mu.Unlock()
	return nil
}

func (w *AlertWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Compose renders the alert in the app's language.
func Compose(msg *amqp.BudgetAlertMessage) Notification {
	title := "Pengeluaran mendekati batas anggaran"
	if msg.Level == core.BudgetDanger {
		title = "Anggaran bulanan hampir habis"
	}
	remaining := msg.Threshold - msg.MonthExpense
	if remaining < 0 {
		remaining = 0
	}
	return Notification{
		Month: msg.Month,
		Level: msg.Level,
		Title: title,
		Message: fmt.Sprintf("%s: %s dari %s terpakai (%.2f%%), sisa %s",
			msg.Month,
			core.FormatRupiah(msg.MonthExpense),
			core.FormatRupiah(msg.Threshold),
			msg.Utilization,
			core.FormatRupiah(remaining)),
	}
}

// LogNotifier writes notifications as warn level log lines.
type LogNotifier struct {
	log *log.Logger
}

func (n LogNotifier) Notify(ctx context.Context, note Notification) error {
	n.log.WarnContext(ctx, note.Title,
		"month", note.Month,
		log.FieldLevel, string(note.Level),
		"message", note.Message)
	return nil
}
