package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/errs"
)

func newLedger(t *testing.T, p *fakePersister) *DebtLedger {
	t.Helper()
	l, err := NewDebtLedger(context.Background(), p, stepClock(base, time.Hour), nil)
	if err != nil {
		t.Fatalf("NewDebtLedger: %v", err)
	}
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("debt-%d", n)
	}
	return l
}

func TestCreateDebt(t *testing.T) {
	p := &fakePersister{}
	l := newLedger(t, p)
	due := core.NewDate(2025, 3, 1)

	d, err := l.Create(context.Background(), core.DebtDraft{
		Name: " Budi ", Amount: 1000, Date: core.NewDate(2025, 2, 1), DueDate: &due, Type: core.Payable, Description: "pinjam",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID != "debt-1" || d.Name != "Budi" || d.PaidAmount != 0 {
		t.Fatalf("unexpected debt %+v", d)
	}
	if len(d.History) != 1 || d.History[0].Type != core.EntryInitial || d.History[0].Amount != 1000 {
		t.Fatalf("history = %+v", d.History)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("created debt violates invariants: %v", err)
	}
	if len(p.debts) != 1 {
		t.Fatalf("persisted %d debts", len(p.debts))
	}
}

func TestCreateDebtDefaultsDate(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	d, err := l.Create(context.Background(), core.DebtDraft{Name: "Sari", Amount: 500, Type: core.Receivable})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Date.String() != "2025-02-10" {
		t.Fatalf("date = %s, want today", d.Date)
	}
}

func TestCreateDebtValidation(t *testing.T) {
	p := &fakePersister{}
	l := newLedger(t, p)
	cases := []core.DebtDraft{
		{Name: "", Amount: 100, Type: core.Payable},
		{Name: "x", Amount: 0, Type: core.Payable},
		{Name: "x", Amount: 100, Type: "gift"},
	}
	for i, d := range cases {
		_, err := l.Create(context.Background(), d)
		var verr *errs.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
	if len(l.List("")) != 0 || p.saveCalls != 0 {
		t.Fatalf("ledger mutated on invalid input")
	}
}

func TestOverpaymentRejected(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "Budi", Amount: 1000, Type: core.Payable})

	if _, err := l.RecordPayment(ctx, d.ID, 600); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	_, err := l.RecordPayment(ctx, d.ID, 500)
	var oerr *errs.OverpaymentError
	if !errors.As(err, &oerr) {
		t.Fatalf("expected OverpaymentError, got %v", err)
	}
	if oerr.Remaining != 400 || oerr.Requested != 500 {
		t.Fatalf("overpayment details = %+v", oerr)
	}

	got, _ := l.Get(d.ID)
	if got.PaidAmount != 600 || len(got.History) != 2 {
		t.Fatalf("paid=%d history=%d, want 600 and 2", got.PaidAmount, len(got.History))
	}
}

func TestFullPaymentPaysOff(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "Budi", Amount: 1000, Type: core.Receivable})

	got, err := l.RecordPayment(ctx, d.ID, 1000)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !got.IsPaidOff() || got.Remaining() != 0 || len(got.History) != 2 {
		t.Fatalf("paidOff=%v remaining=%d history=%d", got.IsPaidOff(), got.Remaining(), len(got.History))
	}
	if got.History[1].Type != core.EntryPayment || got.History[1].Amount != 1000 {
		t.Fatalf("payment entry = %+v", got.History[1])
	}
	if got.ProgressPercent() != 100 {
		t.Fatalf("progress = %v", got.ProgressPercent())
	}

	_, err = l.RecordPayment(ctx, d.ID, 1)
	var oerr *errs.OverpaymentError
	if !errors.As(err, &oerr) {
		t.Fatalf("payment on paid-off debt should fail, got %v", err)
	}
}

func TestRecordPaymentErrors(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "Budi", Amount: 1000, Type: core.Payable})

	var verr *errs.ValidationError
	if _, err := l.RecordPayment(ctx, d.ID, 0); !errors.As(err, &verr) {
		t.Fatalf("zero payment: expected ValidationError, got %v", err)
	}
	var nf *errs.NotFoundError
	if _, err := l.RecordPayment(ctx, "missing", 10); !errors.As(err, &nf) {
		t.Fatalf("unknown debt: expected NotFoundError, got %v", err)
	}
}

func TestListByTypeKeepsInsertionOrder(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	ctx := context.Background()
	a, _ := l.Create(ctx, core.DebtDraft{Name: "A", Amount: 10, Type: core.Payable})
	_, _ = l.Create(ctx, core.DebtDraft{Name: "B", Amount: 500, Type: core.Receivable})
	c, _ := l.Create(ctx, core.DebtDraft{Name: "C", Amount: 900, Type: core.Payable})

	payables := l.List(core.Payable)
	if len(payables) != 2 || payables[0].ID != a.ID || payables[1].ID != c.ID {
		t.Fatalf("payables = %+v", payables)
	}
	if got := l.List(core.Receivable); len(got) != 1 || got[0].Name != "B" {
		t.Fatalf("receivables = %+v", got)
	}
	if got := core.TotalOutstanding(payables); got != 910 {
		t.Fatalf("outstanding = %d", got)
	}
}

func TestRemoveDebt(t *testing.T) {
	p := &fakePersister{}
	l := newLedger(t, p)
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "A", Amount: 10, Type: core.Payable})
	if err := l.Remove(ctx, d.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(l.List("")) != 0 || len(p.debts) != 0 {
		t.Fatalf("debt still present")
	}
	calls := p.saveCalls
	if err := l.Remove(ctx, d.ID); err != nil || p.saveCalls != calls {
		t.Fatalf("second remove should be a silent no-op")
	}
}

func TestListReturnsCopies(t *testing.T) {
	l := newLedger(t, &fakePersister{})
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "A", Amount: 10, Type: core.Payable})
	list := l.List("")
	list[0].History[0].Amount = 999
	got, _ := l.Get(d.ID)
	if got.History[0].Amount != 10 {
		t.Fatalf("ledger history mutated through list copy")
	}
}

func TestPaymentPersistenceFailureKeepsMemory(t *testing.T) {
	p := &fakePersister{}
	l := newLedger(t, p)
	ctx := context.Background()
	d, _ := l.Create(ctx, core.DebtDraft{Name: "A", Amount: 100, Type: core.Payable})

	p.failSave = true
	got, err := l.RecordPayment(ctx, d.ID, 40)
	var perr *errs.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if got.PaidAmount != 40 {
		t.Fatalf("returned debt paid = %d", got.PaidAmount)
	}
	if cur, _ := l.Get(d.ID); cur.PaidAmount != 40 {
		t.Fatalf("in-memory paid = %d, want 40", cur.PaidAmount)
	}
}

func TestNewDebtLedgerRejectsCorruptData(t *testing.T) {
	p := &fakePersister{debts: []core.Debt{{
		ID: "x", Amount: 100, PaidAmount: 50, Type: core.Payable,
		History: []core.HistoryEntry{{Type: core.EntryInitial, Amount: 100}},
	}}}
	if _, err := NewDebtLedger(context.Background(), p, nil, nil); !errors.Is(err, core.ErrHistoryMismatch) {
		t.Fatalf("expected history mismatch, got %v", err)
	}
}
