package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/errs"
	"dompet/internal/ledger"
	"dompet/internal/services"
	"dompet/internal/sheets"
	sheetsmem "dompet/internal/sheets/memory"
	"dompet/internal/storage/memory"
)

var testNow = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

// flakyStore fails transaction saves on demand.
type flakyStore struct {
	*memory.Store
	fail bool
}

func (f *flakyStore) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.SaveTransactions(ctx, txs)
}

func newTestServer(t *testing.T, store ledger.Persister, backup sheets.Backup) *Server {
	t.Helper()
	ctx := context.Background()
	if store == nil {
		store = memory.New()
	}
	clock := func() time.Time { return testNow }
	txs, err := ledger.NewTransactionStore(ctx, store, clock, nil)
	if err != nil {
		t.Fatalf("NewTransactionStore: %v", err)
	}
	debts, err := ledger.NewDebtLedger(ctx, store, clock, nil)
	if err != nil {
		t.Fatalf("NewDebtLedger: %v", err)
	}
	budget, err := ledger.NewBudget(ctx, store, nil)
	if err != nil {
		t.Fatalf("NewBudget: %v", err)
	}
	svc := services.NewLedger(txs, debts, budget, nil, clock, nil)
	return NewServer(":0", svc, backup, nil)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Warning string          `json:"warning"`
}

func do(t *testing.T, srv *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, srv, method, path, "application/json", body)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) (T, string) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (body %q)", err, rr.Body.String())
	}
	return v, env.Warning
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errs.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rr.Body.String())
	}
	return resp.Code
}

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}

	rr = do(t, srv, http.MethodGet, "/nope", "", "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "not_found" {
		t.Fatalf("unknown route status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodGet, "/api/categories", "", "")
	cats, _ := decode[map[string][]string](t, rr)
	if len(cats["expense"]) != len(core.ExpenseCategories) || len(cats["income"]) != len(core.IncomeCategories) {
		t.Fatalf("categories = %v", cats)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"Gaji","category":"Gaji","amount":5000000,"type":"income"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	income, _ := decode[core.Transaction](t, rr)
	if income.ID == 0 || income.Amount != 5_000_000 {
		t.Fatalf("created = %+v", income)
	}

	rr = do(t, srv, http.MethodPost, "/api/transactions", "application/x-www-form-urlencoded",
		"title=Nasi+Padang&amount=Rp+25.000&type=expense")
	if rr.Code != http.StatusCreated {
		t.Fatalf("form create status=%d body=%s", rr.Code, rr.Body.String())
	}
	meal, _ := decode[core.Transaction](t, rr)
	if meal.Amount != 25_000 || meal.Category != core.DefaultCategory {
		t.Fatalf("form created = %+v", meal)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?window=month", "", "")
	list, _ := decode[[]core.Transaction](t, rr)
	if len(list) != 2 || list[0].ID != meal.ID {
		t.Fatalf("list = %+v", list)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?q=padang", "", "")
	list, _ = decode[[]core.Transaction](t, rr)
	if len(list) != 1 {
		t.Fatalf("search = %+v", list)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/transactions/"+itoa(meal.ID), `{"title":"Nasi Padang","category":"Makan","amount":"30000","type":"expense"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	updated, _ := decode[core.Transaction](t, rr)
	if updated.Amount != 30_000 || !updated.Date.Equal(meal.Date) {
		t.Fatalf("updated = %+v", updated)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(meal.ID), "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	// Removing again is a no-op.
	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(meal.ID), "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("second delete status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions", "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/transactions", "", "")
	list, _ = decode[[]core.Transaction](t, rr)
	if len(list) != 0 {
		t.Fatalf("after reset = %+v", list)
	}
}

func TestTransactionErrors(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"empty title", http.MethodPost, "/api/transactions", `{"title":" ","amount":1,"type":"expense"}`, 400, "invalid_input"},
		{"bad amount", http.MethodPost, "/api/transactions", `{"title":"x","amount":"abc","type":"expense"}`, 400, "invalid_input"},
		{"bad type", http.MethodPost, "/api/transactions", `{"title":"x","amount":1,"type":"gift"}`, 400, "invalid_input"},
		{"broken json", http.MethodPost, "/api/transactions", `{"title":`, 400, "invalid_input"},
		{"bad window", http.MethodGet, "/api/transactions?window=year", "", 400, "invalid_input"},
		{"bad id", http.MethodPut, "/api/transactions/abc", `{"title":"x","amount":1,"type":"expense"}`, 400, "invalid_input"},
		{"unknown id", http.MethodPut, "/api/transactions/42", `{"title":"x","amount":1,"type":"expense"}`, 404, "not_found"},
		{"wrong method", http.MethodPatch, "/api/transactions", "", 405, "method_not_allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if got := errorCode(t, rr); got != tt.code {
				t.Fatalf("code=%q want %q", got, tt.code)
			}
		})
	}
}

func TestDashboardAndBudget(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"Gaji","amount":1000,"type":"income"}`)
	doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"Makan","category":"Makan","amount":800,"type":"expense"}`)

	rr := doJSON(t, srv, http.MethodPut, "/api/budget", `{"threshold":-5}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative threshold status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/budget", `{"threshold":1000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	status, _ := decode[core.BudgetStatus](t, rr)
	if !status.HasBudget || status.Utilization != 80 || status.Level != core.BudgetWarning || status.Remaining != 200 {
		t.Fatalf("budget = %+v", status)
	}

	rr = do(t, srv, http.MethodGet, "/api/dashboard?window=week", "", "")
	d, _ := decode[services.Dashboard](t, rr)
	if d.Balance != 200 || d.Income != 1000 || d.Expense != 800 || len(d.Trend) != 7 || len(d.Recent) != 2 {
		t.Fatalf("dashboard = %+v", d)
	}

	rr = do(t, srv, http.MethodGet, "/api/statistics?window=month", "", "")
	st, _ := decode[services.Statistics](t, rr)
	if st.TotalExpense != 800 || len(st.Categories) != 1 || st.Categories[0].Percent != 100 {
		t.Fatalf("statistics = %+v", st)
	}

	rr = do(t, srv, http.MethodGet, "/api/budget", "", "")
	status, _ = decode[core.BudgetStatus](t, rr)
	if status.Threshold != 1000 {
		t.Fatalf("get budget = %+v", status)
	}
}

func TestDebtEndpoints(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/debts", `{"name":"Budi","amount":1000,"type":"payable","dueDate":"2025-03-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	debt, _ := decode[services.DebtView](t, rr)
	if debt.ID == "" || debt.Remaining != 1000 || debt.DueDate == nil || debt.Date.String() != "2025-02-10" {
		t.Fatalf("debt = %+v", debt)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/debts/"+debt.ID+"/payments", `{"amount":600}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("payment status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/debts/"+debt.ID+"/payments", `{"amount":500}`)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "overpayment" {
		t.Fatalf("overpayment status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/debts/"+debt.ID+"/payments", `{"amount":400}`)
	paid, _ := decode[services.DebtView](t, rr)
	if !paid.PaidOff || paid.Progress != 100 || len(paid.History) != 3 {
		t.Fatalf("paid = %+v", paid)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/debts/missing/payments", `{"amount":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown debt status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/debts", `{"name":"Sari","amount":-5,"type":"receivable"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative debt status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/debts?type=loan", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad type status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/debts?type=payable", "", "")
	overview, _ := decode[services.DebtOverview](t, rr)
	if len(overview.Debts) != 1 || overview.TotalOutstanding != 0 {
		t.Fatalf("overview = %+v", overview)
	}

	rr = do(t, srv, http.MethodDelete, "/api/debts/"+debt.ID, "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"a","amount":10,"type":"expense"}`)
	doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"b","amount":20,"type":"income"}`)

	rr := do(t, srv, http.MethodGet, "/api/backup", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "finance-backup-2025-02-10.json") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	backup := rr.Body.String()

	other := newTestServer(t, nil, nil)
	rr = doJSON(t, other, http.MethodPost, "/api/backup", `{"transactions":[]}`)
	if rr.Code != http.StatusUnprocessableEntity || errorCode(t, rr) != "malformed_import" {
		t.Fatalf("object import status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, other, http.MethodPost, "/api/backup", backup)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body.String())
	}
	res, _ := decode[importResult](t, rr)
	if res.Imported != 2 {
		t.Fatalf("imported = %d", res.Imported)
	}
	rr = do(t, other, http.MethodGet, "/api/backup", "", "")
	if rr.Body.String() != backup {
		t.Fatalf("backup does not round trip:\n%s\n%s", backup, rr.Body.String())
	}
}

func TestSheetsBackup(t *testing.T) {
	disabled := newTestServer(t, nil, nil)
	rr := do(t, disabled, http.MethodPost, "/api/backup/sheets", "", "")
	if rr.Code != http.StatusServiceUnavailable || errorCode(t, rr) != "sheets_disabled" {
		t.Fatalf("disabled status=%d body=%s", rr.Code, rr.Body.String())
	}

	sheet := sheetsmem.New()
	srv := newTestServer(t, nil, sheet)
	doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"a","amount":10,"type":"expense"}`)

	rr = do(t, srv, http.MethodPost, "/api/backup/sheets", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d body=%s", rr.Code, rr.Body.String())
	}
	exp, _ := decode[sheetsExportResult](t, rr)
	if exp.Exported != 1 || sheet.Exports() != 1 {
		t.Fatalf("export = %+v", exp)
	}

	doJSON(t, srv, http.MethodDelete, "/api/transactions", "")
	rr = do(t, srv, http.MethodPost, "/api/backup/sheets/restore", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodGet, "/api/transactions", "", "")
	list, _ := decode[[]core.Transaction](t, rr)
	if len(list) != 1 || list[0].Title != "a" {
		t.Fatalf("restored = %+v", list)
	}

	sheet.FailWith(errors.New("quota exceeded"))
	rr = do(t, srv, http.MethodPost, "/api/backup/sheets", "", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("failing sheets status=%d", rr.Code)
	}
}

func TestPersistenceFailureIsAWarning(t *testing.T) {
	store := &flakyStore{Store: memory.New(), fail: true}
	srv := newTestServer(t, store, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", `{"title":"a","amount":10,"type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	tx, warning := decode[core.Transaction](t, rr)
	if tx.ID == 0 || warning == "" {
		t.Fatalf("tx = %+v warning = %q", tx, warning)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(tx.ID), "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete with warning status=%d", rr.Code)
	}
	_, warning = decode[any](t, rr)
	if warning == "" {
		t.Fatalf("expected warning on delete")
	}
}
