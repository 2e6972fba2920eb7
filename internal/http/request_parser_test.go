package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"dompet/internal/core"
	"dompet/internal/errs"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		key         string
		want        string
	}{
		{"json string", `{"title":"Bakso"}`, "application/json", "title", "Bakso"},
		{"json number", `{"amount":25000}`, "application/json", "amount", "25000"},
		{"json missing key", `{"title":"x"}`, "application/json", "amount", ""},
		{"form value", "title=Bakso+Malang", "application/x-www-form-urlencoded", "title", "Bakso Malang"},
		{"control chars stripped", "title=a%00b", "application/x-www-form-urlencoded", "title", "ab"},
		{"empty body", "", "", "title", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	err := NewRequestBodyParser(req).Parse()
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseDebtDraft(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"name":"Budi","amount":"Rp 1.000.000","type":"Payable","date":"2025-01-05","dueDate":"2025-02-05","description":"motor"}`))
	d, err := ParseDebtDraft(req)
	if err != nil {
		t.Fatalf("ParseDebtDraft() error = %v", err)
	}
	if d.Amount != 1_000_000 || d.Type != core.Payable || d.Date.String() != "2025-01-05" || d.DueDate.String() != "2025-02-05" {
		t.Fatalf("draft = %+v", d)
	}

	for _, body := range []string{
		`{"name":"Budi","type":"payable"}`,
		`{"name":"Budi","amount":10,"type":"payable","date":"05/01/2025"}`,
		`{"name":"Budi","amount":10,"type":"payable","dueDate":"soon"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if _, err := ParseDebtDraft(req); err == nil {
			t.Errorf("ParseDebtDraft(%s) expected error", body)
		}
	}
}

func TestParseAmountField(t *testing.T) {
	tests := []struct {
		body    string
		want    int64
		wantErr bool
	}{
		{`{"amount":500}`, 500, false},
		{`{"amount":"1.500"}`, 1500, false},
		{`{"amount":-20}`, -20, false},
		{`{"amount":"abc"}`, 0, true},
		{`{}`, 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		got, err := ParseAmountField(req, "amount")
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseAmountField(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseAmountField(%s) = %d, want %d", tt.body, got, tt.want)
		}
	}
}

func TestParseWindowAndDebtType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?window=WEEK&type=receivable", nil)
	if w, err := ParseWindow(req); err != nil || w != core.WindowWeek {
		t.Fatalf("ParseWindow() = %v, %v", w, err)
	}
	if dt, err := ParseDebtType(req); err != nil || dt != core.Receivable {
		t.Fatalf("ParseDebtType() = %v, %v", dt, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if w, err := ParseWindow(req); err != nil || w != core.WindowAll {
		t.Fatalf("default window = %v, %v", w, err)
	}
	if dt, err := ParseDebtType(req); err != nil || dt != "" {
		t.Fatalf("default debt type = %v, %v", dt, err)
	}
}

func TestParseTransactionID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1739176200123", 1739176200123, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tt.raw)
		req = req.WithContext(contextWithRoute(req, rctx))
		got, err := ParseTransactionID(req)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseTransactionID(%q) = %d, %v", tt.raw, got, err)
		}
	}
}
