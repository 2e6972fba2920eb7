// Package http provides the JSON API of the ledger.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form encoded. Numbers may arrive as JSON numbers or
// as formatted strings such as "Rp 25.000".

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dompet/internal/core"
	"dompet/internal/errs"
)

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = errs.NewValidationError("request body is not valid JSON")
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = errs.NewValidationError("request body could not be parsed")
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func parseBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.NewValidationError("request body too large")
		}
		return nil, err
	}
	return p, nil
}

// ParseTransactionDraft reads title, category, amount and type.
func ParseTransactionDraft(r *http.Request) (core.TransactionDraft, error) {
	p, err := parseBody(r)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	return core.TransactionDraft{
		Title:    p.Get("title"),
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
		Type:     core.TxType(strings.ToLower(p.Get("type"))),
	}, nil
}

// ParseDebtDraft reads a new debt. Date and dueDate are YYYY-MM-DD and
// optional.
func ParseDebtDraft(r *http.Request) (core.DebtDraft, error) {
	p, err := parseBody(r)
	if err != nil {
		return core.DebtDraft{}, err
	}
	amount, err := parseSignedAmount(p.Get("amount"), "amount")
	if err != nil {
		return core.DebtDraft{}, err
	}
	draft := core.DebtDraft{
		Name:        p.Get("name"),
		Amount:      amount,
		Type:        core.DebtType(strings.ToLower(p.Get("type"))),
		Description: p.Get("description"),
	}
	if v := p.Get("date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return core.DebtDraft{}, errs.NewValidationError("date must be YYYY-MM-DD")
		}
		draft.Date = d
	}
	if v := p.Get("dueDate"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return core.DebtDraft{}, errs.NewValidationError("dueDate must be YYYY-MM-DD")
		}
		draft.DueDate = &d
	}
	return draft, nil
}

// ParseAmountField reads a single integer field such as a payment or the
// budget threshold. Negative values are kept so the ledger can reject them.
func ParseAmountField(r *http.Request, key string) (int64, error) {
	p, err := parseBody(r)
	if err != nil {
		return 0, err
	}
	return parseSignedAmount(p.Get(key), key)
}

func parseSignedAmount(raw, field string) (int64, error) {
	if raw == "" {
		return 0, errs.NewValidationError(field + " is required")
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		return 0, errs.NewValidationError(field + " must be a number")
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "-") {
		v = -v
	}
	return v, nil
}

// ParseWindow reads ?window=, defaulting to all.
func ParseWindow(r *http.Request) (core.Window, error) {
	w, err := core.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		return "", errs.NewValidationError("window must be one of all, week, month")
	}
	return w, nil
}

// ParseDebtType reads ?type=. Empty means both sides.
func ParseDebtType(r *http.Request) (core.DebtType, error) {
	t := core.DebtType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if t != "" && !t.Valid() {
		return "", errs.NewValidationError("type must be payable or receivable")
	}
	return t, nil
}

// ParseTransactionID reads the {id} route parameter.
func ParseTransactionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValidationError("invalid transaction id")
	}
	return id, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}
