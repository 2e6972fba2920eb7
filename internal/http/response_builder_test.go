package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"dompet/internal/errs"
)

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	OK(map[string]int{"n": 1}).Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"data":{"n":1}}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_Created(t *testing.T) {
	w := httptest.NewRecorder()
	Created("x").Header("Location", "/api/x").Write(w)
	if w.Code != http.StatusCreated || w.Header().Get("Location") != "/api/x" {
		t.Errorf("Created() = %d %v", w.Code, w.Header())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent().WarnOn(nil).WarnOn(errors.New("not a persistence error")).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("NoContent() = %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_Warning(t *testing.T) {
	w := httptest.NewRecorder()
	err := errs.NewPersistenceError("transactions", errors.New("disk full"))

	NoContent().WarnOn(err).Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want 200 when a warning is attached", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"warning":`) {
		t.Errorf("Body = %q, want a warning", w.Body.String())
	}
}

func TestJSONResponseBuilder_Raw(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Header("Content-Disposition", `attachment; filename="x.json"`).
		Raw([]byte("[]"), "application/json").
		Write(w)
	if w.Body.String() != "[]" || w.Header().Get("Content-Disposition") == "" {
		t.Errorf("Raw() = %q %v", w.Body.String(), w.Header())
	}
}
