package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	t, err := ParseDebtType(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	OK(s.svc.Debts(t)).Write(w)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseDebtDraft(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	view, err := s.svc.CreateDebt(r.Context(), draft)
	if s.rejected(w, err) {
		return
	}
	Created(view).WarnOn(err).Write(w)
}

func (s *Server) handleDebtPayment(w http.ResponseWriter, r *http.Request) {
	amount, err := ParseAmountField(r, "amount")
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	view, err := s.svc.PayDebt(r.Context(), chi.URLParam(r, "id"), amount)
	if s.rejected(w, err) {
		return
	}
	OK(view).WarnOn(err).Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	err := s.svc.RemoveDebt(r.Context(), chi.URLParam(r, "id"))
	if s.rejected(w, err) {
		return
	}
	NoContent().WarnOn(err).Write(w)
}
