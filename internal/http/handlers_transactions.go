package http

import (
	"net/http"

	"dompet/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	win, err := ParseWindow(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	OK(s.svc.Transactions(win, r.URL.Query().Get("q"))).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseTransactionDraft(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	tx, err := s.svc.AddTransaction(r.Context(), draft)
	if s.rejected(w, err) {
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithOperation(log.OpCreate).
			WithTransaction(tx.ID, string(tx.Type), tx.Category, tx.Amount).ToSlice()...)
	Created(tx).WarnOn(err).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseTransactionID(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	draft, err := ParseTransactionDraft(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	tx, err := s.svc.EditTransaction(r.Context(), id, draft)
	if s.rejected(w, err) {
		return
	}
	OK(tx).WarnOn(err).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseTransactionID(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	err = s.svc.RemoveTransaction(r.Context(), id)
	if s.rejected(w, err) {
		return
	}
	NoContent().WarnOn(err).Write(w)
}

func (s *Server) handleResetTransactions(w http.ResponseWriter, r *http.Request) {
	err := s.svc.ResetTransactions(r.Context())
	if s.rejected(w, err) {
		return
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "All transactions removed", log.FieldOperation, log.OpReset)
	NoContent().WarnOn(err).Write(w)
}
