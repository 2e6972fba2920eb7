package http

import (
	"errors"
	"net/http"

	"dompet/internal/core"
	"dompet/internal/errs"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	OK(map[string][]string{
		string(core.Expense): core.ExpenseCategories,
		string(core.Income):  core.IncomeCategories,
	}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	win, err := ParseWindow(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	OK(s.svc.Dashboard(win, r.URL.Query().Get("q"))).Write(w)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	win, err := ParseWindow(r)
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	OK(s.svc.Statistics(win)).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	OK(s.svc.BudgetStatus()).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	threshold, err := ParseAmountField(r, "threshold")
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	status, err := s.svc.SetBudget(r.Context(), threshold)
	if s.rejected(w, err) {
		return
	}
	OK(status).WarnOn(err).Write(w)
}

// rejected writes the error response and reports true when err stopped the
// request. A persistence error does not: the change is live and the caller
// answers with a warning instead.
func (s *Server) rejected(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var perr *errs.PersistenceError
	if errors.As(err, &perr) {
		return false
	}
	s.errors.HandleError(w, err)
	return true
}
