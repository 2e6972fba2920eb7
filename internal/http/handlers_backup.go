package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"dompet/internal/errs"
	"dompet/internal/log"
)

type importResult struct {
	Imported int `json:"imported"`
}

type sheetsExportResult struct {
	Range    string `json:"range"`
	Exported int    `json:"exported"`
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.svc.ExportTransactions()
	if err != nil {
		s.errors.HandleError(w, err)
		return
	}
	NewJSONResponse().
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name)).
		Raw(data, "application/json").
		Write(w)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errors.HandleError(w, errs.NewMalformedImportError("backup file too large"))
			return
		}
		s.errors.HandleError(w, err)
		return
	}
	n, err := s.svc.ImportTransactions(r.Context(), data)
	if s.rejected(w, err) {
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Backup imported",
		log.FieldOperation, log.OpImport, log.FieldCount, n)
	OK(importResult{Imported: n}).WarnOn(err).Write(w)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.backup == nil {
		s.sheetsDisabled(w)
		return
	}
	txs := s.svc.AllTransactions()
	rng, err := s.backup.ExportTransactions(r.Context(), txs)
	if err != nil {
		s.sheetsFailed(w, r, err)
		return
	}
	OK(sheetsExportResult{Range: rng, Exported: len(txs)}).Write(w)
}

func (s *Server) handleRestoreSheets(w http.ResponseWriter, r *http.Request) {
	if s.backup == nil {
		s.sheetsDisabled(w)
		return
	}
	txs, err := s.backup.ImportTransactions(r.Context())
	if err != nil {
		var malformed *errs.MalformedImportError
		if errors.As(err, &malformed) {
			s.errors.HandleError(w, err)
			return
		}
		s.sheetsFailed(w, r, err)
		return
	}
	err = s.svc.ReplaceTransactions(r.Context(), txs)
	if s.rejected(w, err) {
		return
	}
	OK(importResult{Imported: len(txs)}).WarnOn(err).Write(w)
}

func (s *Server) sheetsDisabled(w http.ResponseWriter) {
	s.errors.Write(w, http.StatusServiceUnavailable, "sheets_disabled", "Google Sheets backup is not configured")
}

func (s *Server) sheetsFailed(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Google Sheets request failed", log.FieldError, err)
	s.errors.Write(w, http.StatusBadGateway, "sheets_failed", "Google Sheets request failed")
}
