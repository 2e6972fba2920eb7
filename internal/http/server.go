package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dompet/internal/errs"
	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/services"
	"dompet/internal/sheets"
)

// maxBodyBytes bounds request bodies, backups included.
const maxBodyBytes = 4 << 20

type Server struct {
	http.Server
	svc     *services.Ledger
	backup  sheets.Backup
	errors  errs.ErrorHandler
	limiter *ratelimit.Limiter
	log     *log.Logger
}

// NewServer wires the JSON API. backup may be nil, the sheets endpoints then
// answer 503.
func NewServer(addr string, svc *services.Ledger, backup sheets.Backup, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:     svc,
		backup:  backup,
		errors:  errs.NewErrorHandler(logger),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		log:     logger,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.RegisterOnShutdown(s.limiter.Stop)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(s.limiter.Middleware(ratelimit.RemoteAddr, func(w http.ResponseWriter, r *http.Request) {
		s.errors.Write(w, http.StatusTooManyRequests, "rate_limited", "too many changes, try again in a minute")
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errors.Write(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errors.Write(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/statistics", s.handleStatistics)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Delete("/", s.handleResetTransactions)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)

		r.Route("/debts", func(r chi.Router) {
			r.Get("/", s.handleListDebts)
			r.Post("/", s.handleCreateDebt)
			r.Delete("/{id}", s.handleDeleteDebt)
			r.Post("/{id}/payments", s.handleDebtPayment)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Get("/", s.handleExportBackup)
			r.Post("/", s.handleImportBackup)
			r.Post("/sheets", s.handleExportSheets)
			r.Post("/sheets/restore", s.handleRestoreSheets)
		})
	})

	return r
}
