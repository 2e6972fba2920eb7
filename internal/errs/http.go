package errs

import (
	"encoding/json"
	"errors"
	"net/http"

	"dompet/internal/log"
)

type ErrorHandler interface {
	Write(w http.ResponseWriter, status int, code, message string)
	HandleError(w http.ResponseWriter, err error)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorHandler struct {
	log *log.Logger
}

func NewErrorHandler(logger *log.Logger) ErrorHandler {
	return &errorHandler{log: logger}
}

func (h *errorHandler) Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})

	if status >= http.StatusInternalServerError {
		h.log.Error(message, log.FieldErrorCode, code, log.FieldStatusCode, status)
	} else {
		h.log.Warn(message, log.FieldErrorCode, code, log.FieldStatusCode, status)
	}
}

func (h *errorHandler) HandleError(w http.ResponseWriter, err error) {
	var (
		notFound    *NotFoundError
		validation  *ValidationError
		overpayment *OverpaymentError
		malformed   *MalformedImportError
		persistence *PersistenceError
	)
	switch {
	case errors.As(err, &notFound):
		h.Write(w, http.StatusNotFound, "not_found", notFound.Message)
	case errors.As(err, &validation):
		h.Write(w, http.StatusBadRequest, "invalid_input", validation.Message)
	case errors.As(err, &overpayment):
		h.Write(w, http.StatusConflict, "overpayment", overpayment.Message)
	case errors.As(err, &malformed):
		h.Write(w, http.StatusUnprocessableEntity, "malformed_import", malformed.Message)
	case errors.As(err, &persistence):
		h.Write(w, http.StatusServiceUnavailable, "persistence_failed", persistence.Message)
	default:
		h.log.Error("unhandled error", log.FieldError, err)
		h.Write(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
