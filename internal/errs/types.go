package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// OverpaymentError reports a debt payment larger than what is still owed.
type OverpaymentError struct {
	ErrorMessage
	Remaining int64
	Requested int64
}

type MalformedImportError struct {
	ErrorMessage
}

// PersistenceError is returned next to a valid result when the in-memory
// mutation succeeded but writing it to storage did not.
type PersistenceError struct {
	ErrorMessage
	Op  string
	Err error
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewOverpaymentError(remaining, requested int64) *OverpaymentError {
	msg := fmt.Sprintf("payment of %d exceeds remaining balance of %d", requested, remaining)
	if remaining <= 0 {
		msg = "debt is already paid off"
	}
	return &OverpaymentError{
		ErrorMessage: ErrorMessage{Message: msg},
		Remaining:    remaining,
		Requested:    requested,
	}
}

func NewMalformedImportError(message string) *MalformedImportError {
	return &MalformedImportError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("persist %s: %v", op, err)},
		Op:           op,
		Err:          err,
	}
}
