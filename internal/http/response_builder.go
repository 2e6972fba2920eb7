// Package http provides the JSON API of the ledger.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every successful body is an envelope with the payload under "data" and an
// optional "warning" when the change is live but could not be saved.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dompet/internal/errs"
)

// Envelope is the body of every successful JSON response.
type Envelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	data        any
	warning     string
	raw         []byte
	rawType     string
	hasEnvelope bool
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the payload placed under "data".
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	b.hasEnvelope = true
	return b
}

// Warning attaches a non-fatal problem to the response.
func (b *JSONResponseBuilder) Warning(message string) *JSONResponseBuilder {
	b.warning = message
	b.hasEnvelope = true
	return b
}

// WarnOn turns a persistence error into a warning. Other errors are ignored,
// callers must have handled them already.
func (b *JSONResponseBuilder) WarnOn(err error) *JSONResponseBuilder {
	var perr *errs.PersistenceError
	if errors.As(err, &perr) {
		b.Warning(perr.Message)
	}
	return b
}

// Raw sends content as is, without the envelope.
func (b *JSONResponseBuilder) Raw(content []byte, contentType string) *JSONResponseBuilder {
	b.raw = content
	b.rawType = contentType
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.raw != nil {
		w.Header().Set("Content-Type", b.rawType)
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
		return
	}

	if !b.hasEnvelope && b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	// A warning on an otherwise empty reply still needs a body.
	status := b.statusCode
	if status == http.StatusNoContent {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Data: b.data, Warning: b.warning})
}

// Created is a 201 response with the new resource.
func Created(v any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Data(v)
}

// OK is a 200 response with v.
func OK(v any) *JSONResponseBuilder {
	return NewJSONResponse().Data(v)
}

// NoContent is a 204 response.
func NoContent() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNoContent)
}
