package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the console.
// Every failure carries a Message that can be shown to the operator as-is.

// ErrAuthenticationRequired means no usable session exists. Callers treat it as
// a redirect to the login view, not as an error banner.
type ErrAuthenticationRequired struct{}

func (e *ErrAuthenticationRequired) Error() string {
	return "authentication required"
}

// ErrAuthorizationDenied is returned when the backend answered 401 or 403.
// The session has already been cleared when this error surfaces.
type ErrAuthorizationDenied struct {
	Status  int
	Message string
}

func (e *ErrAuthorizationDenied) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("authorization denied (status %d)", e.Status)
}

// FieldError is a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ErrValidation is raised locally before a request is sent.
type ErrValidation struct {
	Fields []FieldError
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// ErrServerRejected is any non-2xx answer that is not auth or payload related.
// Message is the server-provided text, shown verbatim.
type ErrServerRejected struct {
	Status  int
	Message string
}

func (e *ErrServerRejected) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server rejected request (status %d)", e.Status)
}

// ErrTransport covers unreachable servers, breaker trips and unreadable responses.
type ErrTransport struct {
	Op  string
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport failure [%s]: %v", e.Op, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrPayloadTooLarge is the 413 answer, mostly seen on event photo uploads.
type ErrPayloadTooLarge struct {
	Message string
}

func (e *ErrPayloadTooLarge) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "payload too large: reduce the size or number of attachments"
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
