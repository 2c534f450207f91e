package models

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError covers missing subjects, sub-topics, questions, and exam
// sessions. Never retried, maps to 404.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// InvalidRequestError is a caller mistake (missing source content, double
// answer submission, pool too small for the requested exam). Maps to 400.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}

// ServiceUnavailableError means the generation upstream stayed overloaded
// through the whole retry budget. Terminal at the adapter, recoverable at the
// orchestrator when partial results exist. Maps to 503.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation service unavailable: %v", e.Err)
	}
	return "generation service unavailable"
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// ConfigurationError signals rejected credentials or missing required
// configuration. Never retried; operators should be alerted distinctly from
// transient overload. Maps to 500.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StatusCode maps an error to the HTTP status the boundary should return.
// Anything unclassified is an internal error.
func StatusCode(err error) int {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var ir *InvalidRequestError
	if errors.As(err, &ir) {
		return http.StatusBadRequest
	}
	var su *ServiceUnavailableError
	if errors.As(err, &su) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
