package generator

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies an upstream generation failure. Only Overloaded is
// retried; everything else is terminal at the adapter.
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureOverloaded
	FailureAuth
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureOverloaded:
		return "overloaded"
	case FailureAuth:
		return "auth"
	case FailureMalformed:
		return "malformed"
	default:
		return "other"
	}
}

// GenerationError wraps an upstream error with its failure class.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Kind extracts the failure class from an error chain, FailureOther when
// unclassified.
func Kind(err error) FailureKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return FailureOther
}

// classify maps an upstream client error to a GenerationError using the HTTP
// status when the SDK exposes one (0 when it does not) and the error text as
// a fallback signal.
func classify(status int, err error) *GenerationError {
	switch status {
	case 429, 503, 529:
		return &GenerationError{Kind: FailureOverloaded, Err: err}
	case 401, 403:
		return &GenerationError{Kind: FailureAuth, Err: err}
	}

	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "overloaded") || strings.Contains(msg, "UNAVAILABLE") {
		return &GenerationError{Kind: FailureOverloaded, Err: err}
	}

	return &GenerationError{Kind: FailureOther, Err: err}
}
