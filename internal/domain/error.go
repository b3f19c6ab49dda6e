package domain

import (
	"errors"
	"fmt"
)

var (
	// Common harness errors
	ErrMissingCredentials = errors.New("missing client credentials")
	ErrNoIDToken          = errors.New("no identity token in authorization result")
	ErrPollBudgetExceeded = errors.New("polling budget exhausted")
	ErrCanceled           = errors.New("canceled by user")
	ErrEmptyReply         = errors.New("empty reply")
	ErrNotFound           = errors.New("entity not found")
)

// Kind classifies a step failure so the flow controller can decide fatality
// without string-matching diagnostics.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindTransport
	KindProtocol
	KindValidation
	KindTimeout
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StepError carries the failure kind plus the operation that produced it.
type StepError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// E wraps err with a kind and operation name.
func E(kind Kind, op string, err error) *StepError {
	return &StepError{Kind: kind, Op: op, Err: err}
}

// Ef is E with a formatted message.
func Ef(kind Kind, op, format string, args ...any) *StepError {
	return &StepError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from err, walking the wrap chain.
func KindOf(err error) Kind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, ErrPollBudgetExceeded):
		return KindTimeout
	case errors.Is(err, ErrCanceled):
		return KindCanceled
	case errors.Is(err, ErrMissingCredentials):
		return KindConfiguration
	}
	return KindUnknown
}

// IsTimeout reports whether err is a polling-budget timeout, which the flow
// controller treats differently from a terminal failure.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsCanceled reports an explicit user abort; runs unwind with a success exit.
func IsCanceled(err error) bool { return KindOf(err) == KindCanceled }
