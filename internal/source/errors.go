// internal/source/errors.go
package source

import (
	"errors"
	"fmt"

	"github.com/law-makers/harvest/pkg/models"
)

// Kind is the error taxonomy shared by adapters and the orchestrator.
type Kind string

const (
	// KindNetwork covers transport-level failures: timeout, connection
	// refused, non-2xx status. Recovered by rotate-and-retry.
	KindNetwork Kind = "NETWORK"
	// KindBlocked means an anti-bot/CAPTCHA page was detected. The
	// adapter has already rotated both pools when this is returned.
	KindBlocked Kind = "BLOCKED"
	// KindValidation means a required field was missing after extraction.
	// Retried like a transport failure: incomplete pages are frequently a
	// symptom of soft-blocking.
	KindValidation Kind = "VALIDATION"
	// KindExhausted is terminal: all retry attempts failed. The wrapped
	// error carries the last underlying kind for diagnosis.
	KindExhausted Kind = "RETRIES_EXHAUSTED"
)

// Error is the structured scrape error. It wraps the underlying cause and
// remembers which target failed.
type Error struct {
	Kind       Kind
	Message    string
	Target     models.ScrapeTarget
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches by Kind, so errors.Is(err, ErrBlocked) works across wrapping.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrBlocked    = &Error{Kind: KindBlocked}
	ErrValidation = &Error{Kind: KindValidation}
	ErrExhausted  = &Error{Kind: KindExhausted}
)

// NewError builds a structured scrape error.
func NewError(kind Kind, target models.ScrapeTarget, message string, underlying error) *Error {
	return &Error{Kind: kind, Message: message, Target: target, Underlying: underlying}
}

// NewExhausted wraps the last attempt's error once the retry budget is
// spent.
func NewExhausted(target models.ScrapeTarget, attempts int, last error) *Error {
	return &Error{
		Kind:       KindExhausted,
		Message:    fmt.Sprintf("failed after %d attempts", attempts),
		Target:     target,
		Underlying: last,
	}
}

// KindOf extracts the taxonomy kind from an error chain, or "" when the
// error did not originate here.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// LastKind digs past a RETRIES_EXHAUSTED wrapper to the kind of the final
// underlying failure.
func LastKind(err error) Kind {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	if se.Kind != KindExhausted {
		return se.Kind
	}
	return KindOf(se.Underlying)
}
